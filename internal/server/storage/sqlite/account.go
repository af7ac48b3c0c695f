package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
)

const (
	accountColumns = `id, user_id, agency_number, account_number, balance, status, created_at`
	entryColumns   = `id, account_id, type, direction, amount, status, description,
		counterparty, counterparty_ref, created_at`
)

// CreateAccount creates a new account
func (s *Storage) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.UserID,
		account.AgencyNumber,
		account.AccountNumber,
		account.Balance,
		account.Status,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetAccountByUserID retrieves the account owned by user
func (s *Storage) GetAccountByUserID(ctx context.Context, userID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = ?`
	return scanAccount(s.db.QueryRowContext(ctx, query, userID))
}

// GetAccountByID retrieves account by its ID
func (s *Storage) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return scanAccount(s.db.QueryRowContext(ctx, query, id))
}

// GetAccountByNumber retrieves account by its number
func (s *Storage) GetAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = ?`
	return scanAccount(s.db.QueryRowContext(ctx, query, accountNumber))
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}

	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.AgencyNumber,
		&account.AccountNumber,
		&account.Balance,
		&account.Status,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// ApplyEntries posts entries and updates balances in one transaction
func (s *Storage) ApplyEntries(ctx context.Context, entries ...*models.LedgerEntry) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, entry := range entries {
			if err := applyEntry(ctx, tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func applyEntry(ctx context.Context, tx *sql.Tx, entry *models.LedgerEntry) error {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, entry.AccountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrAccountNotFound
		}
		return fmt.Errorf("failed to read balance: %w", err)
	}

	switch entry.Direction {
	case models.DirectionCredit:
		balance = balance.Add(entry.Amount)
	case models.DirectionDebit:
		if balance.LessThan(entry.Amount) {
			return storage.ErrInsufficientFunds
		}
		balance = balance.Sub(entry.Amount)
	default:
		return fmt.Errorf("unknown entry direction %q", entry.Direction)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`, balance, entry.AccountID); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	query := `INSERT INTO ledger_entries (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.Type,
		entry.Direction,
		entry.Amount,
		entry.Status,
		entry.Description,
		entry.Counterparty,
		entry.CounterRef,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	return nil
}

// ListEntries returns latest entries of the account, newest first
func (s *Storage) ListEntries(ctx context.Context, accountID string, limit int) ([]*models.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE account_id = ?
		ORDER BY created_at DESC, rowid DESC`
	args := []any{accountID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.queryEntries(ctx, query, args...)
}

// ListEntriesSince returns entries created at or after since, oldest first
func (s *Storage) ListEntriesSince(ctx context.Context, accountID string, since time.Time) ([]*models.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE account_id = ? AND created_at >= ?
		ORDER BY created_at, rowid`

	return s.queryEntries(ctx, query, accountID, since.UTC())
}

// GetEntry retrieves a single entry of the account
func (s *Storage) GetEntry(ctx context.Context, accountID, entryID string) (*models.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE account_id = ? AND id = ?`

	entries, err := s.queryEntries(ctx, query, accountID, entryID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, storage.ErrEntryNotFound
	}

	return entries[0], nil
}

func (s *Storage) queryEntries(ctx context.Context, query string, args ...any) ([]*models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry := &models.LedgerEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Type,
			&entry.Direction,
			&entry.Amount,
			&entry.Status,
			&entry.Description,
			&entry.Counterparty,
			&entry.CounterRef,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}
