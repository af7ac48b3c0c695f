package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/banktech/internal/models"
)

// SaveBoleto stores a paid boleto
func (s *Storage) SaveBoleto(ctx context.Context, boleto *models.Boleto) error {
	query := `
		INSERT INTO boletos (id, account_id, entry_id, barcode, recipient, amount, due_date, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		boleto.ID,
		boleto.AccountID,
		boleto.EntryID,
		boleto.Barcode,
		boleto.Recipient,
		boleto.Amount,
		boleto.DueDate,
		boleto.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert boleto: %w", err)
	}

	return nil
}

// ListBoletos returns paid boletos of the account, newest first
func (s *Storage) ListBoletos(ctx context.Context, accountID string) ([]*models.Boleto, error) {
	query := `
		SELECT id, account_id, entry_id, barcode, recipient, amount, due_date, paid_at
		FROM boletos
		WHERE account_id = ?
		ORDER BY paid_at DESC, rowid DESC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query boletos: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var boletos []*models.Boleto
	for rows.Next() {
		b := &models.Boleto{}
		if err := rows.Scan(
			&b.ID,
			&b.AccountID,
			&b.EntryID,
			&b.Barcode,
			&b.Recipient,
			&b.Amount,
			&b.DueDate,
			&b.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan boleto: %w", err)
		}
		boletos = append(boletos, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return boletos, nil
}
