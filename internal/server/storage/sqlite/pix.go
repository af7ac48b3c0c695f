package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
)

// CreatePixKey registers a PIX key for the account
func (s *Storage) CreatePixKey(ctx context.Context, key *models.PixKey) error {
	query := `
		INSERT INTO pix_keys (id, account_id, key_type, key_value, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, key.ID, key.AccountID, key.KeyType, key.KeyValue, key.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrPixKeyAlreadyExists
		}
		return fmt.Errorf("failed to insert pix key: %w", err)
	}

	return nil
}

// ListPixKeys returns keys of the account in registration order
func (s *Storage) ListPixKeys(ctx context.Context, accountID string) ([]*models.PixKey, error) {
	query := `
		SELECT id, account_id, key_type, key_value, created_at
		FROM pix_keys
		WHERE account_id = ?
		ORDER BY created_at, rowid
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pix keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []*models.PixKey
	for rows.Next() {
		key := &models.PixKey{}
		if err := rows.Scan(&key.ID, &key.AccountID, &key.KeyType, &key.KeyValue, &key.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pix key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}

// GetPixKeyByValue resolves a key value to its registration
func (s *Storage) GetPixKeyByValue(ctx context.Context, value string) (*models.PixKey, error) {
	query := `
		SELECT id, account_id, key_type, key_value, created_at
		FROM pix_keys
		WHERE key_value = ?
	`

	key := &models.PixKey{}
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&key.ID, &key.AccountID, &key.KeyType, &key.KeyValue, &key.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPixKeyNotFound
		}
		return nil, fmt.Errorf("failed to get pix key: %w", err)
	}

	return key, nil
}

// DeletePixKey removes a key owned by the account
func (s *Storage) DeletePixKey(ctx context.Context, accountID, keyID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pix_keys WHERE id = ? AND account_id = ?`, keyID, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete pix key: %w", err)
	}

	return expectAffected(result, storage.ErrPixKeyNotFound)
}
