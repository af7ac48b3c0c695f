package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
)

// SaveRefreshToken stores a new refresh token
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT OR REPLACE INTO refresh_tokens (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.Token,
		token.UserID,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves refresh token by token value
func (s *Storage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT token, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = ?
	`

	refreshToken := &models.RefreshToken{}

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&refreshToken.Token,
		&refreshToken.UserID,
		&refreshToken.ExpiresAt,
		&refreshToken.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return refreshToken, nil
}

// DeleteRefreshToken deletes refresh token by token value
func (s *Storage) DeleteRefreshToken(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = ?`

	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return expectAffected(result, storage.ErrTokenNotFound)
}

// DeleteUserTokens deletes all refresh tokens for a user
func (s *Storage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	query := `DELETE FROM refresh_tokens WHERE user_id = ?`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// DeleteExpiredTokens removes expired refresh and reset tokens
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	var total int64

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, query := range []string{
			`DELETE FROM refresh_tokens WHERE expires_at < ?`,
			`DELETE FROM password_resets WHERE expires_at < ?`,
		} {
			result, err := tx.ExecContext(ctx, query, now)
			if err != nil {
				return fmt.Errorf("failed to delete expired tokens: %w", err)
			}
			rows, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			total += rows
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int(total), nil
}

// SavePasswordReset stores a one-time password reset token
func (s *Storage) SavePasswordReset(ctx context.Context, reset *models.PasswordReset) error {
	query := `INSERT INTO password_resets (token, user_id, expires_at) VALUES (?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, reset.Token, reset.UserID, reset.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save password reset: %w", err)
	}

	return nil
}

// ConsumePasswordReset returns the reset token and deletes it
func (s *Storage) ConsumePasswordReset(ctx context.Context, token string) (*models.PasswordReset, error) {
	reset := &models.PasswordReset{}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT token, user_id, expires_at FROM password_resets WHERE token = ?`, token,
		).Scan(&reset.Token, &reset.UserID, &reset.ExpiresAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrTokenNotFound
			}
			return fmt.Errorf("failed to get password reset: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM password_resets WHERE token = ?`, token); err != nil {
			return fmt.Errorf("failed to delete password reset: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reset, nil
}
