package storage

import (
	"context"

	"github.com/iudanet/banktech/internal/models"
)

// TokenStorage defines interface for refresh token persistence
type TokenStorage interface {
	// SaveRefreshToken stores a new refresh token
	// If token with same token value exists, it will be replaced
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken retrieves refresh token by token value
	// Returns ErrTokenNotFound if token doesn't exist
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteRefreshToken deletes refresh token by token value
	// Returns ErrTokenNotFound if token doesn't exist
	DeleteRefreshToken(ctx context.Context, token string) error

	// DeleteUserTokens deletes all refresh tokens for a user
	// Returns number of deleted tokens
	DeleteUserTokens(ctx context.Context, userID string) (int, error)

	// DeleteExpiredTokens removes all expired refresh and reset tokens
	// Returns number of deleted tokens
	DeleteExpiredTokens(ctx context.Context) (int, error)
}

// ResetStorage хранит одноразовые token восстановления пароля
type ResetStorage interface {
	SavePasswordReset(ctx context.Context, reset *models.PasswordReset) error

	// ConsumePasswordReset возвращает и удаляет token.
	// Returns ErrTokenNotFound if token doesn't exist
	ConsumePasswordReset(ctx context.Context, token string) (*models.PasswordReset, error)
}
