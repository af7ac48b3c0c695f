package storage

import (
	"context"
	"time"

	"github.com/iudanet/banktech/internal/models"
)

// SessionStorage defines interface for storing the session on client.
// This is the lowest storage layer: it works with raw data (tokens may
// already be encrypted) and doesn't perform any encryption itself.
type SessionStorage interface {
	// SaveSession atomically stores tokens, issuance metadata and user snapshot
	SaveSession(ctx context.Context, session *SessionData) error

	// GetSession retrieves the stored session.
	// Returns ErrSessionNotFound if either token is missing
	// and ErrCorruptSession if stored data cannot be decoded.
	GetSession(ctx context.Context) (*SessionData, error)

	// SaveUser replaces the user snapshot of the stored session.
	// Returns ErrSessionNotFound if there is no session.
	SaveUser(ctx context.Context, user *models.UserSnapshot) error

	// DeleteSession removes all session keys. Deleting a missing session is not an error.
	DeleteSession(ctx context.Context) error
}

// SessionData represents the session as it lies in storage.
// IMPORTANT: tokens are plaintext in memory and either plaintext or
// base64 AES-GCM ciphertext in storage, depending on Encrypted.
// The encryption/decryption happens in auth.TokenStore.
type SessionData struct {
	IssuedAt     time.Time
	User         *models.UserSnapshot
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	Encrypted    bool
}
