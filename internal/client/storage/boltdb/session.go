package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/banktech/internal/client/storage"
	"github.com/iudanet/banktech/internal/models"
)

// Ключи внутри bucket session
var (
	tokenKey        = []byte("token")
	refreshTokenKey = []byte("refreshToken")
	userKey         = []byte("banktech_user")
	metaKey         = []byte("meta")

	sessionKeys = [][]byte{tokenKey, refreshTokenKey, userKey, metaKey}
)

// sessionMeta служебные поля сессии
type sessionMeta struct {
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresIn int64     `json:"expires_in"`
	Encrypted bool      `json:"encrypted"`
}

// Compile-time check that Storage implements SessionStorage
var _ storage.SessionStorage = (*Storage)(nil)

// SaveSession stores the whole session in a single transaction
func (s *Storage) SaveSession(ctx context.Context, session *storage.SessionData) error {
	if session == nil {
		return fmt.Errorf("session is nil")
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		return fmt.Errorf("session must contain both tokens")
	}

	meta, err := json.Marshal(sessionMeta{
		IssuedAt:  session.IssuedAt,
		ExpiresIn: session.ExpiresIn,
		Encrypted: session.Encrypted,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session meta: %w", err)
	}

	var user []byte
	if session.User != nil {
		user, err = json.Marshal(session.User)
		if err != nil {
			return fmt.Errorf("failed to marshal user snapshot: %w", err)
		}
	}

	return s.update(func(bucket *bbolt.Bucket) error {
		if err := bucket.Put(tokenKey, []byte(session.AccessToken)); err != nil {
			return fmt.Errorf("failed to save access token: %w", err)
		}
		if err := bucket.Put(refreshTokenKey, []byte(session.RefreshToken)); err != nil {
			return fmt.Errorf("failed to save refresh token: %w", err)
		}
		if err := bucket.Put(metaKey, meta); err != nil {
			return fmt.Errorf("failed to save session meta: %w", err)
		}

		// Снимок пользователя может отсутствовать (состояние загрузки)
		if user == nil {
			if err := bucket.Delete(userKey); err != nil {
				return fmt.Errorf("failed to delete user snapshot: %w", err)
			}
			return nil
		}
		if err := bucket.Put(userKey, user); err != nil {
			return fmt.Errorf("failed to save user snapshot: %w", err)
		}
		return nil
	})
}

// GetSession retrieves the stored session
func (s *Storage) GetSession(ctx context.Context) (*storage.SessionData, error) {
	var session *storage.SessionData

	err := s.view(func(bucket *bbolt.Bucket) error {
		access := bucket.Get(tokenKey)
		refresh := bucket.Get(refreshTokenKey)

		// Половина сессии считается отсутствием сессии
		if len(access) == 0 || len(refresh) == 0 {
			return storage.ErrSessionNotFound
		}

		// Данные bbolt валидны только внутри транзакции, поэтому копируем
		session = &storage.SessionData{
			AccessToken:  string(access),
			RefreshToken: string(refresh),
		}

		if raw := bucket.Get(metaKey); raw != nil {
			var meta sessionMeta
			if err := json.Unmarshal(raw, &meta); err != nil {
				return fmt.Errorf("%w: meta: %v", storage.ErrCorruptSession, err)
			}
			session.IssuedAt = meta.IssuedAt
			session.ExpiresIn = meta.ExpiresIn
			session.Encrypted = meta.Encrypted
		}

		if raw := bucket.Get(userKey); raw != nil {
			user := &models.UserSnapshot{}
			if err := json.Unmarshal(raw, user); err != nil {
				return fmt.Errorf("%w: user: %v", storage.ErrCorruptSession, err)
			}
			session.User = user
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// SaveUser replaces the user snapshot of the stored session
func (s *Storage) SaveUser(ctx context.Context, user *models.UserSnapshot) error {
	if user == nil {
		return fmt.Errorf("user snapshot is nil")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user snapshot: %w", err)
	}

	return s.update(func(bucket *bbolt.Bucket) error {
		// Без токенов снимок пользователя не сохраняем
		if bucket.Get(tokenKey) == nil || bucket.Get(refreshTokenKey) == nil {
			return storage.ErrSessionNotFound
		}
		if err := bucket.Put(userKey, data); err != nil {
			return fmt.Errorf("failed to save user snapshot: %w", err)
		}
		return nil
	})
}

// DeleteSession removes all session keys (logout)
func (s *Storage) DeleteSession(ctx context.Context) error {
	return s.update(func(bucket *bbolt.Bucket) error {
		for _, key := range sessionKeys {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *Storage) update(fn func(bucket *bbolt.Bucket) error) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}
		return fn(bucket)
	})
	return mapClosed(err)
}

func (s *Storage) view(fn func(bucket *bbolt.Bucket) error) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}
		return fn(bucket)
	})
	return mapClosed(err)
}

func mapClosed(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return storage.ErrStorageClosed
	}
	return err
}
