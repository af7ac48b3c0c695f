package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"github.com/iudanet/banktech/internal/client/storage"
	"github.com/iudanet/banktech/internal/crypto"
	"github.com/iudanet/banktech/internal/models"
)

// TokenStore слой между бизнес-логикой и хранилищем сессии.
// Если задан cipher, токены шифруются перед сохранением и расшифровываются при чтении.
// Любые ошибки чтения (битые данные, неверный ключ) означают "сессии нет".
type TokenStore struct {
	sessions storage.SessionStorage
	cipher   *crypto.TokenCipher
	logger   *slog.Logger
}

// Compile-time check: TokenStore отдает bearer token в API клиент
var _ oauth2.TokenSource = (*TokenStore)(nil)

// StoreOption настраивает TokenStore
type StoreOption func(*TokenStore)

// WithCipher включает шифрование токенов в хранилище
func WithCipher(c *crypto.TokenCipher) StoreOption {
	return func(s *TokenStore) {
		s.cipher = c
	}
}

// WithStoreLogger задает логгер
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *TokenStore) {
		s.logger = logger
	}
}

// NewTokenStore создает TokenStore поверх хранилища сессии
func NewTokenStore(sessions storage.SessionStorage, opts ...StoreOption) *TokenStore {
	s := &TokenStore{
		sessions: sessions,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save атомарно сохраняет токены и снимок пользователя
func (s *TokenStore) Save(ctx context.Context, session *models.Session) error {
	if !session.IsComplete() {
		return ErrIncompleteSession
	}

	data := &storage.SessionData{
		IssuedAt:     session.IssuedAt,
		User:         session.User.Clone(),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
	}

	if s.cipher != nil {
		var err error
		if data.AccessToken, err = s.cipher.Seal(session.AccessToken); err != nil {
			return fmt.Errorf("failed to encrypt access token: %w", err)
		}
		if data.RefreshToken, err = s.cipher.Seal(session.RefreshToken); err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		data.Encrypted = true
	}

	if err := s.sessions.SaveSession(ctx, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load возвращает сохраненную сессию. Второе значение false, если сессии нет
// или ее не удалось прочитать.
func (s *TokenStore) Load(ctx context.Context) (*models.Session, bool) {
	data, err := s.sessions.GetSession(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrSessionNotFound) {
			s.logger.WarnContext(ctx, "stored session is unreadable, treating as logged out", slog.Any("error", err))
		}
		return nil, false
	}

	session := &models.Session{
		IssuedAt:     data.IssuedAt,
		User:         data.User,
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		ExpiresIn:    data.ExpiresIn,
	}

	if data.Encrypted {
		if err := s.decrypt(session); err != nil {
			s.logger.WarnContext(ctx, "stored tokens cannot be decrypted, treating as logged out", slog.Any("error", err))
			return nil, false
		}
	}

	if !session.IsComplete() {
		return nil, false
	}
	return session, true
}

func (s *TokenStore) decrypt(session *models.Session) error {
	if s.cipher == nil {
		return errors.New("tokens are encrypted but no store passphrase is configured")
	}

	var err error
	if session.AccessToken, err = s.cipher.Open(session.AccessToken); err != nil {
		return fmt.Errorf("access token: %w", err)
	}
	if session.RefreshToken, err = s.cipher.Open(session.RefreshToken); err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	return nil
}

// Clear удаляет сессию. Ошибки только логируются.
func (s *TokenStore) Clear(ctx context.Context) {
	if err := s.sessions.DeleteSession(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear stored session", slog.Any("error", err))
	}
}

// UpdateBalance заменяет баланс в снимке счета. Без сессии или без счета ничего не делает.
func (s *TokenStore) UpdateBalance(ctx context.Context, balance decimal.Decimal) error {
	session, ok := s.Load(ctx)
	if !ok {
		return nil
	}

	updated := session.User.WithBalance(balance)
	if updated == nil {
		return nil
	}

	if err := s.sessions.SaveUser(ctx, updated); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			// Сессию удалили между чтением и записью
			return nil
		}
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

// SaveUser заменяет снимок пользователя в текущей сессии
func (s *TokenStore) SaveUser(ctx context.Context, user *models.UserSnapshot) error {
	if user == nil {
		return nil
	}
	if err := s.sessions.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Token реализует oauth2.TokenSource: отдает access token текущей сессии
func (s *TokenStore) Token() (*oauth2.Token, error) {
	session, ok := s.Load(context.Background())
	if !ok {
		return nil, ErrNotLoggedIn
	}

	return &oauth2.Token{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       session.ExpiresAt(),
	}, nil
}
