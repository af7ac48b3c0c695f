package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/pkg/api"
)

// Session представляет сессию пользователя на клиенте.
// Наличие AccessToken означает, что пользователь аутентифицирован;
// сессия без User это состояние загрузки, а не выход из системы.
type Session struct {
	IssuedAt     time.Time     `json:"issued_at"`     // момент выдачи access token (по часам клиента)
	User         *UserSnapshot `json:"user"`          // последний известный снимок пользователя
	AccessToken  string        `json:"access_token"`  // bearer token
	RefreshToken string        `json:"refresh_token"` // token для обновления access token
	ExpiresIn    int64         `json:"expires_in"`    // время жизни access token в секундах
}

// IsComplete сообщает, что в сессии есть оба токена.
// Сессия только с одним токеном считается отсутствующей.
func (s *Session) IsComplete() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// ExpiresAt возвращает момент истечения access token
func (s *Session) ExpiresAt() time.Time {
	return s.IssuedAt.Add(time.Duration(s.ExpiresIn) * time.Second)
}

// Clone создает глубокую копию сессии
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.User = s.User.Clone()
	return &c
}

// UserSnapshot кэш пользователя и счета для отображения.
// Balance в нем не является авторитетным значением.
type UserSnapshot struct {
	Account *AccountSnapshot `json:"account,omitempty"`
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Role    string           `json:"role,omitempty"`
}

// AccountSnapshot кэш счета пользователя
type AccountSnapshot struct {
	CreatedAt     time.Time       `json:"created_at"`
	Balance       decimal.Decimal `json:"balance"`
	ID            string          `json:"id"`
	AgencyNumber  string          `json:"agency_number"`
	AccountNumber string          `json:"account_number"`
	Status        string          `json:"status"`
}

// Clone создает глубокую копию снимка
func (u *UserSnapshot) Clone() *UserSnapshot {
	if u == nil {
		return nil
	}
	c := *u
	if u.Account != nil {
		acc := *u.Account
		c.Account = &acc
	}
	return &c
}

// WithBalance возвращает копию снимка с новым балансом счета.
// Если счета в снимке нет, возвращает nil.
func (u *UserSnapshot) WithBalance(balance decimal.Decimal) *UserSnapshot {
	if u == nil || u.Account == nil {
		return nil
	}
	c := u.Clone()
	c.Account.Balance = balance
	return c
}

// SnapshotFromAPI строит снимок из ответа сервера
func SnapshotFromAPI(u *api.User) *UserSnapshot {
	if u == nil {
		return nil
	}
	snap := &UserSnapshot{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.Account != nil {
		snap.Account = AccountSnapshotFromAPI(u.Account)
	}
	return snap
}

// AccountSnapshotFromAPI строит снимок счета из ответа сервера
func AccountSnapshotFromAPI(a *api.Account) *AccountSnapshot {
	return &AccountSnapshot{
		ID:            a.ID,
		AgencyNumber:  a.AgencyNumber,
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
	}
}
