package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// User представляет пользователя в ответах API
type User struct {
	Account   *Account  `json:"account,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CPF       string    `json:"cpf,omitempty"`
	Phone     string    `json:"phone,omitempty"`
}

// Account представляет банковский счет
type Account struct {
	CreatedAt     time.Time       `json:"createdAt,omitzero"`
	Balance       decimal.Decimal `json:"balance"`
	ID            string          `json:"id"`
	AgencyNumber  string          `json:"agencyNumber"`
	AccountNumber string          `json:"accountNumber"`
	Type          string          `json:"type,omitempty"`   // CHECKING или SAVINGS
	Status        string          `json:"status,omitempty"` // ACTIVE, BLOCKED, INACTIVE
}

// BalanceResponse представляет ответ GET /accounts/balance
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// DashboardResponse представляет агрегированные данные главной страницы
type DashboardResponse struct {
	Account            Account       `json:"account"`
	RecentTransactions []Transaction `json:"recentTransactions"`
	Cards              []Card        `json:"cards"`
	PixKeys            []PixKey      `json:"pixKeys"`
}
