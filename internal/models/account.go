package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account представляет счет на стороне dev сервера
type Account struct {
	CreatedAt     time.Time       `json:"created_at"`
	Balance       decimal.Decimal `json:"balance"`
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	AgencyNumber  string          `json:"agency_number"`
	AccountNumber string          `json:"account_number"`
	Status        string          `json:"status"`
}

// Направления записей журнала
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// LedgerEntry запись о движении денег по счету.
// Amount всегда неотрицательный, направление задает Direction.
type LedgerEntry struct {
	CreatedAt    time.Time       `json:"created_at"`
	Amount       decimal.Decimal `json:"amount"`
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Type         string          `json:"type"`
	Direction    string          `json:"direction"`
	Status       string          `json:"status"`
	Description  string          `json:"description"`
	Counterparty string          `json:"counterparty"`     // имя второй стороны
	CounterRef   string          `json:"counterparty_ref"` // номер счета или ключ PIX второй стороны
}

// Signed возвращает сумму записи со знаком относительно баланса
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// PixKey ключ PIX на стороне dev сервера
type PixKey struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	KeyType   string    `json:"key_type"`
	KeyValue  string    `json:"key_value"`
}

// Boleto оплаченный boleto
type Boleto struct {
	DueDate   time.Time       `json:"due_date"`
	PaidAt    time.Time       `json:"paid_at"`
	Amount    decimal.Decimal `json:"amount"`
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Barcode   string          `json:"barcode"`
	Recipient string          `json:"recipient"`
	EntryID   string          `json:"entry_id"`
}

// Card карта, привязанная к счету. Номер хранится только последними цифрами.
type Card struct {
	CreatedAt      time.Time        `json:"created_at"`
	Limit          *decimal.Decimal `json:"limit"`
	ID             string           `json:"id"`
	AccountID      string           `json:"account_id"`
	LastFour       string           `json:"last_four"`
	CardholderName string           `json:"cardholder_name"`
	ExpirationDate string           `json:"expiration_date"` // MM/YY
	Brand          string           `json:"brand"`
	Type           string           `json:"type"`
	Status         string           `json:"status"`
	IsVirtual      bool             `json:"is_virtual"`
}

// Notification уведомление пользователя
type Notification struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActionURL string    `json:"action_url"`
	IsRead    bool      `json:"is_read"`
}
