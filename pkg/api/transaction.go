package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party сторона транзакции (получатель или отправитель)
type Party struct {
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber,omitempty"`
	PixKey        string `json:"pixKey,omitempty"`
}

// Transaction представляет транзакцию по счету.
// Amount хранится как модуль суммы, направление задается Direction.
type Transaction struct {
	CreatedAt   time.Time         `json:"createdAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	Recipient   *Party            `json:"recipient,omitempty"`
	Sender      *Party            `json:"sender,omitempty"`
	Amount      decimal.Decimal   `json:"amount"`
	ID          string            `json:"id"`
	AccountID   string            `json:"accountId,omitempty"`
	Type        TransactionType   `json:"type"`
	Description string            `json:"description,omitempty"`
	Status      TransactionStatus `json:"status"`
}

// Direction возвращает направление движения денег для владельца счета.
// Входящие переводы и PIX приходят с отправителем и без получателя.
func (t *Transaction) Direction() Direction {
	if (t.Type == TransactionTransfer || t.Type == TransactionPix) && t.Sender != nil && t.Recipient == nil {
		return DirectionCredit
	}
	return t.Type.DefaultDirection()
}

// Magnitude возвращает модуль суммы
func (t *Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

// SignedAmount возвращает сумму со знаком относительно баланса
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Direction() == DirectionDebit {
		return t.Magnitude().Neg()
	}
	return t.Magnitude()
}

// DepositRequest представляет запрос на пополнение счета
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Agency      string          `json:"agency"`
	Account     string          `json:"account"`
	Description string          `json:"description,omitempty"`
}

// DepositResponse представляет ответ на пополнение.
// Сервер возвращает либо новый баланс, либо созданную транзакцию.
type DepositResponse struct {
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	CreatedAt   *time.Time       `json:"createdAt,omitempty"`
	Type        string           `json:"type,omitempty"`
	Description string           `json:"description,omitempty"`
}

// TransferRequest представляет запрос на перевод между счетами
type TransferRequest struct {
	Amount            decimal.Decimal `json:"amount"`
	FromAccountNumber string          `json:"fromAccountNumber"`
	ToAccountNumber   string          `json:"toAccountNumber"`
	Description       string          `json:"description,omitempty"`
}

// TransferResponse представляет ответ на перевод
type TransferResponse struct {
	CreatedAt     time.Time         `json:"createdAt"`
	Balance       *decimal.Decimal  `json:"balance,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	TransactionID string            `json:"transactionId"`
	Status        TransactionStatus `json:"status"`
}

// StatementSummary итоги выписки
type StatementSummary struct {
	TotalDeposits     decimal.Decimal `json:"totalDeposits"`
	TotalWithdrawals  decimal.Decimal `json:"totalWithdrawals"`
	TotalTransactions int             `json:"totalTransactions"`
}

// StatementPeriod период выписки
type StatementPeriod struct {
	StartDate string `json:"startDate"` // YYYY-MM-DD
	EndDate   string `json:"endDate"`   // YYYY-MM-DD
}

// Statement представляет выписку по счету за период
type Statement struct {
	Period         StatementPeriod  `json:"period"`
	Transactions   []Transaction    `json:"transactions"`
	Summary        StatementSummary `json:"summary"`
	OpeningBalance decimal.Decimal  `json:"openingBalance"`
	ClosingBalance decimal.Decimal  `json:"closingBalance"`
	AccountID      string           `json:"accountId"`
}
