package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// PixKey представляет зарегистрированный ключ PIX
type PixKey struct {
	CreatedAt time.Time  `json:"createdAt"`
	ID        string     `json:"id"`
	AccountID string     `json:"accountId,omitempty"`
	KeyType   PixKeyType `json:"keyType"`
	KeyValue  string     `json:"keyValue"`
}

// CreatePixKeyRequest представляет запрос на регистрацию ключа PIX.
// Для RANDOM значение генерирует сервер.
type CreatePixKeyRequest struct {
	KeyType  PixKeyType `json:"keyType"`
	KeyValue string     `json:"keyValue,omitempty"`
}

// PixKeyInfo представляет владельца ключа PIX (GET /pix/consult)
type PixKeyInfo struct {
	Name    string     `json:"name"`
	Bank    string     `json:"bank,omitempty"`
	KeyType PixKeyType `json:"keyType"`
}

// PixPaymentRequest представляет запрос на оплату через PIX
type PixPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PixKey      string          `json:"pixKey"`
	Description string          `json:"description,omitempty"`
}

// PixPaymentResponse представляет ответ на оплату через PIX
type PixPaymentResponse struct {
	CreatedAt     time.Time         `json:"createdAt"`
	Balance       *decimal.Decimal  `json:"balance,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	TransactionID string            `json:"transactionId"`
	RecipientName string            `json:"recipientName"`
	Status        TransactionStatus `json:"status"`
}

// Boleto представляет банковский платежный документ
type Boleto struct {
	DueDate   time.Time       `json:"dueDate"`
	PaidAt    *time.Time      `json:"paidAt,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	ID        string          `json:"id"`
	Barcode   string          `json:"barcode"`
	Recipient string          `json:"recipient"`
	Status    BoletoStatus    `json:"status"`
}

// BoletoPaymentRequest представляет запрос на оплату boleto
type BoletoPaymentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Barcode string          `json:"barcode"`
}

// BoletoPaymentResponse представляет ответ на оплату boleto
type BoletoPaymentResponse struct {
	PaidAt        time.Time         `json:"paidAt"`
	Balance       *decimal.Decimal  `json:"balance,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
	TransactionID string            `json:"transactionId"`
	Recipient     string            `json:"recipient"`
	Status        TransactionStatus `json:"status"`
}
