package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card представляет банковскую карту
type Card struct {
	CreatedAt      time.Time        `json:"createdAt"`
	Limit          *decimal.Decimal `json:"limit,omitempty"` // только для кредитных карт
	ID             string           `json:"id"`
	AccountID      string           `json:"accountId,omitempty"`
	CardNumber     string           `json:"cardNumber"` // последние 4 цифры
	CardholderName string           `json:"cardholderName"`
	ExpirationDate string           `json:"expirationDate"` // MM/YY
	CVV            string           `json:"cvv,omitempty"`  // только при создании
	Brand          string           `json:"brand"`          // VISA, MASTERCARD, ELO
	Type           CardType         `json:"type"`
	Status         CardStatus       `json:"status"`
	IsVirtual      bool             `json:"isVirtual"`
}

// CreateCardRequest представляет запрос на выпуск карты
type CreateCardRequest struct {
	Limit     *decimal.Decimal `json:"limit,omitempty"`
	Type      CardType         `json:"type"`
	IsVirtual bool             `json:"isVirtual"`
}
