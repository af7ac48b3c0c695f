package storage

import (
	"context"

	"github.com/iudanet/banktech/internal/models"
)

// PixKeyStorage хранит ключи PIX
type PixKeyStorage interface {
	// CreatePixKey returns ErrPixKeyAlreadyExists if value is taken
	CreatePixKey(ctx context.Context, key *models.PixKey) error

	ListPixKeys(ctx context.Context, accountID string) ([]*models.PixKey, error)

	// GetPixKeyByValue returns ErrPixKeyNotFound for unknown value
	GetPixKeyByValue(ctx context.Context, value string) (*models.PixKey, error)

	// DeletePixKey returns ErrPixKeyNotFound if key doesn't belong to account
	DeletePixKey(ctx context.Context, accountID, keyID string) error
}

// BoletoStorage хранит историю оплаченных boleto
type BoletoStorage interface {
	SaveBoleto(ctx context.Context, boleto *models.Boleto) error
	ListBoletos(ctx context.Context, accountID string) ([]*models.Boleto, error)
}
