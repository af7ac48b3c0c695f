package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
)

func TestPixKeyStorage(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := createTestAccount(t, ctx, s, "12345", "0")
	other := createTestAccount(t, ctx, s, "54321", "0")

	key := &models.PixKey{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		KeyType:   "EMAIL",
		KeyValue:  "demo@banktech.com",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreatePixKey(ctx, key))

	dup := *key
	dup.ID = uuid.NewString()
	dup.AccountID = other.ID
	assert.ErrorIs(t, s.CreatePixKey(ctx, &dup), storage.ErrPixKeyAlreadyExists)

	keys, err := s.ListPixKeys(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "demo@banktech.com", keys[0].KeyValue)

	resolved, err := s.GetPixKeyByValue(ctx, "demo@banktech.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, resolved.AccountID)

	// чужой ключ удалить нельзя
	assert.ErrorIs(t, s.DeletePixKey(ctx, other.ID, key.ID), storage.ErrPixKeyNotFound)
	require.NoError(t, s.DeletePixKey(ctx, account.ID, key.ID))

	_, err = s.GetPixKeyByValue(ctx, "demo@banktech.com")
	assert.ErrorIs(t, err, storage.ErrPixKeyNotFound)
}

func TestBoletoStorage(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := createTestAccount(t, ctx, s, "12345", "500")
	now := time.Now().UTC()

	entry := newEntry(account.ID, models.DirectionDebit, "150", now)
	entry.Type = "PAYMENT"
	require.NoError(t, s.ApplyEntries(ctx, entry))

	boleto := &models.Boleto{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		EntryID:   entry.ID,
		Barcode:   "34191790010104351004791020150008291070026000",
		Recipient: "Companhia de Energia",
		Amount:    decimal.NewFromInt(150),
		DueDate:   now.Add(72 * time.Hour),
		PaidAt:    now,
	}
	require.NoError(t, s.SaveBoleto(ctx, boleto))

	history, err := s.ListBoletos(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, boleto.Barcode, history[0].Barcode)
	assert.Equal(t, entry.ID, history[0].EntryID)
	assert.True(t, boleto.Amount.Equal(history[0].Amount))
}
