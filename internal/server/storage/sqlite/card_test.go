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

func TestCardStorage(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := createTestAccount(t, ctx, s, "12345", "0")
	limit := decimal.NewFromInt(5000)

	debit := &models.Card{
		ID:             uuid.NewString(),
		AccountID:      account.ID,
		LastFour:       "1234",
		CardholderName: "DEMO USER",
		ExpirationDate: "12/30",
		Brand:          "VISA",
		Type:           "DEBIT",
		Status:         "ACTIVE",
		CreatedAt:      time.Now().UTC(),
	}
	credit := &models.Card{
		ID:             uuid.NewString(),
		AccountID:      account.ID,
		LastFour:       "9876",
		CardholderName: "DEMO USER",
		ExpirationDate: "06/31",
		Brand:          "MASTERCARD",
		Type:           "CREDIT",
		Status:         "ACTIVE",
		Limit:          &limit,
		IsVirtual:      true,
		CreatedAt:      time.Now().UTC().Add(time.Second),
	}
	require.NoError(t, s.CreateCard(ctx, debit))
	require.NoError(t, s.CreateCard(ctx, credit))

	cards, err := s.ListCards(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Nil(t, cards[0].Limit)
	require.NotNil(t, cards[1].Limit)
	assert.True(t, limit.Equal(*cards[1].Limit))
	assert.True(t, cards[1].IsVirtual)

	require.NoError(t, s.UpdateCardStatus(ctx, account.ID, debit.ID, "BLOCKED"))
	got, err := s.GetCard(ctx, account.ID, debit.ID)
	require.NoError(t, err)
	assert.Equal(t, "BLOCKED", got.Status)

	other := createTestAccount(t, ctx, s, "54321", "0")
	_, err = s.GetCard(ctx, other.ID, debit.ID)
	assert.ErrorIs(t, err, storage.ErrCardNotFound)
	assert.ErrorIs(t, s.UpdateCardStatus(ctx, other.ID, debit.ID, "CANCELLED"), storage.ErrCardNotFound)
}

func TestNotificationStorage(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	base := time.Now().UTC().Add(-time.Hour)

	var ids []string
	for i, title := range []string{"Depósito recebido", "PIX enviado", "2FA ativado"} {
		n := &models.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      "transaction",
			Title:     title,
			Message:   title,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.CreateNotification(ctx, n))
		ids = append(ids, n.ID)
	}

	all, err := s.ListNotifications(ctx, userID, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)

	require.NoError(t, s.MarkRead(ctx, userID, ids[0]))
	unread, err := s.ListNotifications(ctx, userID, true)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	count, err := s.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	marked, err := s.MarkAllRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	count, err = s.CountUnread(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, s.DeleteNotification(ctx, userID, ids[1]))
	assert.ErrorIs(t, s.DeleteNotification(ctx, userID, ids[1]), storage.ErrNotificationNotFound)
	assert.ErrorIs(t, s.MarkRead(ctx, uuid.NewString(), ids[0]), storage.ErrNotificationNotFound)
}
