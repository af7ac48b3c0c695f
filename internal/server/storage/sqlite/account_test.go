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

func newEntry(accountID, direction, amount string, at time.Time) *models.LedgerEntry {
	return &models.LedgerEntry{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Type:      "TRANSFER",
		Direction: direction,
		Amount:    decimal.RequireFromString(amount),
		Status:    "COMPLETED",
		CreatedAt: at,
	}
}

func TestAccountStorage_GetAccount(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := createTestAccount(t, ctx, s, "12345", "5432.10")

	byUser, err := s.GetAccountByUserID(ctx, account.UserID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, byUser.ID)
	assert.True(t, decimal.RequireFromString("5432.10").Equal(byUser.Balance))

	byNumber, err := s.GetAccountByNumber(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byNumber.ID)
	assert.Equal(t, "0001", byNumber.AgencyNumber)

	byID, err := s.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "12345", byID.AccountNumber)

	_, err = s.GetAccountByNumber(ctx, "99999")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)

	_, err = s.GetAccountByUserID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestAccountStorage_ApplyEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	tests := []struct {
		wantErr     error
		name        string
		wantFrom    string
		wantTo      string
		amount      string
		wantEntries int
	}{
		{name: "transfer within balance", amount: "100.50", wantFrom: "899.50", wantTo: "100.50", wantEntries: 1},
		{name: "transfer of whole balance", amount: "1000", wantFrom: "0", wantTo: "1000", wantEntries: 1},
		{name: "insufficient funds rolls back both sides", amount: "1000.01", wantFrom: "1000", wantTo: "0", wantErr: storage.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, cleanup := setupTestStorage(t)
			defer cleanup()

			from := createTestAccount(t, ctx, s, "11111", "1000")
			to := createTestAccount(t, ctx, s, "22222", "0")

			// Кредит идет первым, чтобы проверить откат уже проведенной записи
			err := s.ApplyEntries(ctx,
				newEntry(to.ID, models.DirectionCredit, tt.amount, now),
				newEntry(from.ID, models.DirectionDebit, tt.amount, now),
			)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			gotFrom, err := s.GetAccountByNumber(ctx, "11111")
			require.NoError(t, err)
			gotTo, err := s.GetAccountByNumber(ctx, "22222")
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantFrom).Equal(gotFrom.Balance), "from balance %s", gotFrom.Balance)
			assert.True(t, decimal.RequireFromString(tt.wantTo).Equal(gotTo.Balance), "to balance %s", gotTo.Balance)

			entries, err := s.ListEntries(ctx, from.ID, 0)
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantEntries)
		})
	}
}

func TestAccountStorage_ApplyEntries_UnknownAccount(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.ApplyEntries(context.Background(), newEntry(uuid.NewString(), models.DirectionCredit, "1", time.Now().UTC()))
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
}

func TestAccountStorage_ListEntries(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	account := createTestAccount(t, ctx, s, "12345", "0")
	base := time.Now().UTC().Add(-time.Hour)

	var ids []string
	for i := range 5 {
		entry := newEntry(account.ID, models.DirectionCredit, "10", base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, entry.ID)
		require.NoError(t, s.ApplyEntries(ctx, entry))
	}

	latest, err := s.ListEntries(ctx, account.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, ids[4], latest[0].ID)
	assert.Equal(t, ids[3], latest[1].ID)

	since, err := s.ListEntriesSince(ctx, account.ID, base.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, ids[3], since[0].ID)
	assert.Equal(t, ids[4], since[1].ID)

	got, err := s.GetEntry(ctx, account.ID, ids[2])
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(got.Amount))
	assert.Equal(t, models.DirectionCredit, got.Direction)

	other := createTestAccount(t, ctx, s, "54321", "0")
	_, err = s.GetEntry(ctx, other.ID, ids[2])
	assert.ErrorIs(t, err, storage.ErrEntryNotFound)
}
