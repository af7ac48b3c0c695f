package handlers

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/banktech/pkg/api"
)

func TestAccountHandler_MeAndBalance(t *testing.T) {
	env := newTestEnv(t)
	demo, account := env.customer(t, "Demo User", "demo@banktech.com", "12345", "5432.10")

	w := serve(env.accounts.Me, newRequest(t, http.MethodGet, "/api/accounts/me", nil, demo))
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeBody[api.Account](t, w)
	assert.Equal(t, account.ID, me.ID)
	assert.Equal(t, "0001", me.AgencyNumber)
	assert.Equal(t, "12345", me.AccountNumber)
	assert.Equal(t, accountType, me.Type)
	assert.True(t, decimal.RequireFromString("5432.10").Equal(me.Balance))

	w = serve(env.accounts.Balance, newRequest(t, http.MethodGet, "/api/accounts/balance", nil, demo))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5432.1", decodeBody[api.BalanceResponse](t, w).Balance.String())

	w = serve(env.accounts.Balance, newRequest(t, http.MethodGet, "/api/accounts/balance", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccountHandler_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	demo, _ := env.customer(t, "Demo User", "demo@banktech.com", "12345", "0")

	for range dashboardTransactions + 2 {
		w := serve(env.transactions.Deposit, newRequest(t, http.MethodPost, "/api/transactions/deposit",
			api.DepositRequest{Amount: decimal.NewFromInt(10)}, demo))
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := serve(env.cards.Create, newRequest(t, http.MethodPost, "/api/cards", api.CreateCardRequest{Type: api.CardDebit}, demo))
	require.Equal(t, http.StatusCreated, w.Code)

	w = serve(env.accounts.Dashboard, newRequest(t, http.MethodGet, "/api/dashboard", nil, demo))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	dash := decodeBody[api.DashboardResponse](t, w)
	assert.Equal(t, "70", dash.Account.Balance.String())
	assert.Len(t, dash.RecentTransactions, dashboardTransactions)
	assert.Len(t, dash.Cards, 1)
	assert.NotNil(t, dash.PixKeys)
	assert.Empty(t, dash.PixKeys)
}
