package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/banktech/pkg/api"
)

const (
	// Itaú, фактор 1010 (04.03.2025), R$ 150,50
	testBarcode = "34191" + "1010" + "0000015050" + "1234567890123456789012345"
	// Bradesco, фактор 1000 (22.02.2025), R$ 100,00
	testDigitableLine = "237" + "99999999999999999999999999999" + "5" + "1000" + "0000010000"
)

func TestDecodeBoleto(t *testing.T) {
	today := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		barcode       string
		wantRecipient string
		wantAmount    string
		wantDue       time.Time
		wantStatus    api.BoletoStatus
		wantErr       bool
	}{
		{
			name:          "barcode",
			barcode:       testBarcode,
			wantRecipient: "Itaú Unibanco",
			wantAmount:    "150.5",
			wantDue:       time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC),
			wantStatus:    api.BoletoPending,
		},
		{
			name:          "digitable line with separators",
			barcode:       testDigitableLine[:5] + "." + testDigitableLine[5:10] + " " + testDigitableLine[10:],
			wantRecipient: "Bradesco",
			wantAmount:    "100",
			wantDue:       time.Date(2025, time.February, 22, 0, 0, 0, 0, time.UTC),
			wantStatus:    api.BoletoOverdue,
		},
		{
			name:          "no due factor",
			barcode:       "99991" + "0000" + "0000000001" + strings.Repeat("0", 25),
			wantRecipient: "Banco 999",
			wantAmount:    "0.01",
			wantDue:       today,
			wantStatus:    api.BoletoPending,
		},
		{name: "too short", barcode: "12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBoleto(tt.barcode, today)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantRecipient, got.Recipient)
			assert.Equal(t, tt.wantAmount, got.Amount.String())
			assert.True(t, tt.wantDue.Equal(got.DueDate), "due %s", got.DueDate)
			assert.Equal(t, tt.wantStatus, got.status(today))
			assert.NotContains(t, got.Digits, " ")
		})
	}

	a, err := decodeBoleto(testBarcode, today)
	require.NoError(t, err)
	b, err := decodeBoleto(testBarcode, today)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID, "ID is stable for the same barcode")
}

func TestBoletoHandler_ConsultPayHistory(t *testing.T) {
	env := newTestEnv(t)
	env.boleto.now = func() time.Time { return time.Date(2025, time.March, 1, 15, 0, 0, 0, time.UTC) }
	demo, _ := env.customer(t, "Demo User", "demo@banktech.com", "12345", "1000")

	query := url.Values{"barcode": {testBarcode}}.Encode()
	w := serve(env.boleto.Consult, newRequest(t, http.MethodGet, "/api/boleto/consult?"+query, nil, demo))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	consulted := decodeBody[api.Boleto](t, w)
	assert.Equal(t, "Itaú Unibanco", consulted.Recipient)
	assert.Equal(t, "150.5", consulted.Amount.String())
	assert.Equal(t, api.BoletoPending, consulted.Status)

	w = serve(env.boleto.Consult, newRequest(t, http.MethodGet, "/api/boleto/consult?barcode=123", nil, demo))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Сумма из штрихкода
	w = serve(env.boleto.Payment, newRequest(t, http.MethodPost, "/api/boleto/payment",
		api.BoletoPaymentRequest{Barcode: testBarcode}, demo))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	paid := decodeBody[api.BoletoPaymentResponse](t, w)
	assert.Equal(t, "150.5", paid.Amount.String())
	require.NotNil(t, paid.Balance)
	assert.Equal(t, "849.5", paid.Balance.String())

	// Сумма из запроса имеет приоритет
	w = serve(env.boleto.Payment, newRequest(t, http.MethodPost, "/api/boleto/payment",
		api.BoletoPaymentRequest{Barcode: testDigitableLine, Amount: decimal.RequireFromString("49.5")}, demo))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "800", env.balance(t, demo.ID).String())

	w = serve(env.boleto.Payment, newRequest(t, http.MethodPost, "/api/boleto/payment",
		api.BoletoPaymentRequest{Barcode: testBarcode, Amount: decimal.NewFromInt(5000)}, demo))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = serve(env.boleto.History, newRequest(t, http.MethodGet, "/api/boleto/history", nil, demo))
	require.Equal(t, http.StatusOK, w.Code)
	history := decodeBody[[]api.Boleto](t, w)
	require.Len(t, history, 2)
	for _, b := range history {
		assert.Equal(t, api.BoletoPaid, b.Status)
		assert.NotNil(t, b.PaidAt)
	}

	w = serve(env.transactions.List, newRequest(t, http.MethodGet, "/api/transactions", nil, demo))
	list := decodeBody[[]api.Transaction](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, api.TransactionPayment, list[0].Type)
	assert.Equal(t, api.DirectionDebit, list[0].Direction())
}
