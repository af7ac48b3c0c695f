package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/banktech/pkg/api"
)

func TestPixHandler_Keys(t *testing.T) {
	env := newTestEnv(t)
	demo, _ := env.customer(t, "Demo User", "demo@banktech.com", "12345", "0")
	maria, _ := env.customer(t, "Maria Souza", "maria@banktech.com", "54321", "0")

	create := func(req api.CreatePixKeyRequest) (int, api.PixKey) {
		w := serve(env.pix.CreateKey, newRequest(t, http.MethodPost, "/api/pix/keys", req, demo))
		if w.Code != http.StatusCreated {
			return w.Code, api.PixKey{}
		}
		return w.Code, decodeBody[api.PixKey](t, w)
	}

	status, cpf := create(api.CreatePixKeyRequest{KeyType: api.PixKeyCPF, KeyValue: "529.982.247-25"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "52998224725", cpf.KeyValue)

	status, email := create(api.CreatePixKeyRequest{KeyType: api.PixKeyEmail, KeyValue: " Demo@BankTech.com "})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "demo@banktech.com", email.KeyValue)

	status, random := create(api.CreatePixKeyRequest{KeyType: api.PixKeyRandom})
	require.Equal(t, http.StatusCreated, status)
	_, err := uuid.Parse(random.KeyValue)
	assert.NoError(t, err)

	status, _ = create(api.CreatePixKeyRequest{KeyType: api.PixKeyCPF, KeyValue: "12345678900"})
	assert.Equal(t, http.StatusBadRequest, status, "invalid CPF")

	status, _ = create(api.CreatePixKeyRequest{KeyType: api.PixKeyEmail, KeyValue: "demo@banktech.com"})
	assert.Equal(t, http.StatusConflict, status, "duplicate key")

	w := serve(env.pix.ListKeys, newRequest(t, http.MethodGet, "/api/pix/keys", nil, demo))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]api.PixKey](t, w), 3)

	// Чужой ключ удалить нельзя
	w = serve(env.pix.DeleteKey, withVars(
		newRequest(t, http.MethodDelete, "/api/pix/keys/"+cpf.ID, nil, maria),
		map[string]string{"id": cpf.ID}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(env.pix.DeleteKey, withVars(
		newRequest(t, http.MethodDelete, "/api/pix/keys/"+cpf.ID, nil, demo),
		map[string]string{"id": cpf.ID}))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(env.pix.ListKeys, newRequest(t, http.MethodGet, "/api/pix/keys", nil, demo))
	assert.Len(t, decodeBody[[]api.PixKey](t, w), 2)
}

func TestPixHandler_KeyLimit(t *testing.T) {
	env := newTestEnv(t)
	demo, _ := env.customer(t, "Demo User", "demo@banktech.com", "12345", "0")

	for range maxPixKeys {
		w := serve(env.pix.CreateKey, newRequest(t, http.MethodPost, "/api/pix/keys",
			api.CreatePixKeyRequest{KeyType: api.PixKeyRandom}, demo))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := serve(env.pix.CreateKey, newRequest(t, http.MethodPost, "/api/pix/keys",
		api.CreatePixKeyRequest{KeyType: api.PixKeyRandom}, demo))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPixHandler_ConsultAndPay(t *testing.T) {
	env := newTestEnv(t)
	demo, _ := env.customer(t, "Demo User", "demo@banktech.com", "12345", "200")
	maria, _ := env.customer(t, "Maria Souza", "maria@banktech.com", "54321", "0")

	w := serve(env.pix.CreateKey, newRequest(t, http.MethodPost, "/api/pix/keys",
		api.CreatePixKeyRequest{KeyType: api.PixKeyCPF, KeyValue: "52998224725"}, maria))
	require.Equal(t, http.StatusCreated, w.Code)

	// CPF с маской находится по цифрам
	w = serve(env.pix.Consult, newRequest(t, http.MethodGet, "/api/pix/consult?key=529.982.247-25", nil, demo))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info := decodeBody[api.PixKeyInfo](t, w)
	assert.Equal(t, "Maria Souza", info.Name)
	assert.Equal(t, bankName, info.Bank)
	assert.Equal(t, api.PixKeyCPF, info.KeyType)

	w = serve(env.pix.Consult, newRequest(t, http.MethodGet, "/api/pix/consult?key=unknown@banktech.com", nil, demo))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(env.pix.Payment, newRequest(t, http.MethodPost, "/api/pix/payment", api.PixPaymentRequest{
		PixKey: "52998224725",
		Amount: decimal.RequireFromString("300"),
	}, demo))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, api.ErrCodeInsufficientFunds, errorCode(t, w))

	w = serve(env.pix.Payment, newRequest(t, http.MethodPost, "/api/pix/payment", api.PixPaymentRequest{
		PixKey:      "52998224725",
		Amount:      decimal.RequireFromString("75.50"),
		Description: "Almoço",
	}, demo))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeBody[api.PixPaymentResponse](t, w)
	assert.Equal(t, "Maria Souza", resp.RecipientName)
	assert.Equal(t, api.StatusCompleted, resp.Status)
	require.NotNil(t, resp.Balance)
	assert.Equal(t, "124.5", resp.Balance.String())
	assert.Equal(t, "75.5", env.balance(t, maria.ID).String())

	// Получатель видит входящий PIX
	w = serve(env.transactions.List, newRequest(t, http.MethodGet, "/api/transactions", nil, maria))
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]api.Transaction](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, api.TransactionPix, list[0].Type)
	assert.Equal(t, api.DirectionCredit, list[0].Direction())
	require.NotNil(t, list[0].Sender)
	assert.Equal(t, "Demo User", list[0].Sender.Name)

	// Свой ключ оплатить нельзя
	w = serve(env.pix.Payment, newRequest(t, http.MethodPost, "/api/pix/payment", api.PixPaymentRequest{
		PixKey: "52998224725",
		Amount: decimal.NewFromInt(1),
	}, maria))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNormalizePixKey(t *testing.T) {
	tests := []struct {
		name    string
		keyType api.PixKeyType
		value   string
		want    string
		wantErr bool
	}{
		{name: "cpf with mask", keyType: api.PixKeyCPF, value: "529.982.247-25", want: "52998224725"},
		{name: "phone with mask", keyType: api.PixKeyPhone, value: "(11) 98765-4321", want: "11987654321"},
		{name: "email lowercased", keyType: api.PixKeyEmail, value: "Maria@BankTech.com", want: "maria@banktech.com"},
		{name: "bad email", keyType: api.PixKeyEmail, value: "maria", wantErr: true},
		{name: "unknown type", keyType: "IBAN", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizePixKey(tt.keyType, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
