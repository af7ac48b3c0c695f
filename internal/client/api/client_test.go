package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/iudanet/banktech/pkg/api"
)

func staticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/api/")

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080/api", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)

	client = NewClient("http://localhost", WithTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

// TestClient_Login проверяет успешный вход без bearer token
func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "demo@banktech.com", req.Email)

		_, _ = w.Write([]byte(`{"accessToken":"a1","refreshToken":"r1","expiresIn":3600,
			"user":{"id":"u1","name":"Demo","email":"demo@banktech.com"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL + "/api")
	resp, err := client.Login(context.Background(), api.LoginRequest{Email: "demo@banktech.com", Password: "BankTech@123"})

	require.NoError(t, err)
	assert.Equal(t, "a1", resp.BearerToken())
	assert.Equal(t, "r1", resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	require.NotNil(t, resp.User)
	assert.Equal(t, "u1", resp.User.ID)
}

// TestClient_Register_UserOnly проверяет ответ регистрации без токенов
func TestClient_Register_UserOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"u2","name":"New","email":"new@banktech.com"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Register(context.Background(), api.RegisterRequest{Email: "new@banktech.com"})

	require.NoError(t, err)
	assert.False(t, resp.HasTokens())
	require.NotNil(t, resp.User)
	assert.Equal(t, "u2", resp.User.ID)
}

// TestClient_BearerInjection проверяет подстановку токена из TokenSource
func TestClient_BearerInjection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"), "bodiless authenticated call is JSON too")
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/accounts/balance", r.URL.Path)
		_, _ = w.Write([]byte(`{"balance":5432.10}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokenSource(staticToken("token-123")))
	resp, err := client.GetBalance(context.Background())

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5432.10").Equal(resp.Balance))
}

// TestClient_Unauthenticated проверяет, что без токена запрос не уходит в сеть
func TestClient_Unauthenticated(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	tests := []struct {
		name   string
		source oauth2.TokenSource
	}{
		{name: "no token source", source: nil},
		{name: "empty token", source: staticToken("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(server.URL, WithTokenSource(tt.source))

			_, err := client.GetAccount(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnauthenticated)

			_, err = client.Transfer(context.Background(), api.TransferRequest{Amount: decimal.NewFromInt(10)})
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}

	assert.Equal(t, int32(0), calls.Load())
}

// TestClient_APIError проверяет разбор ответов с ошибкой
func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantCode    string
		wantMessage string
		status      int
	}{
		{
			name:        "server message",
			status:      http.StatusBadRequest,
			body:        `{"error":"insufficient_funds","message":"Saldo insuficiente"}`,
			wantCode:    api.ErrCodeInsufficientFunds,
			wantMessage: "Saldo insuficiente",
		},
		{
			name:        "malformed body",
			status:      http.StatusInternalServerError,
			body:        `<html>oops</html>`,
			wantMessage: "transfer failed",
		},
		{
			name:        "code without message",
			status:      http.StatusConflict,
			body:        `{"error":"conflict"}`,
			wantCode:    api.ErrCodeConflict,
			wantMessage: "transfer failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, WithTokenSource(staticToken("t")))
			_, err := client.Transfer(context.Background(), api.TransferRequest{
				Amount:            decimal.NewFromInt(10),
				FromAccountNumber: "12345",
				ToAccountNumber:   "67890",
			})

			apiErr, ok := AsAPIError(err)
			require.True(t, ok, "expected *APIError, got %v", err)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, "transfer", apiErr.Op)
			assert.False(t, IsNetworkError(err))
		})
	}
}

// TestClient_NetworkError проверяет ошибку транспорта
func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url)
	_, err := client.Login(context.Background(), api.LoginRequest{Email: "a@b.com", Password: "x"})

	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI)
}

// TestClient_ContextCanceled проверяет, что отмена не считается сбоем сети
func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL, WithTokenSource(staticToken("t")))
	_, err := client.GetBalance(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, IsNetworkError(err))
}

// TestClient_Refresh проверяет тело запроса обновления токена
func TestClient_Refresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r1", body["refreshToken"])

		_, _ = w.Write([]byte(`{"accessToken":"a2","refreshToken":"r2","expiresIn":900}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Refresh(context.Background(), "r1")

	require.NoError(t, err)
	assert.Equal(t, "a2", resp.AccessToken)
	assert.Equal(t, "r2", resp.RefreshToken)
}

// TestClient_ListTransactions проверяет параметры запроса и разбор списка
func TestClient_ListTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"id":"t1","type":"DEPOSIT","amount":100,"description":"salary"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokenSource(staticToken("t")))
	txs, err := client.ListTransactions(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, api.TransactionDeposit, txs[0].Type)
	assert.Equal(t, api.DirectionCredit, txs[0].Direction())
}

// TestClient_EmptySuccessBody проверяет ответ 204 без тела
func TestClient_EmptySuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokenSource(staticToken("t")))
	assert.NoError(t, client.Logout(context.Background()))
}
