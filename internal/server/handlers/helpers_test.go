package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage/sqlite"
	"github.com/iudanet/banktech/pkg/api"
)

const testPassword = "BankTech@123"

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// testEnv handlers поверх настоящего sqlite в памяти
type testEnv struct {
	store    *sqlite.Storage
	jwt      JWTConfig
	notifier *Notifier

	auth          *AuthHandler
	accounts      *AccountHandler
	transactions  *TransactionHandler
	pix           *PixHandler
	boleto        *BoletoHandler
	cards         *CardHandler
	notifications *NotificationHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := setupTestLogger()
	jwtCfg := JWTConfig{
		Secret:          []byte("test-secret"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
	notifier := NewNotifier(store, logger)

	return &testEnv{
		store:         store,
		jwt:           jwtCfg,
		notifier:      notifier,
		auth:          NewAuthHandler(logger, store, store, store, store, notifier, jwtCfg),
		accounts:      NewAccountHandler(logger, store, store, store),
		transactions:  NewTransactionHandler(logger, store, store, notifier),
		pix:           NewPixHandler(logger, store, store, store, notifier),
		boleto:        NewBoletoHandler(logger, store, store, notifier),
		cards:         NewCardHandler(logger, store, store, store, notifier),
		notifications: NewNotificationHandler(logger, store),
	}
}

// customer создает пользователя с паролем testPassword и счетом
func (e *testEnv) customer(t *testing.T, name, email, number, balance string) (*models.User, *models.Account) {
	t.Helper()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         RoleCustomer,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.store.CreateUser(ctx, user))

	account := &models.Account{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		AgencyNumber:  DefaultAgency,
		AccountNumber: number,
		Balance:       decimal.RequireFromString(balance),
		Status:        "ACTIVE",
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, e.store.CreateAccount(ctx, account))

	return user, account
}

// balance читает текущий баланс счета пользователя
func (e *testEnv) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	account, err := e.store.GetAccountByUserID(context.Background(), userID)
	require.NoError(t, err)
	return account.Balance
}

// newRequest собирает запрос с JSON телом. Пустой user означает анонимный запрос.
func newRequest(t *testing.T, method, target string, body any, user *models.User) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req = req.WithContext(WithUser(req.Context(), user.ID, user.Email))
	}
	return req
}

// serve вызывает handler и возвращает ответ
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// withVars подставляет переменные пути, как это делает mux.Router
func withVars(req *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(req, vars)
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[api.ErrorResponse](t, w).Error
}
