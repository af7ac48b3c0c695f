package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iudanet/banktech/internal/server/handlers"
	"github.com/iudanet/banktech/internal/server/middleware"
)

// APIPrefix общий префикс всех маршрутов
const APIPrefix = "/api"

// routes набор handlers, из которых собирается роутер
type routes struct {
	health        *handlers.HealthHandler
	auth          *handlers.AuthHandler
	accounts      *handlers.AccountHandler
	transactions  *handlers.TransactionHandler
	pix           *handlers.PixHandler
	boleto        *handlers.BoletoHandler
	cards         *handlers.CardHandler
	notifications *handlers.NotificationHandler
}

// newRouter собирает роутер API.
// Порядок middleware: request id, логирование, recovery, затем auth для закрытых маршрутов.
func newRouter(logger *slog.Logger, h routes, jwtCfg handlers.JWTConfig, limiter *middleware.RateLimiter) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = handlers.NotFound(logger)
	router.MethodNotAllowedHandler = handlers.MethodNotAllowed(logger)
	router.Use(
		middleware.LoggingWithSkip(logger, []string{APIPrefix + "/health"}),
		middleware.RecoveryMiddleware(logger),
	)

	api := router.PathPrefix(APIPrefix).Subrouter()

	// Публичные маршруты
	api.HandleFunc("/health", h.health.Health).Methods(http.MethodGet)

	limited := func(fn http.HandlerFunc) http.Handler {
		return limiter.Middleware(fn)
	}
	api.Handle("/auth/register", limited(h.auth.Register)).Methods(http.MethodPost)
	api.Handle("/auth/login", limited(h.auth.Login)).Methods(http.MethodPost)
	api.Handle("/auth/login/2fa", limited(h.auth.Login2FA)).Methods(http.MethodPost)
	api.Handle("/auth/refresh", limited(h.auth.Refresh)).Methods(http.MethodPost)
	api.Handle("/auth/password-reset/request", limited(h.auth.RequestPasswordReset)).Methods(http.MethodPost)
	api.Handle("/auth/password-reset/confirm", limited(h.auth.ConfirmPasswordReset)).Methods(http.MethodPost)

	// Маршруты с access token
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(logger, jwtCfg))

	protected.HandleFunc("/auth/logout", h.auth.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/2fa/enable", h.auth.Enable2FA).Methods(http.MethodPost)
	protected.HandleFunc("/auth/2fa/verify", h.auth.Verify2FA).Methods(http.MethodPost)
	protected.HandleFunc("/auth/2fa/disable", h.auth.Disable2FA).Methods(http.MethodPost)

	protected.HandleFunc("/accounts/me", h.accounts.Me).Methods(http.MethodGet)
	protected.HandleFunc("/accounts/balance", h.accounts.Balance).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard", h.accounts.Dashboard).Methods(http.MethodGet)

	// statement раньше {id}, иначе его перехватит Get
	protected.HandleFunc("/transactions", h.transactions.List).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/deposit", h.transactions.Deposit).Methods(http.MethodPost)
	protected.HandleFunc("/transactions/transfer", h.transactions.Transfer).Methods(http.MethodPost)
	protected.HandleFunc("/transactions/statement", h.transactions.Statement).Methods(http.MethodGet)
	protected.HandleFunc("/transactions/{id}", h.transactions.Get).Methods(http.MethodGet)

	protected.HandleFunc("/pix/keys", h.pix.ListKeys).Methods(http.MethodGet)
	protected.HandleFunc("/pix/keys", h.pix.CreateKey).Methods(http.MethodPost)
	protected.HandleFunc("/pix/keys/{id}", h.pix.DeleteKey).Methods(http.MethodDelete)
	protected.HandleFunc("/pix/consult", h.pix.Consult).Methods(http.MethodGet)
	protected.HandleFunc("/pix/payment", h.pix.Payment).Methods(http.MethodPost)

	protected.HandleFunc("/boleto/consult", h.boleto.Consult).Methods(http.MethodGet)
	protected.HandleFunc("/boleto/payment", h.boleto.Payment).Methods(http.MethodPost)
	protected.HandleFunc("/boleto/history", h.boleto.History).Methods(http.MethodGet)

	protected.HandleFunc("/cards", h.cards.List).Methods(http.MethodGet)
	protected.HandleFunc("/cards", h.cards.Create).Methods(http.MethodPost)
	protected.HandleFunc("/cards/{id}", h.cards.Get).Methods(http.MethodGet)
	protected.HandleFunc("/cards/{id}/block", h.cards.Block).Methods(http.MethodPut)
	protected.HandleFunc("/cards/{id}/unblock", h.cards.Unblock).Methods(http.MethodPut)
	protected.HandleFunc("/cards/{id}/cancel", h.cards.Cancel).Methods(http.MethodDelete)

	protected.HandleFunc("/notifications", h.notifications.List).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/unread-count", h.notifications.UnreadCount).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/read-all", h.notifications.MarkAllRead).Methods(http.MethodPut)
	protected.HandleFunc("/notifications/{id}/read", h.notifications.MarkRead).Methods(http.MethodPut)
	protected.HandleFunc("/notifications/{id}", h.notifications.Delete).Methods(http.MethodDelete)

	return middleware.RequestIDMiddleware(router)
}
