package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
	"github.com/iudanet/banktech/pkg/api"
)

// dashboardTransactions сколько последних транзакций показывает главная страница
const dashboardTransactions = 5

// AccountHandler обрабатывает запросы счета и главной страницы
type AccountHandler struct {
	responder
	accountStorage storage.AccountStorage
	pixStorage     storage.PixKeyStorage
	cardStorage    storage.CardStorage
}

// NewAccountHandler создает новый handler счета
func NewAccountHandler(
	logger *slog.Logger,
	accountStorage storage.AccountStorage,
	pixStorage storage.PixKeyStorage,
	cardStorage storage.CardStorage,
) *AccountHandler {
	return &AccountHandler{
		responder:      responder{logger: logger},
		accountStorage: accountStorage,
		pixStorage:     pixStorage,
		cardStorage:    cardStorage,
	}
}

// Me обрабатывает GET /accounts/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	h.sendJSON(w, accountView(account), http.StatusOK)
}

// Balance обрабатывает GET /accounts/balance
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	h.sendJSON(w, api.BalanceResponse{Balance: account.Balance}, http.StatusOK)
}

// Dashboard обрабатывает GET /dashboard
func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	entries, err := h.accountStorage.ListEntries(ctx, account.ID, dashboardTransactions)
	if err != nil {
		h.sendInternal(w, r, "failed to list transactions", err)
		return
	}

	cards, err := h.cardStorage.ListCards(ctx, account.ID)
	if err != nil {
		h.sendInternal(w, r, "failed to list cards", err)
		return
	}

	keys, err := h.pixStorage.ListPixKeys(ctx, account.ID)
	if err != nil {
		h.sendInternal(w, r, "failed to list pix keys", err)
		return
	}

	h.sendJSON(w, api.DashboardResponse{
		Account:            *accountView(account),
		RecentTransactions: transactionsView(entries),
		Cards:              cardsView(cards),
		PixKeys:            pixKeysView(keys),
	}, http.StatusOK)
}

// ownAccount загружает счет пользователя текущего запроса
func ownAccount(h responder, accounts storage.AccountStorage, w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return nil, false
	}

	account, err := accounts.GetAccountByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "account not found")
			return nil, false
		}
		h.sendInternal(w, r, "failed to get account", err)
		return nil, false
	}

	return account, true
}
