package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/internal/format"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
	"github.com/iudanet/banktech/internal/validation"
	"github.com/iudanet/banktech/pkg/api"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// statementDateLayout формат дат периода выписки
	statementDateLayout = "2006-01-02"
)

// TransactionHandler обрабатывает депозиты, переводы и историю операций
type TransactionHandler struct {
	responder
	userStorage    storage.UserStorage
	accountStorage storage.AccountStorage
	notifier       *Notifier
}

// NewTransactionHandler создает новый handler транзакций
func NewTransactionHandler(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	accountStorage storage.AccountStorage,
	notifier *Notifier,
) *TransactionHandler {
	return &TransactionHandler{
		responder:      responder{logger: logger},
		userStorage:    userStorage,
		accountStorage: accountStorage,
		notifier:       notifier,
	}
}

// Deposit обрабатывает POST /transactions/deposit.
// Пустые agency/account означают собственный счет. В ответе всегда
// баланс счета вызывающего, даже если пополнялся чужой счет.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	own, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	var req api.DepositRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateAmount(req.Amount); err != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}

	target := own
	number := strings.TrimSpace(req.Account)
	if number != "" && number != own.AccountNumber {
		var err error
		target, err = h.accountStorage.GetAccountByNumber(ctx, number)
		if err != nil {
			h.sendAccountLookupError(w, r, err)
			return
		}
	}
	if agency := strings.TrimSpace(req.Agency); agency != "" && agency != target.AgencyNumber {
		h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "account not found")
		return
	}

	entry := &models.LedgerEntry{
		ID:          uuid.NewString(),
		AccountID:   target.ID,
		Type:        string(api.TransactionDeposit),
		Direction:   models.DirectionCredit,
		Amount:      req.Amount,
		Status:      string(api.StatusCompleted),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now().UTC(),
	}
	if target.ID != own.ID {
		entry.Counterparty = ownerName(h.responder, h.userStorage, r, own)
		entry.CounterRef = own.AccountNumber
	}

	if err := h.accountStorage.ApplyEntries(ctx, entry); err != nil {
		h.sendPostingError(w, r, err)
		return
	}

	balance, ok := reloadBalance(h.responder, h.accountStorage, w, r, own)
	if !ok {
		return
	}

	h.logger.InfoContext(ctx, "deposit completed",
		slog.String("transaction_id", entry.ID),
		slog.String("account", target.AccountNumber))
	h.notifier.Notify(ctx, target.UserID, api.NotificationTransaction,
		"Depósito recebido", fmt.Sprintf("Depósito de %s creditado na sua conta.", format.BRL(entry.Amount)))

	createdAt := entry.CreatedAt
	h.sendJSON(w, api.DepositResponse{
		Balance:     &balance,
		Amount:      &entry.Amount,
		CreatedAt:   &createdAt,
		Type:        entry.Type,
		Description: entry.Description,
	}, http.StatusCreated)
}

// Transfer обрабатывает POST /transactions/transfer
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	own, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	var req api.TransferRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateAmount(req.Amount); err != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}
	if from := strings.TrimSpace(req.FromAccountNumber); from != "" && from != own.AccountNumber {
		h.sendError(w, http.StatusForbidden, api.ErrCodeUnauthorized, "source account does not belong to the user")
		return
	}

	to := strings.TrimSpace(req.ToAccountNumber)
	if to == "" {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "toAccountNumber is required")
		return
	}
	if to == own.AccountNumber {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "cannot transfer to the same account")
		return
	}

	dest, err := h.accountStorage.GetAccountByNumber(ctx, to)
	if err != nil {
		h.sendAccountLookupError(w, r, err)
		return
	}

	now := time.Now().UTC()
	description := strings.TrimSpace(req.Description)
	debit := &models.LedgerEntry{
		ID:           uuid.NewString(),
		AccountID:    own.ID,
		Type:         string(api.TransactionTransfer),
		Direction:    models.DirectionDebit,
		Amount:       req.Amount,
		Status:       string(api.StatusCompleted),
		Description:  description,
		Counterparty: ownerName(h.responder, h.userStorage, r, dest),
		CounterRef:   dest.AccountNumber,
		CreatedAt:    now,
	}
	credit := &models.LedgerEntry{
		ID:           uuid.NewString(),
		AccountID:    dest.ID,
		Type:         string(api.TransactionTransfer),
		Direction:    models.DirectionCredit,
		Amount:       req.Amount,
		Status:       string(api.StatusCompleted),
		Description:  description,
		Counterparty: ownerName(h.responder, h.userStorage, r, own),
		CounterRef:   own.AccountNumber,
		CreatedAt:    now,
	}

	if err := h.accountStorage.ApplyEntries(ctx, debit, credit); err != nil {
		h.sendPostingError(w, r, err)
		return
	}

	balance, ok := reloadBalance(h.responder, h.accountStorage, w, r, own)
	if !ok {
		return
	}

	h.logger.InfoContext(ctx, "transfer completed",
		slog.String("transaction_id", debit.ID),
		slog.String("from", own.AccountNumber),
		slog.String("to", dest.AccountNumber))
	h.notifier.Notify(ctx, own.UserID, api.NotificationTransaction,
		"Transferência enviada", fmt.Sprintf("Você transferiu %s para %s.", format.BRL(req.Amount), debit.Counterparty))
	h.notifier.Notify(ctx, dest.UserID, api.NotificationTransaction,
		"Transferência recebida", fmt.Sprintf("Você recebeu %s de %s.", format.BRL(req.Amount), credit.Counterparty))

	h.sendJSON(w, api.TransferResponse{
		TransactionID: debit.ID,
		Status:        api.StatusCompleted,
		Amount:        req.Amount,
		CreatedAt:     now,
		Balance:       &balance,
	}, http.StatusCreated)
}

// List обрабатывает GET /transactions?limit=N
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	entries, err := h.accountStorage.ListEntries(r.Context(), account.ID, limit)
	if err != nil {
		h.sendInternal(w, r, "failed to list transactions", err)
		return
	}

	h.sendJSON(w, transactionsView(entries), http.StatusOK)
}

// Get обрабатывает GET /transactions/{id}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	entry, err := h.accountStorage.GetEntry(r.Context(), account.ID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, storage.ErrEntryNotFound) {
			h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "transaction not found")
			return
		}
		h.sendInternal(w, r, "failed to get transaction", err)
		return
	}

	h.sendJSON(w, transactionView(entry), http.StatusOK)
}

// Statement обрабатывает GET /transactions/statement?startDate=&endDate=.
// Даты включительные, в UTC.
func (h *TransactionHandler) Statement(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	start, errStart := time.Parse(statementDateLayout, query.Get("startDate"))
	end, errEnd := time.Parse(statementDateLayout, query.Get("endDate"))
	if errStart != nil || errEnd != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "startDate and endDate must be YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "endDate is before startDate")
		return
	}

	entries, err := h.accountStorage.ListEntriesSince(r.Context(), account.ID, start)
	if err != nil {
		h.sendInternal(w, r, "failed to list transactions", err)
		return
	}

	statement := buildStatement(account, entries, start, end.AddDate(0, 0, 1))
	statement.Period = api.StatementPeriod{
		StartDate: start.Format(statementDateLayout),
		EndDate:   end.Format(statementDateLayout),
	}

	h.sendJSON(w, statement, http.StatusOK)
}

// buildStatement считает выписку за [start, end) по записям начиная со start.
// Входящий остаток восстанавливается от текущего баланса назад.
func buildStatement(account *models.Account, sinceStart []*models.LedgerEntry, start, end time.Time) *api.Statement {
	statement := &api.Statement{
		AccountID:    account.ID,
		Transactions: []api.Transaction{},
	}

	movedSinceStart := decimal.Zero
	for _, e := range sinceStart {
		movedSinceStart = movedSinceStart.Add(e.Signed())
		if !e.CreatedAt.Before(end) {
			continue
		}

		statement.Transactions = append(statement.Transactions, transactionView(e))
		if e.Direction == models.DirectionCredit {
			statement.Summary.TotalDeposits = statement.Summary.TotalDeposits.Add(e.Amount)
		} else {
			statement.Summary.TotalWithdrawals = statement.Summary.TotalWithdrawals.Add(e.Amount)
		}
	}

	statement.Summary.TotalTransactions = len(statement.Transactions)
	statement.OpeningBalance = account.Balance.Sub(movedSinceStart)
	statement.ClosingBalance = statement.OpeningBalance.
		Add(statement.Summary.TotalDeposits).
		Sub(statement.Summary.TotalWithdrawals)

	return statement
}

// ownerName возвращает имя владельца счета для второй стороны операции
func ownerName(h responder, users storage.UserStorage, r *http.Request, account *models.Account) string {
	user, err := users.GetUserByID(r.Context(), account.UserID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to resolve account owner",
			slog.String("account", account.AccountNumber),
			slog.Any("error", err))
		return "Conta " + account.AccountNumber
	}
	return user.Name
}

// reloadBalance перечитывает баланс после проведения записей
func reloadBalance(h responder, accounts storage.AccountStorage, w http.ResponseWriter, r *http.Request, account *models.Account) (decimal.Decimal, bool) {
	fresh, err := accounts.GetAccountByUserID(r.Context(), account.UserID)
	if err != nil {
		h.sendInternal(w, r, "failed to reload balance", err)
		return decimal.Zero, false
	}
	return fresh.Balance, true
}

// sendPostingError переводит ошибку проведения записей в ответ
func (h responder) sendPostingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrInsufficientFunds):
		h.sendError(w, http.StatusUnprocessableEntity, api.ErrCodeInsufficientFunds, "insufficient funds")
	case errors.Is(err, storage.ErrAccountNotFound):
		h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "account not found")
	default:
		h.sendInternal(w, r, "failed to post ledger entries", err)
	}
}

func (h responder) sendAccountLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrAccountNotFound) {
		h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "account not found")
		return
	}
	h.sendInternal(w, r, "failed to get account", err)
}
