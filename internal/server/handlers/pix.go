package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iudanet/banktech/internal/format"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
	"github.com/iudanet/banktech/internal/validation"
	"github.com/iudanet/banktech/pkg/api"
)

const (
	// maxPixKeys лимит ключей PIX на один счет
	maxPixKeys = 5

	// bankName банк, под которым dev сервер показывает своих клиентов
	bankName = "BankTech"
)

// PixHandler обрабатывает ключи и платежи PIX
type PixHandler struct {
	responder
	userStorage    storage.UserStorage
	accountStorage storage.AccountStorage
	pixStorage     storage.PixKeyStorage
	notifier       *Notifier
}

// NewPixHandler создает новый handler PIX
func NewPixHandler(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	accountStorage storage.AccountStorage,
	pixStorage storage.PixKeyStorage,
	notifier *Notifier,
) *PixHandler {
	return &PixHandler{
		responder:      responder{logger: logger},
		userStorage:    userStorage,
		accountStorage: accountStorage,
		pixStorage:     pixStorage,
		notifier:       notifier,
	}
}

// ListKeys обрабатывает GET /pix/keys
func (h *PixHandler) ListKeys(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	keys, err := h.pixStorage.ListPixKeys(r.Context(), account.ID)
	if err != nil {
		h.sendInternal(w, r, "failed to list pix keys", err)
		return
	}

	h.sendJSON(w, pixKeysView(keys), http.StatusOK)
}

// CreateKey обрабатывает POST /pix/keys
func (h *PixHandler) CreateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	var req api.CreatePixKeyRequest
	if !h.decode(w, r, &req) {
		return
	}

	value, err := normalizePixKey(req.KeyType, req.KeyValue)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}

	existing, err := h.pixStorage.ListPixKeys(ctx, account.ID)
	if err != nil {
		h.sendInternal(w, r, "failed to list pix keys", err)
		return
	}
	if len(existing) >= maxPixKeys {
		h.sendError(w, http.StatusConflict, api.ErrCodeConflict,
			fmt.Sprintf("an account can hold at most %d PIX keys", maxPixKeys))
		return
	}

	key := &models.PixKey{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		KeyType:   string(req.KeyType),
		KeyValue:  value,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.pixStorage.CreatePixKey(ctx, key); err != nil {
		if errors.Is(err, storage.ErrPixKeyAlreadyExists) {
			h.sendError(w, http.StatusConflict, api.ErrCodeConflict, "PIX key already registered")
			return
		}
		h.sendInternal(w, r, "failed to create pix key", err)
		return
	}

	h.logger.InfoContext(ctx, "pix key registered",
		slog.String("key_id", key.ID),
		slog.String("key_type", key.KeyType))

	h.sendJSON(w, pixKeyView(key), http.StatusCreated)
}

// DeleteKey обрабатывает DELETE /pix/keys/{id}
func (h *PixHandler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	if err := h.pixStorage.DeletePixKey(r.Context(), account.ID, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, storage.ErrPixKeyNotFound) {
			h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "PIX key not found")
			return
		}
		h.sendInternal(w, r, "failed to delete pix key", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Consult обрабатывает GET /pix/consult?key=
func (h *PixHandler) Consult(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	key, dest, ok := h.resolveKey(w, r, r.URL.Query().Get("key"))
	if !ok {
		return
	}

	h.sendJSON(w, api.PixKeyInfo{
		Name:    ownerName(h.responder, h.userStorage, r, dest),
		Bank:    bankName,
		KeyType: api.PixKeyType(key.KeyType),
	}, http.StatusOK)
}

// Payment обрабатывает POST /pix/payment
func (h *PixHandler) Payment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	own, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	var req api.PixPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateAmount(req.Amount); err != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}

	key, dest, ok := h.resolveKey(w, r, req.PixKey)
	if !ok {
		return
	}
	if dest.ID == own.ID {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "cannot pay your own PIX key")
		return
	}

	now := time.Now().UTC()
	description := strings.TrimSpace(req.Description)
	recipientName := ownerName(h.responder, h.userStorage, r, dest)
	payerName := ownerName(h.responder, h.userStorage, r, own)

	debit := &models.LedgerEntry{
		ID:           uuid.NewString(),
		AccountID:    own.ID,
		Type:         string(api.TransactionPix),
		Direction:    models.DirectionDebit,
		Amount:       req.Amount,
		Status:       string(api.StatusCompleted),
		Description:  description,
		Counterparty: recipientName,
		CounterRef:   key.KeyValue,
		CreatedAt:    now,
	}
	credit := &models.LedgerEntry{
		ID:           uuid.NewString(),
		AccountID:    dest.ID,
		Type:         string(api.TransactionPix),
		Direction:    models.DirectionCredit,
		Amount:       req.Amount,
		Status:       string(api.StatusCompleted),
		Description:  description,
		Counterparty: payerName,
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

	h.logger.InfoContext(ctx, "pix payment completed",
		slog.String("transaction_id", debit.ID),
		slog.String("key_type", key.KeyType))
	h.notifier.Notify(ctx, own.UserID, api.NotificationTransaction,
		"PIX enviado", fmt.Sprintf("PIX de %s enviado para %s.", format.BRL(req.Amount), recipientName))
	h.notifier.Notify(ctx, dest.UserID, api.NotificationTransaction,
		"PIX recebido", fmt.Sprintf("Você recebeu um PIX de %s de %s.", format.BRL(req.Amount), payerName))

	h.sendJSON(w, api.PixPaymentResponse{
		TransactionID: debit.ID,
		Status:        api.StatusCompleted,
		Amount:        req.Amount,
		RecipientName: recipientName,
		CreatedAt:     now,
		Balance:       &balance,
	}, http.StatusCreated)
}

// resolveKey находит ключ и счет его владельца. Ключ ищется как есть,
// затем в нижнем регистре и по цифрам: клиенты присылают CPF и телефон с маской.
func (h *PixHandler) resolveKey(w http.ResponseWriter, r *http.Request, raw string) (*models.PixKey, *models.Account, bool) {
	ctx := r.Context()

	raw = strings.TrimSpace(raw)
	if raw == "" {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "PIX key is required")
		return nil, nil, false
	}

	var (
		key *models.PixKey
		err error
	)
	for _, candidate := range pixLookupCandidates(raw) {
		key, err = h.pixStorage.GetPixKeyByValue(ctx, candidate)
		if !errors.Is(err, storage.ErrPixKeyNotFound) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, storage.ErrPixKeyNotFound) {
			h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "PIX key not found")
			return nil, nil, false
		}
		h.sendInternal(w, r, "failed to get pix key", err)
		return nil, nil, false
	}

	account, err := h.accountStorage.GetAccountByID(ctx, key.AccountID)
	if err != nil {
		h.sendAccountLookupError(w, r, err)
		return nil, nil, false
	}

	return key, account, true
}

func pixLookupCandidates(raw string) []string {
	candidates := []string{raw}
	if lower := strings.ToLower(raw); lower != raw {
		candidates = append(candidates, lower)
	}
	if digits := validation.Digits(raw); digits != "" && digits != raw {
		candidates = append(candidates, digits)
	}
	return candidates
}

// normalizePixKey приводит значение ключа к каноническому виду и проверяет его.
// Для RANDOM значение генерируется.
func normalizePixKey(keyType api.PixKeyType, value string) (string, error) {
	value = strings.TrimSpace(value)

	switch keyType {
	case api.PixKeyRandom:
		value = uuid.NewString()
	case api.PixKeyCPF, api.PixKeyPhone:
		value = validation.Digits(value)
	case api.PixKeyEmail:
		value = strings.ToLower(value)
	}

	if err := validation.ValidatePixKey(keyType, value); err != nil {
		return "", err
	}
	return value, nil
}
