package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
	"github.com/iudanet/banktech/pkg/api"
)

const (
	// cardValidityYears срок действия выпускаемой карты
	cardValidityYears = 5

	brandVisa       = "VISA"
	brandMastercard = "MASTERCARD"
)

// defaultCreditLimit лимит кредитной карты, если клиент его не указал
var defaultCreditLimit = decimal.NewFromInt(5000)

// CardHandler обрабатывает выпуск и управление картами
type CardHandler struct {
	responder
	userStorage    storage.UserStorage
	accountStorage storage.AccountStorage
	cardStorage    storage.CardStorage
	notifier       *Notifier
}

// NewCardHandler создает новый handler карт
func NewCardHandler(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	accountStorage storage.AccountStorage,
	cardStorage storage.CardStorage,
	notifier *Notifier,
) *CardHandler {
	return &CardHandler{
		responder:      responder{logger: logger},
		userStorage:    userStorage,
		accountStorage: accountStorage,
		cardStorage:    cardStorage,
		notifier:       notifier,
	}
}

// List обрабатывает GET /cards
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	cards, err := h.cardStorage.ListCards(r.Context(), account.ID)
	if err != nil {
		h.sendInternal(w, r, "failed to list cards", err)
		return
	}

	h.sendJSON(w, cardsView(cards), http.StatusOK)
}

// Get обрабатывает GET /cards/{id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	card, ok := h.findCard(w, r, account)
	if !ok {
		return
	}

	h.sendJSON(w, cardView(card), http.StatusOK)
}

// Create обрабатывает POST /cards. CVV возвращается только в этом ответе.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	var req api.CreateCardRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Type.Valid() {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "card type must be DEBIT or CREDIT")
		return
	}

	card := &models.Card{
		ID:             uuid.NewString(),
		AccountID:      account.ID,
		CardholderName: strings.ToUpper(ownerName(h.responder, h.userStorage, r, account)),
		Type:           string(req.Type),
		Status:         string(api.CardActive),
		IsVirtual:      req.IsVirtual,
		CreatedAt:      time.Now().UTC(),
	}
	card.ExpirationDate = card.CreatedAt.AddDate(cardValidityYears, 0, 0).Format("01/06")

	switch req.Type {
	case api.CardCredit:
		card.Brand = brandMastercard
		limit := defaultCreditLimit
		if req.Limit != nil {
			if !req.Limit.IsPositive() {
				h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "limit must be greater than zero")
				return
			}
			limit = *req.Limit
		}
		card.Limit = &limit
	case api.CardDebit:
		card.Brand = brandVisa
	}

	lastFour, err := randomDigits(4)
	if err != nil {
		h.sendInternal(w, r, "failed to generate card number", err)
		return
	}
	cvv, err := randomDigits(3)
	if err != nil {
		h.sendInternal(w, r, "failed to generate cvv", err)
		return
	}
	card.LastFour = lastFour

	if err := h.cardStorage.CreateCard(ctx, card); err != nil {
		h.sendInternal(w, r, "failed to create card", err)
		return
	}

	h.logger.InfoContext(ctx, "card issued",
		slog.String("card_id", card.ID),
		slog.String("type", card.Type),
		slog.Bool("virtual", card.IsVirtual))
	h.notifier.Notify(ctx, account.UserID, api.NotificationInfo,
		"Novo cartão", fmt.Sprintf("Cartão %s final %s emitido.", card.Brand, card.LastFour))

	view := cardView(card)
	view.CVV = cvv
	h.sendJSON(w, view, http.StatusCreated)
}

// Block обрабатывает PUT /cards/{id}/block
func (h *CardHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, api.CardBlocked, "Cartão bloqueado", api.CardActive)
}

// Unblock обрабатывает PUT /cards/{id}/unblock
func (h *CardHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, api.CardActive, "Cartão desbloqueado", api.CardBlocked)
}

// Cancel обрабатывает DELETE /cards/{id}/cancel
func (h *CardHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, api.CardCancelled, "Cartão cancelado", api.CardActive, api.CardBlocked)
}

// transition переводит карту в статус to, если текущий статус входит в from
func (h *CardHandler) transition(w http.ResponseWriter, r *http.Request, to api.CardStatus, title string, from ...api.CardStatus) {
	ctx := r.Context()

	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	card, ok := h.findCard(w, r, account)
	if !ok {
		return
	}

	current := api.CardStatus(card.Status)
	allowed := false
	for _, s := range from {
		if current == s {
			allowed = true
			break
		}
	}
	if !allowed {
		h.sendError(w, http.StatusConflict, api.ErrCodeConflict,
			fmt.Sprintf("card is %s", strings.ToLower(string(current))))
		return
	}

	if err := h.cardStorage.UpdateCardStatus(ctx, account.ID, card.ID, string(to)); err != nil {
		h.sendInternal(w, r, "failed to update card status", err)
		return
	}
	card.Status = string(to)

	h.logger.InfoContext(ctx, "card status changed",
		slog.String("card_id", card.ID),
		slog.String("status", card.Status))
	h.notifier.Notify(ctx, account.UserID, api.NotificationSecurity,
		title, fmt.Sprintf("Cartão final %s: %s.", card.LastFour, strings.ToLower(card.Status)))

	h.sendJSON(w, cardView(card), http.StatusOK)
}

func (h *CardHandler) findCard(w http.ResponseWriter, r *http.Request, account *models.Account) (*models.Card, bool) {
	card, err := h.cardStorage.GetCard(r.Context(), account.ID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, storage.ErrCardNotFound) {
			h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "card not found")
			return nil, false
		}
		h.sendInternal(w, r, "failed to get card", err)
		return nil, false
	}
	return card, true
}

// randomDigits возвращает n случайных десятичных цифр
func randomDigits(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	for range n {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
