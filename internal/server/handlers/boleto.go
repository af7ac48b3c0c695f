package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/internal/format"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
	"github.com/iudanet/banktech/internal/validation"
	"github.com/iudanet/banktech/pkg/api"
)

// dueFactorBase дата, от которой считается фактор срока после сброса
// FEBRABAN: фактор 1000 соответствует 22.02.2025
var dueFactorBase = time.Date(2025, time.February, 22, 0, 0, 0, 0, time.UTC)

const dueFactorOffset = 1000

var boletoBanks = map[string]string{
	"001": "Banco do Brasil",
	"033": "Santander",
	"104": "Caixa Econômica Federal",
	"237": "Bradesco",
	"341": "Itaú Unibanco",
}

// decodedBoleto поля, которые dev сервер извлекает из штрихкода
type decodedBoleto struct {
	DueDate   time.Time
	Amount    decimal.Decimal
	ID        string
	Digits    string
	Recipient string
}

// decodeBoleto разбирает штрихкод (44 цифры) или линию для ручного
// ввода (47 цифр). Проверочные цифры не проверяются.
func decodeBoleto(barcode string, today time.Time) (*decodedBoleto, error) {
	if err := validation.ValidateBarcode(barcode); err != nil {
		return nil, err
	}
	digits := validation.Digits(barcode)

	var factor, cents string
	if len(digits) == validation.BoletoBarcodeLen {
		factor, cents = digits[5:9], digits[9:19]
	} else {
		factor, cents = digits[33:37], digits[37:47]
	}

	amountCents, err := strconv.ParseInt(cents, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid boleto amount: %w", err)
	}
	days, err := strconv.Atoi(factor)
	if err != nil {
		return nil, fmt.Errorf("invalid boleto due factor: %w", err)
	}

	due := today
	if days != 0 {
		due = dueFactorBase.AddDate(0, 0, days-dueFactorOffset)
	}

	bank := digits[0:3]
	recipient, ok := boletoBanks[bank]
	if !ok {
		recipient = "Banco " + bank
	}

	return &decodedBoleto{
		ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(digits)).String(),
		Digits:    digits,
		Recipient: recipient,
		Amount:    decimal.New(amountCents, -2),
		DueDate:   due,
	}, nil
}

// status статус неоплаченного boleto на дату today
func (b *decodedBoleto) status(today time.Time) api.BoletoStatus {
	if b.DueDate.Before(today) {
		return api.BoletoOverdue
	}
	return api.BoletoPending
}

// BoletoHandler обрабатывает консультацию и оплату boleto
type BoletoHandler struct {
	responder
	accountStorage storage.AccountStorage
	boletoStorage  storage.BoletoStorage
	notifier       *Notifier
	now            func() time.Time
}

// NewBoletoHandler создает новый handler boleto
func NewBoletoHandler(
	logger *slog.Logger,
	accountStorage storage.AccountStorage,
	boletoStorage storage.BoletoStorage,
	notifier *Notifier,
) *BoletoHandler {
	return &BoletoHandler{
		responder:      responder{logger: logger},
		accountStorage: accountStorage,
		boletoStorage:  boletoStorage,
		notifier:       notifier,
		now:            time.Now,
	}
}

func (h *BoletoHandler) today() time.Time {
	return h.now().UTC().Truncate(24 * time.Hour)
}

// Consult обрабатывает GET /boleto/consult?barcode=
func (h *BoletoHandler) Consult(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	today := h.today()
	decoded, err := decodeBoleto(r.URL.Query().Get("barcode"), today)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}

	h.sendJSON(w, api.Boleto{
		ID:        decoded.ID,
		Barcode:   decoded.Digits,
		Recipient: decoded.Recipient,
		Amount:    decoded.Amount,
		DueDate:   decoded.DueDate,
		Status:    decoded.status(today),
	}, http.StatusOK)
}

// Payment обрабатывает POST /boleto/payment.
// Сумма из запроса имеет приоритет над суммой из штрихкода.
func (h *BoletoHandler) Payment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	var req api.BoletoPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	decoded, err := decodeBoleto(req.Barcode, h.today())
	if err != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}

	amount := decoded.Amount
	if !req.Amount.IsZero() {
		amount = req.Amount
	}
	if err := validation.ValidateAmount(amount); err != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}

	now := time.Now().UTC()
	entry := &models.LedgerEntry{
		ID:           uuid.NewString(),
		AccountID:    account.ID,
		Type:         string(api.TransactionPayment),
		Direction:    models.DirectionDebit,
		Amount:       amount,
		Status:       string(api.StatusCompleted),
		Description:  "Pagamento de boleto",
		Counterparty: decoded.Recipient,
		CreatedAt:    now,
	}

	if err := h.accountStorage.ApplyEntries(ctx, entry); err != nil {
		h.sendPostingError(w, r, err)
		return
	}

	// история вторична: проводка уже выполнена
	err = h.boletoStorage.SaveBoleto(ctx, &models.Boleto{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Barcode:   decoded.Digits,
		Recipient: decoded.Recipient,
		Amount:    amount,
		DueDate:   decoded.DueDate,
		PaidAt:    now,
		EntryID:   entry.ID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to save boleto history",
			slog.String("transaction_id", entry.ID),
			slog.Any("error", err))
	}

	balance, ok := reloadBalance(h.responder, h.accountStorage, w, r, account)
	if !ok {
		return
	}

	h.logger.InfoContext(ctx, "boleto paid", slog.String("transaction_id", entry.ID))
	h.notifier.Notify(ctx, account.UserID, api.NotificationTransaction,
		"Boleto pago", fmt.Sprintf("Boleto de %s para %s pago.", format.BRL(amount), decoded.Recipient))

	h.sendJSON(w, api.BoletoPaymentResponse{
		TransactionID: entry.ID,
		Status:        api.StatusCompleted,
		Amount:        amount,
		Recipient:     decoded.Recipient,
		PaidAt:        now,
		Balance:       &balance,
	}, http.StatusCreated)
}

// History обрабатывает GET /boleto/history
func (h *BoletoHandler) History(w http.ResponseWriter, r *http.Request) {
	account, ok := ownAccount(h.responder, h.accountStorage, w, r)
	if !ok {
		return
	}

	boletos, err := h.boletoStorage.ListBoletos(r.Context(), account.ID)
	if err != nil {
		h.sendInternal(w, r, "failed to list boletos", err)
		return
	}

	out := make([]api.Boleto, 0, len(boletos))
	for _, b := range boletos {
		out = append(out, boletoView(b))
	}
	h.sendJSON(w, out, http.StatusOK)
}
