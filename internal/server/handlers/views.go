package handlers

import (
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/pkg/api"
)

// accountType тип счета, других dev сервер не открывает
const accountType = "CHECKING"

func userView(user *models.User, account *models.Account) *api.User {
	view := &api.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CPF:       user.CPF,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	}
	if account != nil {
		view.Account = accountView(account)
	}
	return view
}

func accountView(a *models.Account) *api.Account {
	return &api.Account{
		ID:            a.ID,
		AgencyNumber:  a.AgencyNumber,
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance,
		Type:          accountType,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
	}
}

// transactionView переводит запись журнала в транзакцию API.
// Вторая сторона кредита становится отправителем, дебета получателем:
// по этому признаку клиент определяет направление переводов и PIX.
func transactionView(e *models.LedgerEntry) api.Transaction {
	tx := api.Transaction{
		ID:          e.ID,
		AccountID:   e.AccountID,
		Type:        api.TransactionType(e.Type),
		Amount:      e.Amount,
		Description: e.Description,
		Status:      api.TransactionStatus(e.Status),
		CreatedAt:   e.CreatedAt,
	}

	if tx.Status == api.StatusCompleted {
		completedAt := e.CreatedAt
		tx.CompletedAt = &completedAt
	}

	if e.Counterparty != "" || e.CounterRef != "" {
		party := &api.Party{Name: e.Counterparty}
		switch tx.Type {
		case api.TransactionPix:
			party.PixKey = e.CounterRef
		case api.TransactionTransfer, api.TransactionDeposit:
			party.AccountNumber = e.CounterRef
		}
		if e.Direction == models.DirectionCredit {
			tx.Sender = party
		} else {
			tx.Recipient = party
		}
	}

	return tx
}

func transactionsView(entries []*models.LedgerEntry) []api.Transaction {
	out := make([]api.Transaction, 0, len(entries))
	for _, e := range entries {
		out = append(out, transactionView(e))
	}
	return out
}

func pixKeyView(k *models.PixKey) api.PixKey {
	return api.PixKey{
		ID:        k.ID,
		AccountID: k.AccountID,
		KeyType:   api.PixKeyType(k.KeyType),
		KeyValue:  k.KeyValue,
		CreatedAt: k.CreatedAt,
	}
}

func pixKeysView(keys []*models.PixKey) []api.PixKey {
	out := make([]api.PixKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, pixKeyView(k))
	}
	return out
}

func cardView(c *models.Card) api.Card {
	return api.Card{
		ID:             c.ID,
		AccountID:      c.AccountID,
		CardNumber:     c.LastFour,
		CardholderName: c.CardholderName,
		ExpirationDate: c.ExpirationDate,
		Brand:          c.Brand,
		Type:           api.CardType(c.Type),
		Status:         api.CardStatus(c.Status),
		Limit:          c.Limit,
		IsVirtual:      c.IsVirtual,
		CreatedAt:      c.CreatedAt,
	}
}

func cardsView(cards []*models.Card) []api.Card {
	out := make([]api.Card, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView(c))
	}
	return out
}

func notificationView(n *models.Notification) api.Notification {
	return api.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      api.NotificationType(n.Type),
		ActionURL: n.ActionURL,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func boletoView(b *models.Boleto) api.Boleto {
	paidAt := b.PaidAt
	return api.Boleto{
		ID:        b.ID,
		Barcode:   b.Barcode,
		Recipient: b.Recipient,
		Amount:    b.Amount,
		DueDate:   b.DueDate,
		PaidAt:    &paidAt,
		Status:    api.BoletoPaid,
	}
}
