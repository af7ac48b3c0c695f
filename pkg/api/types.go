package api

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Суммы уходят на сервер числами, как в исходном контракте API
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType тип транзакции. Набор значений закрыт:
// неизвестное значение из JSON является ошибкой разбора.
type TransactionType string

const (
	TransactionTransfer    TransactionType = "TRANSFER"
	TransactionPayment     TransactionType = "PAYMENT"
	TransactionPix         TransactionType = "PIX"
	TransactionDeposit     TransactionType = "DEPOSIT"
	TransactionWithdrawal  TransactionType = "WITHDRAWAL"
	TransactionCardPayment TransactionType = "CARD_PAYMENT"
)

// Valid проверяет, что значение входит в закрытый набор
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTransfer, TransactionPayment, TransactionPix,
		TransactionDeposit, TransactionWithdrawal, TransactionCardPayment:
		return true
	}
	return false
}

// UnmarshalJSON отклоняет неизвестные типы транзакций
func (t *TransactionType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, t, "transaction type")
}

// Direction направление движения денег относительно счета
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// DefaultDirection возвращает направление, которое тип транзакции
// задает для владельца счета, инициировавшего операцию
func (t TransactionType) DefaultDirection() Direction {
	switch t {
	case TransactionDeposit:
		return DirectionCredit
	case TransactionTransfer, TransactionPayment, TransactionPix,
		TransactionWithdrawal, TransactionCardPayment:
		return DirectionDebit
	}
	panic(fmt.Sprintf("unknown transaction type %q", string(t)))
}

// TransactionStatus статус транзакции
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// Valid проверяет, что значение входит в закрытый набор
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// UnmarshalJSON отклоняет неизвестные статусы
func (s *TransactionStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, "transaction status")
}

// PixKeyType тип ключа PIX
type PixKeyType string

const (
	PixKeyCPF    PixKeyType = "CPF"
	PixKeyEmail  PixKeyType = "EMAIL"
	PixKeyPhone  PixKeyType = "PHONE"
	PixKeyRandom PixKeyType = "RANDOM"
)

// Valid проверяет, что значение входит в закрытый набор
func (k PixKeyType) Valid() bool {
	switch k {
	case PixKeyCPF, PixKeyEmail, PixKeyPhone, PixKeyRandom:
		return true
	}
	return false
}

// UnmarshalJSON отклоняет неизвестные типы ключей
func (k *PixKeyType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, k, "pix key type")
}

// CardType тип карты
type CardType string

const (
	CardDebit  CardType = "DEBIT"
	CardCredit CardType = "CREDIT"
)

// Valid проверяет, что значение входит в закрытый набор
func (c CardType) Valid() bool {
	return c == CardDebit || c == CardCredit
}

// UnmarshalJSON отклоняет неизвестные типы карт
func (c *CardType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, c, "card type")
}

// CardStatus статус карты
type CardStatus string

const (
	CardActive    CardStatus = "ACTIVE"
	CardBlocked   CardStatus = "BLOCKED"
	CardCancelled CardStatus = "CANCELLED"
)

// Valid проверяет, что значение входит в закрытый набор
func (c CardStatus) Valid() bool {
	switch c {
	case CardActive, CardBlocked, CardCancelled:
		return true
	}
	return false
}

// UnmarshalJSON отклоняет неизвестные статусы карт
func (c *CardStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, c, "card status")
}

// BoletoStatus статус boleto
type BoletoStatus string

const (
	BoletoPending   BoletoStatus = "PENDING"
	BoletoPaid      BoletoStatus = "PAID"
	BoletoOverdue   BoletoStatus = "OVERDUE"
	BoletoCancelled BoletoStatus = "CANCELLED"
)

// Valid проверяет, что значение входит в закрытый набор
func (b BoletoStatus) Valid() bool {
	switch b {
	case BoletoPending, BoletoPaid, BoletoOverdue, BoletoCancelled:
		return true
	}
	return false
}

// UnmarshalJSON отклоняет неизвестные статусы boleto
func (b *BoletoStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, b, "boleto status")
}

// NotificationType категория уведомления
type NotificationType string

const (
	NotificationTransaction NotificationType = "transaction"
	NotificationSecurity    NotificationType = "security"
	NotificationInfo        NotificationType = "info"
	NotificationAlert       NotificationType = "alert"
)

// Valid проверяет, что значение входит в закрытый набор
func (n NotificationType) Valid() bool {
	switch n {
	case NotificationTransaction, NotificationSecurity, NotificationInfo, NotificationAlert:
		return true
	}
	return false
}

// UnmarshalJSON отклоняет неизвестные категории уведомлений
func (n *NotificationType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, n, "notification type")
}

type enum interface {
	~string
	Valid() bool
}

func unmarshalEnum[T enum](data []byte, dst *T, kind string) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid %s: %w", kind, err)
	}
	v := T(raw)
	if !v.Valid() {
		return fmt.Errorf("unknown %s %q", kind, raw)
	}
	*dst = v
	return nil
}
