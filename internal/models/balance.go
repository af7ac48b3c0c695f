package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSource источник значения баланса
type BalanceSource string

const (
	BalanceSourceFetch       BalanceSource = "fetch"       // ответ GET /accounts/me
	BalanceSourceOptimistic  BalanceSource = "optimistic"  // локальный расчет после успешной операции
	BalanceSourceResponse    BalanceSource = "response"    // баланс из ответа на операцию
	BalanceSourceSnapshot    BalanceSource = "snapshot"    // снимок из сохраненной сессии
	BalanceSourcePlaceholder BalanceSource = "placeholder" // данных еще нет
)

// BalanceEntry версия значения баланса.
// Timestamp это Lamport timestamp, взятый в момент отправки запроса,
// поэтому ответ на более ранний запрос всегда проигрывает более позднему.
type BalanceEntry struct {
	RecordedAt time.Time       `json:"recorded_at"` // момент применения (для информации)
	Value      decimal.Decimal `json:"value"`
	Source     BalanceSource   `json:"source"`
	NodeID     string          `json:"node_id"`
	Timestamp  int64           `json:"timestamp"`
}

// IsNewerThan сравнивает две версии по алгоритму LWW:
// сначала Timestamp, при равенстве NodeID (лексикографически).
func (e *BalanceEntry) IsNewerThan(other *BalanceEntry) bool {
	if other == nil {
		return true
	}
	if e.Timestamp > other.Timestamp {
		return true
	}
	if e.Timestamp < other.Timestamp {
		return false
	}
	return e.NodeID > other.NodeID
}

// Clone создает копию версии
func (e *BalanceEntry) Clone() *BalanceEntry {
	c := *e
	return &c
}
