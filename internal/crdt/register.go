package crdt

import (
	"sync"

	"github.com/iudanet/banktech/internal/models"
)

// LWWRegister хранит одно значение баланса по правилу Last-Write-Wins.
// Версия с меньшей меткой отбрасывается, при равной метке побеждает больший NodeID.
type LWWRegister struct {
	current *models.BalanceEntry
	mu      sync.RWMutex
}

// NewLWWRegister создает пустой регистр
func NewLWWRegister() *LWWRegister {
	return &LWWRegister{}
}

// Set применяет версию, если она новее текущей.
// Возвращает true, если значение было заменено.
func (r *LWWRegister) Set(entry *models.BalanceEntry) bool {
	if entry == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !entry.IsNewerThan(r.current) {
		return false
	}
	r.current = entry.Clone()
	return true
}

// Get возвращает копию текущей версии или nil
func (r *LWWRegister) Get() *models.BalanceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return nil
	}
	return r.current.Clone()
}

// Reset очищает регистр (при выходе из сессии)
func (r *LWWRegister) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = nil
}
