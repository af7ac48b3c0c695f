package crdt

import (
	"sync"

	"github.com/google/uuid"
)

// LamportClock выдает монотонные метки запросов на одном устройстве.
// Метку берут в момент отправки запроса, а не в момент получения ответа:
// так ответ на более ранний запрос не перезапишет результат более позднего.
type LamportClock struct {
	nodeID  string
	counter int64
	mu      sync.Mutex
}

// NewLamportClock создает часы со случайным идентификатором устройства
func NewLamportClock() *LamportClock {
	return NewLamportClockWithNodeID(uuid.NewString())
}

// NewLamportClockWithNodeID создает часы с идентификатором устройства
// из хранилища метаданных
func NewLamportClockWithNodeID(nodeID string) *LamportClock {
	return &LamportClock{nodeID: nodeID}
}

// Tick выдает новую метку
func (lc *LamportClock) Tick() int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.counter++
	return lc.counter
}

// Observe сдвигает часы за чужую метку: counter = max(counter, remote) + 1
func (lc *LamportClock) Observe(remote int64) int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if remote > lc.counter {
		lc.counter = remote
	}
	lc.counter++

	return lc.counter
}

// Now возвращает последнюю выданную метку
func (lc *LamportClock) Now() int64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	return lc.counter
}

// NodeID возвращает идентификатор устройства
func (lc *LamportClock) NodeID() string {
	// nodeID не меняется после создания
	return lc.nodeID
}
