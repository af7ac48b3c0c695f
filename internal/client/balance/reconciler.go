// Package balance выбирает баланс для отображения из конкурирующих источников
// и применяет оптимистичные обновления после операций.
package balance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/internal/crdt"
	"github.com/iudanet/banktech/internal/models"
	pkgapi "github.com/iudanet/banktech/pkg/api"
)

// Fetcher загружает авторитетное состояние счета
type Fetcher interface {
	GetAccount(ctx context.Context) (*pkgapi.Account, error)
}

// SessionBalance доступ к снимку сессии. Реализуется auth.Controller.
type SessionBalance interface {
	Session(ctx context.Context) (*models.Session, bool)
	UpdateBalance(ctx context.Context, balance decimal.Decimal) error
	UpdateUser(ctx context.Context, user *models.UserSnapshot) error
}

// View баланс для отображения
type View struct {
	Err       error // ошибка последней загрузки, значение при этом не сбрасывается
	Value     decimal.Decimal
	Source    models.BalanceSource
	Timestamp int64
}

// Known сообщает, что значение получено с сервера или из сессии
func (v View) Known() bool {
	return v.Source != models.BalanceSourcePlaceholder
}

// Pending метка операции, взятая в момент отправки запроса
type Pending struct {
	tag int64
}

// Reconciler хранит последнюю версию баланса в LWW регистре.
// Приоритет отображения: версия с наибольшей меткой (загрузка или
// оптимистичное обновление), затем снимок сессии, затем заглушка.
type Reconciler struct {
	fetcher     Fetcher
	session     SessionBalance
	clock       *crdt.LamportClock
	register    *crdt.LWWRegister
	logger      *slog.Logger
	now         func() time.Time
	fetchErr    error
	placeholder decimal.Decimal
	mu          sync.Mutex
}

// Option настраивает Reconciler
type Option func(*Reconciler)

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithPlaceholder задает значение до первой загрузки
func WithPlaceholder(value decimal.Decimal) Option {
	return func(r *Reconciler) {
		r.placeholder = value
	}
}

// NewReconciler создает Reconciler. clock задает идентификатор устройства
// для упорядочивания версий.
func NewReconciler(fetcher Fetcher, session SessionBalance, clock *crdt.LamportClock, opts ...Option) *Reconciler {
	r := &Reconciler{
		fetcher:     fetcher,
		session:     session,
		clock:       clock,
		register:    crdt.NewLWWRegister(),
		logger:      slog.Default(),
		now:         time.Now,
		placeholder: decimal.Zero,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Display возвращает баланс для отображения
func (r *Reconciler) Display(ctx context.Context) View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.displayLocked(ctx)
}

func (r *Reconciler) displayLocked(ctx context.Context) View {
	view := View{Err: r.fetchErr}

	// 1. Значение, записанное в этом процессе
	if entry := r.register.Get(); entry != nil {
		view.Value = entry.Value
		view.Source = entry.Source
		view.Timestamp = entry.Timestamp
		return view
	}

	// 2. Снимок из сессии
	if session, ok := r.session.Session(ctx); ok && session.User != nil && session.User.Account != nil {
		view.Value = session.User.Account.Balance
		view.Source = models.BalanceSourceSnapshot
		return view
	}

	// 3. Заглушка
	view.Value = r.placeholder
	view.Source = models.BalanceSourcePlaceholder
	return view
}

// Refresh загружает баланс с сервера. Ответ на запрос, отправленный раньше
// последнего примененного обновления, отбрасывается. При ошибке последнее
// значение сохраняется, а ошибка возвращается и попадает в View.Err.
func (r *Reconciler) Refresh(ctx context.Context) (View, error) {
	tag := r.clock.Tick()

	account, err := r.fetcher.GetAccount(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.fetchErr = err
		r.logger.WarnContext(ctx, "balance fetch failed, keeping last value", slog.Any("error", err))
		return r.displayLocked(ctx), fmt.Errorf("failed to load balance: %w", err)
	}
	r.fetchErr = nil

	entry := r.entry(tag, account.Balance, models.BalanceSourceFetch)
	if !r.register.Set(entry) {
		r.logger.DebugContext(ctx, "discarding stale balance fetch", slog.Int64("tag", tag))
		return r.displayLocked(ctx), nil
	}

	r.persistAccount(ctx, account)
	return r.displayLocked(ctx), nil
}

// persistAccount записывает загруженный счет в снимок сессии
func (r *Reconciler) persistAccount(ctx context.Context, account *pkgapi.Account) {
	session, ok := r.session.Session(ctx)
	if !ok || session.User == nil {
		return
	}

	var err error
	if session.User.Account == nil {
		user := session.User.Clone()
		user.Account = models.AccountSnapshotFromAPI(account)
		err = r.session.UpdateUser(ctx, user)
	} else {
		err = r.session.UpdateBalance(ctx, account.Balance)
	}
	if err != nil {
		r.logger.WarnContext(ctx, "failed to persist fetched balance", slog.Any("error", err))
	}
}

// Begin берет метку для операции, меняющей баланс. Вызывается до отправки запроса.
func (r *Reconciler) Begin() Pending {
	return Pending{tag: r.clock.Tick()}
}

// ApplyServerBalance применяет баланс из ответа на операцию
func (r *Reconciler) ApplyServerBalance(ctx context.Context, p Pending, balance decimal.Decimal) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.applyLocked(ctx, r.entry(p.tag, balance, models.BalanceSourceResponse))
}

// ApplyDelta применяет оптимистичное обновление B+delta к текущему балансу.
// Если баланс еще неизвестен, обновлять нечего.
func (r *Reconciler) ApplyDelta(ctx context.Context, p Pending, delta decimal.Decimal) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.displayLocked(ctx)
	if !current.Known() {
		return current, nil
	}

	return r.applyLocked(ctx, r.entry(p.tag, current.Value.Add(delta), models.BalanceSourceOptimistic))
}

// applyLocked записывает версию и сохраняет ее в сессию до возврата
func (r *Reconciler) applyLocked(ctx context.Context, entry *models.BalanceEntry) (View, error) {
	if !r.register.Set(entry) {
		r.logger.DebugContext(ctx, "discarding stale balance update",
			slog.Int64("tag", entry.Timestamp),
			slog.String("source", string(entry.Source)))
		return r.displayLocked(ctx), nil
	}

	if err := r.session.UpdateBalance(ctx, entry.Value); err != nil {
		return r.displayLocked(ctx), fmt.Errorf("failed to persist balance: %w", err)
	}
	return r.displayLocked(ctx), nil
}

// Reset забывает значения этого процесса (после выхода)
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.register.Reset()
	r.fetchErr = nil
}

// Watch периодически загружает баланс и передает результат в fn,
// пока не отменен ctx. Ошибки загрузки не прерывают наблюдение.
func (r *Reconciler) Watch(ctx context.Context, interval time.Duration, fn func(View)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		view, _ := r.Refresh(ctx)
		if ctx.Err() != nil {
			return
		}
		fn(view)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Reconciler) entry(tag int64, value decimal.Decimal, source models.BalanceSource) *models.BalanceEntry {
	return &models.BalanceEntry{
		RecordedAt: r.now(),
		Value:      value,
		Source:     source,
		NodeID:     r.clock.NodeID(),
		Timestamp:  tag,
	}
}
