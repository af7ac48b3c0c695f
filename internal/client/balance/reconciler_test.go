package balance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/banktech/internal/crdt"
	"github.com/iudanet/banktech/internal/models"
	pkgapi "github.com/iudanet/banktech/pkg/api"
)

// fakeSession implements SessionBalance in memory
type fakeSession struct {
	session *models.Session
	mu      sync.Mutex
	updates []decimal.Decimal
}

func (f *fakeSession) Session(ctx context.Context) (*models.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil, false
	}
	return f.session.Clone(), true
}

func (f *fakeSession) UpdateBalance(ctx context.Context, balance decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, balance)
	if f.session != nil && f.session.User != nil && f.session.User.Account != nil {
		f.session.User = f.session.User.WithBalance(balance)
	}
	return nil
}

func (f *fakeSession) UpdateUser(ctx context.Context, user *models.UserSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session.User = user.Clone()
	return nil
}

func (f *fakeSession) snapshotBalance() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session.User.Account.Balance
}

// fakeFetcher returns queued results; block makes the next call wait for release
type fakeFetcher struct {
	balance decimal.Decimal
	err     error
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
}

func (f *fakeFetcher) GetAccount(ctx context.Context) (*pkgapi.Account, error) {
	f.mu.Lock()
	started, release := f.started, f.release
	balance, err := f.balance, f.err
	f.mu.Unlock()

	if started != nil {
		close(started)
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &pkgapi.Account{ID: "acc-1", AgencyNumber: "0001", AccountNumber: "12345", Balance: balance}, nil
}

func (f *fakeFetcher) set(balance string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balance = decimal.RequireFromString(balance)
	f.err = err
}

func snapshotSession(balance string) *models.Session {
	return &models.Session{
		AccessToken:  "a",
		RefreshToken: "r",
		User: &models.UserSnapshot{
			ID: "user-1",
			Account: &models.AccountSnapshot{
				ID:            "acc-1",
				AgencyNumber:  "0001",
				AccountNumber: "12345",
				Balance:       decimal.RequireFromString(balance),
			},
		},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestReconciler(fetcher *fakeFetcher, session *fakeSession) *Reconciler {
	return NewReconciler(fetcher, session, crdt.NewLamportClockWithNodeID("device-1"))
}

func TestReconciler_DisplayPriority(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{}
	session := &fakeSession{}
	r := NewReconciler(fetcher, session, crdt.NewLamportClockWithNodeID("device-1"), WithPlaceholder(dec("0")))

	// 3. Заглушка
	view := r.Display(ctx)
	assert.Equal(t, models.BalanceSourcePlaceholder, view.Source)
	assert.False(t, view.Known())

	// 2. Снимок сессии
	session.session = snapshotSession("5432.10")
	view = r.Display(ctx)
	assert.Equal(t, models.BalanceSourceSnapshot, view.Source)
	assert.True(t, dec("5432.10").Equal(view.Value))

	// 1. Загруженное значение
	fetcher.set("6000.00", nil)
	view, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.BalanceSourceFetch, view.Source)
	assert.True(t, dec("6000").Equal(view.Value))
	assert.True(t, dec("6000").Equal(session.snapshotBalance()), "fetched balance is persisted to the snapshot")
}

func TestReconciler_FetchFailureKeepsLastValue(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{}
	session := &fakeSession{session: snapshotSession("5432.10")}
	r := newTestReconciler(fetcher, session)

	fetcher.set("5000", nil)
	_, err := r.Refresh(ctx)
	require.NoError(t, err)

	fetcher.set("0", errors.New("connection refused"))
	view, err := r.Refresh(ctx)
	require.Error(t, err)

	assert.True(t, dec("5000").Equal(view.Value), "failed fetch must not clear the balance")
	assert.Equal(t, models.BalanceSourceFetch, view.Source)
	assert.Error(t, view.Err)
	assert.Error(t, r.Display(ctx).Err)

	// Следующая успешная загрузка снимает индикатор ошибки
	fetcher.set("5100", nil)
	view, err = r.Refresh(ctx)
	require.NoError(t, err)
	assert.NoError(t, view.Err)
}

func TestReconciler_FetchFailureWithoutFetchKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{}
	fetcher.set("0", errors.New("timeout"))
	r := newTestReconciler(fetcher, &fakeSession{session: snapshotSession("5432.10")})

	view, err := r.Refresh(ctx)
	require.Error(t, err)
	assert.Equal(t, models.BalanceSourceSnapshot, view.Source)
	assert.True(t, dec("5432.10").Equal(view.Value))
}

// Ответ на загрузку, отправленную до операции, не затирает результат операции
func TestReconciler_StaleFetchDiscarded(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{started: make(chan struct{}), release: make(chan struct{})}
	fetcher.set("5432.10", nil)
	session := &fakeSession{session: snapshotSession("5432.10")}
	r := newTestReconciler(fetcher, session)

	done := make(chan View)
	go func() {
		view, _ := r.Refresh(ctx)
		done <- view
	}()
	<-fetcher.started

	p := r.Begin()
	view, err := r.ApplyServerBalance(ctx, p, dec("5532.60"))
	require.NoError(t, err)
	assert.True(t, dec("5532.60").Equal(view.Value))

	close(fetcher.release)
	<-done

	view = r.Display(ctx)
	assert.Equal(t, models.BalanceSourceResponse, view.Source)
	assert.True(t, dec("5532.60").Equal(view.Value))
	assert.True(t, dec("5532.60").Equal(session.snapshotBalance()))
}

// Загрузка, отправленная после операции, побеждает
func TestReconciler_LaterFetchWins(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{}
	r := newTestReconciler(fetcher, &fakeSession{session: snapshotSession("100")})

	p := r.Begin()
	_, err := r.ApplyDelta(ctx, p, dec("50"))
	require.NoError(t, err)

	fetcher.set("140", nil)
	view, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, dec("140").Equal(view.Value))
	assert.Equal(t, models.BalanceSourceFetch, view.Source)
}

func TestReconciler_ApplyDelta(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{session: snapshotSession("5432.10")}
	r := newTestReconciler(&fakeFetcher{}, session)

	view, err := r.ApplyDelta(ctx, r.Begin(), dec("100.50"))
	require.NoError(t, err)
	assert.True(t, dec("5532.60").Equal(view.Value), "B + A, got %s", view.Value)
	assert.Equal(t, models.BalanceSourceOptimistic, view.Source)

	view, err = r.ApplyDelta(ctx, r.Begin(), dec("-32.60"))
	require.NoError(t, err)
	assert.True(t, dec("5500").Equal(view.Value))

	require.Len(t, session.updates, 2)
	assert.True(t, dec("5500").Equal(session.snapshotBalance()))
}

func TestReconciler_ApplyDelta_UnknownBalance(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{}
	r := newTestReconciler(&fakeFetcher{}, session)

	view, err := r.ApplyDelta(ctx, r.Begin(), dec("10"))
	require.NoError(t, err)
	assert.Equal(t, models.BalanceSourcePlaceholder, view.Source)
	assert.Empty(t, session.updates)
}

func TestReconciler_RefreshFillsMissingAccount(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{session: &models.Session{
		AccessToken:  "a",
		RefreshToken: "r",
		User:         &models.UserSnapshot{ID: "user-1"},
	}}
	fetcher := &fakeFetcher{}
	fetcher.set("250", nil)
	r := newTestReconciler(fetcher, session)

	_, err := r.Refresh(ctx)
	require.NoError(t, err)

	require.NotNil(t, session.session.User.Account)
	assert.Equal(t, "12345", session.session.User.Account.AccountNumber)
	assert.True(t, dec("250").Equal(session.snapshotBalance()))
}

func TestReconciler_Reset(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{}
	fetcher.set("10", nil)
	r := newTestReconciler(fetcher, &fakeSession{})

	_, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.BalanceSourceFetch, r.Display(ctx).Source)

	r.Reset()
	assert.Equal(t, models.BalanceSourcePlaceholder, r.Display(ctx).Source)
}

func TestReconciler_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{}
	fetcher.set("42", nil)
	r := newTestReconciler(fetcher, &fakeSession{})

	var views []View
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Watch(ctx, 5*time.Millisecond, func(v View) {
			views = append(views, v)
			if len(views) == 2 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	require.Len(t, views, 2)
	assert.True(t, dec("42").Equal(views[0].Value))
}
