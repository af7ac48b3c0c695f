package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/internal/client/storage"
	"github.com/iudanet/banktech/internal/models"
	pkgapi "github.com/iudanet/banktech/pkg/api"
)

// memSessions implements storage.SessionStorage in memory
type memSessions struct {
	data    *storage.SessionData
	saveErr error
	getErr  error
	mu      sync.Mutex
	saves   int
}

func (m *memSessions) SaveSession(ctx context.Context, s *storage.SessionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	c := *s
	c.User = s.User.Clone()
	m.data = &c
	m.saves++
	return nil
}

func (m *memSessions) GetSession(ctx context.Context) (*storage.SessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.data == nil || m.data.AccessToken == "" || m.data.RefreshToken == "" {
		return nil, storage.ErrSessionNotFound
	}
	c := *m.data
	c.User = m.data.User.Clone()
	return &c, nil
}

func (m *memSessions) SaveUser(ctx context.Context, user *models.UserSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return storage.ErrSessionNotFound
	}
	m.data.User = user.Clone()
	return nil
}

func (m *memSessions) DeleteSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

func (m *memSessions) raw() *storage.SessionData {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	c := *m.data
	return &c
}

// fakeTimer is a timer fired manually by the test
type fakeTimer struct {
	sched   *fakeScheduler
	f       func()
	delay   time.Duration
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// Fire runs the callback as if the timer elapsed
func (t *fakeTimer) Fire() {
	t.f()
}

type fakeScheduler struct {
	timers []*fakeTimer
	mu     sync.Mutex
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{sched: s, f: f, delay: d}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) active() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

// fakeGateway implements Gateway with overridable behaviour
type fakeGateway struct {
	loginFn    func(req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	login2FAFn func(req pkgapi.Login2FARequest) (*pkgapi.TokenResponse, error)
	registerFn func(req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error)
	refreshFn  func(token string) (*pkgapi.TokenResponse, error)
	logoutErr  error
	mu         sync.Mutex
	calls      map[string]int
}

func (g *fakeGateway) count(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = make(map[string]int)
	}
	g.calls[name]++
}

func (g *fakeGateway) Calls(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *fakeGateway) Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error) {
	g.count("login")
	if g.loginFn != nil {
		return g.loginFn(req)
	}
	return tokenResponse(1, 3600), nil
}

func (g *fakeGateway) Login2FA(ctx context.Context, req pkgapi.Login2FARequest) (*pkgapi.TokenResponse, error) {
	g.count("login2fa")
	if g.login2FAFn != nil {
		return g.login2FAFn(req)
	}
	return tokenResponse(1, 3600), nil
}

func (g *fakeGateway) Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error) {
	g.count("register")
	if g.registerFn != nil {
		return g.registerFn(req)
	}
	return &pkgapi.RegisterResponse{TokenResponse: *tokenResponse(1, 3600)}, nil
}

func (g *fakeGateway) Refresh(ctx context.Context, token string) (*pkgapi.TokenResponse, error) {
	g.count("refresh")
	if g.refreshFn != nil {
		return g.refreshFn(token)
	}
	return &pkgapi.TokenResponse{AccessToken: "access-refreshed", ExpiresIn: 900}, nil
}

func (g *fakeGateway) Logout(ctx context.Context) error {
	g.count("logout")
	return g.logoutErr
}

func demoUser() *pkgapi.User {
	return &pkgapi.User{
		ID:    "user-1",
		Name:  "Demo User",
		Email: "demo@banktech.com",
		Role:  "customer",
		Account: &pkgapi.Account{
			ID:            "acc-1",
			AgencyNumber:  "0001",
			AccountNumber: "12345",
			Balance:       decimal.RequireFromString("5432.10"),
			Status:        "ACTIVE",
		},
	}
}

func tokenResponse(n int, expiresIn int64) *pkgapi.TokenResponse {
	return &pkgapi.TokenResponse{
		AccessToken:  fmt.Sprintf("access-%d", n),
		RefreshToken: fmt.Sprintf("refresh-%d", n),
		ExpiresIn:    expiresIn,
		User:         demoUser(),
	}
}

var testNow = time.Unix(1_700_000_000, 0).UTC()

type controllerEnv struct {
	ctrl     *Controller
	gateway  *fakeGateway
	sessions *memSessions
	sched    *fakeScheduler
	events   *eventLog
}

type eventLog struct {
	events []Event
	mu     sync.Mutex
}

func (l *eventLog) add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

func newControllerEnv(gateway *fakeGateway) *controllerEnv {
	env := &controllerEnv{
		gateway:  gateway,
		sessions: &memSessions{},
		sched:    &fakeScheduler{},
		events:   &eventLog{},
	}
	env.ctrl = NewController(gateway, NewTokenStore(env.sessions),
		WithAfterFunc(env.sched.AfterFunc),
		WithClock(func() time.Time { return testNow }),
		WithListener(env.events.add),
	)
	return env
}
