package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/iudanet/banktech/internal/client/api"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/validation"
	pkgapi "github.com/iudanet/banktech/pkg/api"
)

// State состояние сессии
type State int

const (
	StateLoggedOut State = iota
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged out"
	case StateLoggedIn:
		return "logged in"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	// DashboardRoute куда перейти после входа
	DashboardRoute = "/dashboard"
	// EntryRoute куда перейти после принудительного выхода
	EntryRoute = "/"

	// RefreshLeeway за сколько до истечения обновлять access token
	RefreshLeeway = 60 * time.Second
	// DefaultExpiresIn время жизни токена, если сервер его не сообщил
	// и токен не является JWT с exp
	DefaultExpiresIn int64 = 900
	// DefaultRefreshTimeout таймаут фонового обновления токена и общего запроса входа
	DefaultRefreshTimeout = 30 * time.Second
)

// RefreshDelay возвращает задержку до планового обновления: max(expiresIn-60, 1) секунд
func RefreshDelay(expiresIn int64) time.Duration {
	return max(time.Duration(expiresIn)*time.Second-RefreshLeeway, time.Second)
}

// Gateway вызовы API, нужные контроллеру сессии
type Gateway interface {
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Login2FA(ctx context.Context, req pkgapi.Login2FARequest) (*pkgapi.TokenResponse, error)
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context) error
}

// Timer запланированный вызов
type Timer interface {
	Stop() bool
}

// AfterFunc планирует f через d. В тестах подменяется на ручной таймер.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Event уведомление о смене состояния сессии
type Event struct {
	Err    error  // ErrSessionExpired при принудительном выходе
	Target string // маршрут для перехода
	State  State
}

// Listener получает события сессии. Вызывается без удержания блокировок.
type Listener func(Event)

// LoginResult результат входа или регистрации
type LoginResult struct {
	Session *models.Session
	Target  string
}

// Controller управляет входом, регистрацией, выходом и обновлением токена.
// Только он пишет в TokenStore по событиям аутентификации.
type Controller struct {
	gateway        Gateway
	store          *TokenStore
	logger         *slog.Logger
	afterFunc      AfterFunc
	now            func() time.Time
	baseCtx        context.Context
	cancel         context.CancelFunc
	timer          Timer
	listeners      []Listener
	group          singleflight.Group
	refreshTimeout time.Duration
	generation     uint64
	mu             sync.Mutex
	state          State
}

// ControllerOption настраивает Controller
type ControllerOption func(*Controller)

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithAfterFunc подменяет планировщик таймера
func WithAfterFunc(fn AfterFunc) ControllerOption {
	return func(c *Controller) {
		c.afterFunc = fn
	}
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// WithListener подписывает на события сессии
func WithListener(l Listener) ControllerOption {
	return func(c *Controller) {
		c.listeners = append(c.listeners, l)
	}
}

// WithRefreshTimeout задает таймаут фонового обновления
func WithRefreshTimeout(timeout time.Duration) ControllerOption {
	return func(c *Controller) {
		c.refreshTimeout = timeout
	}
}

// NewController создает контроллер в состоянии LoggedOut.
// Для восстановления сохраненной сессии вызовите Restore.
func NewController(gateway Gateway, store *TokenStore, opts ...ControllerOption) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		gateway:        gateway,
		store:          store,
		logger:         slog.Default(),
		afterFunc:      realAfterFunc,
		now:            time.Now,
		baseCtx:        ctx,
		cancel:         cancel,
		refreshTimeout: DefaultRefreshTimeout,
		state:          StateLoggedOut,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State возвращает текущее состояние
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session возвращает сохраненную сессию
func (c *Controller) Session(ctx context.Context) (*models.Session, bool) {
	return c.store.Load(ctx)
}

// Login выполняет вход по email и паролю
func (c *Controller) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateRequired("password", password); err != nil {
		return nil, err
	}

	return c.authenticate(ctx, "login\x00"+email+"\x00"+password, func(ctx context.Context) (*pkgapi.TokenResponse, error) {
		resp, err := c.gateway.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
		if err != nil {
			return nil, fmt.Errorf("login failed: %w", err)
		}
		return resp, nil
	})
}

// LoginWith2FA выполняет вход с кодом второго фактора.
// Неверный код возвращается как ErrInvalid2FACode, отдельно от неверного пароля.
func (c *Controller) LoginWith2FA(ctx context.Context, email, password, code string) (*LoginResult, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateRequired("password", password); err != nil {
		return nil, err
	}
	if err := validation.ValidateTOTPCode(code); err != nil {
		return nil, err
	}

	key := "login2fa\x00" + email + "\x00" + password + "\x00" + code
	return c.authenticate(ctx, key, func(ctx context.Context) (*pkgapi.TokenResponse, error) {
		resp, err := c.gateway.Login2FA(ctx, pkgapi.Login2FARequest{Email: email, Password: password, Code: code})
		if err != nil {
			if isInvalidCode(err) {
				return nil, fmt.Errorf("%w: %w", ErrInvalid2FACode, err)
			}
			return nil, fmt.Errorf("login failed: %w", err)
		}
		return resp, nil
	})
}

// Register регистрирует пользователя и сразу входит.
// Если сервер вернул только пользователя, выполняется обычный вход.
func (c *Controller) Register(ctx context.Context, form validation.Registration) (*LoginResult, error) {
	if err := validation.ValidateRegistration(form); err != nil {
		return nil, err
	}

	return c.authenticate(ctx, "register\x00"+form.Email, func(ctx context.Context) (*pkgapi.TokenResponse, error) {
		resp, err := c.gateway.Register(ctx, pkgapi.RegisterRequest{
			Name:     form.Name,
			Email:    form.Email,
			Password: form.Password,
			CPF:      validation.Digits(form.CPF),
			Phone:    validation.Digits(form.Phone),
		})
		if err != nil {
			return nil, fmt.Errorf("registration failed: %w", err)
		}

		if resp.HasTokens() {
			return &resp.TokenResponse, nil
		}

		tokens, err := c.gateway.Login(ctx, pkgapi.LoginRequest{Email: form.Email, Password: form.Password})
		if err != nil {
			return nil, fmt.Errorf("login after registration failed: %w", err)
		}
		if tokens.User == nil {
			tokens.User = resp.User
		}
		return tokens, nil
	})
}

// authenticate выполняет вызов входа с защитой от повторной отправки:
// одновременные одинаковые вызовы делят один запрос и один результат.
// Общий запрос не зависит от отмены ctx первого вызывающего, каждый
// вызывающий перестает ждать только по своему ctx.
func (c *Controller) authenticate(
	ctx context.Context,
	key string,
	call func(ctx context.Context) (*pkgapi.TokenResponse, error),
) (*LoginResult, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		defer cancel()

		resp, err := call(callCtx)
		if err != nil {
			return nil, err
		}
		return c.establish(callCtx, resp)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		session, _ := res.Val.(*models.Session)
		return &LoginResult{Session: session.Clone(), Target: DashboardRoute}, nil
	}
}

// establish сохраняет новую сессию и переходит в LoggedIn.
// При ошибке сохранения состояние не меняется.
func (c *Controller) establish(ctx context.Context, resp *pkgapi.TokenResponse) (*models.Session, error) {
	access := resp.BearerToken()
	if access == "" || resp.RefreshToken == "" {
		return nil, ErrIncompleteSession
	}

	now := c.now()
	session := &models.Session{
		IssuedAt:     now,
		User:         models.SnapshotFromAPI(resp.User),
		AccessToken:  access,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    c.expiresIn(ctx, resp.ExpiresIn, access, now),
	}

	// Запись под c.mu: незавершенное обновление не сможет очистить новую сессию
	c.mu.Lock()
	if err := c.store.Save(ctx, session); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.state = StateLoggedIn
	c.scheduleLocked(RefreshDelay(session.ExpiresIn))
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "session established",
		slog.String("user_id", userID(session)),
		slog.Int64("expires_in", session.ExpiresIn))
	c.notify(Event{State: StateLoggedIn, Target: DashboardRoute})

	return session, nil
}

// Restore восстанавливает сохраненную сессию при запуске и планирует
// обновление на оставшееся время жизни токена
func (c *Controller) Restore(ctx context.Context) bool {
	session, ok := c.store.Load(ctx)
	if !ok {
		return false
	}

	remaining := session.ExpiresAt().Sub(c.now())

	c.mu.Lock()
	c.state = StateLoggedIn
	c.scheduleLocked(max(remaining-RefreshLeeway, time.Second))
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "session restored", slog.Duration("remaining", remaining))
	return true
}

// RefreshIfStale обновляет токен сразу, если до истечения меньше RefreshLeeway.
// Нужен короткоживущим процессам, которые не дождутся таймера.
func (c *Controller) RefreshIfStale(ctx context.Context) error {
	session, ok := c.store.Load(ctx)
	if !ok {
		return ErrNotLoggedIn
	}
	if session.ExpiresAt().Sub(c.now()) > RefreshLeeway {
		return nil
	}
	return c.Refresh(ctx)
}

// Refresh обменивает refresh token на новый access token.
// Любая ошибка завершает сессию: хранилище очищается, таймер отменяется,
// возвращается ошибка, обернутая в ErrSessionExpired.
func (c *Controller) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *Controller) refresh(ctx context.Context) error {
	c.mu.Lock()
	startGen := c.generation
	c.mu.Unlock()

	session, ok := c.store.Load(ctx)
	if !ok {
		if c.State() == StateLoggedIn {
			return c.expire(ctx, startGen, ErrNotLoggedIn)
		}
		return ErrNotLoggedIn
	}

	resp, err := c.gateway.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if c.baseCtx.Err() != nil {
			// Контроллер закрывается, сессия остается для следующего запуска
			return fmt.Errorf("token refresh aborted: %w", err)
		}
		return c.expire(ctx, startGen, fmt.Errorf("token refresh failed: %w", err))
	}

	access := resp.BearerToken()
	if access == "" {
		return c.expire(ctx, startGen, ErrIncompleteSession)
	}

	now := c.now()
	next := session.Clone()
	next.AccessToken = access
	next.IssuedAt = now
	next.ExpiresIn = c.expiresIn(ctx, resp.ExpiresIn, access, now)
	if resp.RefreshToken != "" {
		next.RefreshToken = resp.RefreshToken
	}

	c.mu.Lock()
	if c.generation != startGen {
		// Пока запрос был в пути, произошел logout или новый вход
		c.mu.Unlock()
		return ErrNotLoggedIn
	}
	if err := c.store.Save(ctx, next); err != nil {
		wasLoggedIn := c.expireLocked(ctx)
		c.mu.Unlock()
		return c.expired(ctx, wasLoggedIn, err)
	}
	c.state = StateLoggedIn
	c.scheduleLocked(RefreshDelay(next.ExpiresIn))
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "access token refreshed", slog.Int64("expires_in", next.ExpiresIn))
	return nil
}

// expire завершает сессию после неудачного обновления, начатого в
// поколении gen. Если с тех пор был logout или новый вход, текущая
// сессия не трогается и возвращается ErrNotLoggedIn.
func (c *Controller) expire(ctx context.Context, gen uint64, cause error) error {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "stale refresh failure ignored", slog.Any("error", cause))
		return ErrNotLoggedIn
	}
	wasLoggedIn := c.expireLocked(ctx)
	c.mu.Unlock()

	return c.expired(ctx, wasLoggedIn, cause)
}

// expireLocked переводит в LoggedOut и очищает хранилище. Вызывается под c.mu.
func (c *Controller) expireLocked(ctx context.Context) bool {
	wasLoggedIn := c.state == StateLoggedIn
	c.cancelLocked()
	c.state = StateLoggedOut
	c.store.Clear(context.WithoutCancel(ctx))
	return wasLoggedIn
}

func (c *Controller) expired(ctx context.Context, wasLoggedIn bool, cause error) error {
	err := fmt.Errorf("%w: %w", ErrSessionExpired, cause)
	c.logger.WarnContext(ctx, "session expired, logging out", slog.Any("error", cause))
	if wasLoggedIn {
		c.notify(Event{State: StateLoggedOut, Err: err, Target: EntryRoute})
	}
	return err
}

// Logout выполняет выход. Повторный вызов ничего не делает.
// Сервер уведомляется по возможности, локальные данные удаляются всегда.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	wasLoggedIn := c.state == StateLoggedIn
	c.cancelLocked()
	c.state = StateLoggedOut
	c.mu.Unlock()

	// 1. Уведомляем сервер, пока токен еще в хранилище
	if _, ok := c.store.Load(ctx); ok {
		if err := c.gateway.Logout(ctx); err != nil {
			// Не прерываем процесс, если сервер недоступен
			c.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", err))
		}
	}

	// 2. Всегда удаляем локальные данные
	c.store.Clear(ctx)

	if wasLoggedIn {
		c.notify(Event{State: StateLoggedOut, Target: EntryRoute})
	}
}

// UpdateBalance записывает баланс в снимок сессии (оптимистичное обновление)
func (c *Controller) UpdateBalance(ctx context.Context, balance decimal.Decimal) error {
	return c.store.UpdateBalance(ctx, balance)
}

// UpdateUser заменяет снимок пользователя после загрузки профиля или счета
func (c *Controller) UpdateUser(ctx context.Context, user *models.UserSnapshot) error {
	return c.store.SaveUser(ctx, user)
}

// Close останавливает таймер. Сохраненная сессия остается.
func (c *Controller) Close() {
	c.mu.Lock()
	c.cancelLocked()
	c.mu.Unlock()
	c.cancel()
}

// scheduleLocked заменяет таймер обновления. Вызывается под c.mu.
func (c *Controller) scheduleLocked(delay time.Duration) {
	c.cancelLocked()
	gen := c.generation
	c.timer = c.afterFunc(delay, func() {
		c.onTimer(gen)
	})
}

// cancelLocked отменяет таймер и делает недействительными уже сработавшие колбэки
func (c *Controller) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
}

func (c *Controller) onTimer(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.state != StateLoggedIn {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(c.baseCtx, c.refreshTimeout)
	defer cancel()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("scheduled token refresh failed", slog.Any("error", err))
	}
}

func (c *Controller) notify(e Event) {
	for _, l := range c.listeners {
		l(e)
	}
}

// expiresIn возвращает время жизни токена: из ответа сервера,
// иначе из claim exp (без проверки подписи), иначе DefaultExpiresIn
func (c *Controller) expiresIn(ctx context.Context, declared int64, token string, now time.Time) int64 {
	if declared > 0 {
		return declared
	}
	if exp, ok := tokenExpiry(token); ok {
		return max(int64(exp.Sub(now)/time.Second), 1)
	}
	c.logger.WarnContext(ctx, "token lifetime unknown, using default", slog.Int64("expires_in", DefaultExpiresIn))
	return DefaultExpiresIn
}

func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// IsTwoFactorRequired сообщает, что для входа нужен код второго фактора
func IsTwoFactorRequired(err error) bool {
	apiErr, ok := api.AsAPIError(err)
	return ok && apiErr.Code == pkgapi.ErrCode2FARequired
}

func isInvalidCode(err error) bool {
	apiErr, ok := api.AsAPIError(err)
	if !ok {
		return false
	}
	return apiErr.Code == pkgapi.ErrCodeInvalid2FACode || apiErr.Code == pkgapi.ErrCodeInvalidCode
}

func userID(s *models.Session) string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// Compile-time check: API клиент подходит контроллеру
var _ Gateway = (*api.Client)(nil)
