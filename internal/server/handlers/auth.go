package handlers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"

	"github.com/iudanet/banktech/internal/crypto"
	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
	"github.com/iudanet/banktech/internal/validation"
	"github.com/iudanet/banktech/pkg/api"
)

const (
	// DefaultAgency агентство всех счетов dev сервера
	DefaultAgency = "0001"

	// RoleCustomer роль нового пользователя
	RoleCustomer = "customer"

	// totpIssuer имя в приложении-аутентификаторе
	totpIssuer = "BankTech"

	// resetTokenTTL время жизни token восстановления пароля
	resetTokenTTL = time.Hour

	// accountNumberAttempts попыток подобрать свободный номер счета
	accountNumberAttempts = 5
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	userStorage    storage.UserStorage
	tokenStorage   storage.TokenStorage
	resetStorage   storage.ResetStorage
	accountStorage storage.AccountStorage
	notifier       *Notifier
	jwtConfig      JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(
	logger *slog.Logger,
	userStorage storage.UserStorage,
	tokenStorage storage.TokenStorage,
	resetStorage storage.ResetStorage,
	accountStorage storage.AccountStorage,
	notifier *Notifier,
	jwtConfig JWTConfig,
) *AuthHandler {
	return &AuthHandler{
		responder:      responder{logger: logger},
		userStorage:    userStorage,
		tokenStorage:   tokenStorage,
		resetStorage:   resetStorage,
		accountStorage: accountStorage,
		notifier:       notifier,
		jwtConfig:      jwtConfig,
	}
}

// Register обрабатывает POST /auth/register.
// Создает пользователя, открывает счет и сразу выдает сессию.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	form := validation.Registration{
		Name:            strings.TrimSpace(req.Name),
		Email:           req.Email,
		CPF:             req.CPF,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.Password,
	}
	if err := validation.ValidateRegistration(form); err != nil {
		h.logger.WarnContext(ctx, "invalid registration", slog.String("email", req.Email), slog.Any("error", err))
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.sendInternal(w, r, "failed to hash password", err)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         form.Name,
		Email:        req.Email,
		CPF:          validation.Digits(req.CPF),
		Phone:        validation.Digits(req.Phone),
		Role:         RoleCustomer,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("email", req.Email))
			h.sendError(w, http.StatusConflict, api.ErrCodeConflict, "email already registered")
			return
		}
		h.sendInternal(w, r, "failed to create user", err)
		return
	}

	account, err := OpenAccount(ctx, h.accountStorage, user.ID)
	if err != nil {
		h.sendInternal(w, r, "failed to open account", err)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("user_id", user.ID),
		slog.String("account", account.AccountNumber))

	h.notifier.Notify(ctx, user.ID, api.NotificationInfo,
		"Bem-vindo ao BankTech", fmt.Sprintf("Sua conta %s/%s está ativa.", account.AgencyNumber, account.AccountNumber))

	resp, err := h.issueTokens(ctx, user, account)
	if err != nil {
		h.sendInternal(w, r, "failed to issue tokens", err)
		return
	}

	h.sendJSON(w, resp, http.StatusCreated)
}

// Login обрабатывает POST /auth/login.
// Если у пользователя включен второй фактор, отвечает кодом 2fa_required.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, ok := h.checkCredentials(w, r, req.Email, req.Password)
	if !ok {
		return
	}

	if user.TwoFactorEnabled {
		h.logger.InfoContext(r.Context(), "login requires 2FA code", slog.String("user_id", user.ID))
		h.sendError(w, http.StatusUnauthorized, api.ErrCode2FARequired, "two-factor code required")
		return
	}

	h.completeLogin(w, r, user)
}

// Login2FA обрабатывает POST /auth/login/2fa
func (h *AuthHandler) Login2FA(w http.ResponseWriter, r *http.Request) {
	var req api.Login2FARequest
	if !h.decode(w, r, &req) {
		return
	}

	user, ok := h.checkCredentials(w, r, req.Email, req.Password)
	if !ok {
		return
	}

	if user.TwoFactorEnabled && !totp.Validate(req.Code, user.TOTPSecret) {
		h.logger.WarnContext(r.Context(), "login failed: invalid 2FA code", slog.String("user_id", user.ID))
		h.sendError(w, http.StatusUnauthorized, api.ErrCodeInvalid2FACode, "invalid two-factor code")
		return
	}

	h.completeLogin(w, r, user)
}

// checkCredentials проверяет email и пароль. Неизвестный email и неверный
// пароль неотличимы для клиента.
func (h *AuthHandler) checkCredentials(w http.ResponseWriter, r *http.Request, email, password string) (*models.User, bool) {
	ctx := r.Context()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "email and password are required")
		return nil, false
	}

	user, err := h.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("email", email))
			h.sendError(w, http.StatusUnauthorized, api.ErrCodeInvalidCredentials, "invalid email or password")
			return nil, false
		}
		h.sendInternal(w, r, "failed to get user", err)
		return nil, false
	}

	if err := crypto.CheckPassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, crypto.ErrPasswordMismatch) {
			h.sendInternal(w, r, "failed to check password", err)
			return nil, false
		}
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("user_id", user.ID))
		h.sendError(w, http.StatusUnauthorized, api.ErrCodeInvalidCredentials, "invalid email or password")
		return nil, false
	}

	return user, true
}

func (h *AuthHandler) completeLogin(w http.ResponseWriter, r *http.Request, user *models.User) {
	ctx := r.Context()

	account, err := h.accountStorage.GetAccountByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, storage.ErrAccountNotFound) {
		h.sendInternal(w, r, "failed to get account", err)
		return
	}

	resp, err := h.issueTokens(ctx, user, account)
	if err != nil {
		h.sendInternal(w, r, "failed to issue tokens", err)
		return
	}

	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))

	h.sendJSON(w, resp, http.StatusOK)
}

// issueTokens выпускает access и refresh token и сохраняет refresh token
func (h *AuthHandler) issueTokens(ctx context.Context, user *models.User, account *models.Account) (*api.TokenResponse, error) {
	accessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		return nil, err
	}

	err = h.tokenStorage.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return &api.TokenResponse{
		User:         userView(user, account),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Refresh обрабатывает POST /auth/refresh.
// Refresh token ротируется: старый удаляется, в ответе приходит новый.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		// Совместимость с клиентами, которые шлют token в заголовке
		refreshToken, _ = bearerToken(r)
	}
	if refreshToken == "" {
		h.sendError(w, http.StatusUnauthorized, api.ErrCodeUnauthorized, "refresh token is required")
		return
	}

	storedToken, err := h.tokenStorage.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			h.sendError(w, http.StatusUnauthorized, api.ErrCodeUnauthorized, "invalid refresh token")
			return
		}
		h.sendInternal(w, r, "failed to get refresh token", err)
		return
	}

	// Старый token удаляется в любом случае
	if err := h.tokenStorage.DeleteRefreshToken(ctx, refreshToken); err != nil {
		h.logger.WarnContext(ctx, "failed to delete old refresh token", slog.Any("error", err))
	}

	if time.Now().After(storedToken.ExpiresAt) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", storedToken.UserID))
		h.sendError(w, http.StatusUnauthorized, api.ErrCodeUnauthorized, "refresh token expired")
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, storedToken.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, http.StatusUnauthorized, api.ErrCodeUnauthorized, "invalid refresh token")
			return
		}
		h.sendInternal(w, r, "failed to get user", err)
		return
	}

	resp, err := h.issueTokens(ctx, user, nil)
	if err != nil {
		h.sendInternal(w, r, "failed to issue tokens", err)
		return
	}
	// При обновлении клиент сохраняет известного ему пользователя
	resp.User = nil

	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("user_id", user.ID))

	h.sendJSON(w, resp, http.StatusOK)
}

// Logout обрабатывает POST /auth/logout: удаляет все refresh token пользователя
// TODO сейчас выходит из всех устройств. надо сделать выход только с 1 например через ID устройства
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	deletedCount, err := h.tokenStorage.DeleteUserTokens(r.Context(), userID)
	if err != nil {
		h.sendInternal(w, r, "failed to delete user tokens", err)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged out successfully",
		slog.String("user_id", userID),
		slog.Int("tokens_deleted", deletedCount))

	w.WriteHeader(http.StatusNoContent)
}

// Enable2FA обрабатывает POST /auth/2fa/enable.
// Генерирует секрет; второй фактор включается только после Verify2FA.
func (h *AuthHandler) Enable2FA(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if user.TwoFactorEnabled {
		h.sendError(w, http.StatusConflict, api.ErrCodeConflict, "two-factor authentication already enabled")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		h.sendInternal(w, r, "failed to generate TOTP secret", err)
		return
	}

	user.TOTPSecret = key.Secret()
	if err := h.userStorage.UpdateUser(r.Context(), user); err != nil {
		h.sendInternal(w, r, "failed to save TOTP secret", err)
		return
	}

	h.sendJSON(w, api.TwoFactorSetupResponse{
		QRCode: key.URL(),
		Secret: key.Secret(),
	}, http.StatusOK)
}

// Verify2FA обрабатывает POST /auth/2fa/verify
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req api.TwoFactorCodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if user.TOTPSecret == "" {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "two-factor setup was not started")
		return
	}
	if !totp.Validate(req.Code, user.TOTPSecret) {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeInvalid2FACode, "invalid two-factor code")
		return
	}

	user.TwoFactorEnabled = true
	if err := h.userStorage.UpdateUser(r.Context(), user); err != nil {
		h.sendInternal(w, r, "failed to enable 2FA", err)
		return
	}

	h.logger.InfoContext(r.Context(), "2FA enabled", slog.String("user_id", user.ID))
	h.notifier.Notify(r.Context(), user.ID, api.NotificationSecurity,
		"Autenticação em dois fatores ativada", "Novos acessos exigirão o código do aplicativo.")

	w.WriteHeader(http.StatusNoContent)
}

// Disable2FA обрабатывает POST /auth/2fa/disable
func (h *AuthHandler) Disable2FA(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req api.TwoFactorCodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if !user.TwoFactorEnabled {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "two-factor authentication is not enabled")
		return
	}
	if !totp.Validate(req.Code, user.TOTPSecret) {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeInvalid2FACode, "invalid two-factor code")
		return
	}

	user.TwoFactorEnabled = false
	user.TOTPSecret = ""
	if err := h.userStorage.UpdateUser(r.Context(), user); err != nil {
		h.sendInternal(w, r, "failed to disable 2FA", err)
		return
	}

	h.logger.InfoContext(r.Context(), "2FA disabled", slog.String("user_id", user.ID))
	h.notifier.Notify(r.Context(), user.ID, api.NotificationSecurity,
		"Autenticação em dois fatores desativada", "Se não foi você, altere sua senha.")

	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset обрабатывает POST /auth/password-reset/request.
// Ответ не зависит от того, существует ли email.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PasswordResetRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		h.logger.InfoContext(ctx, "password reset for unknown email", slog.String("email", req.Email))
	case err != nil:
		h.sendInternal(w, r, "failed to get user", err)
		return
	default:
		reset := &models.PasswordReset{
			Token:     uuid.NewString(),
			UserID:    user.ID,
			ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
		}
		if err := h.resetStorage.SavePasswordReset(ctx, reset); err != nil {
			h.sendInternal(w, r, "failed to save password reset", err)
			return
		}
		// Почты у dev сервера нет: token доступен оператору в логе
		h.logger.InfoContext(ctx, "password reset token issued",
			slog.String("user_id", user.ID),
			slog.String("token", reset.Token))
	}

	w.WriteHeader(http.StatusAccepted)
}

// ConfirmPasswordReset обрабатывает POST /auth/password-reset/confirm.
// После смены пароля все сессии пользователя завершаются.
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PasswordResetConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, err.Error())
		return
	}

	reset, err := h.resetStorage.ConsumePasswordReset(ctx, req.Token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "invalid or expired reset token")
			return
		}
		h.sendInternal(w, r, "failed to consume password reset", err)
		return
	}
	if time.Now().After(reset.ExpiresAt) {
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "invalid or expired reset token")
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, reset.UserID)
	if err != nil {
		h.sendInternal(w, r, "failed to get user", err)
		return
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		h.sendInternal(w, r, "failed to hash password", err)
		return
	}

	user.PasswordHash = hash
	if err := h.userStorage.UpdateUser(ctx, user); err != nil {
		h.sendInternal(w, r, "failed to update password", err)
		return
	}

	if _, err := h.tokenStorage.DeleteUserTokens(ctx, user.ID); err != nil {
		h.logger.WarnContext(ctx, "failed to revoke sessions", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "password reset completed", slog.String("user_id", user.ID))
	h.notifier.Notify(ctx, user.ID, api.NotificationSecurity,
		"Senha alterada", "Sua senha foi redefinida e as sessões ativas foram encerradas.")

	w.WriteHeader(http.StatusNoContent)
}

// currentUser загружает пользователя текущего запроса
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return nil, false
	}

	user, err := h.userStorage.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, http.StatusUnauthorized, api.ErrCodeUnauthorized, "user no longer exists")
			return nil, false
		}
		h.sendInternal(w, r, "failed to get user", err)
		return nil, false
	}

	return user, true
}

// OpenAccount открывает счет пользователю со случайным пятизначным номером
func OpenAccount(ctx context.Context, accounts storage.AccountStorage, userID string) (*models.Account, error) {
	for range accountNumberAttempts {
		n, err := rand.Int(rand.Reader, big.NewInt(90000))
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}

		account := &models.Account{
			ID:            uuid.NewString(),
			UserID:        userID,
			AgencyNumber:  DefaultAgency,
			AccountNumber: fmt.Sprintf("%05d", n.Int64()+10000),
			Status:        "ACTIVE",
			CreatedAt:     time.Now().UTC(),
		}

		err = accounts.CreateAccount(ctx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, storage.ErrAccountAlreadyExists) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("no free account number after %d attempts", accountNumberAttempts)
}

// bearerToken извлекает token из заголовка "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
