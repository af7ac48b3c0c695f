package api

import (
	"encoding/json"
)

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`    // email пользователя
	Password string `json:"password"` // пароль в открытом виде (только по TLS)
}

// Login2FARequest представляет запрос на аутентификацию с кодом второго фактора
type Login2FARequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"` // TOTP код из приложения-аутентификатора
}

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	CPF      string `json:"cpf,omitempty"`   // только цифры
	Phone    string `json:"phone,omitempty"` // только цифры
}

// RefreshRequest представляет запрос на обновление access token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse представляет ответ с токенами доступа.
// Сервер отдает одну из двух форм: {user, token} или
// {accessToken, refreshToken, user, expiresIn}.
type TokenResponse struct {
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	Token        string `json:"token,omitempty"` // короткая форма ответа
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"` // время жизни access token в секундах
}

// BearerToken возвращает access token независимо от формы ответа
func (r *TokenResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// RegisterResponse представляет ответ на регистрацию.
// Сервер возвращает либо созданного пользователя, либо ответ как у login.
type RegisterResponse struct {
	TokenResponse
}

// UnmarshalJSON разбирает обе формы ответа регистрации
func (r *RegisterResponse) UnmarshalJSON(data []byte) error {
	var tokens TokenResponse
	if err := json.Unmarshal(data, &tokens); err != nil {
		return err
	}

	// Если токенов нет и user не вложен, тело ответа и есть пользователь
	if tokens.BearerToken() == "" && tokens.User == nil {
		var user User
		if err := json.Unmarshal(data, &user); err != nil {
			return err
		}
		if user.ID != "" || user.Email != "" {
			tokens.User = &user
		}
	}

	r.TokenResponse = tokens
	return nil
}

// HasTokens сообщает, выдал ли сервер сессию сразу при регистрации
func (r *RegisterResponse) HasTokens() bool {
	return r.BearerToken() != ""
}

// TwoFactorSetupResponse представляет ответ на включение 2FA
type TwoFactorSetupResponse struct {
	QRCode string `json:"qrCode"` // otpauth:// URI для QR кода
	Secret string `json:"secret"` // base32 секрет для ручного ввода
}

// TwoFactorCodeRequest представляет запрос с кодом подтверждения 2FA
type TwoFactorCodeRequest struct {
	Code string `json:"code"`
}

// PasswordResetRequest представляет запрос на восстановление пароля
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest представляет подтверждение смены пароля
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`   // машинный код ошибки
	Message string `json:"message,omitempty"` // сообщение для пользователя
}

// Коды ошибок, которые сервер кладет в поле error
const (
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeInvalid2FACode     = "invalid_2fa_code"
	ErrCodeInvalidCode        = "invalid_code" // старое имя invalid_2fa_code
	ErrCode2FARequired        = "2fa_required"
	ErrCodeInsufficientFunds  = "insufficient_funds"
	ErrCodeValidation         = "validation_error"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeInternal           = "internal_error"
)
