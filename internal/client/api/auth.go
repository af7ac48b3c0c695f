package api

import (
	"context"
	"net/http"

	"github.com/iudanet/banktech/pkg/api"
)

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.Do(ctx, Request{Op: "login", Method: http.MethodPost, Path: "/auth/login", Body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login2FA выполняет аутентификацию с кодом второго фактора
func (c *Client) Login2FA(ctx context.Context, req api.Login2FARequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.Do(ctx, Request{Op: "login", Method: http.MethodPost, Path: "/auth/login/2fa", Body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	err := c.Do(ctx, Request{Op: "registration", Method: http.MethodPost, Path: "/auth/register", Body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новый access token
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	req := api.RefreshRequest{RefreshToken: refreshToken}
	err := c.Do(ctx, Request{Op: "token refresh", Method: http.MethodPost, Path: "/auth/refresh", Body: req}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout уведомляет сервер о выходе (отзыв refresh token)
func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil)
}

// Enable2FA начинает настройку второго фактора
func (c *Client) Enable2FA(ctx context.Context) (*api.TwoFactorSetupResponse, error) {
	var resp api.TwoFactorSetupResponse
	if err := c.send(ctx, "enable 2FA", http.MethodPost, "/auth/2fa/enable", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify2FA подтверждает настройку второго фактора кодом
func (c *Client) Verify2FA(ctx context.Context, code string) error {
	return c.send(ctx, "verify 2FA", http.MethodPost, "/auth/2fa/verify", api.TwoFactorCodeRequest{Code: code}, nil)
}

// Disable2FA отключает второй фактор
func (c *Client) Disable2FA(ctx context.Context, code string) error {
	return c.send(ctx, "disable 2FA", http.MethodPost, "/auth/2fa/disable", api.TwoFactorCodeRequest{Code: code}, nil)
}

// RequestPasswordReset запрашивает письмо для смены пароля
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.Do(ctx, Request{
		Op:     "password reset request",
		Method: http.MethodPost,
		Path:   "/auth/password-reset/request",
		Body:   api.PasswordResetRequest{Email: email},
	}, nil)
}

// ConfirmPasswordReset устанавливает новый пароль по token из письма
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return c.Do(ctx, Request{
		Op:     "password reset",
		Method: http.MethodPost,
		Path:   "/auth/password-reset/confirm",
		Body:   api.PasswordResetConfirmRequest{Token: token, NewPassword: newPassword},
	}, nil)
}
