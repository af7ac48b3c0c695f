package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iudanet/banktech/pkg/api"
)

// GetProfile возвращает профиль пользователя
func (c *Client) GetProfile(ctx context.Context) (*api.Profile, error) {
	var resp api.Profile
	if err := c.get(ctx, "load profile", "/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile изменяет профиль пользователя
func (c *Client) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.Profile, error) {
	var resp api.Profile
	if err := c.send(ctx, "update profile", http.MethodPut, "/profile", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDeviceSessions возвращает активные сессии на устройствах
func (c *Client) ListDeviceSessions(ctx context.Context) ([]api.DeviceSession, error) {
	var resp []api.DeviceSession
	if err := c.get(ctx, "load sessions", "/profile/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// RevokeDeviceSession завершает сессию на другом устройстве
func (c *Client) RevokeDeviceSession(ctx context.Context, id string) error {
	return c.send(ctx, "revoke session", http.MethodDelete, "/profile/sessions/"+pathID(id), nil, nil)
}

// AuditLogs возвращает журнал действий пользователя
func (c *Client) AuditLogs(ctx context.Context, limit int) ([]api.AuditLog, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp []api.AuditLog
	if err := c.get(ctx, "load audit logs", "/profile/audit-logs", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSecuritySettings возвращает настройки безопасности
func (c *Client) GetSecuritySettings(ctx context.Context) (*api.SecuritySettings, error) {
	var resp api.SecuritySettings
	if err := c.get(ctx, "load security settings", "/profile/security-settings", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateSecuritySettings сохраняет настройки безопасности
func (c *Client) UpdateSecuritySettings(ctx context.Context, settings api.SecuritySettings) error {
	return c.send(ctx, "update security settings", http.MethodPut, "/profile/security-settings", settings, nil)
}

// GetTransactionLimits возвращает лимиты операций
func (c *Client) GetTransactionLimits(ctx context.Context) (*api.TransactionLimits, error) {
	var resp api.TransactionLimits
	if err := c.get(ctx, "load transaction limits", "/profile/transaction-limits", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTransactionLimits сохраняет лимиты операций
func (c *Client) UpdateTransactionLimits(ctx context.Context, limits api.TransactionLimits) error {
	return c.send(ctx, "update transaction limits", http.MethodPut, "/profile/transaction-limits", limits, nil)
}
