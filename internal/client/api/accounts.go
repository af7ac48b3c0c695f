package api

import (
	"context"

	"github.com/iudanet/banktech/pkg/api"
)

// GetAccount возвращает счет текущего пользователя (GET /accounts/me)
func (c *Client) GetAccount(ctx context.Context) (*api.Account, error) {
	var resp api.Account
	if err := c.get(ctx, "load account", "/accounts/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBalance возвращает только баланс счета
func (c *Client) GetBalance(ctx context.Context) (*api.BalanceResponse, error) {
	var resp api.BalanceResponse
	if err := c.get(ctx, "load balance", "/accounts/balance", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDashboard возвращает агрегированные данные главной страницы
func (c *Client) GetDashboard(ctx context.Context) (*api.DashboardResponse, error) {
	var resp api.DashboardResponse
	if err := c.get(ctx, "load dashboard", "/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
