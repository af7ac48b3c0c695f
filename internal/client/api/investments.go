package api

import (
	"context"
	"net/http"

	"github.com/iudanet/banktech/pkg/api"
)

// InvestmentSummary возвращает сводку по вложениям
func (c *Client) InvestmentSummary(ctx context.Context) (*api.InvestmentSummary, error) {
	var resp api.InvestmentSummary
	if err := c.get(ctx, "load investment summary", "/investments/summary", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListInvestments возвращает вложения пользователя
func (c *Client) ListInvestments(ctx context.Context) ([]api.Investment, error) {
	var resp []api.Investment
	if err := c.get(ctx, "load investments", "/investments", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetInvestment возвращает вложение по ID
func (c *Client) GetInvestment(ctx context.Context, id string) (*api.Investment, error) {
	var resp api.Investment
	if err := c.get(ctx, "load investment", "/investments/"+pathID(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Invest создает новое вложение
func (c *Client) Invest(ctx context.Context, req api.InvestRequest) (*api.Investment, error) {
	var resp api.Investment
	if err := c.send(ctx, "invest", http.MethodPost, "/investments", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Redeem погашает вложение полностью или частично
func (c *Client) Redeem(ctx context.Context, id string, req api.RedeemRequest) (*api.Investment, error) {
	var resp api.Investment
	if err := c.send(ctx, "redeem", http.MethodPost, "/investments/"+pathID(id)+"/redeem", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
