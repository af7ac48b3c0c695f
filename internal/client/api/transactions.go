package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iudanet/banktech/pkg/api"
)

// Deposit пополняет счет
func (c *Client) Deposit(ctx context.Context, req api.DepositRequest) (*api.DepositResponse, error) {
	var resp api.DepositResponse
	if err := c.send(ctx, "deposit", http.MethodPost, "/transactions/deposit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transfer переводит деньги на другой счет
func (c *Client) Transfer(ctx context.Context, req api.TransferRequest) (*api.TransferResponse, error) {
	var resp api.TransferResponse
	if err := c.send(ctx, "transfer", http.MethodPost, "/transactions/transfer", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTransactions возвращает последние транзакции
func (c *Client) ListTransactions(ctx context.Context, limit int) ([]api.Transaction, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp []api.Transaction
	if err := c.get(ctx, "load transactions", "/transactions", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTransaction возвращает транзакцию по ID
func (c *Client) GetTransaction(ctx context.Context, id string) (*api.Transaction, error) {
	var resp api.Transaction
	if err := c.get(ctx, "load transaction", "/transactions/"+pathID(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStatement возвращает выписку за период (даты в формате YYYY-MM-DD)
func (c *Client) GetStatement(ctx context.Context, startDate, endDate string) (*api.Statement, error) {
	query := url.Values{}
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)

	var resp api.Statement
	if err := c.get(ctx, "load statement", "/transactions/statement", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
