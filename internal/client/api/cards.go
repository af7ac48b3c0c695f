package api

import (
	"context"
	"net/http"

	"github.com/iudanet/banktech/pkg/api"
)

// ListCards возвращает карты пользователя
func (c *Client) ListCards(ctx context.Context) ([]api.Card, error) {
	var resp []api.Card
	if err := c.get(ctx, "load cards", "/cards", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetCard возвращает карту по ID
func (c *Client) GetCard(ctx context.Context, id string) (*api.Card, error) {
	var resp api.Card
	if err := c.get(ctx, "load card", "/cards/"+pathID(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCard выпускает новую карту
func (c *Client) CreateCard(ctx context.Context, req api.CreateCardRequest) (*api.Card, error) {
	var resp api.Card
	if err := c.send(ctx, "create card", http.MethodPost, "/cards", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BlockCard временно блокирует карту
func (c *Client) BlockCard(ctx context.Context, id string) error {
	return c.send(ctx, "block card", http.MethodPut, "/cards/"+pathID(id)+"/block", nil, nil)
}

// UnblockCard снимает блокировку карты
func (c *Client) UnblockCard(ctx context.Context, id string) error {
	return c.send(ctx, "unblock card", http.MethodPut, "/cards/"+pathID(id)+"/unblock", nil, nil)
}

// CancelCard окончательно отменяет карту
func (c *Client) CancelCard(ctx context.Context, id string) error {
	return c.send(ctx, "cancel card", http.MethodDelete, "/cards/"+pathID(id)+"/cancel", nil, nil)
}
