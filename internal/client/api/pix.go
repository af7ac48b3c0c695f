package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iudanet/banktech/pkg/api"
)

// ListPixKeys возвращает ключи PIX счета
func (c *Client) ListPixKeys(ctx context.Context) ([]api.PixKey, error) {
	var resp []api.PixKey
	if err := c.get(ctx, "load PIX keys", "/pix/keys", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreatePixKey регистрирует новый ключ PIX
func (c *Client) CreatePixKey(ctx context.Context, req api.CreatePixKeyRequest) (*api.PixKey, error) {
	var resp api.PixKey
	if err := c.send(ctx, "create PIX key", http.MethodPost, "/pix/keys", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePixKey удаляет ключ PIX
func (c *Client) DeletePixKey(ctx context.Context, keyID string) error {
	return c.send(ctx, "delete PIX key", http.MethodDelete, "/pix/keys/"+pathID(keyID), nil, nil)
}

// ConsultPixKey возвращает владельца ключа перед оплатой
func (c *Client) ConsultPixKey(ctx context.Context, key string) (*api.PixKeyInfo, error) {
	query := url.Values{}
	query.Set("key", key)

	var resp api.PixKeyInfo
	if err := c.get(ctx, "consult PIX key", "/pix/consult", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PayPix выполняет оплату через PIX
func (c *Client) PayPix(ctx context.Context, req api.PixPaymentRequest) (*api.PixPaymentResponse, error) {
	var resp api.PixPaymentResponse
	if err := c.send(ctx, "PIX payment", http.MethodPost, "/pix/payment", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
