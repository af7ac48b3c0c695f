package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iudanet/banktech/pkg/api"
)

// ConsultBoleto возвращает boleto по штрихкоду
func (c *Client) ConsultBoleto(ctx context.Context, barcode string) (*api.Boleto, error) {
	query := url.Values{}
	query.Set("barcode", barcode)

	var resp api.Boleto
	if err := c.get(ctx, "consult boleto", "/boleto/consult", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PayBoleto оплачивает boleto
func (c *Client) PayBoleto(ctx context.Context, req api.BoletoPaymentRequest) (*api.BoletoPaymentResponse, error) {
	var resp api.BoletoPaymentResponse
	if err := c.send(ctx, "boleto payment", http.MethodPost, "/boleto/payment", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BoletoHistory возвращает оплаченные boleto
func (c *Client) BoletoHistory(ctx context.Context) ([]api.Boleto, error) {
	var resp []api.Boleto
	if err := c.get(ctx, "load boleto history", "/boleto/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
