package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iudanet/banktech/pkg/api"
)

// ListTickets возвращает обращения пользователя
func (c *Client) ListTickets(ctx context.Context) ([]api.SupportTicket, error) {
	var resp []api.SupportTicket
	if err := c.get(ctx, "load tickets", "/support/tickets", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTicket возвращает обращение с перепиской
func (c *Client) GetTicket(ctx context.Context, id string) (*api.SupportTicket, error) {
	var resp api.SupportTicket
	if err := c.get(ctx, "load ticket", "/support/tickets/"+pathID(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTicket создает обращение
func (c *Client) CreateTicket(ctx context.Context, req api.CreateTicketRequest) (*api.SupportTicket, error) {
	var resp api.SupportTicket
	if err := c.send(ctx, "create ticket", http.MethodPost, "/support/tickets", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddTicketMessage добавляет сообщение в обращение
func (c *Client) AddTicketMessage(ctx context.Context, id, message string) (*api.SupportMessage, error) {
	var resp api.SupportMessage
	path := "/support/tickets/" + pathID(id) + "/messages"
	if err := c.send(ctx, "send message", http.MethodPost, path, api.TicketMessageRequest{Message: message}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CloseTicket закрывает обращение
func (c *Client) CloseTicket(ctx context.Context, id string) error {
	return c.send(ctx, "close ticket", http.MethodPut, "/support/tickets/"+pathID(id)+"/close", nil, nil)
}

// FAQ возвращает вопросы базы знаний, опционально по категории
func (c *Client) FAQ(ctx context.Context, category string) ([]api.FAQItem, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}

	var resp []api.FAQItem
	// База знаний доступна без входа
	err := c.Do(ctx, Request{Op: "load FAQ", Method: http.MethodGet, Path: "/support/faq", Query: query}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
