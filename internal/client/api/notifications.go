package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iudanet/banktech/pkg/api"
)

// ListNotifications возвращает уведомления, опционально только непрочитанные
func (c *Client) ListNotifications(ctx context.Context, unreadOnly bool) ([]api.Notification, error) {
	query := url.Values{}
	if unreadOnly {
		query.Set("unreadOnly", "true")
	}

	var resp []api.Notification
	if err := c.get(ctx, "load notifications", "/notifications", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// MarkNotificationRead отмечает уведомление прочитанным
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.send(ctx, "mark notification read", http.MethodPut, "/notifications/"+pathID(id)+"/read", nil, nil)
}

// MarkAllNotificationsRead отмечает все уведомления прочитанными
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.send(ctx, "mark notifications read", http.MethodPut, "/notifications/read-all", nil, nil)
}

// DeleteNotification удаляет уведомление
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.send(ctx, "delete notification", http.MethodDelete, "/notifications/"+pathID(id), nil, nil)
}

// GetNotificationPreferences возвращает настройки уведомлений
func (c *Client) GetNotificationPreferences(ctx context.Context) (*api.NotificationPreferences, error) {
	var resp api.NotificationPreferences
	if err := c.get(ctx, "load notification preferences", "/notifications/preferences", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateNotificationPreferences сохраняет настройки уведомлений
func (c *Client) UpdateNotificationPreferences(ctx context.Context, prefs api.NotificationPreferences) error {
	return c.send(ctx, "update notification preferences", http.MethodPut, "/notifications/preferences", prefs, nil)
}

// UnreadNotificationCount возвращает число непрочитанных уведомлений
func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var resp api.UnreadCountResponse
	if err := c.get(ctx, "load unread count", "/notifications/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
