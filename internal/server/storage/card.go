package storage

import (
	"context"

	"github.com/iudanet/banktech/internal/models"
)

// CardStorage хранит карты
type CardStorage interface {
	CreateCard(ctx context.Context, card *models.Card) error
	ListCards(ctx context.Context, accountID string) ([]*models.Card, error)

	// GetCard returns ErrCardNotFound if card doesn't belong to account
	GetCard(ctx context.Context, accountID, cardID string) (*models.Card, error)

	// UpdateCardStatus returns ErrCardNotFound if card doesn't belong to account
	UpdateCardStatus(ctx context.Context, accountID, cardID, status string) error
}

// NotificationStorage хранит уведомления пользователей
type NotificationStorage interface {
	CreateNotification(ctx context.Context, n *models.Notification) error

	// ListNotifications возвращает уведомления, новые первыми
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)

	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead returns ErrNotificationNotFound if notification doesn't belong to user
	MarkRead(ctx context.Context, userID, id string) error

	// MarkAllRead возвращает количество отмеченных уведомлений
	MarkAllRead(ctx context.Context, userID string) (int, error)

	// DeleteNotification returns ErrNotificationNotFound if notification doesn't belong to user
	DeleteNotification(ctx context.Context, userID, id string) error
}
