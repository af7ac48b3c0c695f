package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/banktech/internal/models"
	"github.com/iudanet/banktech/internal/server/storage"
	"github.com/iudanet/banktech/pkg/api"
)

// Notifier создает уведомления о событиях счета и безопасности.
// Сбой записи уведомления не прерывает операцию, а только логируется.
type Notifier struct {
	store  storage.NotificationStorage
	logger *slog.Logger
}

// NewNotifier создает Notifier
func NewNotifier(store storage.NotificationStorage, logger *slog.Logger) *Notifier {
	return &Notifier{store: store, logger: logger}
}

// Notify сохраняет уведомление для пользователя
func (n *Notifier) Notify(ctx context.Context, userID string, kind api.NotificationType, title, message string) {
	if n == nil {
		return
	}

	actionURL := ""
	if kind == api.NotificationTransaction {
		actionURL = "/transactions"
	}

	err := n.store.CreateNotification(ctx, &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      string(kind),
		Title:     title,
		Message:   message,
		ActionURL: actionURL,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		n.logger.WarnContext(ctx, "failed to create notification",
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}
