package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iudanet/banktech/internal/server/storage"
	"github.com/iudanet/banktech/pkg/api"
)

// NotificationHandler обрабатывает уведомления пользователя
type NotificationHandler struct {
	responder
	store storage.NotificationStorage
}

// NewNotificationHandler создает новый handler уведомлений
func NewNotificationHandler(logger *slog.Logger, store storage.NotificationStorage) *NotificationHandler {
	return &NotificationHandler{
		responder: responder{logger: logger},
		store:     store,
	}
}

// List обрабатывает GET /notifications?unreadOnly=true
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	unreadOnly := false
	if raw := r.URL.Query().Get("unreadOnly"); raw != "" {
		var err error
		if unreadOnly, err = strconv.ParseBool(raw); err != nil {
			h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "unreadOnly must be a boolean")
			return
		}
	}

	list, err := h.store.ListNotifications(r.Context(), userID, unreadOnly)
	if err != nil {
		h.sendInternal(w, r, "failed to list notifications", err)
		return
	}

	out := make([]api.Notification, 0, len(list))
	for _, n := range list {
		out = append(out, notificationView(n))
	}
	h.sendJSON(w, out, http.StatusOK)
}

// UnreadCount обрабатывает GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	count, err := h.store.CountUnread(r.Context(), userID)
	if err != nil {
		h.sendInternal(w, r, "failed to count notifications", err)
		return
	}

	h.sendJSON(w, api.UnreadCountResponse{Count: count}, http.StatusOK)
}

// MarkRead обрабатывает PUT /notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.MarkRead(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.sendNotificationError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead обрабатывает PUT /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	marked, err := h.store.MarkAllRead(r.Context(), userID)
	if err != nil {
		h.sendInternal(w, r, "failed to mark notifications read", err)
		return
	}

	h.logger.DebugContext(r.Context(), "notifications marked read", slog.Int("count", marked))
	w.WriteHeader(http.StatusNoContent)
}

// Delete обрабатывает DELETE /notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteNotification(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.sendNotificationError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) sendNotificationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotificationNotFound) {
		h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "notification not found")
		return
	}
	h.sendInternal(w, r, "failed to update notification", err)
}
