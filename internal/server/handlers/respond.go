package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/banktech/pkg/api"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// responder общие методы ответа для всех handlers
type responder struct {
	logger *slog.Logger
}

// sendJSON отправляет JSON ответ
func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой и машинным кодом
func (h responder) sendError(w http.ResponseWriter, statusCode int, code, message string) {
	h.sendJSON(w, api.ErrorResponse{Error: code, Message: message}, statusCode)
}

// sendInternal логирует ошибку и отвечает 500 без деталей
func (h responder) sendInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	h.sendError(w, http.StatusInternalServerError, api.ErrCodeInternal, "internal server error")
}

// decode разбирает JSON тело запроса. При ошибке отвечает 400 и возвращает false.
func (h responder) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request", slog.Any("error", err))
		h.sendError(w, http.StatusBadRequest, api.ErrCodeValidation, "invalid request body")
		return false
	}
	return true
}

// requireUser извлекает пользователя, проставленного auth middleware
func (h responder) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, api.ErrCodeUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// ErrCodeMethodNotAllowed код ответа 405
const ErrCodeMethodNotAllowed = "method_not_allowed"

// NotFound отвечает 404 в формате API для неизвестных маршрутов
func NotFound(logger *slog.Logger) http.Handler {
	h := responder{logger: logger}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.sendError(w, http.StatusNotFound, api.ErrCodeNotFound, "route not found")
	})
}

// MethodNotAllowed отвечает 405, когда путь известен, а метод нет
func MethodNotAllowed(logger *slog.Logger) http.Handler {
	h := responder{logger: logger}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.sendError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})
}
