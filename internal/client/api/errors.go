package api

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated возвращается до сетевого вызова, если запрос
// требует авторизации, а access token отсутствует
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError ответ сервера со статусом вне диапазона 2xx
type APIError struct {
	Op      string // операция, например "login" или "transfer"
	Code    string // машинный код из поля error, может быть пустым
	Message string // сообщение для пользователя
	Status  int    // HTTP статус
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// IsStatus проверяет HTTP статус ошибки
func (e *APIError) IsStatus(status int) bool {
	return e.Status == status
}

// NetworkError сбой транспорта: сервер недоступен, таймаут, разрыв соединения
type NetworkError struct {
	Err error
	Op  string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AsAPIError извлекает *APIError из цепочки ошибок
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError сообщает, что ошибка вызвана сбоем транспорта
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
