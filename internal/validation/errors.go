package validation

import (
	"errors"
	"fmt"
)

// ValidationError ошибка проверки поля формы. На клиенте возникает до
// сетевого запроса, dev сервер повторяет те же проверки.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError сообщает, что ошибка является ошибкой проверки формы
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func fieldError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
