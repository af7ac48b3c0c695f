package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// EmailPattern простая проверка адреса: что-то@что-то.что-то без пробелов
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	// MinPasswordLen минимальная длина пароля при регистрации
	MinPasswordLen = 8
	// MinNameLen минимальная длина имени
	MinNameLen = 3
	// MinPhoneDigits минимальное число цифр в телефоне (DDD + номер)
	MinPhoneDigits = 10
	// MaxPhoneDigits максимальное число цифр в телефоне с кодом страны
	MaxPhoneDigits = 13
)

// ValidateEmail проверяет формат email
func ValidateEmail(email string) error {
	if email == "" {
		return fieldError("email", "email cannot be empty")
	}
	if !EmailPattern.MatchString(email) {
		return fieldError("email", "invalid email")
	}
	return nil
}

// ValidateRequired проверяет, что поле заполнено
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fieldError(field, "%s cannot be empty", field)
	}
	return nil
}

// ValidatePassword проверяет требования к новому паролю
// Минимум 8 символов
func ValidatePassword(password string) error {
	if password == "" {
		return fieldError("password", "password cannot be empty")
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return fieldError("password", "password must be at least %d characters long", MinPasswordLen)
	}
	return nil
}

// ValidatePasswordConfirmation проверяет совпадение пароля и подтверждения
func ValidatePasswordConfirmation(password, confirmation string) error {
	if password != confirmation {
		return fieldError("confirmPassword", "passwords do not match")
	}
	return nil
}

// ValidateName проверяет имя пользователя
func ValidateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLen {
		return fieldError("name", "name must be at least %d characters long", MinNameLen)
	}
	return nil
}

// ValidateCPF проверяет CPF по контрольным цифрам.
// Принимает как маскированный (000.000.000-00), так и чистый ввод.
func ValidateCPF(cpf string) error {
	if !IsValidCPF(cpf) {
		return fieldError("cpf", "invalid CPF")
	}
	return nil
}

// IsValidCPF проверяет контрольные цифры CPF
func IsValidCPF(cpf string) bool {
	digits := Digits(cpf)
	if len(digits) != 11 {
		return false
	}

	// 000.000.000-00, 111.111.111-11 и т.д. проходят контрольную сумму, но недействительны
	if strings.Count(digits, digits[:1]) == len(digits) {
		return false
	}

	return cpfCheckDigit(digits[:9], 10) == digits[9] && cpfCheckDigit(digits[:10], 11) == digits[10]
}

func cpfCheckDigit(digits string, weight int) byte {
	sum := 0
	for i := range len(digits) {
		sum += int(digits[i]-'0') * (weight - i)
	}
	rest := sum * 10 % 11
	if rest == 10 {
		rest = 0
	}
	return byte('0' + rest)
}

// ValidatePhone проверяет количество цифр в телефоне
func ValidatePhone(phone string) error {
	n := len(Digits(phone))
	if n < MinPhoneDigits || n > MaxPhoneDigits {
		return fieldError("phone", "invalid phone")
	}
	return nil
}

// Registration данные формы регистрации
type Registration struct {
	Name            string
	Email           string
	CPF             string
	Phone           string
	Password        string
	ConfirmPassword string
}

// ValidateRegistration проверяет форму регистрации в порядке полей формы.
// CPF и телефон необязательны, но если заполнены, должны быть корректны.
func ValidateRegistration(r Registration) error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if r.CPF != "" {
		if err := ValidateCPF(r.CPF); err != nil {
			return err
		}
	}
	if r.Phone != "" {
		if err := ValidatePhone(r.Phone); err != nil {
			return err
		}
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	return ValidatePasswordConfirmation(r.Password, r.ConfirmPassword)
}
