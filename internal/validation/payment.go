package validation

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/pkg/api"
)

const (
	// BoletoBarcodeLen длина штрихкода boleto
	BoletoBarcodeLen = 44
	// BoletoDigitableLineLen длина линии для ручного ввода
	BoletoDigitableLineLen = 47
	// TOTPCodeLen длина кода второго фактора
	TOTPCodeLen = 6
)

// ValidateAmount проверяет сумму операции: больше нуля, не больше двух знаков после запятой
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fieldError("amount", "amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return fieldError("amount", "amount must have at most 2 decimal places")
	}
	return nil
}

// ParseAmount разбирает сумму из ввода пользователя. Принимает и
// бразильский формат с запятой ("1.234,56"), и точку ("1234.56").
func ParseAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(normalizeAmount(input))
	if err != nil {
		return decimal.Zero, fieldError("amount", "invalid amount %q", input)
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func normalizeAmount(input string) string {
	out := make([]byte, 0, len(input))
	hasComma := strings.Contains(input, ",")
	for i := range len(input) {
		ch := input[i]
		switch {
		case ch == ' ':
			continue
		case ch == '.' && hasComma:
			// разделитель тысяч
			continue
		case ch == ',':
			out = append(out, '.')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

// ValidatePixKey проверяет значение ключа PIX по его типу
func ValidatePixKey(keyType api.PixKeyType, key string) error {
	switch keyType {
	case api.PixKeyCPF:
		if !IsValidCPF(key) {
			return fieldError("pixKey", "invalid CPF key")
		}
	case api.PixKeyEmail:
		if !EmailPattern.MatchString(key) {
			return fieldError("pixKey", "invalid email key")
		}
	case api.PixKeyPhone:
		if ValidatePhone(key) != nil {
			return fieldError("pixKey", "invalid phone key")
		}
	case api.PixKeyRandom:
		if _, err := uuid.Parse(key); err != nil {
			return fieldError("pixKey", "invalid random key")
		}
	default:
		return fieldError("pixKeyType", "unknown PIX key type %q", string(keyType))
	}
	return nil
}

// ValidateBarcode проверяет штрихкод boleto или линию для ручного ввода
func ValidateBarcode(barcode string) error {
	digits := Digits(barcode)
	if len(digits) != BoletoBarcodeLen && len(digits) != BoletoDigitableLineLen {
		return fieldError("barcode", "barcode must have %d or %d digits", BoletoBarcodeLen, BoletoDigitableLineLen)
	}
	return nil
}

// ValidateTOTPCode проверяет код второго фактора: ровно 6 цифр
func ValidateTOTPCode(code string) error {
	if len(code) != TOTPCodeLen || len(Digits(code)) != TOTPCodeLen {
		return fieldError("code", "code must have %d digits", TOTPCodeLen)
	}
	return nil
}
