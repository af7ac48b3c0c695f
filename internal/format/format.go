// Package format форматирует суммы и даты для вывода в терминал
// в принятом в Бразилии виде.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/banktech/pkg/api"
)

const (
	currencySymbol = "R$"
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

// BRL форматирует сумму как "R$ 1.234,56"; отрицательная сумма "-R$ 1.234,56"
func BRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	return sign + currencySymbol + " " + groupThousands(intPart) + "," + fracPart
}

// SignedBRL форматирует сумму транзакции со знаком направления
func SignedBRL(tx *api.Transaction) string {
	if tx.Direction() == api.DirectionCredit {
		return "+" + BRL(tx.Magnitude())
	}
	return "-" + BRL(tx.Magnitude())
}

// groupThousands разделяет разряды точкой
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Date форматирует дату как "02/01/2006"
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

// DateTime форматирует дату и время как "02/01/2006 15:04"
func DateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateTimeLayout)
}

// Remaining округляет оставшееся время до секунд, прошедшее время показывает как 0s
func Remaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Second).String()
}

// CardNumber маскирует номер карты, оставляя последние четыре цифры.
// Сервер отдает номер уже маскированным или только последние цифры.
func CardNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) < 4 {
		return "****-****-****-****"
	}
	return "****-****-****-" + digits[len(digits)-4:]
}
