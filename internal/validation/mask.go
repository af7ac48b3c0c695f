package validation

import "strings"

// Digits оставляет в строке только цифры
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskCPF форматирует CPF как 000.000.000-00. Неполный ввод маскируется частично.
func MaskCPF(cpf string) string {
	d := Digits(cpf)
	if len(d) > 11 {
		d = d[:11]
	}
	return applyMask(d, []maskPart{{3, ""}, {3, "."}, {3, "."}, {2, "-"}})
}

// MaskPhone форматирует телефон как (00) 00000-0000 или (00) 0000-0000
func MaskPhone(phone string) string {
	d := Digits(phone)
	if len(d) > 11 {
		d = d[:11]
	}
	if len(d) <= 10 {
		return applyMask(d, []maskPart{{0, "("}, {2, ""}, {4, ") "}, {4, "-"}})
	}
	return applyMask(d, []maskPart{{0, "("}, {2, ""}, {5, ") "}, {4, "-"}})
}

type maskPart struct {
	n      int    // число цифр в группе
	prefix string // разделитель перед группой
}

func applyMask(digits string, parts []maskPart) string {
	var b strings.Builder
	for _, p := range parts {
		if digits == "" {
			break
		}
		b.WriteString(p.prefix)
		n := min(p.n, len(digits))
		b.WriteString(digits[:n])
		digits = digits[n:]
	}
	return b.String()
}
