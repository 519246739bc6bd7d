package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount with two decimals and thousands separators,
// e.g. FormatCurrency("PHP", 1234.5) -> "PHP1,234.50".
func FormatCurrency(prefix string, amount decimal.Decimal) string {
	neg := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(prefix)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}
