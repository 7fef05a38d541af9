// Package money formats invoice amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// symbols mirrors the en-US rendering of each supported currency.
// Currencies without a narrow symbol in that locale print their code.
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"NGN": "NGN ",
	"KES": "KES ",
}

// DefaultCurrency is used when a currency code is missing or malformed
const DefaultCurrency = "USD"

// Symbol returns the display prefix for a currency code
func Symbol(currency string) string {
	code := normalize(currency)
	if s, ok := symbols[code]; ok {
		return s
	}
	return code + " "
}

// Format renders amount with two decimals, thousands separators and the
// currency prefix, e.g. Format(1234.5, "USD") == "$1,234.50".
func Format(amount decimal.Decimal, currency string) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	return sign + Symbol(currency) + Group(amount.StringFixed(2))
}

// Group inserts comma separators into the integer part of a plain decimal string
func Group(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

func normalize(currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return DefaultCurrency
	}
	return code
}
