package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"11", "USD", "$11.00"},
		{"1234.5", "USD", "$1,234.50"},
		{"1234567.891", "EUR", "€1,234,567.89"},
		{"0.1", "GBP", "£0.10"},
		{"250000", "NGN", "NGN 250,000.00"},
		{"999.999", "KES", "KES 1,000.00"},
		{"-42", "usd", "-$42.00"},
		{"5", "", "$5.00"},
		{"5", "dollars", "$5.00"},
		{"5", "JPY", "JPY 5.00"},
	}

	for _, tt := range tests {
		t.Run(tt.currency+"_"+tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestGroup(t *testing.T) {
	assert.Equal(t, "100.00", Group("100.00"))
	assert.Equal(t, "1,000", Group("1000"))
	assert.Equal(t, "12,345.67", Group("12345.67"))
	assert.Equal(t, "123,456,789.00", Group("123456789.00"))
}
