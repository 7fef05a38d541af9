package invoicenumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		last string
		want string
	}{
		{"no prior invoice", "", "INV-2026-0001"},
		{"increments", "INV-2026-0007", "INV-2026-0008"},
		{"carries past padding", "INV-2026-9999", "INV-2026-10000"},
		{"uses current year", "INV-2025-0042", "INV-2026-0043"},
		{"custom number without suffix", "ACME", "INV-2026-0001"},
		{"custom number with suffix", "ACME-12", "INV-2026-0013"},
		{"non numeric suffix", "INV-2026-abc", "INV-2026-0001"},
		{"trailing dash", "INV-2026-", "INV-2026-0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.last, 2026))
		})
	}
}

func TestFirst(t *testing.T) {
	assert.Equal(t, "INV-2027-0001", First(2027))
}
