// Package invoicenumber generates sequential per-account invoice numbers
// of the form INV-<year>-<NNNN>.
package invoicenumber

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Prefix = "INV"
	Width  = 4
)

// First is the number handed out when an account has no prior invoice
func First(year int) string {
	return Format(year, 1)
}

// Format builds INV-<year>-<seq> with seq zero padded to Width digits
func Format(year, seq int) string {
	return fmt.Sprintf("%s-%d-%0*d", Prefix, year, Width, seq)
}

// Next returns the number following last. The trailing numeric suffix after
// the final '-' of last is incremented; the year always comes from year.
// An empty or unparsable last starts the sequence over at 0001.
func Next(last string, year int) string {
	last = strings.TrimSpace(last)
	if last == "" {
		return First(year)
	}

	suffix := last
	if i := strings.LastIndexByte(last, '-'); i >= 0 {
		suffix = last[i+1:]
	}

	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return First(year)
	}
	return Format(year, n+1)
}
