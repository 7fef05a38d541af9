package timeutil

import (
	"errors"
	"strings"
	"time"
)

// Invoice dates are calendar dates kept in UTC
var Location = time.UTC

// Common layouts
const (
	DateLayout    = "2006-01-02"
	DisplayLayout = "Jan 02, 2006"
)

var ErrInvalidDate = errors.New("invalid date")

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().In(Location)
}

// ParseDate accepts a plain calendar date or an RFC3339 timestamp and
// returns the calendar date it names at midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}

	if t, err := time.ParseInLocation(DateLayout, value, Location); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location), nil
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.In(Location).Format(DateLayout)
}

// FormatDisplay renders t the way invoices print dates, e.g. "Jan 08, 2026"
func FormatDisplay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Location).Format(DisplayLayout)
}

// StartOfDay returns 00:00:00 UTC of the day t falls on
func StartOfDay(t time.Time) time.Time {
	u := t.In(Location)
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, Location)
}

// EndOfDay returns the last instant of the day t falls on
func EndOfDay(t time.Time) time.Time {
	u := t.In(Location)
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999999999, Location)
}
