package validation

import (
	"encoding/json"
	"errors"
	"math"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

// Parsed decimals outside these bounds are rejected before any arithmetic
// rescales them.
const (
	maxDecimalExponent = 20
	maxDecimalDigits   = 40
)

var (
	errMissing    = errors.New("missing")
	errNotNumber  = errors.New("not a number")
	errNotString  = errors.New("not a string")
	errNotBoolean = errors.New("not a boolean")
)

// toDecimal coerces a decoded JSON value into a decimal. Numbers, numeric
// strings and booleans are accepted the way a form coercion would accept them.
func toDecimal(v any) (decimal.Decimal, error) {
	d, err := parseDecimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := d.Exponent(); exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return decimal.Zero, errNotNumber
	}
	if d.NumDigits() > maxDecimalDigits {
		return decimal.Zero, errNotNumber
	}
	return d, nil
}

func parseDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, errMissing
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, errNotNumber
		}
		return d, nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, errNotNumber
		}
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, errNotNumber
		}
		return d, nil
	case bool:
		if n {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	default:
		return decimal.Zero, errNotNumber
	}
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", errMissing
	case string:
		return strings.TrimSpace(s), nil
	default:
		return "", errNotString
	}
}

// optionalString returns nil for absent, null or blank values
func optionalString(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, err := toString(v)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	default:
		return false, errNotBoolean
	}
}

// IsEmail reports whether s is a bare address like "a@acme.com"
func IsEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
