package domain

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when a submitted amount cannot be read
// as a positive decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmountCents converts a user-supplied debt amount into integer
// cents. Both "12.50" and "12,50" are accepted; more than two
// fractional digits is an error. The result must be strictly positive.
func ParseAmountCents(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.Replace(s, ",", ".", 1)

	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole = s[:idx]
		frac = s[idx+1:]
	}
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if len(frac) > 2 {
		return 0, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	// ParseInt tolerates a leading sign, so insist on bare digits in
	// both parts before converting.
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents64, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	total := units*100 + cents64
	if total <= 0 {
		return 0, ErrInvalidAmount
	}
	return total, nil
}

// FormatAmountCents renders cents back to a dot-separated decimal.
func FormatAmountCents(cents int64) string {
	return strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
