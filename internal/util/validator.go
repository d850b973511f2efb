package util

import (
	"fmt"
	"regexp"
	"time"
)

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateCurrency checks the currency is a 3-letter ISO-style code.
func ValidateCurrency(code string) error {
	if !currencyRe.MatchString(code) {
		return fmt.Errorf("invalid currency code %q", code)
	}
	return nil
}

// ParseDateTime parses the timestamp formats accepted by the API.
func ParseDateTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,          // 2025-12-03T00:00:00+07:00
		"2006-01-02T15:04:05", // 2025-12-03T00:00:00
		"2006-01-02",          // 2025-12-03
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

// ParseMonth parses a YYYY-MM month string.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return t, nil
}
