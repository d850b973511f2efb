package util

import (
	"testing"
	"time"
)

func TestValidateCurrency_Valid(t *testing.T) {
	for _, code := range []string{"VND", "USD", "EUR"} {
		if err := ValidateCurrency(code); err != nil {
			t.Errorf("ValidateCurrency(%q) error = %v, want nil", code, err)
		}
	}
}

func TestValidateCurrency_Invalid(t *testing.T) {
	for _, code := range []string{"", "vn", "vnd", "DONG", "V1D"} {
		if err := ValidateCurrency(code); err == nil {
			t.Errorf("ValidateCurrency(%q) error = nil, want error", code)
		}
	}
}

func TestParseDateTime_AcceptedLayouts(t *testing.T) {
	cases := []string{
		"2026-07-01T08:30:00+07:00",
		"2026-07-01T08:30:00",
		"2026-07-01",
	}
	for _, s := range cases {
		got, err := ParseDateTime(s)
		if err != nil {
			t.Errorf("ParseDateTime(%q) error = %v, want nil", s, err)
			continue
		}
		if got.Year() != 2026 || got.Month() != time.July || got.Day() != 1 {
			t.Errorf("ParseDateTime(%q) = %v, wrong date", s, got)
		}
	}
}

func TestParseDateTime_Invalid(t *testing.T) {
	for _, s := range []string{"", "01/07/2026", "2026-13-01", "yesterday"} {
		if _, err := ParseDateTime(s); err == nil {
			t.Errorf("ParseDateTime(%q) error = nil, want error", s)
		}
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2026-07")
	if err != nil {
		t.Fatalf("ParseMonth(2026-07) error = %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.July {
		t.Errorf("ParseMonth(2026-07) = %v, wrong month", got)
	}

	for _, s := range []string{"", "2026", "2026-7", "07-2026"} {
		if _, err := ParseMonth(s); err == nil {
			t.Errorf("ParseMonth(%q) error = nil, want error", s)
		}
	}
}
