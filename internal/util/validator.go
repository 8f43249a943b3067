package util

import (
	"fmt"
	"time"
)

// date layouts accepted for statement dates, most specific first
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses a date string in one of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", s)
}

// ParseDay parses a plain YYYY-MM-DD day.
func ParseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return t, nil
}

// ValidateName checks a statement or category name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("name too long, max 255 characters")
	}
	return nil
}

// ValidateMagnitude checks a discount or saving value, which must be a
// non-negative magnitude.
func ValidateMagnitude(field string, v int64) error {
	if v < 0 {
		return fmt.Errorf("%s must be non-negative, got %d", field, v)
	}
	return nil
}
