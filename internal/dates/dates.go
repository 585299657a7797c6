// Package dates provides canonical date/time parsing and validation helpers.
//
// This package exists to avoid duplicating parsing logic across:
// - property value casting and validation
// - query rule literals (before/after and the calendar-window operators)
// - CLI date arguments
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegex = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// DateLayout is the canonical storage layout for date values.
const DateLayout = "2006-01-02"

// DatetimeLayout is the canonical storage layout for datetime values.
const DatetimeLayout = "2006-01-02T15:04:05"

// TimeLayout is the canonical storage layout for time-of-day values.
const TimeLayout = "15:04:05"

// IsValidDate checks if a string is a valid YYYY-MM-DD date.
func IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !IsValidDate(s) {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return time.Parse(DateLayout, s)
}

// IsValidDatetime checks if a string is a valid datetime.
//
// Accepted formats:
// - RFC3339 (e.g. 2025-01-01T10:30:00Z, 2025-06-15T14:00:00+05:00)
// - YYYY-MM-DDTHH:MM
// - YYYY-MM-DDTHH:MM:SS
func IsValidDatetime(s string) bool {
	_, err := ParseDatetime(s)
	return err == nil
}

// ParseDatetime parses a datetime in one of the accepted formats.
func ParseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid datetime: empty")
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		DatetimeLayout,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime: %q", s)
}

// IsValidTimeOfDay checks if a string is a valid HH:MM:SS time.
func IsValidTimeOfDay(s string) bool {
	_, err := ParseTimeOfDay(s)
	return err == nil
}

// ParseTimeOfDay parses an HH:MM:SS time of day.
func ParseTimeOfDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !timeRegex.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid time: %q", s)
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time: %q", s)
	}
	return t, nil
}

// ParseDateArg parses a CLI date argument which can be:
// - "today", "yesterday", "tomorrow" (relative dates)
// - "YYYY-MM-DD" format (absolute date)
// - Empty string defaults to today
func ParseDateArg(arg string, now time.Time) (time.Time, error) {
	if arg == "" {
		return now, nil
	}

	dateArg := strings.ToLower(strings.TrimSpace(arg))
	switch dateArg {
	case "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	default:
		parsed, err := ParseDate(dateArg)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date format '%s', use YYYY-MM-DD or today/yesterday/tomorrow", dateArg)
		}
		return parsed, nil
	}
}
