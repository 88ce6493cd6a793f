package pkg

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Day truncates t to its calendar day in UTC.
// All "day" comparisons (workout completions, streaks) go through here.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts an RFC 3339 date-time (with or without fractional seconds)
// or a plain YYYY-MM-DD date. The second return value reports a date-only input.
func ParseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, NewValidationError("date is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, NewValidationError("invalid date [%s], expected ISO-8601", s)
}

// EndOfDay returns the last representable instant of t's UTC day.
func EndOfDay(t time.Time) time.Time {
	return Day(t).Add(24*time.Hour - time.Nanosecond)
}
