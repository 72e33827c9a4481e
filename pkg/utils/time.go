package utils

import "time"

// FormatTimestamp renders a time as UTC RFC3339 with nanoseconds
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses a time string in RFC3339 format
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatDate renders the calendar date part of a time
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// ParseDate parses either a YYYY-MM-DD date or a full RFC3339 timestamp
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return ParseTimestamp(s)
}
