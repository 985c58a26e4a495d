package plan

import (
	"strings"
	"time"
)

// DateEntry is one visible calendar day. Key is the YYYY-MM-DD form of
// the local midnight and is unique within the visible window.
type DateEntry struct {
	Key  string
	Date time.Time
}

const dateKeyLayout = "2006-01-02"

// pathDateLayout is the calendar-formatted remote path segment, e.g.
// "March3_2025". The remote store is a plain string-keyed tree, so day
// paths double as human-readable history keys.
const pathDateLayout = "January2_2006"

// Normalize truncates a time to its local midnight.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays returns the local midnight the given number of days away.
func AddDays(t time.Time, days int) time.Time {
	return Normalize(t).AddDate(0, 0, days)
}

// DateKey formats a time as its calendar-day key.
func DateKey(t time.Time) string {
	return Normalize(t).Format(dateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD key back to a local midnight.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(dateKeyLayout, key, time.Local)
}

// NewDateEntry creates the entry offset days after base.
func NewDateEntry(base time.Time, offset int) DateEntry {
	d := AddDays(base, offset)
	return DateEntry{Key: DateKey(d), Date: d}
}

// GenerateDates builds a contiguous window of count days starting at start.
func GenerateDates(start time.Time, count int) []DateEntry {
	entries := make([]DateEntry, 0, count)
	for i := 0; i < count; i++ {
		entries = append(entries, NewDateEntry(start, i))
	}
	return entries
}

// FormatPathDate converts a day to its remote path segment. The date
// value wins when valid; otherwise the key is parsed, and as a last
// resort the key itself is sanitized so a write still lands somewhere
// recoverable.
func FormatPathDate(dateKey string, date time.Time) string {
	base := date
	if base.IsZero() {
		parsed, err := ParseDateKey(dateKey)
		if err != nil {
			return sanitizePathSegment(dateKey)
		}
		base = parsed
	}
	return Normalize(base).Format(pathDateLayout)
}

// ParsePathDate parses a "March3_2025" style segment. Legacy completion
// records are keyed only by this form.
func ParsePathDate(segment string) (time.Time, bool) {
	t, err := time.ParseInLocation(pathDateLayout, segment, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func sanitizePathSegment(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// FormatLongDate renders a day for headers, e.g. "March 3, 2025".
func FormatLongDate(t time.Time) string {
	return Normalize(t).Format("January 2, 2006")
}

// FormatWeekday renders the weekday name.
func FormatWeekday(t time.Time) string {
	return Normalize(t).Format("Monday")
}

// FormatBadge renders the short badge label, e.g. "Mar 3".
func FormatBadge(t time.Time) string {
	return Normalize(t).Format("Jan 2")
}

// MonthKey formats a sortable month bucket key, e.g. "2025-03".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthLabel formats a month bucket label, e.g. "March 2025".
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}
