package plan

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const minutesPerDay = 24 * 60

// splitTimeRange splits on the first hyphen, en dash or em dash.
func splitTimeRange(timeRange string) (string, string, bool) {
	idx := strings.IndexAny(timeRange, "-–—")
	if idx < 0 {
		return "", "", false
	}
	_, width := utf8.DecodeRuneInString(timeRange[idx:])
	start := strings.TrimSpace(timeRange[:idx])
	end := strings.TrimSpace(timeRange[idx+width:])
	if start == "" || end == "" {
		return "", "", false
	}
	return start, end, true
}

// sanitizeTimeToken drops an "AM/PM" style suffix after a slash and any
// non digit/colon runes, e.g. " 09:00 / AM" -> "09:00".
func sanitizeTimeToken(token string) string {
	token = strings.SplitN(token, "/", 2)[0]
	var b strings.Builder
	for _, r := range token {
		if (r >= '0' && r <= '9') || r == ':' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// parseTimeToMinutes converts "HH:MM" (minutes optional) to minutes
// since midnight. The literal 24:00 maps to 1440 as an end-of-day
// sentinel; other hour values are taken modulo 24.
func parseTimeToMinutes(token string) (int, bool) {
	cleaned := sanitizeTimeToken(token)
	if cleaned == "" {
		return 0, false
	}

	parts := strings.SplitN(cleaned, ":", 2)
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes := 0
	if len(parts) > 1 && parts[1] != "" {
		minutes, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, false
		}
	}
	if minutes < 0 || minutes > 59 {
		return 0, false
	}

	if hours == 24 && minutes == 0 {
		return minutesPerDay, true
	}
	return (hours%24)*60 + minutes, true
}

// ExtractDurationMinutes parses a free-text "HH:MM – HH:MM" range into
// whole minutes. Ranges where the end does not exceed the start are
// assumed to wrap past midnight. Returns ok=false for malformed input
// or a non-positive result; callers must never treat that as a
// zero-length event.
func ExtractDurationMinutes(timeRange string) (int, bool) {
	startRaw, endRaw, ok := splitTimeRange(timeRange)
	if !ok {
		return 0, false
	}

	start, ok := parseTimeToMinutes(startRaw)
	if !ok {
		return 0, false
	}
	end, ok := parseTimeToMinutes(endRaw)
	if !ok {
		return 0, false
	}

	duration := end - start
	if duration <= 0 {
		duration += minutesPerDay
	}
	if duration <= 0 {
		return 0, false
	}
	return duration, true
}

// FormatMinutesLabel renders a minute count as "45m", "2h" or "1h 30m".
func FormatMinutesLabel(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	if minutes < 60 {
		return strconv.Itoa(minutes) + "m"
	}
	hours := minutes / 60
	remaining := minutes % 60
	if remaining == 0 {
		return strconv.Itoa(hours) + "h"
	}
	return strconv.Itoa(hours) + "h " + strconv.Itoa(remaining) + "m"
}
