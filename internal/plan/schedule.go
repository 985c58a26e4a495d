package plan

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DayType selects which schedule template applies to a calendar day.
type DayType string

const (
	DayTypeWork DayType = "work"
	DayTypeOff  DayType = "off"
)

// ValidDayType reports whether s names a known day type.
func ValidDayType(s string) bool {
	return DayType(s) == DayTypeWork || DayType(s) == DayTypeOff
}

// ScheduleItem is a single template row: a time range plus an activity.
type ScheduleItem struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

const slugMaxLen = 18

func slugify(value string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(value) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if len(s) > slugMaxLen {
		s = s[:slugMaxLen]
	}
	return s
}

// DeterministicItemID derives a stable id from an item's time and
// activity so the same (time, activity) pair maps to the same id across
// restarts. Returns "" when either part is empty.
func DeterministicItemID(dayType DayType, timeRange, activity string) string {
	if timeRange == "" || activity == "" {
		return ""
	}
	return string(dayType) + "-" + slugify(timeRange) + "-" + slugify(activity)
}

// NewScheduleItemID returns a random, collision-resistant item id.
func NewScheduleItemID(dayType DayType) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return string(dayType) + "-" + ts + "-" + suffix
}

// NormalizeItem trims an item and fills in a missing id, preferring the
// deterministic derivation over a random one.
func NormalizeItem(dayType DayType, item ScheduleItem) ScheduleItem {
	timeRange := strings.TrimSpace(item.Time)
	activity := strings.TrimSpace(item.Activity)
	id := strings.TrimSpace(item.ID)
	if id == "" {
		id = DeterministicItemID(dayType, timeRange, activity)
		if id == "" {
			id = NewScheduleItemID(dayType)
		}
	}
	return ScheduleItem{ID: id, Time: timeRange, Activity: activity}
}

// SanitizeList normalizes a template list, dropping rows with an empty
// time or activity and regenerating ids on collision within the list.
func SanitizeList(dayType DayType, list []ScheduleItem) []ScheduleItem {
	seen := make(map[string]bool, len(list))
	out := make([]ScheduleItem, 0, len(list))
	for _, item := range list {
		normalized := NormalizeItem(dayType, item)
		if normalized.Time == "" || normalized.Activity == "" {
			continue
		}
		for seen[normalized.ID] {
			normalized.ID = NewScheduleItemID(dayType)
		}
		seen[normalized.ID] = true
		out = append(out, normalized)
	}
	return out
}

// ScheduleID addresses a template row independent of its list position:
// "<dayType>::<item id>", falling back to the time range for rows that
// never got an id.
func ScheduleID(dayType DayType, item ScheduleItem) string {
	identifier := item.ID
	if identifier == "" {
		identifier = item.Time
	}
	return string(dayType) + "::" + identifier
}

// ScheduleIDFromString builds a schedule id from a raw identifier.
func ScheduleIDFromString(dayType DayType, identifier string) string {
	return string(dayType) + "::" + identifier
}

// ScheduleTimerID is the timer-engine key for a block on a given day.
func ScheduleTimerID(dateKey, scheduleID string) string {
	return "schedule-" + dateKey + "-" + scheduleID
}
