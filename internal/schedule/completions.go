package schedule

import (
	"strconv"
	"time"

	"github.com/sadopc/tasker/internal/plan"
)

// Completion records live at
//
//	<completionRoot>/<January2_2006>/<dayType>/<itemID>
//
// Writes are best-effort: a failed write leaves the optimistic local
// mirror as the user-visible truth and the next snapshot reconciles.
// Earlier schema versions keyed records by list index or by raw time
// string; every write opportunistically sweeps those duplicates, since
// the store itself has no schema versioning.

func (m *Manager) dayPath(formattedDate string) string {
	return m.completionRoot + "/" + formattedDate
}

func (m *Manager) dayTypePath(formattedDate string, dayType plan.DayType) string {
	return m.dayPath(formattedDate) + "/" + string(dayType)
}

// RecordScheduleCompletion writes the completion record for one block
// on one day and removes any legacy entries that describe the same
// block under an older key.
func (m *Manager) RecordScheduleCompletion(dateKey string, dayType plan.DayType, item plan.ScheduleItem, date time.Time) {
	if dateKey == "" || dayType == "" {
		return
	}
	normalized := plan.NormalizeItem(dayType, item)
	if normalized.Time == "" || normalized.Activity == "" {
		return
	}
	formatted := plan.FormatPathDate(dateKey, date)
	if formatted == "" {
		return
	}

	record := CompletionRecord{
		ID:         normalized.ID,
		Time:       normalized.Time,
		Activity:   normalized.Activity,
		Status:     true,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	}
	m.remote.WriteNode(m.dayTypePath(formatted, dayType)+"/"+normalized.ID, record)

	m.removeLegacyEntries(formatted, dayType, normalized.ID, normalized.Time)
}

// ClearScheduleCompletion nulls one block's record, plus any legacy
// duplicate for the same block.
func (m *Manager) ClearScheduleCompletion(dateKey string, dayType plan.DayType, item plan.ScheduleItem, date time.Time) {
	if dateKey == "" || dayType == "" || item.ID == "" {
		return
	}
	formatted := plan.FormatPathDate(dateKey, date)
	if formatted == "" {
		return
	}

	m.remote.WriteNode(m.dayTypePath(formatted, dayType)+"/"+item.ID, nil)
	m.removeLegacyEntries(formatted, dayType, item.ID, item.Time)
}

// ClearScheduleCompletionForDate nulls an entire day, or only the
// day+type subtree when dayType is non-empty. Used when a day's plan
// changes or a day is removed from the window.
func (m *Manager) ClearScheduleCompletionForDate(dateKey string, date time.Time, dayType plan.DayType) {
	if dateKey == "" {
		return
	}
	formatted := plan.FormatPathDate(dateKey, date)
	if formatted == "" {
		return
	}

	path := m.dayPath(formatted)
	if dayType != "" {
		path = m.dayTypePath(formatted, dayType)
	}
	m.remote.WriteNode(path, nil)
}

// removeLegacyEntries deletes sibling records whose key or embedded
// id/time matches the canonical record being written.
func (m *Manager) removeLegacyEntries(formattedDate string, dayType plan.DayType, canonicalID, canonicalTime string) {
	basePath := m.dayTypePath(formattedDate, dayType)
	value, err := m.remote.ReadNode(basePath)
	if err != nil {
		return
	}
	entries, ok := value.(map[string]any)
	if !ok {
		return
	}

	for key, raw := range entries {
		if key == canonicalID {
			continue
		}
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, _ := entry["id"].(string)
		timeRange, _ := entry["time"].(string)
		if (id != "" && id == canonicalID) || (timeRange != "" && timeRange == canonicalTime) {
			m.remote.WriteNode(basePath+"/"+key, nil)
		}
	}
}

// ObserveScheduleCompletions subscribes to one day's completion
// subtree. The handler receives the full subtree value (or nil) on
// every remote change; the returned function stops the subscription.
func (m *Manager) ObserveScheduleCompletions(dateKey string, date time.Time, handler func(value any)) func() {
	formatted := plan.FormatPathDate(dateKey, date)
	if formatted == "" {
		if handler != nil {
			handler(nil)
		}
		return func() {}
	}

	return m.remote.WatchNode(m.dayPath(formatted), func(value any, err error) {
		if err != nil || handler == nil {
			return
		}
		handler(value)
	})
}

// CompletionMirror converts a day snapshot into the set of completed
// schedule ids. Canonical records carry their item id; legacy records
// keyed by list index are resolved through the current template, and
// anything else falls back to its raw key. Entries without
// status == true never count.
func CompletionMirror(snapshot any, templates map[plan.DayType][]plan.ScheduleItem) map[string]bool {
	out := make(map[string]bool)
	day, ok := snapshot.(map[string]any)
	if !ok {
		return out
	}

	for rawDayType, rawEntries := range day {
		dayType := plan.DayType(rawDayType)
		entries, ok := rawEntries.(map[string]any)
		if !ok {
			continue
		}
		template := templates[dayType]

		for key, rawEntry := range entries {
			entry, ok := rawEntry.(map[string]any)
			if !ok {
				continue
			}
			if status, _ := entry["status"].(bool); !status {
				continue
			}

			identifier, _ := entry["id"].(string)
			if identifier == "" {
				if index, err := strconv.Atoi(key); err == nil {
					if index < 0 || index >= len(template) {
						continue
					}
					identifier = template[index].ID
				} else {
					identifier = key
				}
			}
			out[plan.ScheduleIDFromString(dayType, identifier)] = true
		}
	}
	return out
}

// FindHistoricalCompletion walks backward one day at a time from
// before, probing the completion tree for the first day carrying any
// completed record. Days already visible are skipped. Returns the
// found day, or ok=false after maxSteps probes.
func (m *Manager) FindHistoricalCompletion(before time.Time, isVisible func(dateKey string) bool, maxSteps int) (time.Time, bool) {
	cursor := plan.AddDays(before, -1)
	for steps := 0; steps < maxSteps; steps++ {
		key := plan.DateKey(cursor)
		if isVisible != nil && isVisible(key) {
			cursor = plan.AddDays(cursor, -1)
			continue
		}

		value, err := m.remote.ReadNode(m.dayPath(plan.FormatPathDate(key, cursor)))
		if err == nil && snapshotHasCompletion(value) {
			return cursor, true
		}
		cursor = plan.AddDays(cursor, -1)
	}
	return time.Time{}, false
}

func snapshotHasCompletion(snapshot any) bool {
	day, ok := snapshot.(map[string]any)
	if !ok {
		return false
	}
	for _, rawEntries := range day {
		entries, ok := rawEntries.(map[string]any)
		if !ok {
			continue
		}
		for _, rawEntry := range entries {
			entry, ok := rawEntry.(map[string]any)
			if !ok {
				continue
			}
			if status, _ := entry["status"].(bool); status {
				return true
			}
		}
	}
	return false
}
