// Package export flattens the completion tree into files for use
// outside the app.
package export

import (
	"sort"

	"github.com/sadopc/tasker/internal/plan"
)

// Row is one completed schedule block, denormalized for export.
type Row struct {
	Date       string // "2006-01-02", or the raw path segment when unparsable
	DayType    string
	ID         string
	TimeRange  string
	Activity   string
	Minutes    int // 0 when the time range has no extractable duration
	RecordedAt string
}

// Rows flattens a completion-root snapshot into export rows, ordered by
// date, day type and time range. Records without status == true are
// skipped; everything else is kept, even when partially malformed, so
// an export never silently narrows the data.
func Rows(snapshot any) []Row {
	root, ok := snapshot.(map[string]any)
	if !ok {
		return nil
	}

	var rows []Row
	for formattedDate, rawDay := range root {
		date := formattedDate
		if when, ok := plan.ParsePathDate(formattedDate); ok {
			date = plan.DateKey(when)
		}
		day, ok := rawDay.(map[string]any)
		if !ok {
			continue
		}
		for dayType, rawEntries := range day {
			entries, ok := rawEntries.(map[string]any)
			if !ok {
				continue
			}
			for entryKey, rawEntry := range entries {
				entry, ok := rawEntry.(map[string]any)
				if !ok {
					continue
				}
				if status, _ := entry["status"].(bool); !status {
					continue
				}

				id, _ := entry["id"].(string)
				if id == "" {
					id = entryKey
				}
				timeRange, _ := entry["time"].(string)
				activity, _ := entry["activity"].(string)
				recordedAt, _ := entry["recordedAt"].(string)
				minutes, _ := plan.ExtractDurationMinutes(timeRange)

				rows = append(rows, Row{
					Date:       date,
					DayType:    dayType,
					ID:         id,
					TimeRange:  timeRange,
					Activity:   activity,
					Minutes:    minutes,
					RecordedAt: recordedAt,
				})
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if rows[i].DayType != rows[j].DayType {
			return rows[i].DayType < rows[j].DayType
		}
		if rows[i].TimeRange != rows[j].TimeRange {
			return rows[i].TimeRange < rows[j].TimeRange
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}
