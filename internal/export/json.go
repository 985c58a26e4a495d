package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/tasker/internal/plan"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Date       string `json:"date"`
	DayType    string `json:"day_type"`
	ID         string `json:"id"`
	TimeRange  string `json:"time"`
	Activity   string `json:"activity"`
	Minutes    int    `json:"minutes"`
	Duration   string `json:"duration,omitempty"`
	RecordedAt string `json:"recorded_at,omitempty"`
}

func ToJSON(rows []Row, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(rows),
	}

	for _, r := range rows {
		export.Entries = append(export.Entries, jsonEntry{
			Date:       r.Date,
			DayType:    r.DayType,
			ID:         r.ID,
			TimeRange:  r.TimeRange,
			Activity:   r.Activity,
			Minutes:    r.Minutes,
			Duration:   plan.FormatMinutesLabel(r.Minutes),
			RecordedAt: r.RecordedAt,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
