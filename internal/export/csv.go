package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/tasker/internal/plan"
)

func ToCSV(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Day Type", "Time", "Activity", "Minutes", "Duration", "Recorded At"}); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.Date,
			r.DayType,
			r.TimeRange,
			r.Activity,
			strconv.Itoa(r.Minutes),
			plan.FormatMinutesLabel(r.Minutes),
			r.RecordedAt,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}
