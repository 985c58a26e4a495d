package analytics

import (
	"testing"
	"time"

	"github.com/sadopc/tasker/internal/plan"
	"github.com/sadopc/tasker/internal/schedule"
	"github.com/sadopc/tasker/internal/store"
)

func record(id, timeRange, activity string, status bool, recordedAt string) map[string]any {
	entry := map[string]any{
		"id": id, "time": timeRange, "activity": activity, "status": status,
	}
	if recordedAt != "" {
		entry["recordedAt"] = recordedAt
	}
	return entry
}

// ============================================================
// BuildReport
// ============================================================

func TestBuildReportSingleRecord(t *testing.T) {
	snapshot := map[string]any{
		"March3_2025": map[string]any{
			"work": map[string]any{
				"work-0800-italian": record("work-0800-italian", "08:00 - 08:30", "Italian", true, ""),
			},
		},
	}

	months := BuildReport(snapshot)
	if len(months) != 1 {
		t.Fatalf("months = %d", len(months))
	}
	month := months[0]
	if month.Label != "March 2025" || month.Key != "2025-03" {
		t.Fatalf("month = %q (%q)", month.Label, month.Key)
	}
	if month.Hours() != 0.5 {
		t.Fatalf("hours = %v", month.Hours())
	}
	if len(month.Tasks) != 1 || month.Tasks[0].Count != 1 {
		t.Fatalf("tasks = %+v", month.Tasks)
	}
	if month.Tasks[0].Key != "work::work-0800-italian::Italian" {
		t.Fatalf("task key = %q", month.Tasks[0].Key)
	}
}

func TestBuildReportPrefersRecordedAt(t *testing.T) {
	// Path says March, recordedAt says April: the timestamp wins.
	snapshot := map[string]any{
		"March31_2025": map[string]any{
			"work": map[string]any{
				"a": record("a", "09:00 - 10:00", "A", true, "2025-04-01T06:00:00Z"),
			},
		},
	}
	months := BuildReport(snapshot)
	if len(months) != 1 || months[0].Key != "2025-04" {
		t.Fatalf("months = %+v", months)
	}
}

func TestBuildReportFallsBackToPathDate(t *testing.T) {
	snapshot := map[string]any{
		"March3_2025": map[string]any{
			"work": map[string]any{
				"a": record("a", "09:00 - 10:00", "A", true, "not-a-timestamp"),
			},
		},
	}
	months := BuildReport(snapshot)
	if len(months) != 1 || months[0].Key != "2025-03" {
		t.Fatalf("months = %+v", months)
	}
}

func TestBuildReportSkipsUndatableAndUnparsable(t *testing.T) {
	snapshot := map[string]any{
		"not-a-date": map[string]any{
			"work": map[string]any{
				"a": record("a", "09:00 - 10:00", "A", true, ""),
			},
		},
		"March3_2025": map[string]any{
			"work": map[string]any{
				"b": record("b", "whenever", "B", true, ""),
				"c": record("c", "09:00 - 10:00", "C", false, ""),
			},
		},
	}
	if months := BuildReport(snapshot); len(months) != 0 {
		t.Fatalf("months = %+v", months)
	}
}

func TestBuildReportAggregatesRecurringBlocks(t *testing.T) {
	day := func() map[string]any {
		return map[string]any{
			"work": map[string]any{
				"work-a": record("work-a", "08:00 - 09:00", "Writing", true, ""),
				"work-b": record("work-b", "09:00 - 09:30", "Email", true, ""),
			},
		}
	}
	snapshot := map[string]any{
		"March3_2025": day(),
		"March4_2025": day(),
	}

	months := BuildReport(snapshot)
	if len(months) != 1 {
		t.Fatalf("months = %d", len(months))
	}
	month := months[0]
	if month.Minutes != 2*60+2*30 {
		t.Fatalf("minutes = %d", month.Minutes)
	}
	if len(month.Tasks) != 2 {
		t.Fatalf("tasks = %+v", month.Tasks)
	}
	// Ordered by focus time, descending.
	if month.Tasks[0].Activity != "Writing" || month.Tasks[0].Count != 2 || month.Tasks[0].Minutes != 120 {
		t.Fatalf("top task = %+v", month.Tasks[0])
	}
}

func TestBuildReportOrdersMonthsDescending(t *testing.T) {
	snapshot := map[string]any{
		"January5_2025": map[string]any{
			"work": map[string]any{"a": record("a", "09:00 - 10:00", "A", true, "")},
		},
		"March3_2025": map[string]any{
			"work": map[string]any{"b": record("b", "09:00 - 10:00", "B", true, "")},
		},
	}
	months := BuildReport(snapshot)
	if len(months) != 2 || months[0].Key != "2025-03" || months[1].Key != "2025-01" {
		t.Fatalf("months = %+v", months)
	}
}

func TestBuildReportNilSnapshot(t *testing.T) {
	if months := BuildReport(nil); months != nil {
		t.Fatalf("months = %+v", months)
	}
}

// ============================================================
// Live aggregator
// ============================================================

func TestAggregatorTracksStore(t *testing.T) {
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	changes := 0
	a := NewAggregator(st, "completions", func() { changes++ })
	t.Cleanup(a.Close)

	if a.Status() != StatusReady {
		t.Fatalf("status = %v", a.Status())
	}
	if changes != 1 {
		t.Fatalf("changes = %d", changes)
	}
	if len(a.Months()) != 0 {
		t.Fatal("empty tree should yield an empty report")
	}

	m := schedule.NewManager(st, st, "schedules/templates", "completions")
	t.Cleanup(m.Close)
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.Local)
	m.RecordScheduleCompletion("2025-03-03", plan.DayTypeWork,
		plan.ScheduleItem{Time: "08:00 - 08:30", Activity: "Italian"}, day)

	months := a.Months()
	if len(months) != 1 || months[0].Hours() != 0.5 {
		t.Fatalf("months = %+v", months)
	}
	if changes < 2 {
		t.Fatalf("changes = %d", changes)
	}
}
