package calendar

import (
	"testing"
	"time"

	"github.com/sadopc/tasker/internal/plan"
)

func newTestState(t *testing.T, days int) *State {
	t.Helper()
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local)
	return New(start, days, plan.DayTypeWork)
}

// ============================================================
// Window management
// ============================================================

func TestNewWindow(t *testing.T) {
	s := newTestState(t, 7)
	if s.Len() != 7 {
		t.Fatalf("expected 7 days, got %d", s.Len())
	}
	dates := s.Dates()
	if dates[0].Key != "2025-03-01" || dates[6].Key != "2025-03-07" {
		t.Fatalf("window %q .. %q", dates[0].Key, dates[6].Key)
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("index = %d", s.CurrentIndex())
	}
}

func TestAppendNextDate(t *testing.T) {
	s := newTestState(t, 2)
	s.AppendNextDate()
	if s.Len() != 3 {
		t.Fatalf("len = %d", s.Len())
	}
	if s.Dates()[2].Key != "2025-03-03" {
		t.Fatalf("appended key = %q", s.Dates()[2].Key)
	}
	// Appending never duplicates keys.
	s.AppendNextDate()
	s.AppendNextDate()
	seen := make(map[string]bool)
	for _, e := range s.Dates() {
		if seen[e.Key] {
			t.Fatalf("duplicate key %q", e.Key)
		}
		seen[e.Key] = true
	}
}

func TestPrependShiftsCurrentIndex(t *testing.T) {
	s := newTestState(t, 3)
	s.SetCurrentIndex(1)
	s.PrependPreviousDate()
	if s.Len() != 4 {
		t.Fatalf("len = %d", s.Len())
	}
	if s.Dates()[0].Key != "2025-02-28" {
		t.Fatalf("prepended key = %q", s.Dates()[0].Key)
	}
	// The focused day stays the same entry.
	if s.CurrentIndex() != 2 {
		t.Fatalf("index = %d", s.CurrentIndex())
	}
	if s.Current().Key != "2025-03-02" {
		t.Fatalf("current = %q", s.Current().Key)
	}
}

func TestRemoveDateLastDayIsNoop(t *testing.T) {
	s := newTestState(t, 1)
	if s.RemoveDate("2025-03-01") {
		t.Fatal("removing the only day must be a no-op")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestRemoveDateClampsIndex(t *testing.T) {
	s := newTestState(t, 2)
	// Focused on the first day; removing it clamps to 0.
	if !s.RemoveDate("2025-03-01") {
		t.Fatal("remove failed")
	}
	if s.Len() != 1 || s.CurrentIndex() != 0 {
		t.Fatalf("len=%d index=%d", s.Len(), s.CurrentIndex())
	}
	if s.Current().Key != "2025-03-02" {
		t.Fatalf("current = %q", s.Current().Key)
	}
}

func TestRemoveDateBeforeFocusDecrements(t *testing.T) {
	s := newTestState(t, 5)
	s.SetCurrentIndex(3)
	s.RemoveDate("2025-03-02") // index 1, before focus
	if s.CurrentIndex() != 2 {
		t.Fatalf("index = %d", s.CurrentIndex())
	}
	if s.Current().Key != "2025-03-04" {
		t.Fatalf("current = %q", s.Current().Key)
	}
}

func TestRemoveDateAfterFocusKeepsIndex(t *testing.T) {
	s := newTestState(t, 5)
	s.SetCurrentIndex(1)
	s.RemoveDate("2025-03-04") // index 3, after focus
	if s.CurrentIndex() != 1 {
		t.Fatalf("index = %d", s.CurrentIndex())
	}
}

func TestRemoveDateDropsPerDayState(t *testing.T) {
	s := newTestState(t, 2)
	s.AddTask("2025-03-01", "write tests")
	s.MarkScheduleCompleted("2025-03-01", "work::x")
	s.SetDayTypeForDate("2025-03-01", plan.DayTypeOff)

	s.RemoveDate("2025-03-01")

	if len(s.TasksFor("2025-03-01")) != 0 {
		t.Fatal("tasks survived removal")
	}
	if s.IsScheduleCompleted("2025-03-01", "work::x") {
		t.Fatal("completion mirror survived removal")
	}
	if s.DayTypeFor("2025-03-01") != plan.DayTypeWork {
		t.Fatal("day type survived removal")
	}
}

func TestRemoveUnknownDate(t *testing.T) {
	s := newTestState(t, 3)
	if s.RemoveDate("1999-01-01") {
		t.Fatal("unknown key should be a no-op")
	}
}

func TestSetCurrentIndexClamps(t *testing.T) {
	s := newTestState(t, 3)
	s.SetCurrentIndex(-4)
	if s.CurrentIndex() != 0 {
		t.Fatalf("index = %d", s.CurrentIndex())
	}
	s.SetCurrentIndex(99)
	if s.CurrentIndex() != 2 {
		t.Fatalf("index = %d", s.CurrentIndex())
	}
}

// ============================================================
// Day types
// ============================================================

func TestDayTypeDefault(t *testing.T) {
	s := newTestState(t, 2)
	if s.DayTypeFor("2025-03-01") != plan.DayTypeWork {
		t.Fatal("default should be work")
	}
}

func TestSetDayTypeSameTypeIsNoop(t *testing.T) {
	s := newTestState(t, 2)
	s.MarkScheduleCompleted("2025-03-01", "work::x")

	if s.SetDayTypeForDate("2025-03-01", plan.DayTypeWork) {
		t.Fatal("same type must report no change")
	}
	if !s.IsScheduleCompleted("2025-03-01", "work::x") {
		t.Fatal("no-op must not reset the completion mirror")
	}
}

func TestSetDayTypeSwitchResetsMirror(t *testing.T) {
	s := newTestState(t, 2)
	s.MarkScheduleCompleted("2025-03-01", "work::x")

	if !s.SetDayTypeForDate("2025-03-01", plan.DayTypeOff) {
		t.Fatal("switch should report change")
	}
	if s.DayTypeFor("2025-03-01") != plan.DayTypeOff {
		t.Fatal("type not switched")
	}
	if s.IsScheduleCompleted("2025-03-01", "work::x") {
		t.Fatal("switch must reset the completion mirror")
	}
	// Other days untouched.
	s.MarkScheduleCompleted("2025-03-02", "work::y")
	s.SetDayTypeForDate("2025-03-01", plan.DayTypeWork)
	if !s.IsScheduleCompleted("2025-03-02", "work::y") {
		t.Fatal("unrelated day's mirror was reset")
	}
}

// ============================================================
// Tasks
// ============================================================

func TestAddTask(t *testing.T) {
	s := newTestState(t, 1)
	task, ok := s.AddTask("2025-03-01", "  review PR  ")
	if !ok {
		t.Fatal("add failed")
	}
	if task.Title != "review PR" {
		t.Fatalf("title = %q", task.Title)
	}
	if task.Completed {
		t.Fatal("new task should be open")
	}
	if len(s.TasksFor("2025-03-01")) != 1 {
		t.Fatal("task not stored")
	}
}

func TestAddTaskRejectsBlank(t *testing.T) {
	s := newTestState(t, 1)
	if _, ok := s.AddTask("2025-03-01", "   "); ok {
		t.Fatal("blank title should be rejected")
	}
}

func TestToggleAndCompleteTask(t *testing.T) {
	s := newTestState(t, 1)
	task, _ := s.AddTask("2025-03-01", "a")

	s.ToggleTask("2025-03-01", task.ID)
	if !s.TasksFor("2025-03-01")[0].Completed {
		t.Fatal("toggle on failed")
	}
	s.ToggleTask("2025-03-01", task.ID)
	if s.TasksFor("2025-03-01")[0].Completed {
		t.Fatal("toggle off failed")
	}

	s.CompleteTask("2025-03-01", task.ID)
	if !s.TasksFor("2025-03-01")[0].Completed {
		t.Fatal("complete failed")
	}
	// CompleteTask is idempotent, not a toggle.
	s.CompleteTask("2025-03-01", task.ID)
	if !s.TasksFor("2025-03-01")[0].Completed {
		t.Fatal("second complete flipped the flag")
	}
}

func TestRemoveTask(t *testing.T) {
	s := newTestState(t, 1)
	a, _ := s.AddTask("2025-03-01", "a")
	b, _ := s.AddTask("2025-03-01", "b")

	s.RemoveTask("2025-03-01", a.ID)
	tasks := s.TasksFor("2025-03-01")
	if len(tasks) != 1 || tasks[0].ID != b.ID {
		t.Fatalf("tasks = %+v", tasks)
	}
}

func TestRemainingTasks(t *testing.T) {
	s := newTestState(t, 1)
	a, _ := s.AddTask("2025-03-01", "a")
	s.AddTask("2025-03-01", "b")
	if s.RemainingTasks("2025-03-01") != 2 {
		t.Fatal("expected 2 remaining")
	}
	s.CompleteTask("2025-03-01", a.ID)
	if s.RemainingTasks("2025-03-01") != 1 {
		t.Fatal("expected 1 remaining")
	}
}

// ============================================================
// Completion mirror
// ============================================================

func TestMarkAndResetCompletion(t *testing.T) {
	s := newTestState(t, 1)
	s.MarkScheduleCompleted("2025-03-01", "work::a")
	if !s.IsScheduleCompleted("2025-03-01", "work::a") {
		t.Fatal("mark failed")
	}
	s.ResetScheduleCompletion("2025-03-01", "work::a")
	if s.IsScheduleCompleted("2025-03-01", "work::a") {
		t.Fatal("reset failed")
	}
}

func TestResetCompletionForDate(t *testing.T) {
	s := newTestState(t, 2)
	s.MarkScheduleCompleted("2025-03-01", "work::a")
	s.MarkScheduleCompleted("2025-03-01", "work::b")
	s.MarkScheduleCompleted("2025-03-02", "work::c")

	s.ResetScheduleCompletionForDate("2025-03-01")
	if s.IsScheduleCompleted("2025-03-01", "work::a") || s.IsScheduleCompleted("2025-03-01", "work::b") {
		t.Fatal("day reset failed")
	}
	if !s.IsScheduleCompleted("2025-03-02", "work::c") {
		t.Fatal("other day affected")
	}
}

func TestReplaceCompletionIsFullOverwrite(t *testing.T) {
	s := newTestState(t, 1)
	s.MarkScheduleCompleted("2025-03-01", "work::old")

	s.ReplaceScheduleCompletionForDate("2025-03-01", map[string]bool{
		"work::new":   true,
		"work::false": false,
	})

	// The mirror equals exactly the true-valued ids of the snapshot.
	if s.IsScheduleCompleted("2025-03-01", "work::old") {
		t.Fatal("replace must not merge with prior state")
	}
	if !s.IsScheduleCompleted("2025-03-01", "work::new") {
		t.Fatal("snapshot id missing")
	}
	if s.IsScheduleCompleted("2025-03-01", "work::false") {
		t.Fatal("false entries must not count as completed")
	}

	// An empty snapshot clears the day.
	s.ReplaceScheduleCompletionForDate("2025-03-01", nil)
	if len(s.CompletedScheduleIDs("2025-03-01")) != 0 {
		t.Fatal("empty snapshot should clear the mirror")
	}
}
