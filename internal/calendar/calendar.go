// Package calendar owns the rolling window of visible days and all
// per-day in-memory state: free-form tasks, the day-type assignment and
// the local mirror of schedule-block completion flags. All remote I/O
// is delegated to the schedule manager; this store is pure state and is
// only ever touched from the UI loop.
package calendar

import (
	"strings"
	"time"

	"github.com/sadopc/tasker/internal/plan"
)

type State struct {
	dates          []plan.DateEntry
	tasksByDate    map[string][]plan.Task
	dayTypes       map[string]plan.DayType
	completed      map[string]map[string]bool // dateKey -> scheduleID
	currentIndex   int
	defaultDayType plan.DayType
}

// New builds a window of dayCount contiguous days starting at start.
func New(start time.Time, dayCount int, defaultDayType plan.DayType) *State {
	if dayCount < 1 {
		dayCount = 1
	}
	if !plan.ValidDayType(string(defaultDayType)) {
		defaultDayType = plan.DayTypeWork
	}
	return &State{
		dates:          plan.GenerateDates(start, dayCount),
		tasksByDate:    make(map[string][]plan.Task),
		dayTypes:       make(map[string]plan.DayType),
		completed:      make(map[string]map[string]bool),
		defaultDayType: defaultDayType,
	}
}

// Dates returns the visible window in order.
func (s *State) Dates() []plan.DateEntry {
	out := make([]plan.DateEntry, len(s.dates))
	copy(out, s.dates)
	return out
}

func (s *State) Len() int { return len(s.dates) }

func (s *State) CurrentIndex() int { return s.currentIndex }

// SetCurrentIndex moves the focused day, clamped to the window.
func (s *State) SetCurrentIndex(index int) {
	if index < 0 {
		index = 0
	}
	if index > len(s.dates)-1 {
		index = len(s.dates) - 1
	}
	s.currentIndex = index
}

// Current returns the focused day.
func (s *State) Current() plan.DateEntry {
	if s.currentIndex >= 0 && s.currentIndex < len(s.dates) {
		return s.dates[s.currentIndex]
	}
	return s.dates[0]
}

// HasDate reports whether key is inside the visible window.
func (s *State) HasDate(key string) bool {
	return s.indexOf(key) >= 0
}

func (s *State) indexOf(key string) int {
	for i, e := range s.dates {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// AppendNextDate extends the window by one day at the end. No-op when
// the resulting key already exists.
func (s *State) AppendNextDate() {
	last := s.dates[len(s.dates)-1]
	next := plan.NewDateEntry(last.Date, 1)
	if s.HasDate(next.Key) {
		return
	}
	s.dates = append(s.dates, next)
}

// PrependPreviousDate extends the window by one day at the front and
// shifts the current index so the visually focused day stays stable.
func (s *State) PrependPreviousDate() {
	first := s.dates[0]
	previous := plan.NewDateEntry(first.Date, -1)
	if s.HasDate(previous.Key) {
		return
	}
	s.dates = append([]plan.DateEntry{previous}, s.dates...)
	s.currentIndex++
}

// RemoveDate drops a day and all its per-day state. The last remaining
// day can never be removed. The current index is decremented when the
// removed day sat at or before it, clamped at zero.
func (s *State) RemoveDate(key string) bool {
	if len(s.dates) <= 1 {
		return false
	}
	index := s.indexOf(key)
	if index < 0 {
		return false
	}

	s.dates = append(s.dates[:index], s.dates[index+1:]...)
	delete(s.tasksByDate, key)
	delete(s.dayTypes, key)
	delete(s.completed, key)

	if index <= s.currentIndex {
		s.currentIndex--
		if s.currentIndex < 0 {
			s.currentIndex = 0
		}
	}
	if s.currentIndex > len(s.dates)-1 {
		s.currentIndex = len(s.dates) - 1
	}
	return true
}

// DayTypeFor returns the day type assigned to a date, defaulting when
// none was ever set.
func (s *State) DayTypeFor(key string) plan.DayType {
	if t, ok := s.dayTypes[key]; ok {
		return t
	}
	return s.defaultDayType
}

// SetDayTypeForDate reassigns a day's plan. Setting the current type is
// a no-op; an actual switch resets the day's completion mirror, since
// prior completions cannot apply to the new type's blocks.
func (s *State) SetDayTypeForDate(key string, dayType plan.DayType) bool {
	if s.DayTypeFor(key) == dayType {
		return false
	}
	s.dayTypes[key] = dayType
	delete(s.completed, key)
	return true
}

// ============================================================
// Tasks
// ============================================================

// AddTask appends a task to a day. Blank titles are rejected.
func (s *State) AddTask(key, title string) (plan.Task, bool) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return plan.Task{}, false
	}
	task := plan.Task{ID: plan.NewTaskID(key), Title: trimmed}
	s.tasksByDate[key] = append(s.tasksByDate[key], task)
	return task, true
}

// ToggleTask flips a task's completed flag.
func (s *State) ToggleTask(key, taskID string) {
	tasks := s.tasksByDate[key]
	for i := range tasks {
		if tasks[i].ID == taskID {
			tasks[i].Completed = !tasks[i].Completed
			return
		}
	}
}

// CompleteTask marks a task done (used by the timer completion path).
func (s *State) CompleteTask(key, taskID string) {
	tasks := s.tasksByDate[key]
	for i := range tasks {
		if tasks[i].ID == taskID {
			tasks[i].Completed = true
			return
		}
	}
}

// RemoveTask deletes a task from a day.
func (s *State) RemoveTask(key, taskID string) {
	tasks := s.tasksByDate[key]
	for i := range tasks {
		if tasks[i].ID == taskID {
			s.tasksByDate[key] = append(tasks[:i], tasks[i+1:]...)
			return
		}
	}
}

// TasksFor returns the tasks of a day in insertion order.
func (s *State) TasksFor(key string) []plan.Task {
	tasks := s.tasksByDate[key]
	out := make([]plan.Task, len(tasks))
	copy(out, tasks)
	return out
}

// RemainingTasks counts a day's open tasks.
func (s *State) RemainingTasks(key string) int {
	remaining := 0
	for _, t := range s.tasksByDate[key] {
		if !t.Completed {
			remaining++
		}
	}
	return remaining
}

// ============================================================
// Completion mirror
// ============================================================

// MarkScheduleCompleted flags a block as done in the local mirror.
func (s *State) MarkScheduleCompleted(key, scheduleID string) {
	if s.completed[key] == nil {
		s.completed[key] = make(map[string]bool)
	}
	s.completed[key][scheduleID] = true
}

// ResetScheduleCompletion clears one block's local flag.
func (s *State) ResetScheduleCompletion(key, scheduleID string) {
	delete(s.completed[key], scheduleID)
}

// ResetScheduleCompletionForDate clears a whole day's local flags.
func (s *State) ResetScheduleCompletionForDate(key string) {
	delete(s.completed, key)
}

// ReplaceScheduleCompletionForDate resyncs a day's mirror from a remote
// snapshot. The previous map is fully overwritten, never merged, so
// duplicate or out-of-order snapshot delivery converges.
func (s *State) ReplaceScheduleCompletionForDate(key string, completionMap map[string]bool) {
	if len(completionMap) == 0 {
		delete(s.completed, key)
		return
	}
	next := make(map[string]bool, len(completionMap))
	for id, done := range completionMap {
		if done {
			next[id] = true
		}
	}
	s.completed[key] = next
}

// IsScheduleCompleted reads one block's local flag.
func (s *State) IsScheduleCompleted(key, scheduleID string) bool {
	return s.completed[key][scheduleID]
}

// CompletedScheduleIDs returns the set of completed block ids for a day.
func (s *State) CompletedScheduleIDs(key string) map[string]bool {
	out := make(map[string]bool, len(s.completed[key]))
	for id := range s.completed[key] {
		out[id] = true
	}
	return out
}
