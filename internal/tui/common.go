package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/tasker/internal/plan"
)

// viewState represents the currently active view.
type viewState int

const (
	viewPlanner viewState = iota
	viewSchedules
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Planner", "Schedules", "Analytics", "Settings"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

// completionSnapshotMsg carries the remote completion subtree for one
// visible day.
type completionSnapshotMsg struct {
	dateKey string
	value   any
}

// timerDoneMsg fires when a focus countdown reaches zero.
type timerDoneMsg struct {
	id   string
	meta blockMeta
}

// analyticsUpdatedMsg signals that the monthly report was rebuilt.
type analyticsUpdatedMsg struct{}

// historyFoundMsg reports the result of a backward completion probe.
type historyFoundMsg struct {
	date  time.Time
	found bool
}

type exportDoneMsg struct {
	path string
}

// blockMeta identifies the schedule block a timer belongs to.
type blockMeta struct {
	dateKey    string
	date       time.Time
	dayType    plan.DayType
	scheduleID string
	item       plan.ScheduleItem
}

// --- Helpers ---

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

// formatCountdown renders remaining time as mm:ss, or h:mm:ss past an
// hour.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// formatHours renders fractional hours with one decimal, e.g. "1.5h".
func formatHours(hours float64) string {
	return fmt.Sprintf("%.1fh", hours)
}
