package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasker/internal/plan"
	"github.com/sadopc/tasker/internal/schedule"
)

// plannerModel is the day pager: one visible day at a time with its
// tasks, its schedule blocks and any live countdown.
type plannerModel struct {
	svc    *services
	width  int
	height int

	cursor int
	adding bool
	input  textinput.Model

	// Armed when a day-type switch would discard completed blocks;
	// the next press confirms.
	confirmDayType bool

	unobserve func()
}

func newPlannerModel(svc *services) plannerModel {
	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.CharLimit = 120
	input.Width = 40

	p := plannerModel{svc: svc, input: input}
	p.observeCurrentDay()
	return p
}

func (p *plannerModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

// observeCurrentDay points the remote completion subscription at the
// focused day. Snapshots land as completionSnapshotMsg via the event
// channel, including one immediately on subscribe.
func (p *plannerModel) observeCurrentDay() {
	if p.unobserve != nil {
		p.unobserve()
	}
	entry := p.svc.state.Current()
	p.unobserve = p.svc.manager.ObserveScheduleCompletions(entry.Key, entry.Date, func(value any) {
		p.svc.send(completionSnapshotMsg{dateKey: entry.Key, value: value})
	})
}

func (p plannerModel) close() {
	if p.unobserve != nil {
		p.unobserve()
	}
}

// rows returns the day's tasks followed by its schedule blocks; the
// cursor runs over both sections.
func (p plannerModel) rowCount() int {
	entry := p.svc.state.Current()
	return len(p.svc.state.TasksFor(entry.Key)) + len(p.currentSchedule())
}

func (p plannerModel) currentSchedule() []plan.ScheduleItem {
	entry := p.svc.state.Current()
	return p.svc.manager.ScheduleFor(p.svc.state.DayTypeFor(entry.Key))
}

func (p plannerModel) update(msg tea.Msg) (plannerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case completionSnapshotMsg:
		if p.svc.state.HasDate(msg.dateKey) {
			mirror := schedule.CompletionMirror(msg.value, p.svc.manager.Schedules())
			p.svc.state.ReplaceScheduleCompletionForDate(msg.dateKey, mirror)
		}
		return p, nil

	case historyFoundMsg:
		if !msg.found {
			return p, statusCmd("No earlier completions found")
		}
		for p.svc.state.Dates()[0].Date.After(msg.date) {
			p.svc.state.PrependPreviousDate()
		}
		p.svc.state.SetCurrentIndex(0)
		p.cursor = 0
		p.confirmDayType = false
		p.observeCurrentDay()
		return p, statusCmd("Jumped to " + plan.FormatLongDate(msg.date))

	case tea.KeyMsg:
		if p.adding {
			return p.updateTaskInput(msg)
		}
		return p.updateKeys(msg)
	}
	return p, nil
}

func (p plannerModel) updateTaskInput(msg tea.KeyMsg) (plannerModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		entry := p.svc.state.Current()
		title := p.input.Value()
		p.adding = false
		p.input.Reset()
		if _, ok := p.svc.state.AddTask(entry.Key, title); !ok {
			return p, nil
		}
		return p, nil
	case "esc":
		p.adding = false
		p.input.Reset()
		return p, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p plannerModel) updateKeys(msg tea.KeyMsg) (plannerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		return p.navigate(-1), nil

	case key.Matches(msg, keys.Right):
		return p.navigate(1), nil

	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil

	case key.Matches(msg, keys.Down):
		if p.cursor < p.rowCount()-1 {
			p.cursor++
		}
		return p, nil

	case key.Matches(msg, keys.New):
		p.adding = true
		p.input.Focus()
		return p, textinput.Blink

	case key.Matches(msg, keys.Delete):
		return p.deleteSelected()

	case key.Matches(msg, keys.Enter):
		return p.toggleSelected()

	case key.Matches(msg, keys.Start):
		return p.toggleTimer()

	case key.Matches(msg, keys.DayType):
		return p.switchDayType()

	case key.Matches(msg, keys.History):
		return p, p.findHistoryCmd()
	}
	return p, nil
}

func (p plannerModel) navigate(delta int) plannerModel {
	state := p.svc.state
	index := state.CurrentIndex() + delta
	if index < 0 {
		state.PrependPreviousDate()
		index = 0
	} else if index > state.Len()-1 {
		state.AppendNextDate()
		index = state.Len() - 1
	}
	state.SetCurrentIndex(index)
	p.cursor = 0
	p.confirmDayType = false
	p.observeCurrentDay()
	return p
}

// selected resolves the cursor to either a task or a schedule block.
func (p plannerModel) selected() (plan.Task, plan.ScheduleItem, bool) {
	entry := p.svc.state.Current()
	tasks := p.svc.state.TasksFor(entry.Key)
	if p.cursor < len(tasks) {
		return tasks[p.cursor], plan.ScheduleItem{}, true
	}
	items := p.currentSchedule()
	i := p.cursor - len(tasks)
	if i < len(items) {
		return plan.Task{}, items[i], false
	}
	return plan.Task{}, plan.ScheduleItem{}, true
}

func (p plannerModel) toggleSelected() (plannerModel, tea.Cmd) {
	if p.rowCount() == 0 {
		return p, nil
	}
	entry := p.svc.state.Current()
	task, item, isTask := p.selected()

	if isTask {
		if task.ID != "" {
			p.svc.state.ToggleTask(entry.Key, task.ID)
		}
		return p, nil
	}

	dayType := p.svc.state.DayTypeFor(entry.Key)
	sid := plan.ScheduleID(dayType, item)
	if p.svc.state.IsScheduleCompleted(entry.Key, sid) {
		p.svc.state.ResetScheduleCompletion(entry.Key, sid)
		p.svc.engine.Clear(plan.ScheduleTimerID(entry.Key, sid))
		p.svc.manager.ClearScheduleCompletion(entry.Key, dayType, item, entry.Date)
		return p, nil
	}
	p.svc.state.MarkScheduleCompleted(entry.Key, sid)
	p.svc.engine.Clear(plan.ScheduleTimerID(entry.Key, sid))
	p.svc.manager.RecordScheduleCompletion(entry.Key, dayType, item, entry.Date)
	return p, nil
}

func (p plannerModel) deleteSelected() (plannerModel, tea.Cmd) {
	entry := p.svc.state.Current()
	task, _, isTask := p.selected()
	if !isTask || task.ID == "" {
		return p, nil
	}
	p.svc.state.RemoveTask(entry.Key, task.ID)
	if p.cursor > 0 && p.cursor >= p.rowCount() {
		p.cursor--
	}
	return p, nil
}

func (p plannerModel) toggleTimer() (plannerModel, tea.Cmd) {
	_, item, isTask := p.selected()
	if isTask || item.ID == "" {
		return p, errorCmd("Select a schedule block to start a timer")
	}

	entry := p.svc.state.Current()
	dayType := p.svc.state.DayTypeFor(entry.Key)
	sid := plan.ScheduleID(dayType, item)
	timerID := plan.ScheduleTimerID(entry.Key, sid)

	if t, ok := p.svc.engine.Get(timerID); ok && t.Running {
		p.svc.engine.Stop(timerID)
		return p, statusCmd("Timer paused")
	}

	minutes, ok := plan.ExtractDurationMinutes(item.Time)
	if !ok {
		return p, errorCmd("No duration in " + item.Time)
	}
	meta := blockMeta{
		dateKey:    entry.Key,
		date:       entry.Date,
		dayType:    dayType,
		scheduleID: sid,
		item:       item,
	}
	if !p.svc.engine.Start(timerID, minutes, meta) {
		return p, errorCmd("Another timer is already running")
	}
	return p, statusCmd("Timer started: " + item.Activity)
}

func (p plannerModel) switchDayType() (plannerModel, tea.Cmd) {
	entry := p.svc.state.Current()
	current := p.svc.state.DayTypeFor(entry.Key)
	next := plan.DayTypeOff
	if current == plan.DayTypeOff {
		next = plan.DayTypeWork
	}

	if len(p.svc.state.CompletedScheduleIDs(entry.Key)) > 0 && !p.confirmDayType {
		p.confirmDayType = true
		return p, errorCmd("Switching discards completed blocks. Press w again to confirm.")
	}
	p.confirmDayType = false

	if !p.svc.state.SetDayTypeForDate(entry.Key, next) {
		return p, nil
	}
	// Countdowns belong to the old plan's blocks.
	for _, item := range p.svc.manager.ScheduleFor(current) {
		p.svc.engine.Clear(plan.ScheduleTimerID(entry.Key, plan.ScheduleID(current, item)))
	}
	p.svc.manager.ClearScheduleCompletionForDate(entry.Key, entry.Date, current)
	p.cursor = 0
	return p, statusCmd("Day set to " + string(next))
}

// findHistoryCmd probes backward from the earliest visible day for the
// closest older day with completions.
func (p plannerModel) findHistoryCmd() tea.Cmd {
	first := p.svc.state.Dates()[0]
	visible := make(map[string]bool)
	for _, e := range p.svc.state.Dates() {
		visible[e.Key] = true
	}
	manager := p.svc.manager
	depth := p.svc.scanDepth
	return func() tea.Msg {
		date, found := manager.FindHistoricalCompletion(first.Date, func(key string) bool {
			return visible[key]
		}, depth)
		return historyFoundMsg{date: date, found: found}
	}
}

// ============================================================
// Rendering
// ============================================================

func (p plannerModel) view() string {
	if p.width < 20 {
		return "Terminal too small"
	}
	w := p.width - 4
	entry := p.svc.state.Current()

	header := p.renderDayHeader(w)
	tasks := p.renderTasksPanel(w, entry)
	blocks := p.renderSchedulePanel(w, entry)

	return lipgloss.JoinVertical(lipgloss.Left, header, tasks, blocks)
}

func (p plannerModel) renderDayHeader(w int) string {
	state := p.svc.state
	entry := state.Current()
	dayType := state.DayTypeFor(entry.Key)

	weekday := weekdayStyle.Render(plan.FormatWeekday(entry.Date))
	date := dayBadgeStyle.Render(plan.FormatLongDate(entry.Date))

	badge := workBadgeStyle.Render("WORK")
	if dayType == plan.DayTypeOff {
		badge = offBadgeStyle.Render("OFF")
	}

	position := mutedStyle.Render(fmt.Sprintf("day %d/%d", state.CurrentIndex()+1, state.Len()))
	remaining := ""
	if n := state.RemainingTasks(entry.Key); n > 0 {
		remaining = warningStyle.Render(fmt.Sprintf("  %d open", n))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Bottom,
		weekday, "  ", date, "  ", badge, "  ", position, remaining,
	)
	return headerStyle.Width(w).Render(line)
}

func (p plannerModel) renderTasksPanel(w int, entry plan.DateEntry) string {
	tasks := p.svc.state.TasksFor(entry.Key)

	var rows []string
	rows = append(rows, titleStyle.Render("Tasks"))

	if p.adding {
		rows = append(rows, "  "+p.input.View())
	}
	if len(tasks) == 0 && !p.adding {
		rows = append(rows, mutedStyle.Render("  No tasks. Press n to add one."))
	}
	for i, task := range tasks {
		mark := "○"
		style := normalItemStyle
		if task.Completed {
			mark = "✓"
			style = completedStyle
		}
		cursor := "  "
		if i == p.cursor && !p.adding {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, cursor+style.Render(mark+" "+task.Title))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p plannerModel) renderSchedulePanel(w int, entry plan.DateEntry) string {
	state := p.svc.state
	dayType := state.DayTypeFor(entry.Key)
	items := p.currentSchedule()
	taskCount := len(state.TasksFor(entry.Key))

	var rows []string
	rows = append(rows, titleStyle.Render("Schedule"))

	if len(items) == 0 {
		rows = append(rows, mutedStyle.Render("  No blocks. Press 2 to edit templates."))
	}
	for i, item := range items {
		sid := plan.ScheduleID(dayType, item)
		done := state.IsScheduleCompleted(entry.Key, sid)

		mark := "○"
		style := normalItemStyle
		if done {
			mark = "✓"
			style = completedStyle
		}
		cursor := "  "
		if taskCount+i == p.cursor && !p.adding {
			cursor = "> "
			style = selectedItemStyle
		}

		line := fmt.Sprintf("%s %-15s %s", mark, item.Time, item.Activity)

		suffix := ""
		if t, ok := p.svc.engine.Get(plan.ScheduleTimerID(entry.Key, sid)); ok {
			if t.Running {
				suffix = "  " + countdownStyle.Render("⏱ "+formatCountdown(t.Remaining))
			} else {
				suffix = "  " + warningStyle.Render("⏸ "+formatCountdown(t.Remaining))
			}
		} else if minutes, ok := plan.ExtractDurationMinutes(item.Time); ok && !done {
			suffix = "  " + mutedStyle.Render(plan.FormatMinutesLabel(minutes))
		}

		rows = append(rows, cursor+style.Render(line)+suffix)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: toggle  s: timer  w: work/off  b: find past day"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
