package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasker/internal/analytics"
	"github.com/sadopc/tasker/internal/calendar"
	"github.com/sadopc/tasker/internal/config"
	"github.com/sadopc/tasker/internal/export"
	"github.com/sadopc/tasker/internal/notify"
	"github.com/sadopc/tasker/internal/plan"
	"github.com/sadopc/tasker/internal/schedule"
	"github.com/sadopc/tasker/internal/store"
	"github.com/sadopc/tasker/internal/timer"
)

// services bundles the shared state and collaborators every view works
// against. Store callbacks and the timer engine deliver their events
// through the events channel so all mutation happens on the update
// loop.
type services struct {
	store      *store.Store
	cfg        *config.Config
	cfgPath    string
	state      *calendar.State
	manager    *schedule.Manager
	engine     *timer.Engine
	aggregator *analytics.Aggregator
	notifier   *notify.Notifier
	scanDepth  int

	events chan tea.Msg
}

// send queues an event without blocking; under backpressure the next
// snapshot supersedes a dropped one.
func (s *services) send(msg tea.Msg) {
	select {
	case s.events <- msg:
	default:
	}
}

// App is the root Bubble Tea model.
type App struct {
	svc    *services
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	planner   plannerModel
	schedules schedulesModel
	analytics analyticsModel
	settings  settingsModel

	help   help.Model
	status string
}

func NewApp(s *store.Store, cfg *config.Config, cfgPath string) App {
	svc := &services{
		store:     s,
		cfg:       cfg,
		cfgPath:   cfgPath,
		scanDepth: cfg.HistoryScanDays,
		notifier:  notify.New(cfg.Notifications),
		events:    make(chan tea.Msg, 32),
	}
	svc.notifier.RequestPermission()

	svc.state = calendar.New(time.Now(), cfg.InitialDays, plan.DayType(cfg.DefaultDayType))
	svc.manager = schedule.NewManager(s, s, cfg.TemplatePath, cfg.CompletionRoot)
	svc.engine = timer.NewEngine(func(id string, meta any) {
		if bm, ok := meta.(blockMeta); ok {
			svc.send(timerDoneMsg{id: id, meta: bm})
		}
	})
	svc.aggregator = analytics.NewAggregator(s, cfg.CompletionRoot, func() {
		svc.send(analyticsUpdatedMsg{})
	})

	h := help.New()
	h.ShowAll = false

	return App{
		svc:        svc,
		activeView: viewPlanner,
		planner:    newPlannerModel(svc),
		schedules:  newSchedulesModel(svc),
		analytics:  newAnalyticsModel(svc),
		settings:   newSettingsModel(svc),
		help:       h,
	}
}

// Close releases subscriptions. The store itself is closed by the
// caller.
func (a App) Close() {
	a.planner.close()
	a.svc.aggregator.Close()
	a.svc.manager.Close()
}

func (a App) Init() tea.Cmd {
	return tea.Batch(tickCmd(), a.waitEvent())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitEvent relays the next queued store/engine event into the update
// loop.
func (a App) waitEvent() tea.Cmd {
	events := a.svc.events
	return func() tea.Msg {
		return <-events
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.planner.setSize(a.width, contentHeight)
		a.schedules.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tickMsg:
		a.svc.engine.Tick(time.Time(msg))
		return a, tickCmd()

	case timerDoneMsg:
		return a.finishTimer(msg)

	case completionSnapshotMsg:
		var cmd tea.Cmd
		a.planner, cmd = a.planner.update(msg)
		return a, tea.Batch(cmd, a.waitEvent())

	case analyticsUpdatedMsg:
		var cmd tea.Cmd
		a.analytics, cmd = a.analytics.update(msg)
		return a, tea.Batch(cmd, a.waitEvent())

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (form or text entry),
		// delegate first.
		if a.isInputActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewPlanner
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewSchedules
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewAnalytics
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, nil
		}
	}

	return a.updateActiveView(msg)
}

// finishTimer applies a completed countdown: flag the block locally,
// record it remotely, and notify.
func (a App) finishTimer(msg timerDoneMsg) (tea.Model, tea.Cmd) {
	meta := msg.meta
	a.svc.state.MarkScheduleCompleted(meta.dateKey, meta.scheduleID)
	a.svc.manager.RecordScheduleCompletion(meta.dateKey, meta.dayType, meta.item, meta.date)
	a.svc.notifier.TimerDone(meta.item.Activity)
	a.status = "Completed: " + meta.item.Activity
	return a, a.waitEvent()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewPlanner:
		a.planner, cmd = a.planner.update(msg)
	case viewSchedules:
		a.schedules, cmd = a.schedules.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isInputActive() bool {
	switch a.activeView {
	case viewPlanner:
		return a.planner.adding
	case viewSchedules:
		return a.schedules.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewPlanner:
		content = a.planner.view()
	case viewSchedules:
		content = a.schedules.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tasker")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Live countdown indicator, visible from every view.
	timerInfo := ""
	if running, ok := a.runningTimer(); ok {
		timerInfo = successStyle.Render(" ● " + formatCountdown(running.Remaining))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

// runningTimer finds the active countdown among the focused day's
// blocks.
func (a App) runningTimer() (timer.Timer, bool) {
	if !a.svc.engine.HasRunning() {
		return timer.Timer{}, false
	}
	for _, entry := range a.svc.state.Dates() {
		dayType := a.svc.state.DayTypeFor(entry.Key)
		for _, item := range a.svc.manager.ScheduleFor(dayType) {
			id := plan.ScheduleTimerID(entry.Key, plan.ScheduleID(dayType, item))
			if t, ok := a.svc.engine.Get(id); ok && t.Running {
				return t, true
			}
		}
	}
	return timer.Timer{}, false
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	st := a.svc.store
	root := a.svc.cfg.CompletionRoot
	return func() tea.Msg {
		snapshot, err := st.ReadNode(root)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		rows := export.Rows(snapshot)

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("tasker-export-%s.csv", dateStr))
			if err := export.ToCSV(rows, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("tasker-export-%s.json", dateStr))
			if err := export.ToJSON(rows, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
