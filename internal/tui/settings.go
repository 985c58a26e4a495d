package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasker/internal/plan"
)

// settingsModel edits the YAML config in place.
type settingsModel struct {
	svc    *services
	width  int
	height int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	initialDays   *string
	scanDays      *string
	dayType       *string
	notifications *bool
}

func newSettingsModel(svc *services) settingsModel {
	id, sd, dt := "", "", ""
	nt := false
	return settingsModel{
		svc:           svc,
		initialDays:   &id,
		scanDays:      &sd,
		dayType:       &dt,
		notifications: &nt,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cfg := s.svc.cfg
	*s.initialDays = strconv.Itoa(cfg.InitialDays)
	*s.scanDays = strconv.Itoa(cfg.HistoryScanDays)
	*s.dayType = cfg.DefaultDayType
	*s.notifications = cfg.Notifications

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Visible days on startup").Value(s.initialDays),
			huh.NewInput().Title("History scan depth (days)").Value(s.scanDays),
			huh.NewSelect[string]().Title("Default day type").
				Options(
					huh.NewOption("Work", string(plan.DayTypeWork)),
					huh.NewOption("Off", string(plan.DayTypeOff)),
				).Value(s.dayType),
			huh.NewConfirm().Title("Timer notifications").Value(s.notifications),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save()
	}

	return s, cmd
}

func (s settingsModel) save() tea.Cmd {
	cfg := s.svc.cfg
	if n, err := strconv.Atoi(*s.initialDays); err == nil && n >= 1 {
		cfg.InitialDays = n
	}
	if n, err := strconv.Atoi(*s.scanDays); err == nil && n >= 1 {
		cfg.HistoryScanDays = n
	}
	if plan.ValidDayType(*s.dayType) {
		cfg.DefaultDayType = *s.dayType
	}
	cfg.Notifications = *s.notifications

	s.svc.scanDepth = cfg.HistoryScanDays
	s.svc.notifier.SetEnabled(cfg.Notifications)

	if s.svc.cfgPath != "" {
		if err := cfg.Save(s.svc.cfgPath); err != nil {
			return errorCmd(fmt.Sprintf("Save failed: %v", err))
		}
	}
	return statusCmd("Settings saved")
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Settings"), "", s.form.View()),
		)
	}

	cfg := s.svc.cfg
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s",
			lipgloss.NewStyle().Width(28).Render(label),
			highlightStyle.Render(value),
		)
	}

	notif := "off"
	if cfg.Notifications {
		notif = "on"
	}

	rows := []string{
		titleStyle.Render("Settings"),
		"",
		row("Visible days on startup", strconv.Itoa(cfg.InitialDays)),
		row("History scan depth", fmt.Sprintf("%d days", cfg.HistoryScanDays)),
		row("Default day type", cfg.DefaultDayType),
		row("Timer notifications", notif),
		"",
		mutedStyle.Render("Press enter to edit"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
