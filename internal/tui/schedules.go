package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasker/internal/plan"
)

// schedulesModel edits the two day-type templates.
type schedulesModel struct {
	svc    *services
	width  int
	height int

	dayType plan.DayType
	cursor  int

	formActive bool
	form       *huh.Form
	formType   string // "add", "edit"

	// Form field pointers (survive value copies)
	formTime     *string
	formActivity *string

	editIndex int
}

func newSchedulesModel(svc *services) schedulesModel {
	t, a := "", ""
	return schedulesModel{
		svc:          svc,
		dayType:      plan.DayTypeWork,
		formTime:     &t,
		formActivity: &a,
	}
}

func (s *schedulesModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s schedulesModel) items() []plan.ScheduleItem {
	return s.svc.manager.ScheduleFor(s.dayType)
}

func (s schedulesModel) update(msg tea.Msg) (schedulesModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, keys.Down):
			if s.cursor < len(s.items())-1 {
				s.cursor++
			}
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right), key.Matches(msg, keys.DayType):
			if s.dayType == plan.DayTypeWork {
				s.dayType = plan.DayTypeOff
			} else {
				s.dayType = plan.DayTypeWork
			}
			s.cursor = 0
		case key.Matches(msg, keys.New):
			return s.showForm("add")
		case key.Matches(msg, keys.Enter):
			if len(s.items()) > 0 {
				return s.showForm("edit")
			}
		case key.Matches(msg, keys.Delete):
			if len(s.items()) > 0 {
				s.svc.manager.RemoveItem(s.dayType, s.cursor)
				if s.cursor >= len(s.items()) && s.cursor > 0 {
					s.cursor--
				}
			}
		case key.Matches(msg, keys.Reset):
			s.svc.manager.ResetDefaults(s.dayType)
			s.cursor = 0
			return s, statusCmd("Restored default " + string(s.dayType) + " schedule")
		}
	}
	return s, nil
}

func (s schedulesModel) showForm(formType string) (schedulesModel, tea.Cmd) {
	s.formType = formType
	if formType == "edit" {
		item := s.items()[s.cursor]
		s.editIndex = s.cursor
		*s.formTime = item.Time
		*s.formActivity = item.Activity
	} else {
		*s.formTime = ""
		*s.formActivity = ""
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Time range").
				Description("e.g. 08:00 - 08:30").
				Value(s.formTime),
			huh.NewInput().Title("Activity").Value(s.formActivity),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s schedulesModel) updateForm(msg tea.Msg) (schedulesModel, tea.Cmd) {
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
		switch s.formType {
		case "add":
			s.svc.manager.AddItem(s.dayType, plan.ScheduleItem{
				Time:     *s.formTime,
				Activity: *s.formActivity,
			})
		case "edit":
			s.svc.manager.UpdateItem(s.dayType, s.editIndex, *s.formTime, *s.formActivity)
		}
		return s, nil
	}

	return s, cmd
}

func (s schedulesModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("New Block")
		if s.formType == "edit" {
			title = titleStyle.Render("Edit Block")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	workTab := inactiveTabStyle.Render("Work")
	offTab := inactiveTabStyle.Render("Off")
	if s.dayType == plan.DayTypeWork {
		workTab = activeTabStyle.Render("Work")
	} else {
		offTab = activeTabStyle.Render("Off")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Schedule Templates"), "  ", workTab, offTab,
	)

	items := s.items()
	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")

	if len(items) == 0 {
		rows = append(rows, mutedStyle.Render("  Empty template. Press n to add a block."))
	}
	for i, item := range items {
		cursor := "  "
		style := normalItemStyle
		if i == s.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		duration := ""
		if minutes, ok := plan.ExtractDurationMinutes(item.Time); ok {
			duration = mutedStyle.Render("  " + plan.FormatMinutesLabel(minutes))
		}
		rows = append(rows, cursor+style.Render(fmt.Sprintf("%-15s %s", item.Time, item.Activity))+duration)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: edit  d: delete  r: reset  ←/→: day type"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
