package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasker/internal/analytics"
)

const chartMonths = 12

// analyticsModel renders the monthly focus report.
type analyticsModel struct {
	svc    *services
	width  int
	height int

	months []analytics.MonthStat
	cursor int // selected month, 0 = most recent

	chart barchart.Model
}

func newAnalyticsModel(svc *services) analyticsModel {
	m := analyticsModel{
		svc:   svc,
		chart: barchart.New(60, 12),
	}
	m.reload()
	return m
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.buildChart()
}

func (a *analyticsModel) reload() {
	a.months = a.svc.aggregator.Months()
	if a.cursor >= len(a.months) {
		a.cursor = max(0, len(a.months)-1)
	}
	a.buildChart()
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsUpdatedMsg:
		a.reload()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if a.cursor < len(a.months)-1 {
				a.cursor++
			}
		case key.Matches(msg, keys.Right):
			if a.cursor > 0 {
				a.cursor--
			}
		case key.Matches(msg, keys.Up):
			if a.cursor > 0 {
				a.cursor--
			}
		case key.Matches(msg, keys.Down):
			if a.cursor < len(a.months)-1 {
				a.cursor++
			}
		}
	}
	return a, nil
}

// buildChart draws one bar per month, oldest to newest, capped to the
// last chartMonths months.
func (a *analyticsModel) buildChart() {
	chartWidth := a.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if a.height > 30 {
		chartHeight = 16
	}
	a.chart = barchart.New(chartWidth, chartHeight)

	months := a.months
	if len(months) > chartMonths {
		months = months[:chartMonths]
	}

	// Months arrive most recent first; draw left to right in time.
	var bars []barchart.BarData
	for i := len(months) - 1; i >= 0; i-- {
		m := months[i]
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if i == a.cursor {
			style = lipgloss.NewStyle().Foreground(colorSecondary)
		}
		bars = append(bars, barchart.BarData{
			Label: m.Label,
			Values: []barchart.BarValue{
				{Name: m.Label, Value: m.Hours(), Style: style},
			},
		})
	}
	if len(bars) == 0 {
		return
	}
	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a analyticsModel) view() string {
	w := a.width - 4

	header := titleStyle.Render("Focus Hours")

	switch a.svc.aggregator.Status() {
	case analytics.StatusLoading:
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("Loading…")),
		)
	case analytics.StatusError:
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "",
				errorStyle.Render(fmt.Sprintf("Failed to load: %v", a.svc.aggregator.Err()))),
		)
	}

	if len(a.months) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "",
				mutedStyle.Render("No completed blocks yet. Finish a focus timer to see totals.")),
		)
	}

	selected := a.months[a.cursor]
	monthLine := lipgloss.JoinHorizontal(lipgloss.Bottom,
		highlightStyle.Render(selected.Label),
		"  ",
		successStyle.Render(formatHours(selected.Hours())),
		"  ",
		mutedStyle.Render(fmt.Sprintf("%d/%d months", a.cursor+1, len(a.months))),
	)

	table := a.renderTaskTable(w, selected)
	nav := mutedStyle.Render("  ←/→: month")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", a.chart.View(), "", monthLine, "", table, "", nav,
		),
	)
}

func (a analyticsModel) renderTaskTable(w int, month analytics.MonthStat) string {
	if len(month.Tasks) == 0 {
		return mutedStyle.Render("  No data for this month")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-28s %8s %8s", "Activity", "Hours", "Times")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 46))))

	for _, task := range month.Tasks {
		label := task.Activity
		if label == "" {
			label = "(unnamed)"
		}
		rows = append(rows, fmt.Sprintf("  %-28s %8s %8d",
			label, formatHours(task.Hours()), task.Count,
		))
	}
	return strings.Join(rows, "\n")
}
