package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/store"
)

type statsModel struct {
	store  *store.TaskStore
	width  int
	height int

	counts []groupCount
	chart  barchart.Model
}

func newStatsModel(s *store.TaskStore) statsModel {
	return statsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m statsModel) refresh() tea.Cmd {
	msg := statsDataMsg{counts: countTasksByGroup(m.store.Tasks(), m.store.Groups())}
	return func() tea.Msg { return msg }
}

// countTasksByGroup tallies tasks per group plus an "Ungrouped" bucket,
// preserving group order.
func countTasksByGroup(tasks []store.Task, groups []store.Group) []groupCount {
	byID := make(map[string]int)
	ungrouped := 0
	for _, t := range tasks {
		if t.GroupID == "" {
			ungrouped++
			continue
		}
		byID[t.GroupID]++
	}

	var counts []groupCount
	for _, g := range groups {
		counts = append(counts, groupCount{name: g.Name, color: g.Color, count: byID[g.ID]})
		delete(byID, g.ID)
	}
	// Tasks pointing at deleted groups count as ungrouped.
	for _, n := range byID {
		ungrouped += n
	}
	if ungrouped > 0 {
		counts = append(counts, groupCount{name: "Ungrouped", color: string(colorSubtle), count: ungrouped})
	}
	return counts
}

func (m statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		m.counts = msg.counts
		m.buildChart()
		return m, nil
	}
	return m, nil
}

func (m *statsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, c := range m.counts {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.color))
		bars = append(bars, barchart.BarData{
			Label: truncate(c.name, 10),
			Values: []barchart.BarValue{
				{Name: c.name, Value: float64(c.count), Style: style},
			},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) view() string {
	w := m.width - 4

	title := titleStyle.Render("Stats") + mutedStyle.Render("  open tasks per group")

	if len(m.counts) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("No tasks yet.")),
		)
	}

	var legend []string
	total := 0
	for _, c := range m.counts {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Render("●")
		legend = append(legend, fmt.Sprintf("%s %s (%d)", dot, c.name, c.count))
		total += c.count
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			m.chart.View(),
			"",
			"  "+strings.Join(legend, "  "),
			"",
			mutedStyle.Render(fmt.Sprintf("  %d tasks total", total)),
		),
	)
}
