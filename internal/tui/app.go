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

	"taskdeck/internal/export"
	"taskdeck/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	tasks    *store.TaskStore
	profile  *store.ProfileStore
	settings *store.SettingsStore

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	tasksView    tasksModel
	groupsView   groupsModel
	profileView  profileModel
	statsView    statsModel
	settingsView settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(tasks *store.TaskStore, profile *store.ProfileStore, settings *store.SettingsStore) App {
	h := help.New()
	h.ShowAll = false

	return App{
		tasks:        tasks,
		profile:      profile,
		settings:     settings,
		activeView:   viewTasks,
		tasksView:    newTasksModel(tasks),
		groupsView:   newGroupsModel(tasks, profile),
		profileView:  newProfileModel(profile),
		statsView:    newStatsModel(tasks),
		settingsView: newSettingsModel(settings),
		help:         h,
	}
}

func (a App) Init() tea.Cmd {
	return a.tasksView.refresh()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tasksView.setSize(a.width, contentHeight)
		a.groupsView.setSize(a.width, contentHeight)
		a.profileView.setSize(a.width, contentHeight)
		a.statsView.setSize(a.width, contentHeight)
		a.settingsView.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (form or search), delegate.
		if a.isCapturingInput() {
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
			a.activeView = viewTasks
			return a, a.tasksView.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewGroups
			return a, a.groupsView.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewProfile
			return a, a.profileView.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewStats
			return a, a.statsView.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settingsView.enter()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, a.refreshCurrentView()
		}

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasksView, cmd = a.tasksView.update(msg)
	case viewGroups:
		a.groupsView, cmd = a.groupsView.update(msg)
	case viewProfile:
		a.profileView, cmd = a.profileView.update(msg)
	case viewStats:
		a.statsView, cmd = a.statsView.update(msg)
	case viewSettings:
		a.settingsView, cmd = a.settingsView.update(msg)
	}
	return a, cmd
}

func (a App) isCapturingInput() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasksView.formActive || a.tasksView.searching
	case viewGroups:
		return a.groupsView.formActive
	case viewProfile:
		return a.profileView.formActive
	case viewSettings:
		return a.settingsView.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTasks:
		return a.tasksView.refresh()
	case viewGroups:
		return a.groupsView.refresh()
	case viewProfile:
		return a.profileView.refresh()
	case viewStats:
		return a.statsView.refresh()
	case viewSettings:
		return a.settingsView.enter()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTasks:
		content = a.tasksView.view()
	case viewGroups:
		content = a.groupsView.view()
	case viewProfile:
		content = a.profileView.view()
	case viewStats:
		content = a.statsView.view()
	case viewSettings:
		content = a.settingsView.view()
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

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("taskdeck")
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
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// First-role hint stays visible until an active role exists.
	hint := ""
	if a.profile.HasNoRoles() {
		hint = warningStyle.Render(" add a role (3)")
	}

	left := footerStyle.Render(helpView)
	right := hint + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
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
	tasks := a.tasks.Tasks()
	groups := make(map[string]store.Group)
	for _, g := range a.tasks.Groups() {
		groups[g.ID] = g
	}

	return func() tea.Msg {
		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("taskdeck-export-%s.csv", dateStr))
			if err := export.ToCSV(tasks, groups, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("taskdeck-export-%s.json", dateStr))
			if err := export.ToJSON(tasks, groups, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
