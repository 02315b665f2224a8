package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewGroups
	viewProfile
	viewStats
	viewSettings
)

var viewNames = []string{"Tasks", "Groups", "Profile", "Stats", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tasksDataMsg struct {
	tasks  []store.Task
	groups []store.Group
}

type groupsDataMsg struct {
	groups []store.Group
	roles  []store.Role
}

type profileDataMsg struct {
	bio      string
	active   []store.Role
	archived []store.Role
	noRoles  bool
}

type statsDataMsg struct {
	counts []groupCount
}

type settingsDataMsg struct {
	draft      store.Settings
	hasChanges bool
}

type exportDoneMsg struct {
	path string
}

// groupCount is one bar in the stats view.
type groupCount struct {
	name  string
	color string
	count int
}

// --- Helpers ---

func okStatus(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorStatus(prefix string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
	}
}

func formatDate(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return s[:n-1] + "…"
}

func formatFunds(f float64) string {
	if f == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}
