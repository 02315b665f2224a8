package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/store"
)

type settingsModel struct {
	store  *store.SettingsStore
	width  int
	height int

	draft      store.Settings
	hasChanges bool

	formActive bool
	form       *huh.Form

	formAPIKey *string
	formTheme  *string
}

func newSettingsModel(s *store.SettingsStore) settingsModel {
	apiKey, theme := "", ""
	return settingsModel{
		store:      s,
		formAPIKey: &apiKey,
		formTheme:  &theme,
	}
}

func (m *settingsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// enter re-synchronizes the draft with the committed settings. Called when
// the settings tab becomes active.
func (m settingsModel) enter() tea.Cmd {
	m.store.Revert()
	return m.refresh()
}

func (m settingsModel) refresh() tea.Cmd {
	msg := settingsDataMsg{draft: m.store.Draft(), hasChanges: m.store.HasChanges()}
	return func() tea.Msg { return msg }
}

func (m settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		m.draft = msg.draft
		m.hasChanges = msg.hasChanges
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return m.showForm()
		case key.Matches(msg, keys.Save):
			if err := m.store.Save(); err != nil {
				return m, errorStatus("Save failed", err)
			}
			return m, tea.Batch(m.refresh(), okStatus("Settings saved"))
		case key.Matches(msg, keys.Back):
			m.store.Revert()
			return m, tea.Batch(m.refresh(), okStatus("Changes discarded"))
		case key.Matches(msg, keys.Reset):
			if err := m.store.ResetToDefaults(); err != nil {
				return m, errorStatus("Reset failed", err)
			}
			m.store.Revert()
			return m, tea.Batch(m.refresh(), okStatus("Settings reset to defaults"))
		}
	}
	return m, nil
}

func (m settingsModel) showForm() (settingsModel, tea.Cmd) {
	draft := m.store.Draft()
	*m.formAPIKey = draft.APIKey
	*m.formTheme = string(draft.Theme)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("API key").Value(m.formAPIKey).EchoMode(huh.EchoModePassword),
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("System", string(store.ThemeSystem)),
					huh.NewOption("Light", string(store.ThemeLight)),
					huh.NewOption("Dark", string(store.ThemeDark)),
				).Value(m.formTheme),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		theme := store.Theme(*m.formTheme)
		m.store.UpdateDraft(store.SettingsPatch{
			APIKey: m.formAPIKey,
			Theme:  &theme,
		})
		return m, m.refresh()
	}

	return m, cmd
}

func (m settingsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Settings"), "", m.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	if m.hasChanges {
		title += warningStyle.Render("  ● unsaved changes")
	}

	apiKey := mutedStyle.Render("(not set)")
	if m.draft.APIKey != "" {
		apiKey = highlightStyle.Render(strings.Repeat("•", 12))
	}
	theme := highlightStyle.Render(string(m.draft.Theme))

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, "  "+lipgloss.NewStyle().Width(24).Render("API key")+apiKey)
	rows = append(rows, "  "+lipgloss.NewStyle().Width(24).Render("Theme")+theme)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit  s: save  esc: revert  R: reset defaults"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
