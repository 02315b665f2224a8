package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/store"
)

var groupColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

type groupsModel struct {
	tasks   *store.TaskStore
	profile *store.ProfileStore
	width   int
	height  int

	groups []store.Group
	roles  []store.Role
	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "group", "edit_group"

	formName       *string
	formColor      *string
	formRole       *string
	formNotes      *string
	formComplex    *bool
	formRemarkable *bool
	formRepetitive *bool

	editingID string
}

func newGroupsModel(t *store.TaskStore, p *store.ProfileStore) groupsModel {
	name, color, role, notes := "", groupColors[0], "", ""
	isComplex, remarkable, repetitive := true, false, false
	return groupsModel{
		tasks:          t,
		profile:        p,
		formName:       &name,
		formColor:      &color,
		formRole:       &role,
		formNotes:      &notes,
		formComplex:    &isComplex,
		formRemarkable: &remarkable,
		formRepetitive: &repetitive,
	}
}

func (m *groupsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m groupsModel) refresh() tea.Cmd {
	msg := groupsDataMsg{groups: m.tasks.Groups(), roles: m.profile.ActiveRoles()}
	return func() tea.Msg { return msg }
}

func (m groupsModel) update(msg tea.Msg) (groupsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case groupsDataMsg:
		m.groups = msg.groups
		m.roles = msg.roles
		if m.cursor >= len(m.groups) {
			m.cursor = max(0, len(m.groups)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.groups)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showForm("group", store.Group{Color: groupColors[0], IsComplex: true})
		case key.Matches(msg, keys.Edit):
			if len(m.groups) > 0 {
				g := m.groups[m.cursor]
				m.editingID = g.ID
				return m.showForm("edit_group", g)
			}
		case key.Matches(msg, keys.Delete):
			if len(m.groups) > 0 {
				g := m.groups[m.cursor]
				if err := m.tasks.DeleteGroup(g.ID); err != nil {
					return m, errorStatus("Delete failed", err)
				}
				return m, tea.Batch(m.refresh(), okStatus("Group deleted"))
			}
		}
	}
	return m, nil
}

func (m groupsModel) showForm(formType string, g store.Group) (groupsModel, tea.Cmd) {
	*m.formName = g.Name
	*m.formColor = g.Color
	*m.formRole = g.RoleID
	*m.formNotes = g.Notes
	*m.formComplex = g.IsComplex
	*m.formRemarkable = g.IsRemarkable
	*m.formRepetitive = g.IsRepetitive
	m.formType = formType

	colorOptions := make([]huh.Option[string], len(groupColors))
	for i, c := range groupColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}
	roleOptions := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, r := range m.roles {
		roleOptions = append(roleOptions, huh.NewOption(r.Name, r.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(m.formName),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(m.formColor),
			huh.NewSelect[string]().Title("Role").Options(roleOptions...).Value(m.formRole),
			huh.NewText().Title("Notes").Value(m.formNotes).Lines(2),
			huh.NewConfirm().Title("Complex?").Value(m.formComplex),
			huh.NewConfirm().Title("Remarkable?").Value(m.formRemarkable),
			huh.NewConfirm().Title("Repetitive?").Value(m.formRepetitive),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m groupsModel) updateForm(msg tea.Msg) (groupsModel, tea.Cmd) {
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
		g := store.Group{
			Name:         *m.formName,
			Color:        *m.formColor,
			RoleID:       *m.formRole,
			Notes:        *m.formNotes,
			IsComplex:    *m.formComplex,
			IsRemarkable: *m.formRemarkable,
			IsRepetitive: *m.formRepetitive,
		}
		switch m.formType {
		case "group":
			if _, err := m.tasks.CreateGroup(g); err != nil {
				return m, errorStatus("Create failed", err)
			}
			return m, tea.Batch(m.refresh(), okStatus("Group created"))
		case "edit_group":
			g.ID = m.editingID
			if err := m.tasks.UpdateGroup(g); err != nil {
				return m, errorStatus("Update failed", err)
			}
			return m, tea.Batch(m.refresh(), okStatus("Group updated"))
		}
	}

	return m, cmd
}

func (m groupsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Group")
		if m.formType == "edit_group" {
			title = titleStyle.Render("Edit Group")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	title := titleStyle.Render("Groups")
	if len(m.groups) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No groups yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, g := range m.groups {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		var marks []string
		if !g.IsComplex {
			marks = append(marks, "simple")
		}
		if g.IsRemarkable {
			marks = append(marks, "★")
		}
		if g.IsRepetitive {
			marks = append(marks, "↻")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = mutedStyle.Render(" [" + strings.Join(marks, " ") + "]")
		}
		if r, ok := m.profile.RoleByID(g.RoleID); ok && !r.Archived {
			suffix += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(r.Color)).Render(r.Name)
		}

		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s", cursor, colorDot, truncate(g.Name, 24)))+suffix)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
