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

type profileModel struct {
	store  *store.ProfileStore
	width  int
	height int

	bio      string
	active   []store.Role
	archived []store.Role
	cursor   int

	// true when the cursor is in the archived list.
	inArchived bool

	formActive bool
	form       *huh.Form
	formType   string // "bio", "role"

	formBio  *string
	formRole *string
}

func newProfileModel(s *store.ProfileStore) profileModel {
	bio, role := "", ""
	return profileModel{
		store:    s,
		formBio:  &bio,
		formRole: &role,
	}
}

func (m *profileModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m profileModel) refresh() tea.Cmd {
	msg := profileDataMsg{
		bio:      m.store.Bio(),
		active:   m.store.ActiveRoles(),
		archived: m.store.ArchivedRoles(),
		noRoles:  m.store.HasNoRoles(),
	}
	return func() tea.Msg { return msg }
}

func (m profileModel) cursorRole() (store.Role, bool) {
	list := m.active
	if m.inArchived {
		list = m.archived
	}
	if m.cursor < 0 || m.cursor >= len(list) {
		return store.Role{}, false
	}
	return list[m.cursor], true
}

func (m profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case profileDataMsg:
		m.bio = msg.bio
		m.active = msg.active
		m.archived = msg.archived
		list := m.active
		if m.inArchived {
			list = m.archived
		}
		if m.cursor >= len(list) {
			m.cursor = max(0, len(list)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			limit := len(m.active)
			if m.inArchived {
				limit = len(m.archived)
			}
			if m.cursor < limit-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			m.inArchived = !m.inArchived
			m.cursor = 0
		case key.Matches(msg, keys.Edit):
			return m.showBioForm()
		case key.Matches(msg, keys.New):
			return m.showRoleForm()
		case key.Matches(msg, keys.Archive):
			if role, ok := m.cursorRole(); ok && !m.inArchived {
				if err := m.store.ArchiveRole(role.ID); err != nil {
					return m, errorStatus("Archive failed", err)
				}
				return m, tea.Batch(m.refresh(), okStatus("Role archived"))
			}
		case key.Matches(msg, keys.Restore):
			if role, ok := m.cursorRole(); ok && m.inArchived {
				if err := m.store.RestoreRole(role.ID); err != nil {
					return m, errorStatus("Restore failed", err)
				}
				return m, tea.Batch(m.refresh(), okStatus("Role restored"))
			}
		case key.Matches(msg, keys.Delete):
			if role, ok := m.cursorRole(); ok {
				if err := m.store.DeleteRole(role.ID); err != nil {
					return m, errorStatus("Delete failed", err)
				}
				return m, tea.Batch(m.refresh(), okStatus("Role deleted"))
			}
		}
	}
	return m, nil
}

func (m profileModel) showBioForm() (profileModel, tea.Cmd) {
	*m.formBio = m.store.Bio()
	m.formType = "bio"
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Bio").Value(m.formBio).Lines(4),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m profileModel) showRoleForm() (profileModel, tea.Cmd) {
	*m.formRole = ""
	m.formType = "role"
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Role name").Value(m.formRole),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m profileModel) updateForm(msg tea.Msg) (profileModel, tea.Cmd) {
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
		switch m.formType {
		case "bio":
			if err := m.store.UpdateBio(*m.formBio); err != nil {
				return m, errorStatus("Bio update failed", err)
			}
			return m, tea.Batch(m.refresh(), okStatus("Bio updated"))
		case "role":
			if strings.TrimSpace(*m.formRole) == "" {
				return m, m.refresh()
			}
			if _, err := m.store.AddRole(*m.formRole); err != nil {
				return m, errorStatus("Add role failed", err)
			}
			return m, tea.Batch(m.refresh(), okStatus("Role added"))
		}
	}

	return m, cmd
}

func (m profileModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Edit Bio")
		if m.formType == "role" {
			title = titleStyle.Render("Add Role")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Profile"))
	rows = append(rows, "")

	if m.bio == "" {
		rows = append(rows, mutedStyle.Render("No bio yet. Press e to write one."))
	} else {
		rows = append(rows, normalItemStyle.Render(m.bio))
	}
	rows = append(rows, "")

	if m.store.HasNoRoles() {
		rows = append(rows, warningStyle.Render("You have no active roles. Press n to add your first one."))
		rows = append(rows, "")
	}

	section := titleStyle.Render("Roles")
	if m.inArchived {
		section = titleStyle.Render("Roles") + mutedStyle.Render("  (archived)")
	}
	rows = append(rows, section)
	rows = append(rows, m.renderRoles()...)

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  e: bio  n: add role  a: archive  r: restore  d: delete  ←/→: active/archived"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m profileModel) renderRoles() []string {
	list := m.active
	if m.inArchived {
		list = m.archived
	}
	if len(list) == 0 {
		return []string{mutedStyle.Render("  (none)")}
	}

	var rows []string
	for i, role := range list {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(role.Color)).Render("●")
		name := style.Render(role.Name)
		if role.Archived {
			name = archivedBadgeStyle.Render(role.Name)
			if i == m.cursor {
				name = selectedItemStyle.Strikethrough(true).Render(role.Name)
			}
		}
		line := fmt.Sprintf("%s%s %s", cursor, dot, name)
		if role.Archived && role.ArchivedAt != nil {
			line += mutedStyle.Render("  archived " + formatDate(*role.ArchivedAt))
		}
		rows = append(rows, line)
	}
	return rows
}
