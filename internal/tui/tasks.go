package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/store"
)

type tasksModel struct {
	store  *store.TaskStore
	width  int
	height int

	filtered []store.Task
	groups   []store.Group
	cursor   int

	// -1 = all groups, otherwise an index into groups.
	groupCursor int

	searching   bool
	searchInput textinput.Model

	viewingDetail bool

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"

	// Form field pointers (survive value copies)
	formTitle *string
	formDesc  *string
	formWhy   *string
	formDone  *string
	formDue   *string
	formFunds *string
	formGroup *string
}

func newTasksModel(s *store.TaskStore) tasksModel {
	ti := textinput.New()
	ti.Placeholder = "search tasks..."
	ti.CharLimit = 80

	title, desc, why, done, due, funds, group := "", "", "", "", "", "", ""
	return tasksModel{
		store:       s,
		groupCursor: -1,
		searchInput: ti,
		formTitle:   &title,
		formDesc:    &desc,
		formWhy:     &why,
		formDone:    &done,
		formDue:     &due,
		formFunds:   &funds,
		formGroup:   &group,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) refresh() tea.Cmd {
	msg := tasksDataMsg{tasks: m.store.Filtered(), groups: m.store.Groups()}
	return func() tea.Msg { return msg }
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.filtered = msg.tasks
		m.groups = msg.groups
		if m.cursor >= len(m.filtered) {
			m.cursor = max(0, len(m.filtered)-1)
		}
		if m.groupCursor >= len(m.groups) {
			m.groupCursor = -1
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.viewingDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m tasksModel) updateSearch(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.store.SearchTasks(m.searchInput.Value())
	return m, tea.Batch(cmd, m.refresh())
}

func (m tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Left):
		return m.cycleGroup(-1)
	case key.Matches(msg, keys.Right):
		return m.cycleGroup(1)
	case key.Matches(msg, keys.Search):
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, keys.Enter):
		if len(m.filtered) > 0 {
			task := m.filtered[m.cursor]
			m.store.SelectTask(&task)
			m.viewingDetail = true
		}
	case key.Matches(msg, keys.New):
		return m.showNewForm()
	case key.Matches(msg, keys.Edit):
		if len(m.filtered) > 0 {
			task := m.filtered[m.cursor]
			m.store.SelectTask(&task)
			return m.showEditForm()
		}
	case key.Matches(msg, keys.Delete):
		if len(m.filtered) > 0 {
			task := m.filtered[m.cursor]
			if err := m.store.DeleteTask(task.ID); err != nil {
				return m, errorStatus("Delete failed", err)
			}
			return m, tea.Batch(m.refresh(), okStatus("Task deleted"))
		}
	}
	return m, nil
}

func (m tasksModel) updateDetail(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.viewingDetail = false
		m.store.SelectTask(nil)
	case key.Matches(msg, keys.Edit):
		return m.showEditForm()
	case key.Matches(msg, keys.Delete):
		if sel := m.store.SelectedTask(); sel != nil {
			id := sel.ID
			m.viewingDetail = false
			m.store.SelectTask(nil)
			if err := m.store.DeleteTask(id); err != nil {
				return m, errorStatus("Delete failed", err)
			}
			return m, tea.Batch(m.refresh(), okStatus("Task deleted"))
		}
	}
	return m, nil
}

// cycleGroup moves the group filter left or right through (all, g1, g2...).
// Selecting a group resets the search query, so the input is cleared too.
func (m tasksModel) cycleGroup(delta int) (tasksModel, tea.Cmd) {
	if len(m.groups) == 0 {
		return m, nil
	}
	m.groupCursor += delta
	if m.groupCursor < -1 {
		m.groupCursor = len(m.groups) - 1
	}
	if m.groupCursor >= len(m.groups) {
		m.groupCursor = -1
	}
	if m.groupCursor == -1 {
		m.store.SelectGroup("")
	} else {
		m.store.SelectGroup(m.groups[m.groupCursor].ID)
	}
	m.searchInput.SetValue("")
	return m, m.refresh()
}

func (m tasksModel) taskFormGroups() []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, g := range m.groups {
		options = append(options, huh.NewOption(g.Name, g.ID))
	}
	return options
}

func (m tasksModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle),
			huh.NewText().Title("Description").Value(m.formDesc).Lines(3),
			huh.NewText().Title("Why it matters").Value(m.formWhy).Lines(2),
			huh.NewText().Title("Definition of done").Value(m.formDone).Lines(2),
			huh.NewInput().Title("Due date (YYYY-MM-DD)").Value(m.formDue),
			huh.NewInput().Title("Funds needed").Value(m.formFunds),
			huh.NewSelect[string]().Title("Group").Options(m.taskFormGroups()...).Value(m.formGroup),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m tasksModel) showNewForm() (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formDesc = ""
	*m.formWhy = ""
	*m.formDone = ""
	*m.formDue = ""
	*m.formFunds = ""
	*m.formGroup = m.store.SelectedGroupID()
	m.formType = "new"
	m.form = m.buildForm()
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showEditForm() (tasksModel, tea.Cmd) {
	draft := m.store.Draft()
	if draft == nil {
		return m, nil
	}
	*m.formTitle = draft.Title
	*m.formDesc = draft.Description
	*m.formWhy = draft.WhyItMatters
	*m.formDone = draft.DefinitionOfDone
	*m.formDue = draft.DueDate
	*m.formFunds = formatFunds(draft.FundsNeeded)
	*m.formGroup = draft.GroupID
	m.formType = "edit"
	m.form = m.buildForm()
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Escape cancels: an edit discards the draft and leaves edit mode.
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			if m.formType == "edit" {
				m.store.DiscardTaskDraft()
				if !m.viewingDetail {
					m.store.SelectTask(nil)
				}
			}
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
		case "new":
			_, err := m.store.CreateTask(store.Task{
				Title:            *m.formTitle,
				Description:      *m.formDesc,
				WhyItMatters:     *m.formWhy,
				DefinitionOfDone: *m.formDone,
				DueDate:          *m.formDue,
				FundsNeeded:      parseFunds(*m.formFunds),
				GroupID:          *m.formGroup,
			})
			if err != nil {
				return m, errorStatus("Create failed", err)
			}
			return m, tea.Batch(m.refresh(), okStatus("Task created"))

		case "edit":
			funds := parseFunds(*m.formFunds)
			m.store.UpdateTaskDraft(store.TaskPatch{
				Title:            m.formTitle,
				Description:      m.formDesc,
				WhyItMatters:     m.formWhy,
				DefinitionOfDone: m.formDone,
				DueDate:          m.formDue,
				FundsNeeded:      &funds,
				GroupID:          m.formGroup,
			})
			if err := m.store.SaveTaskDraft(); err != nil {
				return m, errorStatus("Save failed", err)
			}
			if !m.viewingDetail {
				m.store.SelectTask(nil)
			}
			return m, tea.Batch(m.refresh(), okStatus("Task updated"))
		}
	}

	return m, cmd
}

func parseFunds(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// --- Rendering ---

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.formType == "edit" {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	if m.viewingDetail {
		return m.renderDetail()
	}
	return m.renderList()
}

func (m tasksModel) groupFilterLabel() string {
	if m.groupCursor < 0 || m.groupCursor >= len(m.groups) {
		return "All"
	}
	return m.groups[m.groupCursor].Name
}

func (m tasksModel) renderList() string {
	w := m.width - 4
	title := titleStyle.Render("Tasks") + mutedStyle.Render("  ‹ "+m.groupFilterLabel()+" ›")

	var rows []string
	rows = append(rows, title)
	if m.searching || m.searchInput.Value() != "" {
		rows = append(rows, m.searchInput.View())
	}
	rows = append(rows, "")

	if len(m.filtered) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks. Press n to create one."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	for i, task := range m.filtered {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		title := task.Title
		if title == "" {
			title = "(untitled)"
		}
		line := style.Render(fmt.Sprintf("%s%-40s", cursor, truncate(title, 40)))

		if g, ok := m.store.GroupByID(task.GroupID); ok {
			dot := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render("●")
			line += " " + dot + " " + mutedStyle.Render(g.Name)
		}
		if task.DueDate != "" {
			line += warningStyle.Render("  due " + task.DueDate)
		}
		rows = append(rows, line)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  /: search  ←/→: group  enter: detail"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderDetail shows the selected task with its long-form fields rendered
// as markdown.
func (m tasksModel) renderDetail() string {
	w := m.width - 4
	task := m.store.SelectedTask()
	if task == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("Nothing selected."))
	}

	md := taskMarkdown(*task)
	body, err := glamour.Render(md, "dark")
	if err != nil {
		body = md
	}

	var meta []string
	if g, ok := m.store.GroupByID(task.GroupID); ok {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render("●")
		meta = append(meta, dot+" "+g.Name)
	}
	if task.DueDate != "" {
		meta = append(meta, "due "+task.DueDate)
	}
	if task.FundsNeeded != 0 {
		meta = append(meta, "funds "+formatFunds(task.FundsNeeded))
	}
	meta = append(meta, "updated "+formatDate(task.UpdatedAt))

	rows := []string{
		highlightStyle.Render(strings.Join(meta, "  ·  ")),
		body,
		mutedStyle.Render("  e: edit  d: delete  esc: back"),
	}
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// taskMarkdown builds the markdown document for the detail pane.
func taskMarkdown(t store.Task) string {
	var b strings.Builder
	title := t.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&b, "# %s\n", title)
	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Description)
	}
	if t.WhyItMatters != "" {
		fmt.Fprintf(&b, "\n## Why it matters\n\n%s\n", t.WhyItMatters)
	}
	if t.DefinitionOfDone != "" {
		fmt.Fprintf(&b, "\n## Definition of done\n\n%s\n", t.DefinitionOfDone)
	}
	return b.String()
}
