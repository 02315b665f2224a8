package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/storage"
	"taskdeck/internal/store"
)

func newTestStores(t *testing.T) (*store.TaskStore, *store.ProfileStore, *store.SettingsStore) {
	t.Helper()
	a, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("new memory adapter: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	tasks, err := store.NewTaskStore(a)
	if err != nil {
		t.Fatalf("new task store: %v", err)
	}
	profile, err := store.NewProfileStore(a)
	if err != nil {
		t.Fatalf("new profile store: %v", err)
	}
	settings, err := store.NewSettingsStore(a)
	if err != nil {
		t.Fatalf("new settings store: %v", err)
	}
	return tasks, profile, settings
}

// runCmd executes a command and returns its message, the way the Bubble
// Tea runtime would.
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// ============================================================
// Tasks view
// ============================================================

func TestTasksRefreshCarriesFilteredView(t *testing.T) {
	tasks, _, _ := newTestStores(t)
	g, _ := tasks.CreateGroup(store.Group{Name: "Work"})
	tasks.CreateTask(store.Task{Title: "Write report", GroupID: g.ID})
	tasks.CreateTask(store.Task{Title: "Buy milk"})
	tasks.SelectGroup(g.ID)

	m := newTasksModel(tasks)
	msg := runCmd(m.refresh())
	data, ok := msg.(tasksDataMsg)
	if !ok {
		t.Fatalf("refresh should yield tasksDataMsg, got %T", msg)
	}
	if len(data.tasks) != 1 || data.tasks[0].Title != "Write report" {
		t.Fatalf("expected only the grouped task, got %v", data.tasks)
	}
	if len(data.groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(data.groups))
	}
}

func TestTasksDataMsgClampsCursor(t *testing.T) {
	tasks, _, _ := newTestStores(t)
	m := newTasksModel(tasks)
	m.cursor = 5

	m, _ = m.update(tasksDataMsg{tasks: []store.Task{{ID: "a", Title: "Only"}}})
	if m.cursor != 0 {
		t.Fatalf("cursor should clamp to 0, got %d", m.cursor)
	}

	m, _ = m.update(tasksDataMsg{})
	if m.cursor != 0 {
		t.Fatalf("cursor should stay 0 on empty list, got %d", m.cursor)
	}
}

func TestCycleGroupSelectsAndWraps(t *testing.T) {
	tasks, _, _ := newTestStores(t)
	g1, _ := tasks.CreateGroup(store.Group{Name: "Work"})
	g2, _ := tasks.CreateGroup(store.Group{Name: "Home"})

	m := newTasksModel(tasks)
	m, _ = m.update(tasksDataMsg{groups: tasks.Groups()})

	m, _ = m.cycleGroup(1)
	if tasks.SelectedGroupID() != g1.ID {
		t.Fatalf("expected first group selected, got %q", tasks.SelectedGroupID())
	}
	m, _ = m.cycleGroup(1)
	if tasks.SelectedGroupID() != g2.ID {
		t.Fatalf("expected second group selected, got %q", tasks.SelectedGroupID())
	}
	m, _ = m.cycleGroup(1)
	if tasks.SelectedGroupID() != "" {
		t.Fatalf("cycling past the end should return to all groups, got %q", tasks.SelectedGroupID())
	}
	m, _ = m.cycleGroup(-1)
	if tasks.SelectedGroupID() != g2.ID {
		t.Fatalf("cycling left from all should wrap to last group, got %q", tasks.SelectedGroupID())
	}
}

func TestCycleGroupClearsSearchInput(t *testing.T) {
	tasks, _, _ := newTestStores(t)
	tasks.CreateGroup(store.Group{Name: "Work"})

	m := newTasksModel(tasks)
	m, _ = m.update(tasksDataMsg{groups: tasks.Groups()})
	m.searchInput.SetValue("milk")
	tasks.SearchTasks("milk")

	m, _ = m.cycleGroup(1)
	if m.searchInput.Value() != "" {
		t.Fatalf("search input should be cleared, got %q", m.searchInput.Value())
	}
	if tasks.Query() != "" {
		t.Fatalf("store query should be reset, got %q", tasks.Query())
	}
}

func TestTaskMarkdownSections(t *testing.T) {
	md := taskMarkdown(store.Task{
		Title:        "Ship release",
		Description:  "Cut and tag v1.",
		WhyItMatters: "Users are waiting.",
	})
	if !strings.HasPrefix(md, "# Ship release\n") {
		t.Fatalf("title heading missing: %q", md)
	}
	if !strings.Contains(md, "## Why it matters") {
		t.Fatal("why section missing")
	}
	if strings.Contains(md, "## Definition of done") {
		t.Fatal("empty definition-of-done should be omitted")
	}

	md = taskMarkdown(store.Task{})
	if !strings.HasPrefix(md, "# (untitled)") {
		t.Fatalf("empty title should render as (untitled): %q", md)
	}
}

func TestParseFunds(t *testing.T) {
	if got := parseFunds(" 12.50 "); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := parseFunds("not a number"); got != 0 {
		t.Fatalf("malformed input should parse as 0, got %v", got)
	}
	if got := parseFunds(""); got != 0 {
		t.Fatalf("empty input should parse as 0, got %v", got)
	}
}

// ============================================================
// Stats view
// ============================================================

func TestCountTasksByGroup(t *testing.T) {
	groups := []store.Group{
		{ID: "g1", Name: "Work", Color: "#ff0000"},
		{ID: "g2", Name: "Home", Color: "#00ff00"},
	}
	tasks := []store.Task{
		{ID: "a", GroupID: "g1"},
		{ID: "b", GroupID: "g1"},
		{ID: "c", GroupID: "g2"},
		{ID: "d"},
		{ID: "e", GroupID: "gone"},
	}

	counts := countTasksByGroup(tasks, groups)
	if len(counts) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(counts))
	}
	if counts[0].name != "Work" || counts[0].count != 2 {
		t.Fatalf("unexpected first bucket: %+v", counts[0])
	}
	if counts[1].name != "Home" || counts[1].count != 1 {
		t.Fatalf("unexpected second bucket: %+v", counts[1])
	}
	// Tasks with no group or a dangling group share the Ungrouped bucket.
	if counts[2].name != "Ungrouped" || counts[2].count != 2 {
		t.Fatalf("unexpected ungrouped bucket: %+v", counts[2])
	}
}

func TestCountTasksByGroupOmitsEmptyUngrouped(t *testing.T) {
	groups := []store.Group{{ID: "g1", Name: "Work"}}
	tasks := []store.Task{{ID: "a", GroupID: "g1"}}

	counts := countTasksByGroup(tasks, groups)
	if len(counts) != 1 {
		t.Fatalf("expected only the group bucket, got %d", len(counts))
	}
}

func TestCountTasksByGroupEmpty(t *testing.T) {
	if counts := countTasksByGroup(nil, nil); len(counts) != 0 {
		t.Fatalf("expected no buckets, got %d", len(counts))
	}
}

// ============================================================
// Settings view
// ============================================================

func TestSettingsEnterRevertsDraft(t *testing.T) {
	_, _, settings := newTestStores(t)
	key := "sk-123"
	settings.UpdateDraft(store.SettingsPatch{APIKey: &key})

	m := newSettingsModel(settings)
	msg := runCmd(m.enter())
	data, ok := msg.(settingsDataMsg)
	if !ok {
		t.Fatalf("enter should yield settingsDataMsg, got %T", msg)
	}
	if data.draft.APIKey != "" {
		t.Fatalf("entering the view should discard stale draft edits, got %q", data.draft.APIKey)
	}
	if data.hasChanges {
		t.Fatal("draft should match committed settings after enter")
	}
}

func TestSettingsDataMsgUpdatesModel(t *testing.T) {
	_, _, settings := newTestStores(t)
	m := newSettingsModel(settings)

	m, _ = m.update(settingsDataMsg{
		draft:      store.Settings{APIKey: "sk-abc", Theme: store.ThemeDark},
		hasChanges: true,
	})
	if m.draft.Theme != store.ThemeDark || !m.hasChanges {
		t.Fatalf("model not updated from data msg: %+v", m.draft)
	}
}

// ============================================================
// Profile view
// ============================================================

func TestProfileRefreshSplitsRoles(t *testing.T) {
	_, profile, _ := newTestStores(t)
	r1, _ := profile.AddRole("Engineer")
	profile.AddRole("Mentor")
	profile.ArchiveRole(r1.ID)
	profile.UpdateBio("Hello")

	m := newProfileModel(profile)
	msg := runCmd(m.refresh())
	data, ok := msg.(profileDataMsg)
	if !ok {
		t.Fatalf("refresh should yield profileDataMsg, got %T", msg)
	}
	if data.bio != "Hello" {
		t.Fatalf("unexpected bio %q", data.bio)
	}
	if len(data.active) != 1 || data.active[0].Name != "Mentor" {
		t.Fatalf("unexpected active roles: %v", data.active)
	}
	if len(data.archived) != 1 || data.archived[0].Name != "Engineer" {
		t.Fatalf("unexpected archived roles: %v", data.archived)
	}
	if data.noRoles {
		t.Fatal("noRoles should be false while an active role exists")
	}
}

func TestProfileRefreshFlagsNoActiveRoles(t *testing.T) {
	_, profile, _ := newTestStores(t)
	r, _ := profile.AddRole("Engineer")
	profile.ArchiveRole(r.ID)

	m := newProfileModel(profile)
	data := runCmd(m.refresh()).(profileDataMsg)
	if !data.noRoles {
		t.Fatal("noRoles should be true when every role is archived")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected unchanged string, got %q", got)
	}
	got := truncate("a very long task title indeed", 10)
	if len([]rune(got)) > 10 {
		t.Fatalf("truncated string too long: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

func TestFormatFunds(t *testing.T) {
	if got := formatFunds(12.5); got != "12.50" {
		t.Fatalf("expected 12.50, got %q", got)
	}
	if got := formatFunds(0); got != "" {
		t.Fatalf("zero funds should render empty, got %q", got)
	}
}
