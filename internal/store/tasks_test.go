package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"taskdeck/internal/storage"
)

func newTestAdapter(t *testing.T) *storage.SQLite {
	t.Helper()
	a, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("new memory adapter: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func newTestTaskStore(t *testing.T) *TaskStore {
	t.Helper()
	s, err := NewTaskStore(newTestAdapter(t))
	if err != nil {
		t.Fatalf("new task store: %v", err)
	}
	return s
}

// fakeClock returns a strictly increasing time on every call.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// seqIDs returns "id-1", "id-2", ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// failingAdapter wraps an adapter and fails every write once armed.
type failingAdapter struct {
	storage.Adapter
	fail bool
}

func (f *failingAdapter) SaveAll(namespace string, v any) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Adapter.SaveAll(namespace, v)
}

// ============================================================
// Task creation
// ============================================================

func TestCreateTaskIDsDistinct(t *testing.T) {
	s := newTestTaskStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		task, err := s.CreateTask(Task{Title: "x"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %q", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestCreateTaskTimestamps(t *testing.T) {
	s := newTestTaskStore(t)
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.now

	task, err := s.CreateTask(Task{Title: "Buy milk"})
	if err != nil {
		t.Fatal(err)
	}
	if !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("createdAt %v != updatedAt %v", task.CreatedAt, task.UpdatedAt)
	}
	if task.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}
}

func TestCreateTaskEmptyTitleAccepted(t *testing.T) {
	s := newTestTaskStore(t)

	task, err := s.CreateTask(Task{})
	if err != nil {
		t.Fatal(err)
	}
	if task.Title != "" {
		t.Fatalf("expected empty title, got %q", task.Title)
	}
	if len(s.Tasks()) != 1 {
		t.Fatal("task should be stored")
	}
}

func TestCreateTaskPrepends(t *testing.T) {
	s := newTestTaskStore(t)
	first, _ := s.CreateTask(Task{Title: "first"})
	second, _ := s.CreateTask(Task{Title: "second"})

	tasks := s.Tasks()
	if tasks[0].ID != second.ID || tasks[1].ID != first.ID {
		t.Fatal("newest task should come first")
	}
}

func TestCreateTaskInheritsSelectedGroup(t *testing.T) {
	s := newTestTaskStore(t)
	g, _ := s.CreateGroup(Group{Name: "Home"})
	s.SelectGroup(g.ID)

	task, err := s.CreateTask(Task{Title: "mow lawn"})
	if err != nil {
		t.Fatal(err)
	}
	if task.GroupID != g.ID {
		t.Fatalf("expected inherited group %q, got %q", g.ID, task.GroupID)
	}
}

func TestCreateTaskExplicitGroupOverrides(t *testing.T) {
	s := newTestTaskStore(t)
	g1, _ := s.CreateGroup(Group{Name: "Home"})
	g2, _ := s.CreateGroup(Group{Name: "Work"})
	s.SelectGroup(g1.ID)

	task, _ := s.CreateTask(Task{Title: "report", GroupID: g2.ID})
	if task.GroupID != g2.ID {
		t.Fatalf("explicit group should win, got %q", task.GroupID)
	}
}

func TestCreateTaskNoGroupSelected(t *testing.T) {
	s := newTestTaskStore(t)
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.now

	task, _ := s.CreateTask(Task{Title: "Buy milk"})
	if task.GroupID != "" {
		t.Fatalf("expected no group, got %q", task.GroupID)
	}

	filtered := s.Filtered()
	if len(filtered) != 1 || filtered[0].ID != task.ID {
		t.Fatal("new task should appear in the filtered view")
	}

	s.SearchTasks("milk")
	if len(s.Filtered()) != 1 {
		t.Fatal("search for 'milk' should match")
	}
	s.SearchTasks("bread")
	if len(s.Filtered()) != 0 {
		t.Fatal("search for 'bread' should match nothing")
	}
}

// ============================================================
// Update / delete
// ============================================================

func TestUpdateTask(t *testing.T) {
	s := newTestTaskStore(t)
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.now

	task, _ := s.CreateTask(Task{Title: "old"})
	before := task.UpdatedAt

	task.Title = "new"
	task.Description = "details"
	if err := s.UpdateTask(task); err != nil {
		t.Fatal(err)
	}

	got, ok := s.TaskByID(task.ID)
	if !ok {
		t.Fatal("task missing after update")
	}
	if got.Title != "new" || got.Description != "details" {
		t.Fatalf("fields not updated: %+v", got)
	}
	if !got.UpdatedAt.After(before) {
		t.Fatalf("updatedAt %v should be after %v", got.UpdatedAt, before)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) {
		t.Fatal("createdAt must never change")
	}
}

func TestUpdateTaskUnknownIDNoop(t *testing.T) {
	s := newTestTaskStore(t)
	s.CreateTask(Task{Title: "keep"})

	if err := s.UpdateTask(Task{ID: "missing", Title: "ghost"}); err != nil {
		t.Fatal(err)
	}
	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "keep" {
		t.Fatalf("unexpected tasks: %v", tasks)
	}
}

func TestUpdateTaskRefreshesSelection(t *testing.T) {
	s := newTestTaskStore(t)
	task, _ := s.CreateTask(Task{Title: "old"})
	s.SelectTask(&task)

	task.Title = "new"
	s.UpdateTask(task)

	sel := s.SelectedTask()
	if sel == nil || sel.Title != "new" {
		t.Fatalf("selected task should track the update, got %+v", sel)
	}
}

func TestDeleteTaskIdempotent(t *testing.T) {
	s := newTestTaskStore(t)
	task, _ := s.CreateTask(Task{Title: "gone"})

	if err := s.DeleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	if len(s.Tasks()) != 0 || len(s.Filtered()) != 0 {
		t.Fatal("task should be gone from both views")
	}
}

// ============================================================
// Search and filtering
// ============================================================

func TestSearchCaseInsensitive(t *testing.T) {
	s := newTestTaskStore(t)
	s.CreateTask(Task{Title: "Buy MILK"})
	s.CreateTask(Task{Title: "buy bread"})
	s.CreateTask(Task{Title: "Call mom"})

	s.SearchTasks("buy")
	if len(s.Filtered()) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(s.Filtered()))
	}
	s.SearchTasks("MILK")
	if len(s.Filtered()) != 1 {
		t.Fatalf("expected 1 match, got %d", len(s.Filtered()))
	}
}

func TestSearchConjunctionWithGroup(t *testing.T) {
	s := newTestTaskStore(t)
	home, _ := s.CreateGroup(Group{Name: "Home"})
	work, _ := s.CreateGroup(Group{Name: "Work"})

	s.CreateTask(Task{Title: "Buy milk", GroupID: home.ID})
	s.CreateTask(Task{Title: "Buy stapler", GroupID: work.ID})
	s.CreateTask(Task{Title: "Buy nothing"})

	s.SelectGroup(home.ID)
	s.SearchTasks("buy")
	filtered := s.Filtered()
	if len(filtered) != 1 || filtered[0].Title != "Buy milk" {
		t.Fatalf("expected only the Home match, got %v", filtered)
	}

	// Empty query restores the group-filtered view.
	s.SearchTasks("")
	if len(s.Filtered()) != 1 {
		t.Fatal("empty query should keep the group filter")
	}

	// No group selected: query matches across all groups.
	s.SelectGroup("")
	s.SearchTasks("buy")
	if len(s.Filtered()) != 3 {
		t.Fatalf("expected 3 matches with no group, got %d", len(s.Filtered()))
	}
}

func TestSearchDoesNotMutateTasks(t *testing.T) {
	s := newTestTaskStore(t)
	s.CreateTask(Task{Title: "a"})
	s.CreateTask(Task{Title: "b"})

	s.SearchTasks("a")
	if len(s.Tasks()) != 2 {
		t.Fatal("search must not touch the full collection")
	}
}

func TestFilteredRecomputedOnMutation(t *testing.T) {
	s := newTestTaskStore(t)
	s.SearchTasks("milk")
	task, _ := s.CreateTask(Task{Title: "Buy milk"})
	if len(s.Filtered()) != 1 {
		t.Fatal("matching new task should enter the filtered view")
	}

	task.Title = "Buy bread"
	s.UpdateTask(task)
	if len(s.Filtered()) != 0 {
		t.Fatal("renamed task should leave the filtered view")
	}
}

// ============================================================
// Draft lifecycle
// ============================================================

func strptr(s string) *string { return &s }

func TestSelectTaskClonesDraft(t *testing.T) {
	s := newTestTaskStore(t)
	task, _ := s.CreateTask(Task{Title: "original"})

	s.SelectTask(&task)
	draft := s.Draft()
	if draft == nil || draft.ID != task.ID || draft.Title != "original" {
		t.Fatalf("draft should clone the selected task, got %+v", draft)
	}

	s.SelectTask(nil)
	if s.Draft() != nil || s.SelectedTask() != nil {
		t.Fatal("deselecting should clear selection and draft")
	}
}

func TestDraftIsolation(t *testing.T) {
	s := newTestTaskStore(t)
	task, _ := s.CreateTask(Task{Title: "committed"})
	s.SelectTask(&task)

	s.UpdateTaskDraft(TaskPatch{Title: strptr("edited")})

	got, _ := s.TaskByID(task.ID)
	if got.Title != "committed" {
		t.Fatal("draft edits must not touch the committed task")
	}
	if s.Draft().Title != "edited" {
		t.Fatal("draft should carry the edit")
	}

	if err := s.SaveTaskDraft(); err != nil {
		t.Fatal(err)
	}
	got, _ = s.TaskByID(task.ID)
	if got.Title != "edited" {
		t.Fatal("save should commit the draft")
	}
}

func TestUpdateTaskDraftWithoutDraftNoop(t *testing.T) {
	s := newTestTaskStore(t)
	s.UpdateTaskDraft(TaskPatch{Title: strptr("ghost")})
	if s.Draft() != nil {
		t.Fatal("patching without a draft must stay a no-op")
	}
}

func TestDiscardTaskDraft(t *testing.T) {
	s := newTestTaskStore(t)
	task, _ := s.CreateTask(Task{Title: "committed", Description: "keep"})
	s.SelectTask(&task)

	s.UpdateTaskDraft(TaskPatch{Title: strptr("scrap"), Description: strptr("scrap")})
	s.DiscardTaskDraft()

	draft := s.Draft()
	if draft.Title != "committed" || draft.Description != "keep" {
		t.Fatalf("discard should restore the committed fields, got %+v", draft)
	}
	if s.SelectedTask() == nil {
		t.Fatal("discard must leave the selection in place")
	}
}

func TestSelectReplacesDraftAtomically(t *testing.T) {
	s := newTestTaskStore(t)
	a, _ := s.CreateTask(Task{Title: "a"})
	b, _ := s.CreateTask(Task{Title: "b"})

	s.SelectTask(&a)
	s.UpdateTaskDraft(TaskPatch{Description: strptr("half-typed")})
	s.SelectTask(&b)

	draft := s.Draft()
	if draft.ID != b.ID || draft.Description != "" {
		t.Fatalf("new selection must replace, not merge, the draft: %+v", draft)
	}
}

func TestSaveTaskDraftWithoutDraftNoop(t *testing.T) {
	s := newTestTaskStore(t)
	if err := s.SaveTaskDraft(); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// Groups
// ============================================================

func TestCreateGroupDefaultsName(t *testing.T) {
	s := newTestTaskStore(t)
	g, err := s.CreateGroup(Group{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != "New Activity" {
		t.Fatalf("expected default name, got %q", g.Name)
	}
}

func TestUpdateGroup(t *testing.T) {
	s := newTestTaskStore(t)
	g, _ := s.CreateGroup(Group{Name: "Old", IsComplex: true})

	g.Name = "New"
	g.Notes = "renamed"
	g.IsRemarkable = true
	if err := s.UpdateGroup(g); err != nil {
		t.Fatal(err)
	}

	got, ok := s.GroupByID(g.ID)
	if !ok || got.Name != "New" || got.Notes != "renamed" || !got.IsRemarkable || !got.IsComplex {
		t.Fatalf("unexpected group: %+v", got)
	}
}

func TestDeleteGroupKeepsTasks(t *testing.T) {
	s := newTestTaskStore(t)
	g, _ := s.CreateGroup(Group{Name: "Doomed"})
	task, _ := s.CreateTask(Task{Title: "orphan", GroupID: g.ID})

	if err := s.DeleteGroup(g.ID); err != nil {
		t.Fatal(err)
	}

	got, ok := s.TaskByID(task.ID)
	if !ok {
		t.Fatal("task must survive group deletion")
	}
	if got.GroupID != g.ID {
		t.Fatal("dangling group reference is tolerated, not cleared")
	}
}

func TestDeleteSelectedGroupClearsSelection(t *testing.T) {
	s := newTestTaskStore(t)
	g, _ := s.CreateGroup(Group{Name: "Doomed"})
	s.CreateTask(Task{Title: "elsewhere"})
	s.SelectGroup(g.ID)

	s.DeleteGroup(g.ID)
	if s.SelectedGroupID() != "" {
		t.Fatal("deleting the selected group should fall back to all")
	}
	if len(s.Filtered()) != 1 {
		t.Fatal("filtered view should recompute against all groups")
	}
}

func TestSelectGroupResetsQuery(t *testing.T) {
	s := newTestTaskStore(t)
	g, _ := s.CreateGroup(Group{Name: "Home"})
	s.CreateTask(Task{Title: "milk", GroupID: g.ID})
	s.SearchTasks("nothing-matches")

	s.SelectGroup(g.ID)
	if s.Query() != "" {
		t.Fatal("selecting a group filters with an empty query")
	}
	if len(s.Filtered()) != 1 {
		t.Fatal("group-filtered view should show the group's tasks")
	}
}

// ============================================================
// Persistence
// ============================================================

func TestTaskStoreHydration(t *testing.T) {
	a := newTestAdapter(t)
	s, err := NewTaskStore(a)
	if err != nil {
		t.Fatal(err)
	}
	task, _ := s.CreateTask(Task{Title: "persisted"})
	g, _ := s.CreateGroup(Group{Name: "Kept"})

	s2, err := NewTaskStore(a)
	if err != nil {
		t.Fatal(err)
	}
	if len(s2.Tasks()) != 1 || s2.Tasks()[0].ID != task.ID {
		t.Fatalf("tasks not rehydrated: %v", s2.Tasks())
	}
	if len(s2.Groups()) != 1 || s2.Groups()[0].ID != g.ID {
		t.Fatalf("groups not rehydrated: %v", s2.Groups())
	}
	if len(s2.Filtered()) != 1 {
		t.Fatal("filtered view should be derived at hydration")
	}
}

func TestWriteFailureLeavesStateUntouched(t *testing.T) {
	fa := &failingAdapter{Adapter: newTestAdapter(t)}
	s, err := NewTaskStore(fa)
	if err != nil {
		t.Fatal(err)
	}
	task, _ := s.CreateTask(Task{Title: "safe"})

	fa.fail = true
	if _, err := s.CreateTask(Task{Title: "doomed"}); err == nil {
		t.Fatal("expected write failure")
	}
	if err := s.DeleteTask(task.ID); err == nil {
		t.Fatal("expected write failure")
	}

	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("failed writes must not change in-memory state: %v", tasks)
	}
}
