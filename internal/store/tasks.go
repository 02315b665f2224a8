package store

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/storage"
)

// defaultGroupName is used when a group is created with a blank name.
const defaultGroupName = "New Activity"

// TaskPatch carries partial updates for the task draft. Nil fields are left
// untouched.
type TaskPatch struct {
	Title            *string
	Description      *string
	WhyItMatters     *string
	DefinitionOfDone *string
	DueDate          *string
	FundsNeeded      *float64
	GroupID          *string
}

// taskState is the complete in-memory state of the task store. Reducers
// receive it by value and return a new value; nothing is mutated in place.
type taskState struct {
	tasks           []Task
	groups          []Group
	selectedGroupID string // empty = all groups
	selectedTask    *Task
	draft           *Task
	query           string
	filtered        []Task
}

type taskAction interface{ isTaskAction() }

type addTask struct{ task Task }
type replaceTask struct{ task Task }
type removeTask struct{ id string }
type setQuery struct{ query string }
type selectTask struct{ task *Task }
type patchDraft struct{ patch TaskPatch }
type resetDraft struct{}
type addGroup struct{ group Group }
type replaceGroup struct{ group Group }
type removeGroup struct{ id string }
type selectGroup struct{ id string }

func (addTask) isTaskAction()      {}
func (replaceTask) isTaskAction()  {}
func (removeTask) isTaskAction()   {}
func (setQuery) isTaskAction()     {}
func (selectTask) isTaskAction()   {}
func (patchDraft) isTaskAction()   {}
func (resetDraft) isTaskAction()   {}
func (addGroup) isTaskAction()     {}
func (replaceGroup) isTaskAction() {}
func (removeGroup) isTaskAction()  {}
func (selectGroup) isTaskAction()  {}

// filterTasks is the single filter predicate: title contains the query
// case-insensitively AND the task belongs to the selected group (all tasks
// when no group is selected).
func filterTasks(tasks []Task, groupID, query string) []Task {
	q := strings.ToLower(query)
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		if groupID != "" && t.GroupID != groupID {
			continue
		}
		out = append(out, t)
	}
	return out
}

// reduce is the task store's state transition function. The filtered view
// is recomputed from scratch on every transition that can affect it rather
// than patched incrementally, so it can never drift from the task
// collection.
func reduce(s taskState, a taskAction) taskState {
	switch a := a.(type) {
	case addTask:
		s.tasks = append([]Task{a.task}, slices.Clone(s.tasks)...)

	case replaceTask:
		tasks := slices.Clone(s.tasks)
		for i, t := range tasks {
			if t.ID == a.task.ID {
				tasks[i] = a.task
			}
		}
		s.tasks = tasks
		if s.selectedTask != nil && s.selectedTask.ID == a.task.ID {
			t := a.task
			s.selectedTask = &t
		}

	case removeTask:
		s.tasks = slices.DeleteFunc(slices.Clone(s.tasks), func(t Task) bool {
			return t.ID == a.id
		})

	case setQuery:
		s.query = a.query

	case selectTask:
		s.selectedTask = a.task
		if a.task != nil {
			draft := *a.task
			s.draft = &draft
		} else {
			s.draft = nil
		}

	case patchDraft:
		if s.draft != nil {
			draft := *s.draft
			applyPatch(&draft, a.patch)
			s.draft = &draft
		}

	case resetDraft:
		if s.selectedTask != nil {
			draft := *s.selectedTask
			s.draft = &draft
		} else {
			s.draft = nil
		}

	case addGroup:
		s.groups = append(slices.Clone(s.groups), a.group)

	case replaceGroup:
		groups := slices.Clone(s.groups)
		for i, g := range groups {
			if g.ID == a.group.ID {
				groups[i] = a.group
			}
		}
		s.groups = groups

	case removeGroup:
		s.groups = slices.DeleteFunc(slices.Clone(s.groups), func(g Group) bool {
			return g.ID == a.id
		})
		if s.selectedGroupID == a.id {
			s.selectedGroupID = ""
		}

	case selectGroup:
		s.selectedGroupID = a.id
		s.query = ""
	}

	s.filtered = filterTasks(s.tasks, s.selectedGroupID, s.query)
	return s
}

func applyPatch(t *Task, p TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.WhyItMatters != nil {
		t.WhyItMatters = *p.WhyItMatters
	}
	if p.DefinitionOfDone != nil {
		t.DefinitionOfDone = *p.DefinitionOfDone
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.FundsNeeded != nil {
		t.FundsNeeded = *p.FundsNeeded
	}
	if p.GroupID != nil {
		t.GroupID = *p.GroupID
	}
}

// TaskStore owns the task and group collections, the current selection, the
// search query, and the single in-progress edit draft. It is not safe for
// concurrent use; the TUI event loop is its only caller.
type TaskStore struct {
	adapter storage.Adapter
	state   taskState

	now   func() time.Time
	newID func() string
}

// NewTaskStore hydrates a task store from the adapter.
func NewTaskStore(a storage.Adapter) (*TaskStore, error) {
	s := &TaskStore{
		adapter: a,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	if _, err := a.Load(storage.NamespaceTasks, &s.state.tasks); err != nil {
		return nil, err
	}
	if _, err := a.Load(storage.NamespaceGroups, &s.state.groups); err != nil {
		return nil, err
	}
	s.state.filtered = filterTasks(s.state.tasks, "", "")
	return s, nil
}

// persist runs the reducer, writes the affected collection, and commits the
// new state only when the write succeeded. On failure the in-memory state
// is exactly what it was before the call.
func (s *TaskStore) persist(a taskAction, namespace string) error {
	next := reduce(s.state, a)
	var v any
	switch namespace {
	case storage.NamespaceTasks:
		v = next.tasks
	case storage.NamespaceGroups:
		v = next.groups
	}
	if err := s.adapter.SaveAll(namespace, v); err != nil {
		return err
	}
	s.state = next
	return nil
}

// --- Task operations ---

// CreateTask creates a task from the given template. ID, CreatedAt and
// UpdatedAt are always assigned here; GroupID defaults to the currently
// selected group unless the template sets one. An empty title is accepted.
func (s *TaskStore) CreateTask(data Task) (Task, error) {
	now := s.now()
	task := Task{
		ID:               s.newID(),
		Title:            data.Title,
		Description:      data.Description,
		WhyItMatters:     data.WhyItMatters,
		DefinitionOfDone: data.DefinitionOfDone,
		DueDate:          data.DueDate,
		FundsNeeded:      data.FundsNeeded,
		GroupID:          data.GroupID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if task.GroupID == "" {
		task.GroupID = s.state.selectedGroupID
	}
	if err := s.persist(addTask{task: task}, storage.NamespaceTasks); err != nil {
		return Task{}, err
	}
	return task, nil
}

// UpdateTask replaces the stored task with the same ID, stamping UpdatedAt.
// An unknown ID is a no-op.
func (s *TaskStore) UpdateTask(task Task) error {
	task.UpdatedAt = s.now()
	return s.persist(replaceTask{task: task}, storage.NamespaceTasks)
}

// DeleteTask removes the task with the given ID. Deleting an absent ID is a
// no-op, so repeated deletes are idempotent.
func (s *TaskStore) DeleteTask(id string) error {
	return s.persist(removeTask{id: id}, storage.NamespaceTasks)
}

// SearchTasks recomputes the filtered view for the given query. The full
// collection is untouched; an empty query restores the group-filtered view.
func (s *TaskStore) SearchTasks(query string) {
	s.state = reduce(s.state, setQuery{query: query})
}

// SelectTask sets the selected task and clones it into a fresh draft. This
// is the single entry point into edit mode; selecting nil leaves edit mode
// and clears the draft. The previous draft is replaced, never merged.
func (s *TaskStore) SelectTask(task *Task) {
	if task != nil {
		t := *task
		task = &t
	}
	s.state = reduce(s.state, selectTask{task: task})
}

// UpdateTaskDraft merges the patch into the draft. No-op without a draft.
// The committed task is untouched until SaveTaskDraft.
func (s *TaskStore) UpdateTaskDraft(patch TaskPatch) {
	s.state = reduce(s.state, patchDraft{patch: patch})
}

// SaveTaskDraft commits the draft through UpdateTask. This is the only path
// by which a draft becomes a committed task.
func (s *TaskStore) SaveTaskDraft() error {
	if s.state.draft == nil {
		return nil
	}
	return s.UpdateTask(*s.state.draft)
}

// DiscardTaskDraft resets the draft to a fresh clone of the selected task,
// dropping in-progress edits. The selection is unchanged.
func (s *TaskStore) DiscardTaskDraft() {
	s.state = reduce(s.state, resetDraft{})
}

// --- Group operations ---

// CreateGroup creates a group, defaulting a blank name.
func (s *TaskStore) CreateGroup(data Group) (Group, error) {
	group := data
	group.ID = s.newID()
	if group.Name == "" {
		group.Name = defaultGroupName
	}
	if err := s.persist(addGroup{group: group}, storage.NamespaceGroups); err != nil {
		return Group{}, err
	}
	return group, nil
}

// UpdateGroup replaces the stored group with the same ID. Tasks referencing
// the group are unaffected. An unknown ID is a no-op.
func (s *TaskStore) UpdateGroup(group Group) error {
	return s.persist(replaceGroup{group: group}, storage.NamespaceGroups)
}

// DeleteGroup removes the group. Tasks keep their (now dangling) GroupID;
// a selected group that is deleted falls back to "all".
func (s *TaskStore) DeleteGroup(id string) error {
	return s.persist(removeGroup{id: id}, storage.NamespaceGroups)
}

// SelectGroup sets the group filter (empty = all) and recomputes the
// filtered view with an empty query.
func (s *TaskStore) SelectGroup(id string) {
	s.state = reduce(s.state, selectGroup{id: id})
}

// --- Reads ---

func (s *TaskStore) Tasks() []Task    { return slices.Clone(s.state.tasks) }
func (s *TaskStore) Groups() []Group  { return slices.Clone(s.state.groups) }
func (s *TaskStore) Filtered() []Task { return slices.Clone(s.state.filtered) }
func (s *TaskStore) Query() string    { return s.state.query }

func (s *TaskStore) SelectedGroupID() string { return s.state.selectedGroupID }

func (s *TaskStore) SelectedTask() *Task {
	if s.state.selectedTask == nil {
		return nil
	}
	t := *s.state.selectedTask
	return &t
}

func (s *TaskStore) Draft() *Task {
	if s.state.draft == nil {
		return nil
	}
	t := *s.state.draft
	return &t
}

// TaskByID returns the committed task with the given ID, if present.
func (s *TaskStore) TaskByID(id string) (Task, bool) {
	for _, t := range s.state.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// GroupByID returns the group with the given ID, if present.
func (s *TaskStore) GroupByID(id string) (Group, bool) {
	for _, g := range s.state.groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}
