package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/taskflow/pkg/model"
)

// TaskStore is the canonical in-memory task collection, ordered newest first.
// Mutations fire the change hook with a snapshot of the new state so the
// owning session can write it through to durable storage; hydration from a
// backend load uses Hydrate, which replaces the collection without firing the
// hook so load results never echo back into a save.
type TaskStore struct {
	mu       sync.RWMutex
	tasks    []model.Task
	onChange func([]model.Task)
}

func New() *TaskStore {
	return &TaskStore{}
}

// OnChange registers the write-through hook. The hook receives a snapshot and
// must not call back into the store synchronously.
func (s *TaskStore) OnChange(fn func([]model.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Create validates the draft, assigns an ID and creation time, and prepends
// the new task to the collection.
func (s *TaskStore) Create(draft model.Draft) (model.Task, error) {
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}

	status := draft.Status
	if status == "" {
		status = model.StatusPending
	}
	t := model.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Category:    draft.Category,
		Amount:      draft.Amount,
		DueDate:     draft.DueDate,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.tasks = append([]model.Task{t}, s.tasks...)
	snap := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return t, nil
}

// Update merges the patch into the task with the given ID. Unknown IDs are a
// silent no-op: a remote delete may race a local edit and must not crash it.
func (s *TaskStore) Update(id string, patch model.Patch) {
	s.mutate(id, func(t *model.Task) {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Category != nil {
			t.Category = *patch.Category
		}
		if patch.Amount != nil {
			t.Amount = *patch.Amount
		}
		if patch.DueDate != nil {
			t.DueDate = *patch.DueDate
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
	})
}

// ToggleStatus flips a task between pending and completed. Unknown IDs are a
// silent no-op.
func (s *TaskStore) ToggleStatus(id string) {
	s.mutate(id, func(t *model.Task) {
		if t.Status == model.StatusCompleted {
			t.Status = model.StatusPending
		} else {
			t.Status = model.StatusCompleted
		}
	})
}

// Remove deletes the task with the given ID if present.
func (s *TaskStore) Remove(id string) {
	s.mu.Lock()
	found := false
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			found = true
			break
		}
	}
	var snap []model.Task
	var fn func([]model.Task)
	if found {
		snap = s.snapshotLocked()
		fn = s.onChange
	}
	s.mu.Unlock()

	if found && fn != nil {
		fn(snap)
	}
}

// ReplaceAll swaps in a full replacement collection. Import and clear-all go
// through here, so the change hook fires.
func (s *TaskStore) ReplaceAll(tasks []model.Task) {
	s.mu.Lock()
	s.tasks = append([]model.Task(nil), tasks...)
	snap := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// Hydrate swaps in a collection loaded from a backend without firing the
// change hook.
func (s *TaskStore) Hydrate(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]model.Task(nil), tasks...)
}

// Tasks returns a snapshot copy in canonical order.
func (s *TaskStore) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *TaskStore) mutate(id string, apply func(*model.Task)) {
	s.mu.Lock()
	found := false
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			apply(&s.tasks[i])
			found = true
			break
		}
	}
	var snap []model.Task
	var fn func([]model.Task)
	if found {
		snap = s.snapshotLocked()
		fn = s.onChange
	}
	s.mu.Unlock()

	if found && fn != nil {
		fn(snap)
	}
}

func (s *TaskStore) snapshotLocked() []model.Task {
	return append([]model.Task(nil), s.tasks...)
}
