package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskStore implements store.TaskStore over a DB.
type TaskStore struct {
	db *DB
}

// NewTaskStore returns a task store backed by db.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}
	if err := s.checkRefs(task); err != nil {
		return err
	}
	s.db.tasks[task.ID] = *task
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	t, ok := s.db.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &t, nil
}

// Update implements store.TaskStore.Update.
func (s *TaskStore) Update(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if err := s.checkRefs(task); err != nil {
		return err
	}
	updated := *task
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	s.db.tasks[task.ID] = updated
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.db.tasks, id)
	return nil
}

// List implements store.TaskStore.List.
func (s *TaskStore) List(_ context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, int, error) {
	all := s.matching(filter)
	total := len(all)

	start := page.Offset()
	if start > total {
		start = total
	}
	end := total
	if page.Size > 0 && start+page.Size < total {
		end = start + page.Size
	}
	return all[start:end], total, nil
}

// ListAll implements store.TaskStore.ListAll.
func (s *TaskStore) ListAll(_ context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	return s.matching(filter), nil
}

// Stats implements store.TaskStore.Stats.
func (s *TaskStore) Stats(_ context.Context, filter store.TaskFilter) (*domain.TaskStats, error) {
	var st domain.TaskStats
	for _, t := range s.matching(filter) {
		st.Add(t.Status, t.Priority)
	}
	return &st, nil
}

// checkRefs requires the caller to hold the lock.
func (s *TaskStore) checkRefs(task *domain.Task) error {
	if _, ok := s.db.users[task.AssignedTo]; !ok {
		return store.NewStoreError("task", "write", "assignee does not exist", store.ErrInvalidEntity)
	}
	if _, ok := s.db.users[task.CreatedBy]; !ok {
		return store.NewStoreError("task", "write", "creator does not exist", store.ErrInvalidEntity)
	}
	return nil
}

// matching returns copies of every task passing filter, newest first.
func (s *TaskStore) matching(filter store.TaskFilter) []*domain.Task {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []*domain.Task{}
	for _, t := range s.db.tasks {
		if filter.AssignedTo != nil && t.AssignedTo != *filter.AssignedTo {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
