package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Pagination limits for ListTasks.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CreateTaskInput carries the fields of a new task. The creator is always
// the calling principal.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    domain.TaskPriority
	AssignedTo  uuid.UUID
}

// ListTasksQuery selects a page of tasks. Zero Page and Limit fall back to
// the defaults; Limit is capped at MaxPageSize.
type ListTasksQuery struct {
	Page       int
	Limit      int
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssignedTo *uuid.UUID
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

// TaskPage is one page of task details.
type TaskPage struct {
	Tasks      []*domain.TaskDetail `json:"tasks"`
	Pagination Pagination           `json:"pagination"`
}

// PriorityTasks lists every visible task of a single priority.
type PriorityTasks struct {
	Priority domain.TaskPriority  `json:"priority"`
	Tasks    []*domain.TaskDetail `json:"tasks"`
}

// TaskService implements the task operations and their authorization.
type TaskService struct {
	tasks   store.TaskStore
	users   store.UserStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*TaskService, error) {
	if tasks == nil || users == nil {
		return nil, errors.New("task service requires a task store and user store")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		tasks:   tasks,
		users:   users,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "task_service")),
	}, nil
}

// Create persists a new pending task created by p.
func (s *TaskService) Create(ctx context.Context, p Principal, in CreateTaskInput) (*domain.TaskDetail, error) {
	task, err := domain.NewTask(in.Title, in.Description, in.DueDate, in.Priority, in.AssignedTo, p.ID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAssignee(ctx, task.AssignedTo); err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, assigneeError(err)
	}

	s.emitTask(ctx, events.TaskCreated, p, task)
	return s.detail(ctx, task)
}

// List returns one page of the tasks p may see, newest first.
func (s *TaskService) List(ctx context.Context, p Principal, q ListTasksQuery) (*TaskPage, error) {
	page := store.Page{Number: q.Page, Size: q.Limit}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = DefaultPageSize
	}
	if page.Size > MaxPageSize {
		page.Size = MaxPageSize
	}

	filter := store.TaskFilter{
		AssignedTo: TaskScope(p, q.AssignedTo),
		Status:     q.Status,
		Priority:   q.Priority,
	}
	tasks, total, err := s.tasks.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	details, err := s.details(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return &TaskPage{
		Tasks: details,
		Pagination: Pagination{
			Current: page.Number,
			Pages:   (total + page.Size - 1) / page.Size,
			Total:   total,
		},
	}, nil
}

// Get returns a single task p may view.
func (s *TaskService) Get(ctx context.Context, p Principal, id uuid.UUID) (*domain.TaskDetail, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewTask(p, task) {
		return nil, ErrForbidden
	}
	return s.detail(ctx, task)
}

// Update applies the present fields of patch to a task p may edit.
func (s *TaskService) Update(ctx context.Context, p Principal, id uuid.UUID, patch domain.TaskPatch) (*domain.TaskDetail, error) {
	return s.modify(ctx, p, id, patch)
}

// UpdateStatus sets only the status of a task p may edit.
func (s *TaskService) UpdateStatus(ctx context.Context, p Principal, id uuid.UUID, status domain.TaskStatus) (*domain.TaskDetail, error) {
	return s.modify(ctx, p, id, domain.TaskPatch{Status: &status})
}

// UpdatePriority sets only the priority of a task p may edit.
func (s *TaskService) UpdatePriority(ctx context.Context, p Principal, id uuid.UUID, priority domain.TaskPriority) (*domain.TaskDetail, error) {
	return s.modify(ctx, p, id, domain.TaskPatch{Priority: &priority})
}

// Delete removes a task created by p, or any task when p is an administrator.
func (s *TaskService) Delete(ctx context.Context, p Principal, id uuid.UUID) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanDeleteTask(p, task) {
		return fmt.Errorf("%w: only the task creator or an administrator can delete tasks", ErrForbidden)
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.emitTask(ctx, events.TaskDeleted, p, task)
	return nil
}

// Stats counts the tasks p may see by status and priority.
func (s *TaskService) Stats(ctx context.Context, p Principal) (*domain.TaskStats, error) {
	stats, err := s.tasks.Stats(ctx, store.TaskFilter{AssignedTo: TaskScope(p, nil)})
	if err != nil {
		return nil, fmt.Errorf("failed to compute task stats: %w", err)
	}
	return stats, nil
}

// ListByPriority returns every visible task of one priority, newest first.
func (s *TaskService) ListByPriority(ctx context.Context, p Principal, priority domain.TaskPriority) (*PriorityTasks, error) {
	if !priority.IsValid() {
		return nil, domain.NewValidationError("priority", "must be one of low, medium, high, urgent", domain.ErrInvalidTaskPriority)
	}

	tasks, err := s.tasks.ListAll(ctx, store.TaskFilter{
		AssignedTo: TaskScope(p, nil),
		Priority:   &priority,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by priority: %w", err)
	}

	details, err := s.details(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return &PriorityTasks{Priority: priority, Tasks: details}, nil
}

func (s *TaskService) modify(ctx context.Context, p Principal, id uuid.UUID, patch domain.TaskPatch) (*domain.TaskDetail, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanEditTask(p, task) {
		return nil, ErrForbidden
	}

	if patch.AssignedTo != nil && *patch.AssignedTo != task.AssignedTo {
		if err := s.requireAssignee(ctx, *patch.AssignedTo); err != nil {
			return nil, err
		}
	}
	if err := patch.Apply(task); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, assigneeError(err)
	}

	s.emitTask(ctx, events.TaskUpdated, p, task)
	return s.detail(ctx, task)
}

func (s *TaskService) requireAssignee(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to look up assignee: %w", err)
	}
	return nil
}

// assigneeError covers the window where the assignee is deleted between the
// existence check and the write.
func assigneeError(err error) error {
	if errors.Is(err, store.ErrInvalidEntity) {
		return ErrAssigneeNotFound
	}
	return err
}

func (s *TaskService) detail(ctx context.Context, task *domain.Task) (*domain.TaskDetail, error) {
	details, err := s.details(ctx, []*domain.Task{task})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// details expands the user references of tasks with a single store lookup.
func (s *TaskService) details(ctx context.Context, tasks []*domain.Task) ([]*domain.TaskDetail, error) {
	seen := make(map[uuid.UUID]struct{}, len(tasks)*2)
	ids := make([]uuid.UUID, 0, len(tasks)*2)
	for _, t := range tasks {
		for _, id := range []uuid.UUID{t.AssignedTo, t.CreatedBy} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	users := map[uuid.UUID]*domain.User{}
	if len(ids) > 0 {
		var err error
		users, err = s.users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve task users: %w", err)
		}
	}

	ref := func(id uuid.UUID) domain.UserRef {
		if u, ok := users[id]; ok {
			return u.Ref()
		}
		return domain.UserRef{ID: id}
	}

	out := make([]*domain.TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, domain.NewTaskDetail(t, ref(t.AssignedTo), ref(t.CreatedBy)))
	}
	return out, nil
}

func (s *TaskService) emitTask(ctx context.Context, eventType string, p Principal, t *domain.Task) {
	emit(ctx, s.emitter, s.logger, eventType, p.ID, events.TaskPayload{
		TaskID:     t.ID,
		AssignedTo: t.AssignedTo,
		Status:     string(t.Status),
		Priority:   string(t.Priority),
	})
}
