package store

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskFilter narrows task queries. Nil fields do not filter.
type TaskFilter struct {
	AssignedTo *uuid.UUID
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
}

// Page selects a window of a result set. Page is 1-based.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt
// instead of overflowing for page numbers far past the end.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// TaskStore defines the interface for task data persistence.
// All list operations return tasks sorted by creation time, newest first.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the assignee or creator does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists every mutable field of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of matching tasks and the total number of matches.
	List(ctx context.Context, filter TaskFilter, page Page) ([]*domain.Task, int, error)

	// ListAll returns every matching task without pagination.
	ListAll(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Stats aggregates status and priority counts over matching tasks.
	Stats(ctx context.Context, filter TaskFilter) (*domain.TaskStats, error)
}
