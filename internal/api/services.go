package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// Authenticator is the subset of service.AuthService used by AuthHandler.
type Authenticator interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Me(ctx context.Context, p service.Principal) (domain.Profile, error)
}

// UserManager is the subset of service.UserService used by UserHandler.
type UserManager interface {
	ListUsers(ctx context.Context, p service.Principal) ([]*domain.User, error)
	AddUser(ctx context.Context, p service.Principal, in service.RegisterInput) (*domain.User, error)
	RemoveUser(ctx context.Context, p service.Principal, id uuid.UUID) error
}

// TaskManager is the subset of service.TaskService used by TaskHandler.
type TaskManager interface {
	Create(ctx context.Context, p service.Principal, in service.CreateTaskInput) (*domain.TaskDetail, error)
	List(ctx context.Context, p service.Principal, q service.ListTasksQuery) (*service.TaskPage, error)
	Get(ctx context.Context, p service.Principal, id uuid.UUID) (*domain.TaskDetail, error)
	Update(ctx context.Context, p service.Principal, id uuid.UUID, patch domain.TaskPatch) (*domain.TaskDetail, error)
	UpdateStatus(ctx context.Context, p service.Principal, id uuid.UUID, status domain.TaskStatus) (*domain.TaskDetail, error)
	UpdatePriority(ctx context.Context, p service.Principal, id uuid.UUID, priority domain.TaskPriority) (*domain.TaskDetail, error)
	Delete(ctx context.Context, p service.Principal, id uuid.UUID) error
	Stats(ctx context.Context, p service.Principal) (*domain.TaskStats, error)
	ListByPriority(ctx context.Context, p service.Principal, priority domain.TaskPriority) (*service.PriorityTasks, error)
}

var (
	_ Authenticator = (*service.AuthService)(nil)
	_ UserManager   = (*service.UserService)(nil)
	_ TaskManager   = (*service.TaskService)(nil)
)
