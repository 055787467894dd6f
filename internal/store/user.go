package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Implementations enforce username and email uniqueness themselves (unique
// constraint or index) so concurrent registrations cannot double-insert.
type UserStore interface {
	// Create saves a new user.
	// Returns ErrUsernameExists or ErrEmailExists if either is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDs retrieves every existing user among ids, keyed by ID.
	// Missing IDs are simply absent from the result.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error)

	// List returns all users, newest first.
	List(ctx context.Context) ([]*domain.User, error)

	// Delete removes a user together with every task the user created or
	// was assigned, and reports how many tasks went with it.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
