package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Passwords hashes new passwords and verifies presented ones.
type Passwords interface {
	auth.PasswordHasher
	auth.PasswordVerifier
}

// RegisterInput carries the fields needed to create an account, either by
// self-registration or by an administrator.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// createAccount validates in, hashes the password and persists the user.
// Duplicate usernames and emails surface as store.ErrUsernameExists and
// store.ErrEmailExists straight from the store's unique constraints.
func createAccount(
	ctx context.Context,
	users store.UserStore,
	passwords Passwords,
	in RegisterInput,
) (*domain.User, error) {
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Role != "" && !in.Role.IsValid() {
		return nil, domain.NewValidationError("role", "must be one of admin, user", domain.ErrInvalidRole)
	}

	hashed, err := passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(in.Username, in.Email, hashed, in.Role)
	if err != nil {
		return nil, err
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// emit publishes an event and only logs failures; the write it describes has
// already succeeded.
func emit(ctx context.Context, emitter events.EventEmitter, log *slog.Logger, eventType string, actor uuid.UUID, payload any) {
	event, err := events.NewEvent(eventType, actor, payload)
	if err == nil {
		err = emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.WarnContext(ctx, "failed to emit event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
