package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserService lets administrators manage the user roster.
type UserService struct {
	users     store.UserStore
	passwords Passwords
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	passwords Passwords,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*UserService, error) {
	if users == nil || passwords == nil {
		return nil, errors.New("user service requires a user store and password hasher")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:     users,
		passwords: passwords,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "user_service")),
	}, nil
}

// ListUsers returns every user, newest first.
func (s *UserService) ListUsers(ctx context.Context, p Principal) ([]*domain.User, error) {
	if !p.Can(CapManageUsers) {
		return nil, ErrForbidden
	}
	return s.users.List(ctx)
}

// AddUser creates an account on behalf of an administrator. No token is issued.
func (s *UserService) AddUser(ctx context.Context, p Principal, in RegisterInput) (*domain.User, error) {
	if !p.Can(CapManageUsers) {
		return nil, ErrForbidden
	}

	user, err := createAccount(ctx, s.users, s.passwords, in)
	if err != nil {
		return nil, err
	}

	emit(ctx, s.emitter, s.logger, events.UserCreated, p.ID, events.UserPayload{
		UserID: user.ID, Username: user.Username, Role: string(user.Role),
	})
	s.logger.InfoContext(ctx, "user added by administrator",
		slog.String("user_id", user.ID.String()),
		slog.String("admin_id", p.ID.String()))
	return user, nil
}

// RemoveUser deletes a user and every task they created or were assigned.
func (s *UserService) RemoveUser(ctx context.Context, p Principal, id uuid.UUID) error {
	if !p.Can(CapManageUsers) {
		return ErrForbidden
	}
	if id == p.ID {
		return ErrCannotDeleteSelf
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	removed, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}

	emit(ctx, s.emitter, s.logger, events.UserDeleted, p.ID, events.UserPayload{
		UserID: id, Username: user.Username, Role: string(user.Role), TasksRemoved: removed,
	})
	return nil
}
