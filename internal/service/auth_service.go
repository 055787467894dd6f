package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.Profile
}

// AuthService registers users, logs them in and authenticates tokens.
type AuthService struct {
	users               store.UserStore
	passwords           Passwords
	tokens              auth.JWTService
	emitter             events.EventEmitter
	allowRoleOnRegister bool
	dummyHash           string
	logger              *slog.Logger
}

// NewAuthService creates an AuthService. When allowRoleOnRegister is false a
// role supplied at registration is ignored and every new account is a member.
func NewAuthService(
	users store.UserStore,
	passwords Passwords,
	tokens auth.JWTService,
	emitter events.EventEmitter,
	allowRoleOnRegister bool,
	logger *slog.Logger,
) (*AuthService, error) {
	if users == nil || passwords == nil || tokens == nil {
		return nil, errors.New("auth service requires a user store, password hasher and token service")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Compared against on unknown emails so both login failures cost one bcrypt run.
	dummy, err := passwords.Hash("taskboard-login-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:               users,
		passwords:           passwords,
		tokens:              tokens,
		emitter:             emitter,
		allowRoleOnRegister: allowRoleOnRegister,
		dummyHash:           dummy,
		logger:              logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Register creates an account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if !s.allowRoleOnRegister {
		in.Role = ""
	}

	user, err := createAccount(ctx, s.users, s.passwords, in)
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.DebugContext(ctx, "registration rejected: duplicate account")
		}
		return nil, err
	}

	emit(ctx, s.emitter, s.logger, events.UserCreated, user.ID, events.UserPayload{
		UserID: user.ID, Username: user.Username, Role: string(user.Role),
	})
	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))
	return s.issue(ctx, user)
}

// Login verifies credentials and returns a fresh token. An unknown email and
// a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		_ = s.passwords.Compare(s.dummyHash, password)
		return nil, ErrInvalidCredentials
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.ErrorContext(ctx, "password comparison failed",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		}
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Authenticate validates token and resolves the current state of its user.
// Token errors from package auth are returned unchanged; a token whose user no
// longer exists yields ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return Principal{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return Principal{}, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return Principal{}, fmt.Errorf("failed to load token user: %w", err)
	}
	return PrincipalFromUser(user), nil
}

// Me returns the caller's public profile.
func (s *AuthService) Me(ctx context.Context, p Principal) (domain.Profile, error) {
	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(ctx, auth.TokenSubject{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user.Profile()}, nil
}
