package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// JWTService issues and validates signed access tokens.
type JWTService interface {
	// GenerateToken creates a signed token for subject and returns it with its expiry.
	GenerateToken(ctx context.Context, subject TokenSubject) (string, time.Time, error)

	// ValidateToken verifies signature, algorithm and time claims and returns the
	// decoded claims. Errors are ErrInvalidToken, ErrExpiredToken or ErrTokenNotYetValid.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// TokenSubject is the identity a token is issued for.
type TokenSubject struct {
	UserID   uuid.UUID
	Username string
	Role     domain.Role
}

// Claims is the decoded content of a valid token.
type Claims struct {
	UserID    uuid.UUID
	Username  string
	Role      domain.Role
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
