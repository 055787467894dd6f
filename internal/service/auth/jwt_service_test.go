package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(secret string, lifetime time.Duration, now func() time.Time) *hmacJWTService {
	return &hmacJWTService{
		signingKey:    []byte(secret),
		tokenLifetime: lifetime,
		timeFunc:      now,
		clockSkew:     time.Minute,
	}
}

func TestNewJWTService(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 10})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 1440})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, svc.(*hmacJWTService).tokenLifetime)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(testSecret, 24*time.Hour, func() time.Time { return fixedTime })
	subject := TokenSubject{UserID: uuid.New(), Username: "alice", Role: domain.RoleAdmin}

	token, expiresAt, err := svc.GenerateToken(context.Background(), subject)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, fixedTime.Add(24*time.Hour), expiresAt)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, subject.UserID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, subject.UserID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	again, _, err := svc.GenerateToken(context.Background(), subject)
	require.NoError(t, err)
	assert.NotEqual(t, token, again, "every token carries a fresh jti")
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService(testSecret, time.Hour, func() time.Time { return issued })
	token, _, err := issuer.GenerateToken(context.Background(), TokenSubject{UserID: uuid.New(), Role: domain.RoleUser})
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"uid": uuid.New().String(),
		"exp": issued.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": issued.Add(time.Hour).Unix(),
		"iat": issued.Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		now     time.Time
		token   string
		wantErr error
	}{
		{"valid", testSecret, issued.Add(30 * time.Minute), token, nil},
		{"within clock skew after expiry", testSecret, issued.Add(time.Hour + 30*time.Second), token, nil},
		{"expired", testSecret, issued.Add(2 * time.Hour), token, ErrExpiredToken},
		{"issued in the future", testSecret, issued.Add(-10 * time.Minute), token, ErrTokenNotYetValid},
		{"wrong secret", "wrong-secret-that-is-long-enough-for-testing", issued, token, ErrInvalidToken},
		{"malformed", testSecret, issued, "not.a.jwt", ErrInvalidToken},
		{"empty", testSecret, issued, "", ErrMissingToken},
		{"alg none", testSecret, issued, noneToken, ErrInvalidToken},
		{"missing user id", testSecret, issued, noUser, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := tt.now
			svc := newTestService(tt.secret, time.Hour, func() time.Time { return now })
			claims, err := svc.ValidateToken(context.Background(), tt.token)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.NotNil(t, claims)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}
