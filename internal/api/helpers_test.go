package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/memory"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

type testAPI struct {
	router http.Handler
	auth   *service.AuthService
}

// newTestAPI mounts the handlers on a router backed by in-memory stores.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db := memory.NewDB()
	users, tasks := memory.NewUserStore(db), memory.NewTaskStore(db)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	tokens, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "api-test-secret-that-is-long-enough-ok",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	authSvc, err := service.NewAuthService(users, hasher, tokens, nil, true, nil)
	require.NoError(t, err)
	userSvc, err := service.NewUserService(users, hasher, nil, nil)
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(tasks, users, nil, nil)
	require.NoError(t, err)

	authHandler := NewAuthHandler(authSvc, nil)
	userHandler := NewUserHandler(userSvc, nil)
	taskHandler := NewTaskHandler(taskSvc, nil)
	authMW := middleware.NewAuthMiddleware(authSvc)

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.Get("/api/auth/me", authHandler.Me)
		r.Route("/api/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Delete("/{id}", userHandler.Delete)
		})
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)
			r.Get("/stats", taskHandler.Stats)
			r.Get("/priority/{priority}", taskHandler.ListByPriority)
			r.Get("/{id}", taskHandler.Get)
			r.Put("/{id}", taskHandler.Update)
			r.Delete("/{id}", taskHandler.Delete)
			r.Patch("/{id}/status", taskHandler.UpdateStatus)
			r.Patch("/{id}/priority", taskHandler.UpdatePriority)
		})
	})
	return &testAPI{router: r, auth: authSvc}
}

// do sends a request and returns the recorder. body may be nil, a string
// sent verbatim, or a value encoded as JSON.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = nil
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	}

	var req *http.Request
	if buf == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, buf)
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

type session struct {
	token string
	user  domain.Profile
}

func (a *testAPI) register(t *testing.T, name string, role domain.Role) session {
	t.Helper()
	res, err := a.auth.Register(context.Background(), service.RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: name + "-password",
		Role:     role,
	})
	require.NoError(t, err)
	return session{token: res.Token, user: res.User}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newRecorderFor(h http.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, path, nil))
	return rec
}
