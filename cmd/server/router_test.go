package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/platform/metrics"
	"github.com/phrazzld/taskboard-api/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        8080,
			LogLevel:    "debug",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Database: config.DatabaseConfig{Driver: driverMemory},
		Auth: config.AuthConfig{
			JWTSecret:            "router-test-secret-that-is-long-enough",
			TokenLifetimeMinutes: 60,
			BCryptCost:           4,
			AllowRoleOnRegister:  true,
		},
		RateLimit: config.RateLimitConfig{Enabled: true, Requests: 100, WindowSeconds: 60},
	}
}

type RouterSuite struct {
	suite.Suite
	app    *application
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	log, _ := logger.NewBufferLogger()
	app, err := newApplication(context.Background(), testConfig(), log)
	s.Require().NoError(err)
	s.app = app
	s.router = app.setupRouter()
}

func (s *RouterSuite) TearDownTest() {
	s.app.cleanup()
}

func (s *RouterSuite) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](s *RouterSuite, rec *httptest.ResponseRecorder) T {
	var v T
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *RouterSuite) register(name string, role domain.Role) api.AuthResponse {
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": name,
		"email":    name + "@example.com",
		"password": "password123",
		"role":     role,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[api.AuthResponse](s, rec)
}

func (s *RouterSuite) createTask(token string, title string, assignee domain.Profile) domain.TaskDetail {
	rec := s.do(http.MethodPost, "/api/tasks", token, map[string]any{
		"title":       title,
		"description": "details for " + title,
		"dueDate":     "2030-01-15",
		"priority":    "high",
		"assignedTo":  assignee.ID.String(),
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[api.TaskResponse](s, rec)
	s.Require().NotNil(resp.Task)
	return *resp.Task
}

func (s *RouterSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	body := decodeBody[api.HealthResponse](s, rec)
	s.Equal("OK", body.Status)
	s.Equal("Task Management API is running", body.Message)
	s.NotEmpty(rec.Header().Get("X-Trace-ID"))
}

func (s *RouterSuite) TestUnknownRouteAndMethod() {
	rec := s.do(http.MethodGet, "/api/nope", "", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Route not found", decodeBody[shared.ErrorResponse](s, rec).Message)

	rec = s.do(http.MethodPost, "/api/health", "", nil)
	s.Equal(http.StatusMethodNotAllowed, rec.Code)
}

func (s *RouterSuite) TestProtectedRoutesRequireToken() {
	rec := s.do(http.MethodGet, "/api/tasks", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Access denied. No token provided.", decodeBody[shared.ErrorResponse](s, rec).Message)

	rec = s.do(http.MethodGet, "/api/auth/me", "garbage", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("Invalid token.", decodeBody[shared.ErrorResponse](s, rec).Message)
}

func (s *RouterSuite) TestAccessTokenHeader() {
	alice := s.register("alice", domain.RoleUser)

	rec := s.do(http.MethodGet, "/api/auth/me", "", nil, "x-access-token", alice.Token)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(alice.User.ID, decodeBody[api.MeResponse](s, rec).User.ID)
}

func (s *RouterSuite) TestAdminOnlyUserRoutes() {
	member := s.register("member", domain.RoleUser)

	rec := s.do(http.MethodGet, "/api/users", member.Token, nil)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("Access denied. Admin role required.", decodeBody[shared.ErrorResponse](s, rec).Message)
}

// TestTaskLifecycle walks an admin and a member through assignment, status
// changes, visibility and the user deletion cascade.
func (s *RouterSuite) TestTaskLifecycle() {
	admin := s.register("admin", domain.RoleAdmin)
	bob := s.register("bob", domain.RoleUser)
	carol := s.register("carol", domain.RoleUser)

	task := s.createTask(admin.Token, "Write report", bob.User)
	s.Equal(domain.TaskStatus("pending"), task.Status)
	s.Equal(bob.User.ID, task.AssignedTo.ID)
	s.Equal("bob", task.AssignedTo.Username)

	// The assignee sees it, an unrelated member does not.
	rec := s.do(http.MethodGet, "/api/tasks/"+task.ID.String(), bob.Token, nil)
	s.Equal(http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/tasks/"+task.ID.String(), carol.Token, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPatch, "/api/tasks/"+task.ID.String()+"/status", bob.Token,
		map[string]string{"status": "in-progress"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(domain.TaskStatus("in-progress"), decodeBody[api.TaskResponse](s, rec).Task.Status)

	rec = s.do(http.MethodPatch, "/api/tasks/"+task.ID.String()+"/status", bob.Token,
		map[string]string{"status": "finished"})
	s.Equal(http.StatusBadRequest, rec.Code)

	// Only the creator or an admin may delete.
	rec = s.do(http.MethodDelete, "/api/tasks/"+task.ID.String(), bob.Token, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/tasks/stats", admin.Token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	stats := decodeBody[domain.TaskStats](s, rec)
	s.Equal(1, stats.Total)
	s.Equal(1, stats.InProgress)
	s.Equal(1, stats.High)

	rec = s.do(http.MethodGet, "/api/tasks/priority/high", bob.Token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	byPriority := decodeBody[service.PriorityTasks](s, rec)
	s.Len(byPriority.Tasks, 1)

	rec = s.do(http.MethodDelete, "/api/users/"+bob.User.ID.String(), admin.Token, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("User and associated tasks deleted successfully", decodeBody[shared.MessageResponse](s, rec).Message)

	rec = s.do(http.MethodGet, "/api/tasks/"+task.ID.String(), admin.Token, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	// The deleted user's token no longer authenticates.
	rec = s.do(http.MethodGet, "/api/auth/me", bob.Token, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterSuite) TestPagination() {
	admin := s.register("admin", domain.RoleAdmin)
	for i := 0; i < 15; i++ {
		s.createTask(admin.Token, fmt.Sprintf("task %02d", i), admin.User)
	}

	rec := s.do(http.MethodGet, "/api/tasks?page=2&limit=10", admin.Token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	page := decodeBody[service.TaskPage](s, rec)
	s.Len(page.Tasks, 5)
	s.Equal(service.Pagination{Current: 2, Pages: 2, Total: 15}, page.Pagination)

	rec = s.do(http.MethodGet, "/api/tasks?page=abc", admin.Token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/api/health", "", nil)
	s.register("alice", domain.RoleUser)

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, `taskboard_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
	s.Contains(body, `taskboard_domain_events_total{type="user.created"} 1`)
}

func (s *RouterSuite) TestCORSPreflight() {
	rec := s.do(http.MethodOptions, "/api/tasks", "", nil,
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPost,
		"Access-Control-Request-Headers", "x-access-token")

	s.Equal("http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Contains(strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "x-access-token")
}

func TestRouterRateLimitsCredentialRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, WindowSeconds: 60}
	log, _ := logger.NewBufferLogger()
	app, err := newApplication(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	router := app.setupRouter()

	login := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			bytes.NewBufferString(`{"email":"nobody@example.com","password":"password123"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, login().Code)
	assert.Equal(t, http.StatusUnauthorized, login().Code)
	rec := login()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Health is not rate limited.
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	health := httptest.NewRecorder()
	router.ServeHTTP(health, req)
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestRouterWithoutRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = false
	app, err := newApplication(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	assert.Nil(t, app.authLimiter)
}

func TestNewApplicationRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "sqlite"
	app, err := newApplication(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), `unsupported database driver "sqlite"`)
}

func TestNewApplicationReportsStartupErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"
	app, err := newApplication(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "failed to create token service")

	cfg = testConfig()
	cfg.Redis.URL = "not a redis url"
	app, err = newApplication(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, app)
}

func TestWireReleasesResourcesOnError(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"
	log, _ := logger.NewBufferLogger()
	app := &application{config: cfg, logger: log, metrics: metrics.New()}

	var released []string
	app.closers = append(app.closers,
		func(context.Context) error { released = append(released, "first"); return nil },
		func(context.Context) error { released = append(released, "second"); return nil },
	)

	require.Error(t, app.wire(context.Background()))
	assert.Equal(t, []string{"second", "first"}, released)
	assert.Nil(t, app.closers)
}

func TestServeListenerShutsDownOnCancel(t *testing.T) {
	log, buf := logger.NewBufferLogger()
	app, err := newApplication(context.Background(), testConfig(), log)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serveListener(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, buf.String(), "server shutdown completed")
}
