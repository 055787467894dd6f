package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

const defaultTimeout = 15 * time.Second

// Client is a typed HTTP client for the taskboard API. It is safe for
// concurrent use once configured; SetToken must not race with requests.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token. An empty token sends no Authorization
// header.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// TaskQuery selects one page of tasks. Zero values are omitted from the
// request so the server applies its defaults.
type TaskQuery struct {
	Page       int
	Limit      int
	Status     domain.TaskStatus
	Priority   domain.TaskPriority
	AssignedTo uuid.UUID
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Priority != "" {
		v.Set("priority", string(q.Priority))
	}
	if q.AssignedTo != uuid.Nil {
		v.Set("assignedTo", q.AssignedTo.String())
	}
	return v
}

// Register creates an account and returns the issued token.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	var out api.AuthResponse
	req := api.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context) (*domain.Profile, error) {
	var out api.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListUsers returns every user. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddUser creates a user without logging in as them. Admin only.
func (c *Client) AddUser(ctx context.Context, req api.RegisterRequest) (*domain.User, error) {
	var out api.UserResponse
	if err := c.do(ctx, http.MethodPost, "/api/users", nil, req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// DeleteUser removes a user and every task they created or were assigned.
// Admin only.
func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) (string, error) {
	var out shared.MessageResponse
	if err := c.do(ctx, http.MethodDelete, "/api/users/"+id.String(), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ListTasks fetches one page of the tasks visible to the caller.
func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (*service.TaskPage, error) {
	var out service.TaskPage
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*domain.TaskDetail, error) {
	var out domain.TaskDetail
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*domain.TaskDetail, error) {
	return c.taskWrite(ctx, http.MethodPost, "/api/tasks", req)
}

// UpdateTask applies the non-nil fields of req.
func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, req api.UpdateTaskRequest) (*domain.TaskDetail, error) {
	return c.taskWrite(ctx, http.MethodPut, "/api/tasks/"+id.String(), req)
}

// UpdateStatus sets a task's status.
func (c *Client) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) (*domain.TaskDetail, error) {
	return c.taskWrite(ctx, http.MethodPatch, "/api/tasks/"+id.String()+"/status", api.StatusRequest{Status: status})
}

// UpdatePriority sets a task's priority.
func (c *Client) UpdatePriority(ctx context.Context, id uuid.UUID, priority domain.TaskPriority) (*domain.TaskDetail, error) {
	return c.taskWrite(ctx, http.MethodPatch, "/api/tasks/"+id.String()+"/priority", api.PriorityRequest{Priority: priority})
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) (string, error) {
	var out shared.MessageResponse
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+id.String(), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Stats returns task counts over the caller's visible tasks.
func (c *Client) Stats(ctx context.Context) (*domain.TaskStats, error) {
	var out domain.TaskStats
	if err := c.do(ctx, http.MethodGet, "/api/tasks/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TasksByPriority lists every visible task with the given priority.
func (c *Client) TasksByPriority(ctx context.Context, priority domain.TaskPriority) (*service.PriorityTasks, error) {
	var out service.PriorityTasks
	path := "/api/tasks/priority/" + url.PathEscape(string(priority))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var out api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) taskWrite(ctx context.Context, method, path string, body any) (*domain.TaskDetail, error) {
	var out api.TaskResponse
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	if out.Task == nil {
		return nil, errors.New("response did not include a task")
	}
	return out.Task, nil
}

// do sends one request and decodes a 2xx body into out. Other statuses are
// returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var envelope shared.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&envelope); err == nil {
		apiErr.Message = envelope.Message
		apiErr.Detail = envelope.Error
		apiErr.TraceID = envelope.TraceID
	}
	return apiErr
}
