package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Date is a due date as sent by clients: an RFC 3339 timestamp or a plain
// YYYY-MM-DD day, which is read as midnight UTC.
type Date struct {
	time.Time
}

const dayLayout = "2006-01-02"

// ParseDate parses raw as RFC 3339 or YYYY-MM-DD.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dayLayout, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError("dueDate", "must be an RFC 3339 timestamp or YYYY-MM-DD", domain.ErrValidation)
	}
	return t.UTC(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("dueDate must be a string: %w", err)
	}
	t, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// RegisterRequest is the body of POST /api/auth/register and POST /api/users.
type RegisterRequest struct {
	Username string      `json:"username" validate:"required"`
	Email    string      `json:"email"    validate:"required,email"`
	Password string      `json:"password" validate:"required,max=72"`
	Role     domain.Role `json:"role"     validate:"omitempty,oneof=admin user"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message   string         `json:"message"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      domain.Profile `json:"user"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	User domain.Profile `json:"user"`
}

// UserResponse is returned when an administrator adds a user.
type UserResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string              `json:"title"       validate:"required"`
	Description string              `json:"description" validate:"required"`
	DueDate     *Date               `json:"dueDate"     validate:"required"`
	Priority    domain.TaskPriority `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo  string              `json:"assignedTo"  validate:"required,uuid"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. Absent fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title       *string              `json:"title"       validate:"omitempty,min=1"`
	Description *string              `json:"description" validate:"omitempty,min=1"`
	DueDate     *Date                `json:"dueDate"`
	Status      *domain.TaskStatus   `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *domain.TaskPriority `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo  *string              `json:"assignedTo"  validate:"omitempty,uuid"`
}

// StatusRequest is the body of PATCH /api/tasks/{id}/status.
type StatusRequest struct {
	Status domain.TaskStatus `json:"status" validate:"required,oneof=pending in-progress completed"`
}

// PriorityRequest is the body of PATCH /api/tasks/{id}/priority.
type PriorityRequest struct {
	Priority domain.TaskPriority `json:"priority" validate:"required,oneof=low medium high urgent"`
}

// TaskResponse is returned by task writes.
type TaskResponse struct {
	Message string             `json:"message"`
	Task    *domain.TaskDetail `json:"task"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
