package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the progress of a task. Transitions are not ordered:
// any authorized caller may set any value directly.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every valid status in display order.
var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// IsValid reports whether s is one of the enumerated statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority is one of four unordered urgency levels.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// TaskPriorities lists every valid priority from least to most urgent.
var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent}

// IsValid reports whether p is one of the enumerated priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Rank maps the priority onto an ordinal used for client-side sorting:
// urgent=4, high=3, medium=2, low=1. Unknown values rank 0.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityUrgent:
		return 4
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	}
	return 0
}

// ParseTaskStatus validates a raw status string.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", NewValidationError("status", "must be one of pending, in-progress, completed", ErrInvalidTaskStatus)
	}
	return s, nil
}

// ParseTaskPriority validates a raw priority string.
func ParseTaskPriority(raw string) (TaskPriority, error) {
	p := TaskPriority(strings.TrimSpace(raw))
	if !p.IsValid() {
		return "", NewValidationError("priority", "must be one of low, medium, high, urgent", ErrInvalidTaskPriority)
	}
	return p, nil
}

// Task is a unit of work owned by exactly one creator and assigned to exactly
// one user. Both references are user IDs.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"dueDate"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssignedTo  uuid.UUID    `json:"assignedTo"`
	CreatedBy   uuid.UUID    `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewTask creates a pending Task. An empty priority defaults to medium.
func NewTask(
	title, description string,
	dueDate time.Time,
	priority TaskPriority,
	assignedTo, createdBy uuid.UUID,
) (*Task, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		DueDate:     dueDate.UTC(),
		Status:      TaskStatusPending,
		Priority:    priority,
		AssignedTo:  assignedTo,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrValidation)
	}
	if t.Description == "" {
		return NewValidationError("description", "cannot be empty", ErrValidation)
	}
	if t.DueDate.IsZero() {
		return NewValidationError("dueDate", "cannot be empty", ErrValidation)
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "must be one of pending, in-progress, completed", ErrInvalidTaskStatus)
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", "must be one of low, medium, high, urgent", ErrInvalidTaskPriority)
	}
	if t.AssignedTo == uuid.Nil {
		return NewValidationError("assignedTo", "cannot be empty", ErrInvalidID)
	}
	if t.CreatedBy == uuid.Nil {
		return NewValidationError("createdBy", "cannot be empty", ErrInvalidID)
	}
	return nil
}

// TaskPatch carries the optional fields of a full task update. Nil fields
// are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *TaskStatus
	Priority    *TaskPriority
	AssignedTo  *uuid.UUID
}

// Apply copies every present field onto t and bumps UpdatedAt, then
// re-validates the task.
func (p TaskPatch) Apply(t *Task) error {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate.UTC()
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	t.UpdatedAt = time.Now().UTC()
	return t.Validate()
}

// TaskDetail is a task with its user references expanded for display.
type TaskDetail struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"dueDate"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssignedTo  UserRef      `json:"assignedTo"`
	CreatedBy   UserRef      `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewTaskDetail combines a task with the resolved assignee and creator.
func NewTaskDetail(t *Task, assignee, creator UserRef) *TaskDetail {
	return &TaskDetail{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
		Priority:    t.Priority,
		AssignedTo:  assignee,
		CreatedBy:   creator,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
