package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
	UserCreated = "user.created"
	UserDeleted = "user.deleted"
)

// Event records a change that has already been persisted.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	ActorID    uuid.UUID       `json:"actorId"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// TaskPayload describes the task an event refers to.
type TaskPayload struct {
	TaskID     uuid.UUID `json:"taskId"`
	AssignedTo uuid.UUID `json:"assignedTo"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
}

// UserPayload describes the user an event refers to.
type UserPayload struct {
	UserID       uuid.UUID `json:"userId"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	TasksRemoved int64     `json:"tasksRemoved,omitempty"`
}

// NewEvent creates an event of eventType performed by actor. The payload is
// serialized eagerly so handlers can decode it into their own types.
func NewEvent(eventType string, actor uuid.UUID, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		ActorID:    actor,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler consumes events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events to registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
