package events

import (
	"context"
	"log/slog"
)

// AuditLogHandler writes one structured record per event.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates an audit handler writing to logger.
func NewAuditLogHandler(logger *slog.Logger) *AuditLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogHandler{logger: logger.With(slog.String("component", "audit"))}
}

// HandleEvent implements EventHandler.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.logger.InfoContext(ctx, "audit",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("actor_id", event.ActorID.String()),
		slog.Time("occurred_at", event.OccurredAt),
		slog.String("payload", string(event.Payload)))
	return nil
}
