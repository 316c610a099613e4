package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"example.com/presence/internal/domain"
	"example.com/presence/internal/events"
)

// Recorder is the slice of the domain service the handler needs.
type Recorder interface {
	RecordChange(ctx context.Context, change domain.Change) error
}

// PresenceHandler turns decoded presence messages into session transitions.
type PresenceHandler struct {
	recorder Recorder
}

// NewPresenceHandler constructs a handler backed by the provided recorder.
func NewPresenceHandler(recorder Recorder) *PresenceHandler {
	return &PresenceHandler{recorder: recorder}
}

// Handle records one presence transition. Unknown event types are skipped so
// mixed topics do not wedge the consumer.
func (h *PresenceHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.EventTypePresenceChanged {
		return nil
	}

	var payload events.PresenceChanged
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("parse presence payload: %w", err)
	}

	observedAt := payload.ObservedAt
	if observedAt.IsZero() {
		observedAt = msg.Timestamp
	}

	return h.recorder.RecordChange(ctx, domain.Change{
		UserID:      payload.UserID,
		DisplayName: payload.DisplayName,
		Role:        payload.Role,
		Activity:    payload.Activity,
		ObservedAt:  observedAt,
	})
}
