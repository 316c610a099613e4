package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/presence/internal/domain"
)

type stubRecorder struct {
	changes []domain.Change
	err     error
}

func (r *stubRecorder) RecordChange(_ context.Context, change domain.Change) error {
	if r.err != nil {
		return r.err
	}
	r.changes = append(r.changes, change)
	return nil
}

func presenceMessage(t *testing.T, payload interface{}) Message {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return Message{
		Topic:     "presence_events",
		EventType: "presence.changed",
		Timestamp: time.Date(2025, time.November, 3, 18, 0, 0, 0, time.UTC),
		Payload:   body,
	}
}

func TestPresenceHandlerRecordsChange(t *testing.T) {
	recorder := &stubRecorder{}
	handler := NewPresenceHandler(recorder)

	observed := time.Date(2025, time.November, 3, 17, 30, 0, 0, time.UTC)
	msg := presenceMessage(t, map[string]interface{}{
		"user_id":      "user-1",
		"display_name": "Steve",
		"role":         "admin",
		"activity":     "Mining",
		"observed_at":  observed.Format(time.RFC3339),
	})

	require.NoError(t, handler.Handle(context.Background(), msg))

	require.Len(t, recorder.changes, 1)
	change := recorder.changes[0]
	require.Equal(t, "user-1", change.UserID)
	require.Equal(t, "Steve", change.DisplayName)
	require.Equal(t, "admin", change.Role)
	require.Equal(t, "Mining", change.Activity)
	require.True(t, observed.Equal(change.ObservedAt))
}

func TestPresenceHandlerFallsBackToRecordTimestamp(t *testing.T) {
	recorder := &stubRecorder{}
	handler := NewPresenceHandler(recorder)

	msg := presenceMessage(t, map[string]interface{}{
		"user_id":  "user-1",
		"activity": "Fishing",
	})

	require.NoError(t, handler.Handle(context.Background(), msg))

	require.Len(t, recorder.changes, 1)
	require.True(t, msg.Timestamp.Equal(recorder.changes[0].ObservedAt))
}

func TestPresenceHandlerSkipsUnknownEventTypes(t *testing.T) {
	recorder := &stubRecorder{}
	handler := NewPresenceHandler(recorder)

	msg := Message{Topic: "presence_events", EventType: "user.deleted", Payload: []byte(`{}`)}
	require.NoError(t, handler.Handle(context.Background(), msg))
	require.Empty(t, recorder.changes)
}

func TestPresenceHandlerRejectsBadPayload(t *testing.T) {
	recorder := &stubRecorder{}
	handler := NewPresenceHandler(recorder)

	msg := Message{Topic: "presence_events", EventType: "presence.changed", Payload: []byte(`{`)}
	require.Error(t, handler.Handle(context.Background(), msg))
	require.Empty(t, recorder.changes)
}
