// Package events defines the wire payloads exchanged over Kafka.
package events

import "time"

// EventTypePresenceChanged is the header value stamped on presence transitions.
const EventTypePresenceChanged = "presence.changed"

// PresenceChanged represents one observed activity transition for a user.
// An empty or missing activity means the user stopped reporting any activity.
type PresenceChanged struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role,omitempty"`
	Activity    string    `json:"activity"`
	ObservedAt  time.Time `json:"observed_at"`
}

// Notification is the message published to the notification topic.
type Notification struct {
	MessageID string    `json:"message_id"`
	ChannelID string    `json:"channel_id"`
	Text      string    `json:"text"`
	SentAt    time.Time `json:"sent_at"`
}
