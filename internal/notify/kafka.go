// Package notify publishes human-readable notifications to Kafka.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"example.com/presence/internal/events"
)

// KafkaNotifier delivers notifications to a single topic, keyed by channel so
// per-channel ordering is preserved.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a notifier writing to the given topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

// Send publishes one notification. Delivery is best effort; callers log and
// move on.
func (n *KafkaNotifier) Send(ctx context.Context, channelID, text string) error {
	payload, err := json.Marshal(events.Notification{
		MessageID: uuid.NewString(),
		ChannelID: channelID,
		Text:      text,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(channelID),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

// Close releases the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
