// Package events publishes domain events to a broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event names.
const (
	InquiryCreated = "inquiry.created"
	CaseClosed     = "case.closed"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "lawoffice.events"

// Envelope is the JSON body of every published message.
type Envelope struct {
	Name       string    `json:"name"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Envelope) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to one Kafka topic keyed by entity id.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher for a comma separated broker list.
// PRE: brokers is non-empty
// POST: returns a publisher; the connection is established lazily on first write
func NewKafkaPublisher(brokers, topic string) (*KafkaPublisher, error) {
	addrs := splitBrokers(brokers)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("kafka: no brokers in %q", brokers)
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}, nil
}

// Publish encodes ev and writes it synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Envelope) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", ev.Name, err)
	}
	slog.Info("event_published", "name", ev.Name, "entity_id", ev.EntityID)
	return nil
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(ev Envelope) (kafka.Message, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event %s: %w", ev.Name, err)
	}
	return kafka.Message{
		Key:   []byte(ev.EntityID),
		Value: body,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Name)},
		},
	}, nil
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NoopPublisher logs events without sending them.
type NoopPublisher struct{}

// Publish logs ev at debug level.
func (NoopPublisher) Publish(_ context.Context, ev Envelope) error {
	slog.Debug("event_skipped", "name", ev.Name, "entity_id", ev.EntityID)
	return nil
}

// Close does nothing.
func (NoopPublisher) Close() error { return nil }
