package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher is the capability services use to emit domain events.
// Publishing is best-effort from the services' point of view: a failed
// publish is logged by the caller and never rolls back the domain write.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// watermillPublisher adapts a watermill message.Publisher to EventPublisher.
type watermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewKafkaPublisher builds a kafka-backed publisher for production use.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (EventPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}
	return &watermillPublisher{publisher: publisher, topic: topic}, nil
}

// NewChannelPublisher builds an in-process publisher for development when no
// kafka brokers are configured.
func NewChannelPublisher(topic string, logger *slog.Logger) EventPublisher {
	publisher := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	return &watermillPublisher{publisher: publisher, topic: topic}
}

func (p *watermillPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	data, err := json.Marshal(Envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", eventType, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("event_type", eventType)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publishing event %s: %w", eventType, err)
	}
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records published events for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []RecordedEvent
}

type RecordedEvent struct {
	Type    string
	Payload any
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(_ context.Context, eventType string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, RecordedEvent{Type: eventType, Payload: payload})
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) GetPublishedEvents() []RecordedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedEvent, len(m.events))
	copy(out, m.events)
	return out
}
