package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wayfarerhq/wayfarer/pkg/eventstream"
)

// DefaultTopic is used when the config leaves the topic empty.
const DefaultTopic = "wayfarer.answers"

// PublisherConfig configures the Kafka-backed eventstream publisher.
type PublisherConfig struct {
	// Brokers is the bootstrap broker list, host:port each.
	Brokers []string

	// Topic receives the answer events.
	Topic string

	// BatchTimeout bounds how long a message may sit in the writer's
	// batch buffer. Zero keeps the writer default.
	BatchTimeout time.Duration
}

// Publisher publishes answer events to a Kafka topic as JSON messages keyed
// by event ID.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka publisher. It does not dial eagerly; broker
// connectivity surfaces on the first publish.
func NewPublisher(config PublisherConfig) (*Publisher, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if config.Topic == "" {
		config.Topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: config.BatchTimeout,
	}

	return &Publisher{writer: writer}, nil
}

// PublishAnswer marshals the event and writes it to the configured topic.
func (p *Publisher) PublishAnswer(ctx context.Context, event *eventstream.AnswerProducedEvent) error {
	if event == nil {
		return eventstream.ErrNilAnswerEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling answer event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EventID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing answer event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
