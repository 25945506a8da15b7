// Package sink forwards relayed events to external brokers so other terminal
// systems can consume them.
package sink

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"terminal-voice-backend/internal/event"
)

// MessageWriter is the part of *kafka.Writer the sink uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Kafka publishes each event to a topic keyed by container number, so events
// for one container land on one partition in order.
type Kafka struct {
	writer MessageWriter
}

func NewKafka(w MessageWriter) *Kafka {
	return &Kafka{writer: w}
}

// NewKafkaWriter builds the writer used in production.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Observe(ctx context.Context, ev event.Event) error {
	payload, err := event.Encode(ev)
	if err != nil {
		return err
	}
	key := ev.Subject()
	if key == "" {
		key = string(ev.Kind())
	}
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   payload,
		Time:    ev.OccurredAt(),
		Headers: []kafka.Header{{Key: "type", Value: []byte(ev.Kind())}},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", ev.Kind(), err)
	}
	return nil
}
