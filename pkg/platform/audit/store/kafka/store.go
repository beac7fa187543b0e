// Package kafka publishes audit events to a Kafka topic as JSON, keyed by
// customer id so one customer's events stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pk-mender/desafiojr/internal/platform/kafka/producer"
	audit "github.com/pk-mender/desafiojr/pkg/platform/audit"
)

// Producer is the subset of producer.Producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

type Store struct {
	producer Producer
	topic    string
}

func New(p Producer, topic string) *Store {
	return &Store{producer: p, topic: topic}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.CustomerID),
		Value: payload,
		Headers: map[string]string{
			"action":     event.Action,
			"request_id": event.RequestID,
		},
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
