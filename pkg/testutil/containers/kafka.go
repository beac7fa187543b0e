//go:build integration

package containers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaContainer is a single-broker Redpanda the audit tests publish to.
type KafkaContainer struct {
	Container testcontainers.Container
	Brokers   string
}

// NewKafkaContainer starts Redpanda, which speaks the Kafka protocol and
// boots far faster than a Kafka broker. The container lives for the whole
// test binary; the testcontainers reaper removes it on exit.
func NewKafkaContainer(t *testing.T) *KafkaContainer {
	t.Helper()
	ctx := context.Background()

	container, err := kafka.Run(ctx,
		"redpandadata/redpanda:latest",
		kafka.WithClusterID("customer-registry-it"),
	)
	if err != nil {
		t.Fatalf("start kafka container: %v", err)
	}

	brokers, err := container.Brokers(ctx)
	if err != nil || len(brokers) == 0 {
		_ = container.Terminate(ctx)
		t.Fatalf("kafka brokers: %v", err)
	}
	return &KafkaContainer{Container: container, Brokers: brokers[0]}
}

// EnsureTopic creates topic with one replica. An existing topic is fine.
func (k *KafkaContainer) EnsureTopic(ctx context.Context, topic string, partitions int32) error {
	client, err := kgo.NewClient(kgo.SeedBrokers(k.Brokers))
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := kadm.NewClient(client).CreateTopic(ctx, partitions, 1, nil, topic)
	if err != nil {
		return err
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return resp.Err
	}
	return nil
}

// Consume opens a group-less reader on topic starting from the oldest record.
func (k *KafkaContainer) Consume(topic string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(k.Brokers),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
}

// WaitForRecord polls until match accepts a record or timeout passes.
func (k *KafkaContainer) WaitForRecord(ctx context.Context, client *kgo.Client, timeout time.Duration, match func(*kgo.Record) bool) (*kgo.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		fetches := client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("no matching record within %s: %w", timeout, err)
		}
		if fetches.IsClientClosed() {
			return nil, errors.New("consumer closed")
		}

		var found *kgo.Record
		fetches.EachRecord(func(r *kgo.Record) {
			if found == nil && match(r) {
				found = r
			}
		})
		if found != nil {
			return found, nil
		}
	}
}
