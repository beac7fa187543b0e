//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/pk-mender/desafiojr/internal/platform/kafka/producer"
	audit "github.com/pk-mender/desafiojr/pkg/platform/audit"
	"github.com/pk-mender/desafiojr/pkg/platform/audit/publisher"
	"github.com/pk-mender/desafiojr/pkg/testutil/containers"
)

func TestAsyncPublisherDeliversToKafka(t *testing.T) {
	ctx := context.Background()
	kc := containers.GetManager().GetKafka(t)
	const topic = "customer-audit-it"
	require.NoError(t, kc.EnsureTopic(ctx, topic, 1))

	prod, err := producer.New(producer.Config{Brokers: kc.Brokers, Acks: "all", Retries: 3}, nil)
	require.NoError(t, err)
	defer prod.Close()

	pub := publisher.NewPublisher(New(prod, topic), publisher.WithAsyncBuffer(16))
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: string(audit.EventCustomerDeleted), CustomerID: "77"}))
	pub.Close()

	consumer, err := kc.Consume(topic)
	require.NoError(t, err)
	defer consumer.Close()

	record, err := kc.WaitForRecord(ctx, consumer, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "77"
	})
	require.NoError(t, err)

	var got audit.Event
	require.NoError(t, json.Unmarshal(record.Value, &got))
	require.Equal(t, string(audit.EventCustomerDeleted), got.Action)
}
