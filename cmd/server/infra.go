package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	"github.com/pk-mender/desafiojr/internal/platform/config"
	"github.com/pk-mender/desafiojr/internal/platform/kafka/producer"
	"github.com/pk-mender/desafiojr/internal/platform/redis"
	"github.com/pk-mender/desafiojr/internal/postcode/client"
	postcodemetrics "github.com/pk-mender/desafiojr/internal/postcode/metrics"
	postcodeservice "github.com/pk-mender/desafiojr/internal/postcode/service"
	postcodestore "github.com/pk-mender/desafiojr/internal/postcode/store"
	audit "github.com/pk-mender/desafiojr/pkg/platform/audit"
	auditmetrics "github.com/pk-mender/desafiojr/pkg/platform/audit/metrics"
	"github.com/pk-mender/desafiojr/pkg/platform/audit/publisher"
	kafkastore "github.com/pk-mender/desafiojr/pkg/platform/audit/store/kafka"
	"github.com/pk-mender/desafiojr/pkg/platform/audit/store/logsink"
	"github.com/pk-mender/desafiojr/pkg/platform/circuit"
)

const auditBufferSize = 256

// auditSink owns the audit publisher and, when brokers are configured, the
// Kafka producer behind it.
type auditSink struct {
	Logger    *audit.Logger
	Producer  *producer.Producer
	publisher *publisher.Publisher
}

func newAuditSink(cfg config.KafkaConfig, reg prometheus.Registerer, log *slog.Logger) (*auditSink, error) {
	sink := &auditSink{}

	var store audit.Store = logsink.New(log)
	if strings.TrimSpace(cfg.Brokers) != "" {
		p, err := producer.New(producer.Config{
			Brokers:         cfg.Brokers,
			Acks:            cfg.Acks,
			Retries:         cfg.Retries,
			DeliveryTimeout: cfg.DeliveryTimeout,
		}, log)
		if err != nil {
			return nil, err
		}
		sink.Producer = p
		store = kafkastore.New(p, cfg.AuditTopic)
		log.Info("audit events published to kafka", "topic", cfg.AuditTopic)
	}

	sink.publisher = publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithPublisherLogger(log),
		publisher.WithMetrics(auditmetrics.NewWith(reg)),
	)
	sink.Logger = audit.NewLogger(log, sink.publisher)
	return sink, nil
}

// Close drains queued events before the producer goes away.
func (s *auditSink) Close() {
	s.publisher.Close()
	if s.Producer != nil {
		_ = s.Producer.Close() //nolint:errcheck // shutdown path
	}
}

// newPostcodeLookup prefers the Redis cache and falls back to memory. The
// memory cache is returned so main can sweep it.
func newPostcodeLookup(cfg config.PostcodeConfig, rc *redis.Client, t tracer.Tracer, reg prometheus.Registerer, log *slog.Logger) (*postcodeservice.Service, *postcodestore.InMemoryCache) {
	m := postcodemetrics.NewWith(reg)
	upstream := client.New(cfg.URL, client.WithTimeout(cfg.Timeout))

	var (
		cache  postcodeservice.Cache
		memory *postcodestore.InMemoryCache
	)
	if rc != nil {
		cache = postcodestore.NewRedisCache(rc.Client, cfg.CacheTTL, m)
	} else {
		memory = postcodestore.NewInMemoryCache(cfg.CacheTTL, postcodestore.WithMemoryMetrics(m))
		cache = memory
	}

	svc := postcodeservice.New(upstream,
		postcodeservice.WithCache(cache),
		postcodeservice.WithBreaker(circuit.New("viacep")),
		postcodeservice.WithMetrics(m),
		postcodeservice.WithTracer(t),
		postcodeservice.WithLogger(log),
	)
	return svc, memory
}

func runCacheSweeper(ctx context.Context, c *postcodestore.InMemoryCache, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				log.Debug("expired postcode entries removed", "count", n)
			}
		}
	}
}
