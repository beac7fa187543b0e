//go:build integration

// Package containers starts Redis and Redpanda through testcontainers for
// integration tests. Each container is started at most once per test binary
// and handed to every suite that asks for it.
package containers

import (
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// lazy starts its container on first use. A failed start is not cached, so
// a later test gets its own attempt and its own failure message.
type lazy[C any] struct {
	mu    sync.Mutex
	value *C
	start func(t *testing.T) *C
}

func (l *lazy[C]) get(t *testing.T) *C {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.value == nil {
		l.value = l.start(t)
	}
	return l.value
}

// Manager hands out the shared containers.
type Manager struct {
	redis lazy[RedisContainer]
	kafka lazy[KafkaContainer]
}

var manager = sync.OnceValue(func() *Manager {
	return &Manager{
		redis: lazy[RedisContainer]{start: NewRedisContainer},
		kafka: lazy[KafkaContainer]{start: NewKafkaContainer},
	}
})

// GetManager returns the process-wide Manager.
func GetManager() *Manager { return manager() }

// GetRedis returns the shared Redis container. Tests skip when Docker is
// unavailable.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	return m.redis.get(t)
}

// GetKafka returns the shared Redpanda container.
func (m *Manager) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	return m.kafka.get(t)
}
