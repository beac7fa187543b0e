// Package sync provides keyed locking for per-resource critical sections.
package sync

import (
	"hash/fnv"
	"sync"
)

// DefaultShards is the shard count used by NewShardedMutex.
const DefaultShards = 32

// ShardedMutex serializes work per key without one lock per key: keys hash
// onto a fixed set of mutexes, so unrelated keys may share a shard.
type ShardedMutex struct {
	shards []sync.Mutex
}

func NewShardedMutex() *ShardedMutex {
	return NewShardedMutexN(DefaultShards)
}

// NewShardedMutexN creates a ShardedMutex with n shards (at least 1).
func NewShardedMutexN(n int) *ShardedMutex {
	if n < 1 {
		n = 1
	}
	return &ShardedMutex{shards: make([]sync.Mutex, n)}
}

func (m *ShardedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

// Do runs fn while holding key's shard.
func (m *ShardedMutex) Do(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

func (m *ShardedMutex) shardFor(key string) int {
	if key == "" || len(m.shards) == 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(m.shards)))
}
