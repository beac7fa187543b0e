package sync

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutexSameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0

	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("session-1")
			counter++
			m.Unlock("session-1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

func TestShardedMutexDo(t *testing.T) {
	m := NewShardedMutexN(4)
	sentinel := errors.New("boom")

	assert.ErrorIs(t, m.Do("k", func() error { return sentinel }), sentinel)
	// the lock was released even though fn failed
	assert.NoError(t, m.Do("k", func() error { return nil }))
}

func TestShardedMutexShardBounds(t *testing.T) {
	m := NewShardedMutexN(0)
	assert.Len(t, m.shards, 1)

	m = NewShardedMutexN(8)
	for _, k := range []string{"", "a", "b", "a-much-longer-session-key"} {
		s := m.shardFor(k)
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 8)
	}
	assert.Equal(t, m.shardFor("same"), m.shardFor("same"))
}
