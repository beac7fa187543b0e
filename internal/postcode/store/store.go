// Package store caches postcode lookups. Entries expire after a fixed TTL;
// both backends return ErrNotFound on a miss.
package store

import "errors"

// ErrNotFound is returned on a cache miss, including expired entries.
var ErrNotFound = errors.New("not found")

// Backend names used as metric labels.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)
