// Package redis builds the shared Redis client used by the postcode cache.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/pk-mender/desafiojr/internal/platform/config"
)

// PoolMetrics mirrors go-redis pool statistics into Prometheus.
type PoolMetrics struct {
	Hits       prometheus.Counter
	Misses     prometheus.Counter
	Timeouts   prometheus.Counter
	TotalConns prometheus.Gauge
	IdleConns  prometheus.Gauge
}

func NewPoolMetrics(reg prometheus.Registerer) *PoolMetrics {
	f := promauto.With(reg)
	return &PoolMetrics{
		Hits: f.NewCounter(prometheus.CounterOpts{
			Name: "desafiojr_redis_pool_hits_total",
			Help: "Number of times a connection was found in the pool",
		}),
		Misses: f.NewCounter(prometheus.CounterOpts{
			Name: "desafiojr_redis_pool_misses_total",
			Help: "Number of times a connection was not found in the pool",
		}),
		Timeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "desafiojr_redis_pool_timeouts_total",
			Help: "Number of times a connection was not obtained due to timeout",
		}),
		TotalConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "desafiojr_redis_pool_total_conns",
			Help: "Number of total connections in the pool",
		}),
		IdleConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "desafiojr_redis_pool_idle_conns",
			Help: "Number of idle connections in the pool",
		}),
	}
}

// Client wraps the go-redis client with health checking and pool metrics.
type Client struct {
	*redis.Client
	metrics *PoolMetrics

	mu        sync.Mutex
	lastStats *redis.PoolStats
}

// New creates a Redis client from cfg and pings it.
// Returns nil, nil when the URL is empty (Redis not configured).
func New(ctx context.Context, cfg config.RedisConfig, metrics *PoolMetrics) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client, metrics: metrics}, nil
}

// Health checks the connection with a bounded ping.
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Ping(ctx).Err()
}

// RecordPoolStats copies pool counters into the metrics, as deltas since the
// previous call.
func (c *Client) RecordPoolStats() {
	if c.metrics == nil {
		return
	}
	stats := c.PoolStats()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.TotalConns.Set(float64(stats.TotalConns))
	c.metrics.IdleConns.Set(float64(stats.IdleConns))

	var prev redis.PoolStats
	if c.lastStats != nil {
		prev = *c.lastStats
	}
	if stats.Hits > prev.Hits {
		c.metrics.Hits.Add(float64(stats.Hits - prev.Hits))
	}
	if stats.Misses > prev.Misses {
		c.metrics.Misses.Add(float64(stats.Misses - prev.Misses))
	}
	if stats.Timeouts > prev.Timeouts {
		c.metrics.Timeouts.Add(float64(stats.Timeouts - prev.Timeouts))
	}
	c.lastStats = stats
}

// RunPoolStats records pool statistics every interval until ctx is done.
func (c *Client) RunPoolStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}
