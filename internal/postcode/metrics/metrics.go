// Package metrics provides Prometheus metrics for postal code lookups.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type Metrics struct {
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	LookupsTotal   *prometheus.CounterVec
	LookupDuration prometheus.Histogram
	SharedLookups  prometheus.Counter // lookups answered by an in-flight call for the same code
}

// New registers on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "desafiojr_postcode_cache_hits_total",
			Help: "Postcode cache hits by backend",
		}, []string{"backend"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "desafiojr_postcode_cache_misses_total",
			Help: "Postcode cache misses by backend",
		}, []string{"backend"}),
		LookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "desafiojr_postcode_lookups_total",
			Help: "Upstream postcode lookups by outcome",
		}, []string{"outcome"}),
		LookupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "desafiojr_postcode_lookup_duration_seconds",
			Help:    "Duration of upstream postcode lookups",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		SharedLookups: f.NewCounter(prometheus.CounterOpts{
			Name: "desafiojr_postcode_shared_lookups_total",
			Help: "Lookups that joined an in-flight request for the same code",
		}),
	}
}

func (m *Metrics) RecordCacheHit(backend string) {
	m.CacheHits.WithLabelValues(backend).Inc()
}

func (m *Metrics) RecordCacheMiss(backend string) {
	m.CacheMisses.WithLabelValues(backend).Inc()
}

func (m *Metrics) ObserveLookup(outcome string, durationSeconds float64) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
	m.LookupDuration.Observe(durationSeconds)
}

func (m *Metrics) RecordShared() {
	m.SharedLookups.Inc()
}
