package request

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the per-route HTTP latency histogram.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
}

// NewMetricsWith registers the histogram on reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EndpointLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "desafiojr_endpoint_latency_seconds",
			Help:    "Latency of view endpoints by route and status class",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint", "status"}),
	}
}

func (m *Metrics) observe(endpoint string, status int, d time.Duration) {
	m.EndpointLatency.WithLabelValues(endpoint, statusClass(status)).Observe(d.Seconds())
}

// statusClass collapses a status code to "2xx", "4xx" and so on.
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
