// Package metrics provides Prometheus metrics for the customer list and form
// flows and for the calls they make to the customer API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
	OutcomeBusy      = "busy"
	OutcomeDeclined  = "declined"
)

type Metrics struct {
	SubmissionsTotal    *prometheus.CounterVec   // form submissions by mode and outcome
	DuplicateRejections prometheus.Counter       // writes blocked by the CPF duplicate check
	DeletesTotal        *prometheus.CounterVec   // deletes by outcome
	ListLoadsTotal      *prometheus.CounterVec   // list retrievals by outcome
	GatewayCallDuration *prometheus.HistogramVec // customer API latency by operation
	GatewayErrorsTotal  *prometheus.CounterVec   // customer API failures by operation and category
	OpenFormSessions    prometheus.Gauge
}

// New registers on the default registry; call it once per process.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on reg, letting tests use a private registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SubmissionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "desafiojr_form_submissions_total",
			Help: "Customer form submissions by mode (create, edit) and outcome",
		}, []string{"mode", "outcome"}),

		DuplicateRejections: f.NewCounter(prometheus.CounterOpts{
			Name: "desafiojr_duplicate_cpf_rejections_total",
			Help: "Writes rejected because another customer already has the CPF",
		}),

		DeletesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "desafiojr_customer_deletes_total",
			Help: "Customer deletes by outcome",
		}, []string{"outcome"}),

		ListLoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "desafiojr_customer_list_loads_total",
			Help: "Customer list retrievals by outcome",
		}, []string{"outcome"}),

		GatewayCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "desafiojr_customer_api_duration_seconds",
			Help:    "Duration of customer API calls by operation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),

		GatewayErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "desafiojr_customer_api_errors_total",
			Help: "Customer API failures by operation and error category",
		}, []string{"operation", "category"}),

		OpenFormSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "desafiojr_form_sessions_open",
			Help: "Form sessions currently held in memory",
		}),
	}
}

func (m *Metrics) RecordSubmission(mode, outcome string) {
	m.SubmissionsTotal.WithLabelValues(mode, outcome).Inc()
	if outcome == OutcomeDuplicate {
		m.DuplicateRejections.Inc()
	}
}

func (m *Metrics) RecordDelete(outcome string) {
	m.DeletesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordListLoad(outcome string) {
	m.ListLoadsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveGatewayCall(operation string, durationSeconds float64) {
	m.GatewayCallDuration.WithLabelValues(operation).Observe(durationSeconds)
}

func (m *Metrics) RecordGatewayError(operation, category string) {
	m.GatewayErrorsTotal.WithLabelValues(operation, category).Inc()
}

func (m *Metrics) SetOpenSessions(n int) {
	m.OpenFormSessions.Set(float64(n))
}
