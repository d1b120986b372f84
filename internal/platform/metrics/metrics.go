package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bot. Components accept a nil
// *Metrics and skip recording, which keeps unit tests registry-free.
type Metrics struct {
	RegistrationsCompleted prometheus.Counter
	RegistrationsCancelled prometheus.Counter
	ValidationFailures     *prometheus.CounterVec
	CodeRetries            prometheus.Counter
	StoreDuration          *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "regbot_registrations_completed_total",
			Help: "Total number of registrations committed to the profile store",
		}),
		RegistrationsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "regbot_registrations_cancelled_total",
			Help: "Total number of registrations cancelled before completion",
		}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regbot_validation_failures_total",
			Help: "Rejected answers per registration step",
		}, []string{"step"}),
		CodeRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "regbot_referral_code_retries_total",
			Help: "Referral code candidates discarded as already taken",
		}),
		StoreDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regbot_profile_store_duration_seconds",
			Help:    "Latency of profile store operations",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
	}
}

// RecordValidationFailure counts a rejected answer for one step.
func (m *Metrics) RecordValidationFailure(step string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(step).Inc()
}

// RecordCompleted counts a committed registration.
func (m *Metrics) RecordCompleted() {
	if m == nil {
		return
	}
	m.RegistrationsCompleted.Inc()
}

// RecordCancelled counts an abandoned registration.
func (m *Metrics) RecordCancelled() {
	if m == nil {
		return
	}
	m.RegistrationsCancelled.Inc()
}

// RecordCodeRetry counts one discarded referral code candidate.
func (m *Metrics) RecordCodeRetry() {
	if m == nil {
		return
	}
	m.CodeRetries.Inc()
}

// ObserveStore records the latency of one profile store operation.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
