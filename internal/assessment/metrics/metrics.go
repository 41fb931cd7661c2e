// Package metrics exposes Prometheus instrumentation for the risk engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the risk engine's Prometheus collectors.
type Metrics struct {
	AssessmentsTotal       *prometheus.CounterVec
	AssessmentDuration     prometheus.Histogram
	SnapshotAppendFailures prometheus.Counter
}

// New creates and registers the engine metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		AssessmentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chaincomply_assessments_total",
			Help: "Risk assessments computed, by entity type and resulting risk level.",
		}, []string{"entity_type", "risk_level"}),
		AssessmentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chaincomply_assessment_duration_seconds",
			Help:    "Wall time spent computing one risk assessment.",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotAppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chaincomply_snapshot_append_failures_total",
			Help: "Snapshot store appends that failed after a successful assessment.",
		}),
	}
}

// ObserveAssessment records one completed assessment.
func (m *Metrics) ObserveAssessment(entityType, riskLevel string, elapsed time.Duration) {
	m.AssessmentsTotal.WithLabelValues(entityType, riskLevel).Inc()
	m.AssessmentDuration.Observe(elapsed.Seconds())
}

// IncSnapshotAppendFailure records one failed snapshot append.
func (m *Metrics) IncSnapshotAppendFailure() {
	m.SnapshotAppendFailures.Inc()
}
