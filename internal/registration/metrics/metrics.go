// Package metrics exposes Prometheus instrumentation for the registration
// lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registration lifecycle's Prometheus collectors.
type Metrics struct {
	CreatedTotal   *prometheus.CounterVec
	SubmittedTotal *prometheus.CounterVec
	ReviewedTotal  *prometheus.CounterVec
}

// New creates and registers the registration metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		CreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chaincomply_registrations_created_total",
			Help: "Registration drafts created, by entity type.",
		}, []string{"entity_type"}),
		SubmittedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chaincomply_registrations_submitted_total",
			Help: "Registrations submitted for review, by entity type.",
		}, []string{"entity_type"}),
		ReviewedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chaincomply_registrations_reviewed_total",
			Help: "Review decisions recorded, by entity type and decision.",
		}, []string{"entity_type", "decision"}),
	}
}

// IncCreated records one new draft.
func (m *Metrics) IncCreated(entityType string) {
	m.CreatedTotal.WithLabelValues(entityType).Inc()
}

// IncSubmitted records one submission.
func (m *Metrics) IncSubmitted(entityType string) {
	m.SubmittedTotal.WithLabelValues(entityType).Inc()
}

// IncReviewed records one review decision.
func (m *Metrics) IncReviewed(entityType, decision string) {
	m.ReviewedTotal.WithLabelValues(entityType, decision).Inc()
}
