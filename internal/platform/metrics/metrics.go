// Package metrics exposes Prometheus instrumentation for the account and
// session layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	LoginOutcomeSuccess = "success"
	LoginOutcomeFailure = "failure"
)

// Metrics holds the auth layer's Prometheus collectors.
type Metrics struct {
	UsersRegistered prometheus.Counter
	Logins          *prometheus.CounterVec
	SessionsRevoked prometheus.Counter
}

// New creates and registers the auth metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chaincomply_users_registered_total",
			Help: "Portal accounts created.",
		}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chaincomply_logins_total",
			Help: "Login attempts, by outcome.",
		}, []string{"outcome"}),
		SessionsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chaincomply_sessions_revoked_total",
			Help: "Sessions revoked by their owner or by logout.",
		}),
	}
}

// IncUserRegistered records one new portal account.
func (m *Metrics) IncUserRegistered() {
	m.UsersRegistered.Inc()
}

// IncLogin records one login attempt.
func (m *Metrics) IncLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// IncSessionRevoked records one revoked session.
func (m *Metrics) IncSessionRevoked() {
	m.SessionsRevoked.Inc()
}
