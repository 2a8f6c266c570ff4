// Package metrics holds the service's Prometheus counters. Metrics are
// registered on the registry handed to New so tests can use a fresh one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// Result label values.
const (
	ResultSuccess   = "success"
	ResultConflict  = "conflict"
	ResultInvalid   = "invalid"
	ResultExpired   = "expired"
	ResultThrottled = "throttled"
	ResultError     = "error"
)

type Metrics struct {
	// Registrations counts POST /auth/register outcomes.
	Registrations *prometheus.CounterVec
	// Logins counts POST /auth/token outcomes.
	Logins *prometheus.CounterVec
	// TokenValidations counts bearer token checks on protected routes.
	TokenValidations *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of registration attempts, by result.",
			},
			[]string{"result"},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts, by result.",
			},
			[]string{"result"},
		),
		TokenValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_validations_total",
				Help:      "Total number of bearer token validations, by result.",
			},
			[]string{"result"},
		),
	}
}
