// Package metrics exposes Prometheus instruments for the learning shell.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered by the application.
type Metrics struct {
	registry *prometheus.Registry

	RouteLoads          *prometheus.CounterVec
	FetchFailures       *prometheus.CounterVec
	StaleLoads          prometheus.Counter
	QuizAttempts        *prometheus.CounterVec
	BadgesEarned        *prometheus.CounterVec
	PersistenceFailures prometheus.Counter
	SearchQueries       prometheus.Counter
}

// New creates a registry with all application collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RouteLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learn_route_loads_total",
			Help: "Content loads completed, by route kind.",
		}, []string{"kind"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learn_fetch_failures_total",
			Help: "Failed resource fetches, by resource.",
		}, []string{"resource"}),
		StaleLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learn_stale_loads_total",
			Help: "Fetch results discarded because a newer navigation superseded them.",
		}),
		QuizAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learn_quiz_attempts_total",
			Help: "Quiz submissions, by outcome.",
		}, []string{"outcome"}),
		BadgesEarned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learn_badges_earned_total",
			Help: "Badges earned, by badge id.",
		}, []string{"badge"}),
		PersistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learn_persistence_failures_total",
			Help: "Failed writes to the key-value store.",
		}),
		SearchQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learn_search_queries_total",
			Help: "Search queries executed against the index.",
		}),
	}

	reg.MustRegister(
		prometheus.NewGoCollector(),
		m.RouteLoads,
		m.FetchFailures,
		m.StaleLoads,
		m.QuizAttempts,
		m.BadgesEarned,
		m.PersistenceFailures,
		m.SearchQueries,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
