package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/loom/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors fed by store hooks.
type Metrics struct {
	Actions        *prometheus.CounterVec
	EffectsStarted *prometheus.CounterVec
	Drops          *prometheus.CounterVec
	ReduceDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors that are already registered (e.g. by a second store in the same
// process) are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loom_actions_total",
				Help: "Total number of actions reduced",
			},
			[]string{"store", "action"},
		),
		EffectsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loom_effects_started_total",
				Help: "Total number of effects started",
			},
			[]string{"store", "action"},
		),
		Drops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loom_actions_dropped_total",
				Help: "Total number of effect actions that could not be delivered",
			},
			[]string{"store", "action"},
		),
		ReduceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loom_reduce_duration_seconds",
				Help:    "Duration of reducer runs",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"store"},
		),
	}

	var err error
	if m.Actions, err = register(reg, m.Actions); err != nil {
		return nil, err
	}
	if m.EffectsStarted, err = register(reg, m.EffectsStarted); err != nil {
		return nil, err
	}
	if m.Drops, err = register(reg, m.Drops); err != nil {
		return nil, err
	}
	if m.ReduceDuration, err = register(reg, m.ReduceDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns store hooks that record into m.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			m.Actions.WithLabelValues(e.Store, e.Name).Inc()
			m.ReduceDuration.WithLabelValues(e.Store).Observe(e.Duration.Seconds())
		},
		OnEffectStart: func(_ context.Context, e *domain.EffectEvent) {
			m.EffectsStarted.WithLabelValues(e.Store, e.Action).Inc()
		},
		OnDrop: func(_ context.Context, e *domain.DropEvent) {
			m.Drops.WithLabelValues(e.Store, e.Name).Inc()
		},
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
