// Package metrics provides Prometheus metrics collection for the resolution
// engine. Collectors are fed from engine events, so library packages stay
// free of metrics code.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/events"
)

// Collector holds all Prometheus metrics for the engine.
type Collector struct {
	// Resolution metrics
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec

	// Consistency metrics
	TypeMismatchesTotal *prometheus.CounterVec

	// Build metrics
	BuildsTotal      *prometheus.CounterVec
	BuildDiagnostics prometheus.Gauge
}

// New creates a metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "typegraph",
				Name:      "resolutions_total",
				Help:      "Total number of abstract-type resolutions",
			},
			[]string{"abstract_type", "strategy", "outcome"},
		),
		ResolutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "typegraph",
				Name:      "resolution_duration_seconds",
				Help:      "Resolution duration in seconds",
				Buckets:   []float64{.000001, .00001, .0001, .001, .01, .1, 1},
			},
			[]string{"abstract_type"},
		),
		TypeMismatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "typegraph",
				Name:      "type_mismatches_total",
				Help:      "Total number of runtime consistency mismatches",
			},
			[]string{"abstract_type", "strategy"},
		),
		BuildsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "typegraph",
				Name:      "builds_total",
				Help:      "Total number of engine builds",
			},
			[]string{"outcome"},
		),
		BuildDiagnostics: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "typegraph",
				Name:      "build_diagnostics",
				Help:      "Number of diagnostics reported by the last engine build",
			},
		),
	}
}

// Handler returns an HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Attach subscribes the collector to engine events. The returned function
// removes the subscriptions.
func Attach(c *Collector) func() {
	unsubFinish := eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
		outcome := "ok"
		if e.Err != nil {
			outcome = "error"
		}
		strat := string(e.Strategy)
		if strat == "" {
			strat = "NONE"
		}
		c.ResolutionsTotal.WithLabelValues(e.AbstractType, strat, outcome).Inc()
		c.ResolutionDuration.WithLabelValues(e.AbstractType).Observe(e.Duration.Seconds())
	})
	unsubMismatch := eventbus.Subscribe(func(ctx context.Context, e events.TypeMismatch) {
		c.TypeMismatchesTotal.WithLabelValues(e.AbstractType, string(e.Strategy)).Inc()
	})
	unsubBuild := eventbus.Subscribe(func(ctx context.Context, e events.BuildFinish) {
		outcome := "ok"
		if e.Err != nil {
			outcome = "error"
		}
		c.BuildsTotal.WithLabelValues(outcome).Inc()
		c.BuildDiagnostics.Set(float64(e.Diagnostics))
	})
	return func() {
		unsubFinish()
		unsubMismatch()
		unsubBuild()
	}
}
