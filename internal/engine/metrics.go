// internal/engine/metrics.go
package engine

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports playback counters to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	stepsApplied    *prometheus.CounterVec
	stepDuration    *prometheus.HistogramVec
	missingEntities *prometheus.CounterVec
	unknownSteps    prometheus.Counter
	stepPanics      prometheus.Counter
	runsLoaded      *prometheus.CounterVec
	runsCompleted   *prometheus.CounterVec
	activeLoops     prometheus.Gauge
}

// NewMetrics registers the engine metrics on reg. A nil reg gets a fresh
// registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		stepsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algoviz",
			Name:      "steps_applied_total",
			Help:      "Steps applied to the visual state",
		}, []string{"kind"}),
		stepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "algoviz",
			Name:      "step_duration_ms",
			Help:      "Wall time spent applying a step, waits included",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"kind"}),
		missingEntities: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algoviz",
			Name:      "missing_entities_total",
			Help:      "Steps that referenced an entity absent from the scene",
		}, []string{"kind"}),
		unknownSteps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "algoviz",
			Name:      "unknown_steps_total",
			Help:      "Steps with an unrecognized kind",
		}),
		stepPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "algoviz",
			Name:      "step_panics_total",
			Help:      "Panics recovered while producing or applying steps",
		}),
		runsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algoviz",
			Name:      "runs_loaded_total",
			Help:      "Algorithms loaded",
		}, []string{"algorithm"}),
		runsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algoviz",
			Name:      "runs_completed_total",
			Help:      "Runs whose step sequence was exhausted",
		}, []string{"algorithm"}),
		activeLoops: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "algoviz",
			Name:      "drive_loops_active",
			Help:      "Playback loops currently executing",
		}),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) stepApplied(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stepsApplied.WithLabelValues(kind).Inc()
	m.stepDuration.WithLabelValues(kind).Observe(float64(elapsed) / float64(time.Millisecond))
}

func (m *Metrics) missingEntity(kind string) {
	if m == nil {
		return
	}
	m.missingEntities.WithLabelValues(kind).Inc()
}

func (m *Metrics) unknownStep() {
	if m == nil {
		return
	}
	m.unknownSteps.Inc()
}

func (m *Metrics) panicked() {
	if m == nil {
		return
	}
	m.stepPanics.Inc()
}

func (m *Metrics) runLoaded(algorithm string) {
	if m == nil {
		return
	}
	m.runsLoaded.WithLabelValues(algorithm).Inc()
}

func (m *Metrics) runCompleted(algorithm string) {
	if m == nil {
		return
	}
	m.runsCompleted.WithLabelValues(algorithm).Inc()
}

func (m *Metrics) loopStarted() {
	if m == nil {
		return
	}
	m.activeLoops.Inc()
}

func (m *Metrics) loopExited() {
	if m == nil {
		return
	}
	m.activeLoops.Dec()
}
