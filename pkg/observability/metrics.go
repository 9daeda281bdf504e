package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// Metrics holds the Prometheus collectors for a node.
type Metrics struct {
	registry *prometheus.Registry

	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	progress    prometheus.Counter
	inFlight    prometheus.Gauge

	mu      sync.Mutex
	started map[string]time.Time
}

// NewMetrics creates and registers the node collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tendril_generations_total",
				Help: "Total number of settled generation requests",
			},
			[]string{"model", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "tendril_generation_duration_seconds",
				Help: "Wall time from acceptance to settlement",
			},
			[]string{"model"},
		),
		progress: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tendril_progress_events_total",
				Help: "Total number of progress log events relayed",
			},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tendril_in_flight",
				Help: "Whether a generation request is currently in flight",
			},
		),
		started: make(map[string]time.Time),
	}

	m.registry.MustRegister(m.generations, m.duration, m.progress, m.inFlight)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGenerateStart: func(ctx context.Context, e *domain.ProgressEvent) {
			m.inFlight.Inc()
			m.mu.Lock()
			m.started[e.RequestID] = time.Now()
			m.mu.Unlock()
		},
		OnProgress: func(ctx context.Context, e *domain.ProgressEvent) {
			m.progress.Inc()
		},
		OnGenerateEnd: func(ctx context.Context, e *domain.ProgressEvent) {
			m.inFlight.Dec()

			outcome := "failed"
			if e.Kind == domain.EventSucceeded {
				outcome = "succeeded"
			}
			m.generations.WithLabelValues(e.Model.String(), outcome).Inc()

			m.mu.Lock()
			startedAt, ok := m.started[e.RequestID]
			delete(m.started, e.RequestID)
			m.mu.Unlock()
			if ok {
				m.duration.WithLabelValues(e.Model.String()).Observe(time.Since(startedAt).Seconds())
			}
		},
	}
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MergeHooks combines several lifecycle hook sets; each callback runs in the
// order given.
func MergeHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGenerateStart: func(ctx context.Context, e *domain.ProgressEvent) {
			for _, h := range hooks {
				if h.OnGenerateStart != nil {
					h.OnGenerateStart(ctx, e)
				}
			}
		},
		OnProgress: func(ctx context.Context, e *domain.ProgressEvent) {
			for _, h := range hooks {
				if h.OnProgress != nil {
					h.OnProgress(ctx, e)
				}
			}
		},
		OnGenerateEnd: func(ctx context.Context, e *domain.ProgressEvent) {
			for _, h := range hooks {
				if h.OnGenerateEnd != nil {
					h.OnGenerateEnd(ctx, e)
				}
			}
		},
	}
}
