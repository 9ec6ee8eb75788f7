// Package metrics exports Prometheus metrics for the HTTP service and the
// cleaning engine
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raaihank/clipboard-cleaner/internal/cleaner"
)

const namespace = "clipcleaner"

// Metrics holds the collectors on a private registry so several servers
// can coexist in one process
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	profileRuns  *prometheus.CounterVec
	engineEvents *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"route", "method"},
		),
		profileRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profile_applications_total",
				Help:      "Total number of profile runs by profile and whether the text changed",
			},
			[]string{"profile", "changed"},
		),
		engineEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_events_total",
				Help:      "Total number of engine events by kind",
			},
			[]string{"kind", "charset"},
		),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.profileRuns,
		m.engineEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Notify records a cleaner event
func (m *Metrics) Notify(e cleaner.Event) {
	m.engineEvents.WithLabelValues(string(e.Kind), e.Charset).Inc()

	if e.Kind == cleaner.EventProfileApplied {
		changed, _ := e.Data["changed"].(bool)
		m.profileRuns.WithLabelValues(e.Profile, strconv.FormatBool(changed)).Inc()
	}
}

// ObserveHTTP records one completed request
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
