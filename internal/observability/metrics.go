// Package observability exposes Prometheus metrics for the API.
package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shipyard"

// Metrics owns a private registry so that several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	deployments     *prometheus.CounterVec
	advisorFallback *prometheus.CounterVec
	tasksInFlight   prometheus.Gauge
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		deployments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deployments_total",
			Help:      "Finished deployments by terminal status.",
		}, []string{"status"}),
		advisorFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisor_fallbacks_total",
			Help:      "Advisory requests answered with the static fallback text.",
		}, []string{"use_case"}),
		tasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "background_tasks_in_flight",
			Help:      "Background tasks currently running.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.deployments,
		m.advisorFallback,
		m.tasksInFlight,
	)
	return m
}

// RegisterDB exports connection pool statistics for db
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	if m == nil || db == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordDeployment counts a deployment that reached status
func (m *Metrics) RecordDeployment(status string) {
	if m == nil {
		return
	}
	m.deployments.WithLabelValues(status).Inc()
}

// RecordAdvisorFallback counts a fallback answer for useCase
func (m *Metrics) RecordAdvisorFallback(useCase string) {
	if m == nil {
		return
	}
	m.advisorFallback.WithLabelValues(useCase).Inc()
}

// TaskStarted increments the in-flight task gauge
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.tasksInFlight.Inc()
}

// TaskFinished decrements the in-flight task gauge
func (m *Metrics) TaskFinished() {
	if m == nil {
		return
	}
	m.tasksInFlight.Dec()
}

// AdvisorFallbackCounter returns the fallback counter for useCase
func (m *Metrics) AdvisorFallbackCounter(useCase string) prometheus.Counter {
	return m.advisorFallback.WithLabelValues(useCase)
}

// DeploymentCounter returns the deployment counter for status
func (m *Metrics) DeploymentCounter(status string) prometheus.Counter {
	return m.deployments.WithLabelValues(status)
}
