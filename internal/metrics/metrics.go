package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metric collectors for taskhub.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Domain metrics.
	TasksCreatedTotal    *prometheus.CounterVec
	TaskTransitionsTotal *prometheus.CounterVec
	DomainErrorsTotal    *prometheus.CounterVec

	// Rate limiting and auth.
	RateLimitRejectionsTotal *prometheus.CounterVec
	AuthFailuresTotal        *prometheus.CounterVec

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		HTTPResponseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskhub_http_response_size_bytes",
			Help:    "HTTP response size in bytes.",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		}, []string{"method", "path_pattern"}),

		TasksCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_tasks_created_total",
			Help: "Total number of tasks created, by initial status.",
		}, []string{"status"}),

		TaskTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_task_transitions_total",
			Help: "Total number of applied task status transitions.",
		}, []string{"from", "to"}),

		DomainErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_domain_errors_total",
			Help: "Total number of rejected operations by error kind.",
		}, []string{"kind"}),

		RateLimitRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_ratelimit_rejections_total",
			Help: "Total number of rate limit rejections.",
		}, []string{"scope"}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_auth_failures_total",
			Help: "Total number of authentication failures.",
		}, []string{"reason"}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskhub_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.TasksCreatedTotal,
		m.TaskTransitionsTotal,
		m.DomainErrorsTotal,
		m.RateLimitRejectionsTotal,
		m.AuthFailuresTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PrometheusHandler serves the registry in the Prometheus exposition format.
func (m *Metrics) PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, pattern string, status int, d time.Duration, size int) {
	m.HTTPRequestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pattern).Observe(d.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, pattern).Observe(float64(size))
}

// RecordTaskCreated increments the created-tasks counter.
func (m *Metrics) RecordTaskCreated(status string) {
	m.TasksCreatedTotal.WithLabelValues(status).Inc()
}

// RecordTransition increments the transition counter for from -> to.
func (m *Metrics) RecordTransition(from, to string) {
	m.TaskTransitionsTotal.WithLabelValues(from, to).Inc()
}

// IncDomainError increments the rejected-operation counter for kind.
func (m *Metrics) IncDomainError(kind string) {
	m.DomainErrorsTotal.WithLabelValues(kind).Inc()
}

// IncRateLimitRejection increments the rate limit rejection counter.
func (m *Metrics) IncRateLimitRejection(scope string) {
	m.RateLimitRejectionsTotal.WithLabelValues(scope).Inc()
}

// RecordAuthFailure increments the auth failure counter.
func (m *Metrics) RecordAuthFailure(reason string) {
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}
