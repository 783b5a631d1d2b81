package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimitRejectedTotal prometheus.Counter
	RateLimitFailOpenTotal prometheus.Counter

	// Usage recorder metrics
	UsageRecordsTotal  prometheus.Counter
	UsageDroppedTotal  prometheus.Counter

	// AI provider metrics
	AIRequestsTotal   *prometheus.CounterVec
	AIRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgechat_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgechat_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RateLimitRejectedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "edgechat_ratelimit_rejected_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
		RateLimitFailOpenTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "edgechat_ratelimit_fail_open_total",
				Help: "Requests allowed because the counter store errored",
			},
		),
		UsageRecordsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "edgechat_usage_records_total",
				Help: "Usage records successfully written",
			},
		),
		UsageDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "edgechat_usage_records_dropped_total",
				Help: "Usage records dropped (queue full or write failure)",
			},
		),
		AIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgechat_ai_requests_total",
				Help: "Completion provider calls",
			},
			[]string{"operation", "status"},
		),
		AIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgechat_ai_request_duration_seconds",
				Help:    "Completion provider call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RateLimitRejectedTotal,
		m.RateLimitFailOpenTotal,
		m.UsageRecordsTotal,
		m.UsageDroppedTotal,
		m.AIRequestsTotal,
		m.AIRequestDuration,
	)

	return m
}

// Handler returns the Prometheus scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one completed HTTP request
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveAIRequest records one completion provider call
func (m *Metrics) ObserveAIRequest(operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.AIRequestsTotal.WithLabelValues(operation, status).Inc()
	m.AIRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
