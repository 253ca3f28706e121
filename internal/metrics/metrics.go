package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metrics for the HTTP surface.
type Metrics struct {
	registry         *prometheus.Registry
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	DBConnPoolStats  *prometheus.GaugeVec
	Submissions      prometheus.Counter
}

// New registers the metric set on a private registry so several servers
// (tests) can coexist in one process.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		DBConnPoolStats: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"stat"},
		),
		Submissions: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quiz_submissions_total",
				Help:      "Quiz submissions recorded",
			},
		),
	}
}

// Middleware records count, latency and in-flight requests per route pattern.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDBPoolStats copies database/sql pool statistics into gauges.
func (m *Metrics) RecordDBPoolStats(stats sql.DBStats) {
	m.DBConnPoolStats.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.DBConnPoolStats.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.DBConnPoolStats.WithLabelValues("idle").Set(float64(stats.Idle))
	m.DBConnPoolStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
	m.DBConnPoolStats.WithLabelValues("wait_duration_ms").Set(float64(stats.WaitDuration.Milliseconds()))
}

// SubmissionRecorded satisfies the app's submission observer hook.
func (m *Metrics) SubmissionRecorded() {
	m.Submissions.Inc()
}
