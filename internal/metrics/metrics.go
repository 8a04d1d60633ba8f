// Package metrics provides Prometheus metrics for revlog
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for revlog
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Append path metrics
	AppendsTotal   *prometheus.CounterVec
	AppendDuration prometheus.Histogram

	// Store metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec

	// Registry metrics
	TasksTotal    prometheus.Gauge
	VersionsTotal prometheus.Gauge

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// New creates all metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revlog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "revlog_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.HTTPRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "revlog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	m.AppendsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revlog_appends_total",
			Help: "Total number of version appends",
		},
		[]string{"status"},
	)

	m.AppendDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "revlog_append_duration_seconds",
			Help:    "Duration of the full append path, diff computation and durable write included",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	m.StoreOperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revlog_store_operations_total",
			Help: "Total number of persistence operations",
		},
		[]string{"operation", "status"},
	)

	m.StoreOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "revlog_store_operation_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	m.TasksTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "revlog_tasks_total",
			Help: "Number of tracked tasks",
		},
	)

	m.VersionsTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "revlog_versions_total",
			Help: "Number of versions across all tasks",
		},
	)

	m.ServerUptimeSeconds = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "revlog_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	return m
}

// StartUptimeUpdater refreshes the uptime gauge every 10 seconds until the
// stop channel closes.
func (m *Metrics) StartUptimeUpdater(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
			}
		}
	}()
}

// RecordHTTPRequest records a served HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAppend records the outcome and duration of a version append
func (m *Metrics) RecordAppend(status string, duration time.Duration) {
	m.AppendsTotal.WithLabelValues(status).Inc()
	m.AppendDuration.Observe(duration.Seconds())
}

// RecordStoreOperation records a persistence operation
func (m *Metrics) RecordStoreOperation(operation, status string, duration time.Duration) {
	m.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateRegistryStats updates the task and version gauges
func (m *Metrics) UpdateRegistryStats(tasks, versions int) {
	m.TasksTotal.Set(float64(tasks))
	m.VersionsTotal.Set(float64(versions))
}
