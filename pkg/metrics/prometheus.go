// Package metrics provides Prometheus metrics for the course catalog service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Catalog metrics
	coursesTotal       prometheus.Gauge
	courseMutations    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec

	// Store metrics
	storeLatency *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpPanics          *prometheus.CounterVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it before building the /metrics handler.
func Configure(opts ...Option) *Manager {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
	return globalManager
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courses",
		subsystem:        "catalog",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.coursesTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("courses_total"),
		Help:        "Number of course records currently held in memory",
		ConstLabels: labels,
	})

	m.courseMutations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("course_mutations_total"),
			Help:        "Course create/update/delete attempts by operation and outcome",
			ConstLabels: labels,
		},
		[]string{"operation", "outcome"},
	)

	m.validationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("validation_failures_total"),
			Help:        "Rejected payloads by schema",
			ConstLabels: labels,
		},
		[]string{"schema"},
	)

	m.storeLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("store_latency_milliseconds"),
			Help:        "Record store operation latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpPanics = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_panics_total"),
			Help:        "Handler panics recovered and answered with 500",
			ConstLabels: labels,
		},
		[]string{"endpoint"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Errors by type and severity",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Errors by endpoint, method and type",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("error_latency_milliseconds"),
			Help:        "Latency of requests that ended in an error",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval returns how often gauges should be refreshed by callers.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// UpdateCoursesTotal sets the current number of stored courses.
func UpdateCoursesTotal(count int) {
	if globalManager.enabled {
		globalManager.coursesTotal.Set(float64(count))
	}
}

// RecordCourseMutation counts a create/update/delete attempt and its outcome.
func RecordCourseMutation(operation, outcome string) {
	if globalManager.enabled {
		globalManager.courseMutations.WithLabelValues(operation, outcome).Inc()
	}
}

// RecordValidationFailure counts a payload rejected by schema.
func RecordValidationFailure(schema string) {
	if globalManager.enabled {
		globalManager.validationFailures.WithLabelValues(schema).Inc()
	}
}

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(operation string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records the HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordPanic counts a recovered handler panic.
func RecordPanic(endpoint string) {
	if globalManager.enabled {
		globalManager.httpPanics.WithLabelValues(endpoint).Inc()
	}
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records the latency of an errored request.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
