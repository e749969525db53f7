// Package metrics provides Prometheus metrics for the stemmap dashboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the dashboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Dataset Metrics - what the current snapshot holds
	datasetRecords  prometheus.Gauge
	datasetRegions  prometheus.Gauge
	datasetShapes   prometheus.Gauge
	regionsInferred prometheus.Counter

	// Reload Metrics - snapshot replacement
	reloads             prometheus.Counter
	reloadErrors        *prometheus.CounterVec
	reloadDuration      prometheus.Histogram
	snapshotLastUnix    prometheus.Gauge
	dataUnavailable     prometheus.Gauge
	sourceFetchDuration *prometheus.HistogramVec
	sourceFetchErrors   *prometheus.CounterVec
	sourceCacheHits     prometheus.Counter
	sourceCacheMisses   prometheus.Counter
	sourceCacheErrors   prometheus.Counter

	// Reload Queue Metrics - requests waiting for the reload worker
	reloadRequests  *prometheus.CounterVec
	reloadCoalesced prometheus.Counter
	reloadQueueSize prometheus.Gauge
	reloadLatency   prometheus.Histogram

	// Render Metrics - filter/aggregate/style passes
	renders         *prometheus.CounterVec
	renderDuration  prometheus.Histogram
	filteredRecords prometheus.Gauge
	chartRenders    *prometheus.CounterVec
	exports         *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stemmap",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// name applies the configured metric prefix.
func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		}, labels)
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
			Buckets: buckets,
		})
	}
	histogramVec := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
			Buckets: m.histogramBuckets,
		}, labels)
	}

	// Dataset
	m.datasetRecords = gauge("dataset_records", "Number of events in the published snapshot")
	m.datasetRegions = gauge("dataset_regions", "Number of distinct regions in the published snapshot")
	m.datasetShapes = gauge("dataset_shapes", "Number of map features in the published snapshot")
	m.regionsInferred = counter("regions_inferred_total", "Events whose region was taken from the containing map feature")

	// Reload
	m.reloads = counter("reloads_total", "Total number of successful snapshot reloads")
	m.reloadErrors = counterVec("reload_errors_total", "Total number of failed reloads by reason", "reason")
	m.reloadDuration = histogram("reload_duration_milliseconds", "Reload duration in milliseconds (fetch + normalize + publish)", m.histogramBuckets)
	m.snapshotLastUnix = gauge("snapshot_last_unix", "Unix time of the last published snapshot")
	m.dataUnavailable = gauge("data_unavailable", "1 when no snapshot could be loaded")
	m.sourceFetchDuration = histogramVec("source_fetch_duration_milliseconds", "Source fetch latency in milliseconds", "source")
	m.sourceFetchErrors = counterVec("source_fetch_errors_total", "Total number of source fetch failures", "source", "error_type")
	m.sourceCacheHits = counter("source_cache_hits_total", "Source payloads served from the cache")
	m.sourceCacheMisses = counter("source_cache_misses_total", "Source payloads not found in the cache")
	m.sourceCacheErrors = counter("source_cache_errors_total", "Cache operations that failed and fell through to the source")

	// Reload queue
	m.reloadRequests = counterVec("reload_requests_total", "Total number of accepted reload requests by reason", "reason")
	m.reloadCoalesced = counter("reload_requests_coalesced_total", "Reload requests dropped because one was already pending")
	m.reloadQueueSize = gauge("reload_queue_size", "Reload requests waiting for the worker")
	m.reloadLatency = histogram("reload_queue_latency_milliseconds", "Time a reload request waited before the worker picked it up", m.histogramBuckets)

	// Render
	m.renders = counterVec("renders_total", "Total number of render passes by kind", "kind")
	m.renderDuration = histogram("render_duration_milliseconds", "Render pass duration in milliseconds", m.histogramBuckets)
	m.filteredRecords = gauge("filtered_records", "Events matched by the last render pass")
	m.chartRenders = counterVec("chart_renders_total", "Total number of server-side chart images by chart", "chart")
	m.exports = counterVec("exports_total", "Total number of list exports by format", "format")

	// HTTP
	m.httpRequests = counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	// Errors
	m.errorRateByComponent = counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", "component", "error_type")

	// System
	m.systemMemoryUsage = gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Dataset Metrics Functions.

// UpdateDataset sets the snapshot size gauges.
func UpdateDataset(records, regions, shapes int) {
	globalManager.datasetRecords.Set(float64(records))
	globalManager.datasetRegions.Set(float64(regions))
	globalManager.datasetShapes.Set(float64(shapes))
}

// RecordRegionsInferred adds n events attributed by point-in-polygon.
func RecordRegionsInferred(n int) {
	if n > 0 {
		globalManager.regionsInferred.Add(float64(n))
	}
}

// Reload Metrics Functions.

// RecordReload records a successful reload and its duration.
func RecordReload(durationMs float64) {
	globalManager.reloads.Inc()
	globalManager.reloadDuration.Observe(durationMs)
	globalManager.snapshotLastUnix.Set(float64(time.Now().Unix()))
}

// RecordReloadError increments the failed reload counter.
func RecordReloadError(reason string) {
	globalManager.reloadErrors.WithLabelValues(reason).Inc()
}

// RecordReloadRequest counts a queued reload request.
func RecordReloadRequest(reason string) {
	globalManager.reloadRequests.WithLabelValues(reason).Inc()
}

// RecordReloadCoalesced counts a request folded into a pending one.
func RecordReloadCoalesced() {
	globalManager.reloadCoalesced.Inc()
}

// UpdateReloadQueueSize sets the number of pending reload requests.
func UpdateReloadQueueSize(size int) {
	globalManager.reloadQueueSize.Set(float64(size))
}

// RecordReloadQueueLatency observes how long a request waited in the queue.
func RecordReloadQueueLatency(latencyMs float64) {
	globalManager.reloadLatency.Observe(latencyMs)
}

// UpdateDataUnavailable flags whether the service is serving without data.
func UpdateDataUnavailable(unavailable bool) {
	v := 0.0
	if unavailable {
		v = 1
	}
	globalManager.dataUnavailable.Set(v)
}

// RecordSourceFetch records the latency of one source fetch.
func RecordSourceFetch(source string, latencyMs float64) {
	globalManager.sourceFetchDuration.WithLabelValues(source).Observe(latencyMs)
}

// RecordSourceFetchError increments the source fetch error counter.
func RecordSourceFetchError(source, errorType string) {
	globalManager.sourceFetchErrors.WithLabelValues(source, errorType).Inc()
}

// RecordCacheHit increments the source cache hit counter.
func RecordCacheHit() {
	globalManager.sourceCacheHits.Inc()
}

// RecordCacheMiss increments the source cache miss counter.
func RecordCacheMiss() {
	globalManager.sourceCacheMisses.Inc()
}

// RecordCacheError increments the source cache error counter.
func RecordCacheError() {
	globalManager.sourceCacheErrors.Inc()
}

// Render Metrics Functions.

// RecordRender records one render pass of the given kind.
func RecordRender(kind string, durationMs float64, matched int) {
	globalManager.renders.WithLabelValues(kind).Inc()
	globalManager.renderDuration.Observe(durationMs)
	globalManager.filteredRecords.Set(float64(matched))
}

// RecordChartRender increments the chart image counter.
func RecordChartRender(chart string) {
	globalManager.chartRenders.WithLabelValues(chart).Inc()
}

// RecordExport increments the export counter.
func RecordExport(format string) {
	globalManager.exports.WithLabelValues(format).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
