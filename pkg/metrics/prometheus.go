// Package metrics provides Prometheus metrics for the roadpulse alert service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the roadpulse service.
type Manager struct {
	namespace string
	subsystem string
	registry  prometheus.Registerer

	// Pipeline metrics - what happens to inbound hazard events.
	eventsReceived prometheus.Counter
	eventsAdmitted prometheus.Counter
	eventsRejected *prometheus.CounterVec

	// Alert lifecycle metrics.
	alertsRaised    prometheus.Counter
	alertsDismissed prometheus.Counter
	alertsExpired   prometheus.Counter
	alertsActive    prometheus.Gauge

	// Live channel metrics.
	channelConnected   prometheus.Gauge
	channelDisconnects prometheus.Counter

	// Location tracker metrics.
	locationSamples        prometheus.Counter
	locationFailures       prometheus.Counter
	locationSubmitFailures prometheus.Counter

	// Hazard list refresh metrics.
	refreshes       prometheus.Counter
	refreshFailures prometheus.Counter

	// Event queue metrics.
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter

	// Hazard store metrics.
	hazardsTracked prometheus.Gauge

	// HTTP performance metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "roadpulse",
		subsystem: "pipeline",
		registry:  prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}
	gaugeOpts := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}

	m.eventsReceived = prometheus.NewCounter(factory("events_received_total", "Hazard events received from the live channel"))
	m.eventsAdmitted = prometheus.NewCounter(factory("events_admitted_total", "Hazard events admitted by the geo-filter"))
	m.eventsRejected = prometheus.NewCounterVec(factory("events_rejected_total", "Hazard events rejected, by reason"), []string{"reason"})

	m.alertsRaised = prometheus.NewCounter(factory("alerts_raised_total", "Alert records enqueued"))
	m.alertsDismissed = prometheus.NewCounter(factory("alerts_dismissed_total", "Alert records dismissed by the user"))
	m.alertsExpired = prometheus.NewCounter(factory("alerts_expired_total", "Alert records removed by auto-expiry"))
	m.alertsActive = prometheus.NewGauge(gaugeOpts("alerts_active", "Alert records currently held"))

	m.channelConnected = prometheus.NewGauge(gaugeOpts("channel_connected", "Live channel connection state (1 connected, 0 disconnected)"))
	m.channelDisconnects = prometheus.NewCounter(factory("channel_disconnects_total", "Live channel disconnect events"))

	m.locationSamples = prometheus.NewCounter(factory("location_samples_total", "Successful position samples"))
	m.locationFailures = prometheus.NewCounter(factory("location_failures_total", "Failed position samples"))
	m.locationSubmitFailures = prometheus.NewCounter(factory("location_submit_failures_total", "Failed position submissions to the backend"))

	m.refreshes = prometheus.NewCounter(factory("refreshes_total", "Hazard list refresh attempts"))
	m.refreshFailures = prometheus.NewCounter(factory("refresh_failures_total", "Failed hazard list refreshes"))

	m.queueSize = prometheus.NewGauge(gaugeOpts("queue_size", "Current event queue depth"))
	m.queueCapacity = prometheus.NewGauge(gaugeOpts("queue_capacity", "Event queue capacity"))
	m.queueEnqueueErrors = prometheus.NewCounter(factory("queue_enqueue_errors_total", "Events dropped at the queue"))

	m.hazardsTracked = prometheus.NewGauge(gaugeOpts("hazards_tracked", "Hazard events held in the store"))

	m.httpRequests = prometheus.NewCounterVec(factory("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method"})

	m.registry.MustRegister(
		m.eventsReceived, m.eventsAdmitted, m.eventsRejected,
		m.alertsRaised, m.alertsDismissed, m.alertsExpired, m.alertsActive,
		m.channelConnected, m.channelDisconnects,
		m.locationSamples, m.locationFailures, m.locationSubmitFailures,
		m.refreshes, m.refreshFailures,
		m.queueSize, m.queueCapacity, m.queueEnqueueErrors,
		m.hazardsTracked,
		m.httpRequests, m.httpRequestDuration,
	)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Rejection reasons used with RecordEventRejected.
const (
	ReasonNoPosition = "no_position"
	ReasonOutOfRange = "out_of_range"
	ReasonDuplicate  = "duplicate"
	ReasonMalformed  = "malformed"
)

// Package-level recording helpers delegating to the global manager.

func RecordEventReceived() { globalManager.eventsReceived.Inc() }
func RecordEventAdmitted() { globalManager.eventsAdmitted.Inc() }
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

func RecordAlertRaised() { globalManager.alertsRaised.Inc() }
func RecordAlertDismissed() { globalManager.alertsDismissed.Inc() }
func RecordAlertExpired() { globalManager.alertsExpired.Inc() }
func UpdateAlertsActive(n int) {
	globalManager.alertsActive.Set(float64(n))
}

func UpdateChannelConnected(connected bool) {
	if connected {
		globalManager.channelConnected.Set(1)
		return
	}
	globalManager.channelConnected.Set(0)
}
func RecordChannelDisconnect() { globalManager.channelDisconnects.Inc() }

func RecordLocationSample() { globalManager.locationSamples.Inc() }
func RecordLocationFailure() { globalManager.locationFailures.Inc() }
func RecordLocationSubmitFailure() { globalManager.locationSubmitFailures.Inc() }

func RecordRefresh() { globalManager.refreshes.Inc() }
func RecordRefreshFailure() { globalManager.refreshFailures.Inc() }

func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

func UpdateHazardsTracked(n int) { globalManager.hazardsTracked.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}
