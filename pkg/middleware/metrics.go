package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/fieldset/pkg/form"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "fieldset").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "fieldset",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for form activity.
type metrics struct {
	eventsTotal      *prometheus.CounterVec
	eventDuration    *prometheus.HistogramVec
	formErrors       prometheus.Gauge
	submissionsTotal prometheus.Counter
	activeSessions   prometheus.Gauge
	wsErrors         *prometheus.CounterVec
	storeErrors      *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance.
// Created on first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of form events processed",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "field"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Form event processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),

		formErrors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "form_errors",
			Help:        "Number of validation errors currently recorded",
			ConstLabels: config.ConstLabels,
		}),

		submissionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "submissions_stored_total",
			Help:        "Total number of submissions written to a store",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active host sessions",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		storeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_errors_total",
			Help:        "Total submission store errors by backend",
			ConstLabels: config.ConstLabels,
		}, []string{"backend"}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for
// form events.
//
// Metrics collected:
//   - fieldset_events_total: Counter of events by type and field
//   - fieldset_event_duration_seconds: Histogram of event processing duration
//   - fieldset_form_errors: Gauge of recorded validation errors (via RecordFormErrors)
//   - fieldset_submissions_stored_total: Counter of stored submissions (via RecordSubmission)
//   - fieldset_active_sessions: Gauge of host sessions (via session hooks)
//   - fieldset_websocket_errors_total: Counter of WebSocket errors
//   - fieldset_store_errors_total: Counter of store write failures
//
// Example:
//
//	f := form.New(
//	    form.WithMiddleware(
//	        middleware.Prometheus(
//	            middleware.WithNamespace("myapp"),
//	        ),
//	    ),
//	)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) form.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(next form.Handler) form.Handler {
		return func(ev form.Event) {
			field := ev.Field
			if field == "" {
				field = "-"
			}

			start := time.Now()
			next(ev)
			duration := time.Since(start).Seconds()

			m.eventDuration.WithLabelValues(string(ev.Type)).Observe(duration)
			m.eventsTotal.WithLabelValues(string(ev.Type), field).Inc()
		}
	}
}

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// RecordFormErrors sets the validation error gauge. Call this after an
// event settles, typically with len(form.Errors()).
func RecordFormErrors(count int) {
	if globalMetrics != nil {
		globalMetrics.formErrors.Set(float64(count))
	}
}

// RecordSubmission records a submission written to a store.
func RecordSubmission() {
	if globalMetrics != nil {
		globalMetrics.submissionsTotal.Inc()
	}
}

// RecordSessionCreate records a new host session.
func RecordSessionCreate() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Inc()
	}
}

// RecordSessionDestroy records a host session ending.
func RecordSessionDestroy() {
	if globalMetrics != nil {
		globalMetrics.activeSessions.Dec()
	}
}

// RecordWebSocketError records a WebSocket error.
func RecordWebSocketError(errorType string) {
	if globalMetrics != nil {
		globalMetrics.wsErrors.WithLabelValues(errorType).Inc()
	}
}

// RecordStoreError records a submission store failure.
func RecordStoreError(backend string) {
	if globalMetrics != nil {
		globalMetrics.storeErrors.WithLabelValues(backend).Inc()
	}
}

// =============================================================================
// Metrics Collector
// =============================================================================

// Collector exposes the metrics for use in custom registrations.
// This allows collecting form metrics alongside other application metrics.
type Collector struct {
	eventsTotal      *prometheus.CounterVec
	eventDuration    *prometheus.HistogramVec
	formErrors       prometheus.Gauge
	submissionsTotal prometheus.Counter
	activeSessions   prometheus.Gauge
	wsErrors         *prometheus.CounterVec
	storeErrors      *prometheus.CounterVec
}

// GetMetrics returns the global metrics collector.
// Returns nil if Prometheus middleware has not been initialized.
func GetMetrics() *Collector {
	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		eventsTotal:      globalMetrics.eventsTotal,
		eventDuration:    globalMetrics.eventDuration,
		formErrors:       globalMetrics.formErrors,
		submissionsTotal: globalMetrics.submissionsTotal,
		activeSessions:   globalMetrics.activeSessions,
		wsErrors:         globalMetrics.wsErrors,
		storeErrors:      globalMetrics.storeErrors,
	}
}
