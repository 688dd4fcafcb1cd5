// Package middleware provides production-grade middleware for form
// event dispatch.
//
// This package includes:
//   - Prometheus metrics middleware
//   - OpenTelemetry tracing middleware
//   - Structured logging middleware
//
// Each constructor returns a form.Middleware that is installed on a
// form at construction time:
//
//	f := form.New(
//	    form.WithMiddleware(
//	        middleware.Logging(),
//	        middleware.Prometheus(middleware.WithNamespace("myapp")),
//	        middleware.OpenTelemetry(),
//	    ),
//	)
//
// Middleware sees every bind, change, blur, and submit event. For
// change and blur events it runs around the validation and store
// writes, so measured durations cover the real work.
//
// # Prometheus Metrics
//
// The Prometheus middleware collects metrics about form activity:
//   - fieldset_events_total: Total events processed by type and field
//   - fieldset_event_duration_seconds: Event processing duration histogram
//   - fieldset_form_errors: Validation errors currently recorded
//   - fieldset_active_sessions: Current number of live host sessions
//
// Expose them on an endpoint:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware opens a span per event, carrying the
// event type and field name. Configure the global tracer provider in
// main() before constructing forms:
//
//	otel.SetTracerProvider(tp)
//
// # Logging Middleware
//
// The logging middleware writes one structured log line per event via
// log/slog. Raw values are withheld unless explicitly enabled, since
// form input is user data.
package middleware
