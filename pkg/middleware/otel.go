package middleware

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/fieldset/pkg/form"
)

// Default tracer name for form instrumentation.
const defaultTracerName = "fieldset"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "fieldset").
	TracerName string

	// BaseContext is the parent context for event spans. Form events
	// carry no context of their own, so spans are parented here. Use
	// this to nest event spans under a session or request span.
	// If nil, context.Background() is used.
	BaseContext context.Context

	// IncludeValue includes the event value in traces.
	// Form input is user data - disabled by default.
	IncludeValue bool

	// Filter determines which events to trace.
	// Return true to trace the event, false to skip.
	// If nil, all events are traced.
	Filter func(ev form.Event) bool

	// AttributeExtractor extracts custom attributes from the event.
	// Called for each traced event.
	AttributeExtractor func(ev form.Event) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithBaseContext sets the parent context for event spans.
func WithBaseContext(ctx context.Context) OTelOption {
	return func(c *OTelConfig) {
		c.BaseContext = ctx
	}
}

// WithIncludeValue enables including event values in traces.
func WithIncludeValue(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeValue = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev form.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev form.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:   defaultTracerName,
		BaseContext:  nil,
		IncludeValue: false,
		Filter:       nil,
	}
}

// OpenTelemetry creates middleware that traces every form event.
//
// The middleware:
//   - Creates a span for each event with its type and field name
//   - Parents spans on the configured base context
//   - Sets span status to Ok when the event handler returns
//
// Example:
//
//	f := form.New(
//	    form.WithMiddleware(
//	        middleware.OpenTelemetry(
//	            middleware.WithTracerName("my-app"),
//	        ),
//	    ),
//	)
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before building forms:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) form.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.BaseContext == nil {
		config.BaseContext = context.Background()
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return func(next form.Handler) form.Handler {
		return func(ev form.Event) {
			// Apply filter if configured
			if config.Filter != nil && !config.Filter(ev) {
				next(ev)
				return
			}

			// Build span attributes
			attrs := []attribute.KeyValue{
				attribute.String("fieldset.event", string(ev.Type)),
			}
			if ev.Field != "" {
				attrs = append(attrs, attribute.String("fieldset.field", ev.Field))
			}
			if config.IncludeValue {
				attrs = append(attrs, attribute.String("fieldset.value", fmt.Sprintf("%v", ev.Value)))
			}

			// Add custom attributes
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(ev)...)
			}

			// Start span
			_, span := config.tracer.Start(
				config.BaseContext,
				fmt.Sprintf("form.%s", ev.Type),
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
				trace.WithTimestamp(time.Now()),
			)
			defer span.End()

			// Execute the handler
			next(ev)

			// Event handlers do not return errors; a completed handler
			// means the event was applied.
			span.SetStatus(codes.Ok, "")
		}
	}
}
