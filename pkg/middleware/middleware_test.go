package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/fieldset/pkg/form"
)

// =============================================================================
// Test Helpers
// =============================================================================

// recorder is a terminal handler that records the events it receives.
type recorder struct {
	events []form.Event
}

func (r *recorder) handle(ev form.Event) {
	r.events = append(r.events, ev)
}

// =============================================================================
// OpenTelemetry Tests
// =============================================================================

func TestOpenTelemetryConfig(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		config := defaultOTelConfig()
		if config.TracerName != defaultTracerName {
			t.Errorf("TracerName = %q, want %q", config.TracerName, defaultTracerName)
		}
		if config.IncludeValue {
			t.Error("IncludeValue should be false by default")
		}
		if config.BaseContext != nil {
			t.Error("BaseContext should be nil by default")
		}
	})

	t.Run("with options", func(t *testing.T) {
		config := defaultOTelConfig()
		WithTracerName("my-app")(&config)
		WithIncludeValue(true)(&config)
		WithBaseContext(context.Background())(&config)

		if config.TracerName != "my-app" {
			t.Errorf("TracerName = %q, want %q", config.TracerName, "my-app")
		}
		if !config.IncludeValue {
			t.Error("IncludeValue should be true")
		}
		if config.BaseContext == nil {
			t.Error("BaseContext should be set")
		}
	})

	t.Run("with filter", func(t *testing.T) {
		filter := func(ev form.Event) bool {
			return ev.Type != form.EventChange
		}
		config := defaultOTelConfig()
		WithEventFilter(filter)(&config)

		if config.Filter == nil {
			t.Error("Filter should be set")
		}
	})
}

// =============================================================================
// Prometheus Metrics Tests
// =============================================================================

func TestMetricsConfig(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		config := defaultMetricsConfig()
		if config.Namespace != "fieldset" {
			t.Errorf("Namespace = %q, want %q", config.Namespace, "fieldset")
		}
		if config.Subsystem != "" {
			t.Errorf("Subsystem = %q, want empty", config.Subsystem)
		}
		if config.Registry != prometheus.DefaultRegisterer {
			t.Error("Registry should be DefaultRegisterer")
		}
	})

	t.Run("with options", func(t *testing.T) {
		config := defaultMetricsConfig()
		WithNamespace("myapp")(&config)
		WithSubsystem("signup")(&config)
		WithBuckets([]float64{0.1, 0.5, 1.0})(&config)

		if config.Namespace != "myapp" {
			t.Errorf("Namespace = %q, want %q", config.Namespace, "myapp")
		}
		if config.Subsystem != "signup" {
			t.Errorf("Subsystem = %q, want %q", config.Subsystem, "signup")
		}
		if len(config.Buckets) != 3 {
			t.Errorf("len(Buckets) = %d, want 3", len(config.Buckets))
		}
	})
}

func TestMetricsRecordFunctions(t *testing.T) {
	// These functions should not panic even when globalMetrics is nil
	t.Run("record functions handle nil metrics", func(t *testing.T) {
		// Reset global metrics
		globalMetricsMu.Lock()
		globalMetrics = nil
		globalMetricsMu.Unlock()

		// These should not panic
		RecordFormErrors(3)
		RecordSubmission()
		RecordSessionCreate()
		RecordSessionDestroy()
		RecordWebSocketError("test")
		RecordStoreError("redis")
	})
}

func TestGetMetrics(t *testing.T) {
	// Reset global metrics
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()

	// Should return nil when not initialized
	if GetMetrics() != nil {
		t.Error("GetMetrics() should return nil when not initialized")
	}
}

// =============================================================================
// Logging Tests
// =============================================================================

func TestLogConfig(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		config := defaultLogConfig()
		if config.Logger != nil {
			t.Error("Logger should be nil by default")
		}
		if config.Level != slog.LevelDebug {
			t.Errorf("Level = %v, want %v", config.Level, slog.LevelDebug)
		}
		if config.IncludeValues {
			t.Error("IncludeValues should be false by default")
		}
	})

	t.Run("with options", func(t *testing.T) {
		logger := slog.Default()
		config := defaultLogConfig()
		WithLogger(logger)(&config)
		WithLogLevel(slog.LevelInfo)(&config)
		WithLogValues(true)(&config)

		if config.Logger != logger {
			t.Error("Logger should be set")
		}
		if config.Level != slog.LevelInfo {
			t.Errorf("Level = %v, want %v", config.Level, slog.LevelInfo)
		}
		if !config.IncludeValues {
			t.Error("IncludeValues should be true")
		}
	})
}

func TestLoggingMiddleware_LogsEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rec := &recorder{}
	h := Logging(WithLogger(logger))(rec.handle)

	h(form.Event{Type: form.EventChange, Field: "email", Value: "a@b.co"})

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event to reach the handler, got %d", len(rec.events))
	}

	out := buf.String()
	if !strings.Contains(out, "form event") {
		t.Errorf("log output missing message, got %q", out)
	}
	if !strings.Contains(out, "event=change") {
		t.Errorf("log output missing event type, got %q", out)
	}
	if !strings.Contains(out, "field=email") {
		t.Errorf("log output missing field name, got %q", out)
	}
	if strings.Contains(out, "a@b.co") {
		t.Errorf("log output should not contain the raw value by default, got %q", out)
	}
}

func TestLoggingMiddleware_IncludesValuesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rec := &recorder{}
	h := Logging(WithLogger(logger), WithLogValues(true))(rec.handle)

	h(form.Event{Type: form.EventChange, Field: "email", Value: "a@b.co"})

	if !strings.Contains(buf.String(), "a@b.co") {
		t.Errorf("log output should contain the raw value, got %q", buf.String())
	}
}

func TestLoggingMiddleware_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	// Handler at Info drops the default Debug records.
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	rec := &recorder{}
	h := Logging(WithLogger(logger))(rec.handle)

	h(form.Event{Type: form.EventBlur, Field: "email"})

	if len(rec.events) != 1 {
		t.Fatalf("expected event to reach the handler even when unlogged, got %d", len(rec.events))
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output at info level, got %q", buf.String())
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

func TestChain_OutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) form.Middleware {
		return func(next form.Handler) form.Handler {
			return func(ev form.Event) {
				order = append(order, name)
				next(ev)
			}
		}
	}

	rec := &recorder{}
	h := Chain(tag("outer"), tag("inner"))(rec.handle)
	h(form.Event{Type: form.EventChange, Field: "x"})

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("expected [outer inner], got %v", order)
	}
	if len(rec.events) != 1 {
		t.Errorf("expected 1 event to reach the handler, got %d", len(rec.events))
	}
}

func TestChain_Empty(t *testing.T) {
	rec := &recorder{}
	h := Chain()(rec.handle)
	h(form.Event{Type: form.EventBlur, Field: "x"})

	if len(rec.events) != 1 {
		t.Errorf("expected empty chain to pass events through, got %d", len(rec.events))
	}
}

func TestMiddlewareChain(t *testing.T) {
	// All three middlewares compose around a single terminal handler.
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rec := &recorder{}
	h := rec.handle
	for _, mw := range []form.Middleware{
		Prometheus(WithRegistry(reg)),
		OpenTelemetry(),
		Logging(WithLogger(logger)),
	} {
		h = mw(h)
	}

	h(form.Event{Type: form.EventChange, Field: "name", Value: "v"})
	h(form.Event{Type: form.EventSubmit})

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events to reach the handler, got %d", len(rec.events))
	}
	if rec.events[0].Type != form.EventChange || rec.events[1].Type != form.EventSubmit {
		t.Errorf("events arrived out of order: %v, %v", rec.events[0].Type, rec.events[1].Type)
	}
	if buf.Len() == 0 {
		t.Error("expected log output from the chain")
	}
}
