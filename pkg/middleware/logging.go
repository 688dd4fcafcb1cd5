package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/fieldset/pkg/form"
)

// LogConfig configures the logging middleware.
type LogConfig struct {
	// Logger is the logger to use (default: slog.Default()).
	Logger *slog.Logger

	// Level is the level events are logged at (default: slog.LevelDebug).
	// Change events can fire per keystroke, so the default keeps them
	// out of production logs.
	Level slog.Level

	// IncludeValues includes raw event values in log records.
	// Form input is user data - disabled by default.
	IncludeValues bool
}

// LogOption configures the logging middleware.
type LogOption func(*LogConfig)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LogOption {
	return func(c *LogConfig) {
		c.Logger = logger
	}
}

// WithLogLevel sets the level events are logged at.
func WithLogLevel(level slog.Level) LogOption {
	return func(c *LogConfig) {
		c.Level = level
	}
}

// WithLogValues enables including raw event values in log records.
func WithLogValues(include bool) LogOption {
	return func(c *LogConfig) {
		c.IncludeValues = include
	}
}

// defaultLogConfig returns the default logging configuration.
func defaultLogConfig() LogConfig {
	return LogConfig{
		Logger:        nil,
		Level:         slog.LevelDebug,
		IncludeValues: false,
	}
}

// Logging creates middleware that logs every form event.
//
// Each event produces one record carrying the event type, the field
// name, and the handler duration. Raw values are withheld unless
// WithLogValues(true) is set.
//
// Example:
//
//	f := form.New(
//	    form.WithMiddleware(
//	        middleware.Logging(
//	            middleware.WithLogger(slog.Default().With("component", "form")),
//	        ),
//	    ),
//	)
func Logging(opts ...LogOption) form.Middleware {
	config := defaultLogConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return func(next form.Handler) form.Handler {
		return func(ev form.Event) {
			start := time.Now()
			next(ev)
			duration := time.Since(start)

			args := []any{
				"event", string(ev.Type),
				"field", ev.Field,
				"duration", duration,
			}
			if config.IncludeValues {
				args = append(args, "value", ev.Value)
			}
			config.Logger.Log(context.Background(), config.Level, "form event", args...)
		}
	}
}
