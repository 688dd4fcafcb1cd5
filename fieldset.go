// Package fieldset provides the public API for the fieldset form engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/fieldset"
//
// Usage:
//
//	f := fieldset.New()
//	email := f.Register("email",
//		fieldset.Required("Email is required"),
//		fieldset.Pattern(`^\S+@\S+$`, "Enter a valid email"),
//	)
//	email.OnChange("user@example.com")
//	submit := f.HandleSubmit(func(values fieldset.Values) {
//		// persist values
//	})
package fieldset

import (
	"github.com/vango-dev/fieldset/pkg/form"
	"github.com/vango-dev/fieldset/pkg/middleware"
)

// =============================================================================
// Form (re-export from pkg/form)
// =============================================================================

// Form owns one form's values, errors, bound elements, and render
// subscriptions.
type Form = form.Form

// New creates an empty form.
//
// Example:
//
//	f := fieldset.New(fieldset.WithMiddleware(fieldset.Logging()))
//	name := f.Register("name", fieldset.Required("Name is required"))
func New(opts ...Option) *Form {
	return form.New(opts...)
}

// Option configures a form at construction time.
type Option = form.Option

// WithMiddleware installs event middleware, outermost first.
var WithMiddleware = form.WithMiddleware

// Binding is the handle Register returns: stable ID and name plus the
// Ref/OnChange/OnBlur hooks the host UI wires to its element.
type Binding = form.Binding

// Element is the host-side handle for one rendered field.
type Element = form.Element

// Listener receives render notifications.
type Listener = form.Listener

// Values is a point-in-time snapshot of the form's value store.
type Values = form.Values

// SubmitEvent is the host-side event a submit handler receives.
type SubmitEvent = form.SubmitEvent

// =============================================================================
// Events and middleware plumbing (re-export from pkg/form)
// =============================================================================

// Event is the payload delivered to the form's dispatch chain.
type Event = form.Event

// EventType identifies the kind of field event.
type EventType = form.EventType

// Event types
const (
	EventBind   = form.EventBind
	EventChange = form.EventChange
	EventBlur   = form.EventBlur
	EventSubmit = form.EventSubmit
)

// Handler consumes one field event.
type Handler = form.Handler

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware = form.Middleware

// Rule checks one value and reports a violation message.
type Rule = form.Rule

// RuleFunc adapts a function to the Rule interface.
type RuleFunc = form.RuleFunc

// =============================================================================
// Field options (re-export from pkg/form)
// =============================================================================

// FieldOption configures one field at Register time.
type FieldOption = form.FieldOption

// InitialValue seeds the field's stored value when its element first
// binds.
func InitialValue(v any) FieldOption { return form.InitialValue(v) }

// FocusOnMount focuses the field's element when it first binds.
func FocusOnMount() FieldOption { return form.FocusOnMount() }

// SetValueAs transforms the raw event value before rules and storage.
func SetValueAs(fn func(any) any) FieldOption { return form.SetValueAs(fn) }

// Required rejects empty values. Checked on blur.
func Required(message string) FieldOption { return form.Required(message) }

// MinLength sets a minimum length in characters. Checked on blur.
func MinLength(n int, message string) FieldOption { return form.MinLength(n, message) }

// MaxLength sets a maximum length in characters. Checked on change.
func MaxLength(n int, message string) FieldOption { return form.MaxLength(n, message) }

// Min sets a lower numeric bound. Recorded but not evaluated by either
// event path.
func Min(n any, message string) FieldOption { return form.Min(n, message) }

// Max sets an upper numeric bound. Checked on change.
func Max(n any, message string) FieldOption { return form.Max(n, message) }

// Pattern requires the value to match a regular expression. Checked on
// change.
func Pattern(expr string, message string) FieldOption { return form.Pattern(expr, message) }

// =============================================================================
// Middleware (re-export from pkg/middleware)
// =============================================================================

// Chain composes middlewares into one, outermost first.
var Chain = middleware.Chain

// Logging logs every form event through slog.
//
// Example:
//
//	f := fieldset.New(fieldset.WithMiddleware(
//		fieldset.Logging(fieldset.WithLogger(logger)),
//	))
func Logging(opts ...LogOption) Middleware { return middleware.Logging(opts...) }

// Prometheus records event counts, durations, and error gauges.
func Prometheus(opts ...MetricsOption) Middleware { return middleware.Prometheus(opts...) }

// OpenTelemetry traces form events.
func OpenTelemetry(opts ...OTelOption) Middleware { return middleware.OpenTelemetry(opts...) }

// Middleware option types
type LogOption = middleware.LogOption
type MetricsOption = middleware.MetricsOption
type OTelOption = middleware.OTelOption

// Logging options
var (
	WithLogger    = middleware.WithLogger
	WithLogLevel  = middleware.WithLogLevel
	WithLogValues = middleware.WithLogValues
)

// Prometheus options
var (
	WithNamespace   = middleware.WithNamespace
	WithSubsystem   = middleware.WithSubsystem
	WithConstLabels = middleware.WithConstLabels
	WithBuckets     = middleware.WithBuckets
	WithRegistry    = middleware.WithRegistry
)

// OpenTelemetry options
var (
	WithTracerName         = middleware.WithTracerName
	WithBaseContext        = middleware.WithBaseContext
	WithIncludeValue       = middleware.WithIncludeValue
	WithEventFilter        = middleware.WithEventFilter
	WithAttributeExtractor = middleware.WithAttributeExtractor
)
