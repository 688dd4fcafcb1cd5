package form

// EventType identifies the kind of field event flowing through a form's
// dispatch chain.
type EventType string

const (
	// EventBind fires once when a field's element handle is first
	// recorded. Re-binds of an already bound field do not fire it.
	EventBind EventType = "bind"

	// EventChange carries the raw value of a change event.
	EventChange EventType = "change"

	// EventBlur carries the raw value present when the field lost focus.
	EventBlur EventType = "blur"

	// EventSubmit fires when a submit handler built by HandleSubmit
	// runs, before the caller's callback is invoked.
	EventSubmit EventType = "submit"
)

// Event is the payload delivered to the form's dispatch chain.
// Value holds the raw event value for change and blur events and is nil
// for bind and submit events. Field is empty for submit events.
type Event struct {
	Type  EventType
	Field string
	Value any
}

// Handler consumes one field event.
type Handler func(Event)

// Middleware wraps a Handler with cross-cutting behavior such as
// logging, metrics, or tracing. Middleware installed via WithMiddleware
// sees every bind, change, blur, and submit event; for change and blur
// it runs around the validation and store writes.
type Middleware func(Handler) Handler

// SubmitEvent is the host-side event a submit handler receives. The
// form only needs to cancel the event's default action; everything else
// about the event stays with the host UI.
type SubmitEvent interface {
	PreventDefault()
}
