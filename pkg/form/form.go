package form

import (
	"fmt"
	"sync"
)

// Form tracks field values and validation errors for one mounted form.
// Each instance owns three stores with different observation contracts:
// the silent value store, the reactive error state, and the subscription
// registry that gates value-change notifications. All three live and die
// with the instance; there is no process-wide state.
type Form struct {
	id uint64

	// mu protects the maps below.
	mu       sync.RWMutex
	values   map[string]any
	errors   map[string]string
	watched  map[string]struct{}
	elements map[string]Element
	configs  map[string]*fieldConfig

	listeners listenerSet

	// emit is the dispatch chain: installed middleware wrapped around
	// apply. Built once in New.
	emit Handler
}

// Option configures a Form at construction time.
type Option func(*formOptions)

type formOptions struct {
	middleware []Middleware
}

// WithMiddleware installs middleware around the form's event dispatch.
// Middleware runs in the order given, outermost first.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *formOptions) {
		o.middleware = append(o.middleware, mw...)
	}
}

// New creates an empty form instance.
func New(opts ...Option) *Form {
	var o formOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	f := &Form{
		id:       nextID(),
		values:   make(map[string]any),
		errors:   make(map[string]string),
		watched:  make(map[string]struct{}),
		elements: make(map[string]Element),
		configs:  make(map[string]*fieldConfig),
	}

	h := Handler(f.apply)
	for i := len(o.middleware) - 1; i >= 0; i-- {
		h = o.middleware[i](h)
	}
	f.emit = h

	return f
}

// ID returns the unique identifier for this form instance.
func (f *Form) ID() uint64 {
	return f.id
}

// Register declares a field and returns the binding handle a host
// element attaches to. Calling Register again for the same name
// replaces the field's configuration but never its bound element.
func (f *Form) Register(name string, opts ...FieldOption) *Binding {
	var cfg *fieldConfig
	if len(opts) > 0 {
		cfg = newFieldConfig(opts)
	}

	f.mu.Lock()
	f.configs[name] = cfg
	f.mu.Unlock()

	return &Binding{
		ID:   fmt.Sprintf("f%d-%s", f.id, name),
		Name: name,
		form: f,
	}
}

// Subscribe adds l to the form's re-render subscribers. Listeners are
// marked dirty on every error write and on value changes of fields that
// are in the subscription registry. Duplicate listener IDs are ignored.
func (f *Form) Subscribe(l Listener) {
	f.listeners.subscribe(l)
}

// Unsubscribe removes l from the form's re-render subscribers.
func (f *Form) Unsubscribe(l Listener) {
	f.listeners.unsubscribe(l)
}

// GetValue returns the current value store entry for name, or nil if
// the field has never been set. As a side effect it adds name to the
// subscription registry: from now on value changes of this field wake
// the form's listeners.
func (f *Form) GetValue(name string) any {
	f.mu.Lock()
	f.watched[name] = struct{}{}
	v := f.values[name]
	f.mu.Unlock()
	return v
}

// GetValues returns a partial mapping containing only the requested
// names whose value is currently defined. Every requested name is added
// to the subscription registry, defined or not.
func (f *Form) GetValues(names ...string) Values {
	out := make(Values, len(names))

	f.mu.Lock()
	for _, name := range names {
		f.watched[name] = struct{}{}
		if v, ok := f.values[name]; ok {
			out[name] = v
		}
	}
	f.mu.Unlock()

	return out
}

// Watch is arity-polymorphic sugar over GetValue and GetValues: one
// name returns the scalar value, several names return the partial
// mapping, no names returns nil.
func (f *Form) Watch(names ...string) any {
	switch len(names) {
	case 0:
		return nil
	case 1:
		return f.GetValue(names[0])
	default:
		return f.GetValues(names...)
	}
}

// HandleSubmit wraps fn as a submit-event handler. The handler prevents
// the triggering event's default action and invokes fn with a snapshot
// of the full value store.
//
// No validation gate is applied: fn fires even while the error state is
// non-empty. Callers that want submit-time validation must check
// Errors() themselves.
func (f *Form) HandleSubmit(fn func(Values)) func(SubmitEvent) {
	return func(ev SubmitEvent) {
		if ev != nil {
			ev.PreventDefault()
		}
		f.emit(Event{Type: EventSubmit})
		if fn != nil {
			fn(f.snapshot())
		}
	}
}

// Errors returns a copy of the current error state keyed by field name.
// A field absent from the map is considered valid.
func (f *Form) Errors() map[string]string {
	f.mu.RLock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	f.mu.RUnlock()
	return out
}

// Error returns the current error message for name, or "" if the field
// is valid.
func (f *Form) Error(name string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.errors[name]
}

// HasError reports whether name currently has a validation error.
func (f *Form) HasError(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.errors[name]
	return ok
}

// Valid reports whether the error state is empty.
func (f *Form) Valid() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.errors) == 0
}

// snapshot copies the full value store.
func (f *Form) snapshot() Values {
	f.mu.RLock()
	out := make(Values, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	f.mu.RUnlock()
	return out
}

// apply is the terminal handler of the dispatch chain. Bind and submit
// events are notification-only by the time they reach it; change and
// blur events carry the actual mutation work.
func (f *Form) apply(ev Event) {
	switch ev.Type {
	case EventChange:
		f.applyChange(ev.Field, ev.Value)
	case EventBlur:
		f.applyBlur(ev.Field, ev.Value)
	}
}

// applyChange implements the change path: transform, validate with the
// change-time rules, store unconditionally, then notify through the
// subscription gate. The error-driven notification (inside setError)
// and the value-driven one are independent of each other.
func (f *Form) applyChange(name string, raw any) {
	f.mu.RLock()
	cfg := f.configs[name]
	f.mu.RUnlock()

	v := raw
	if cfg != nil && cfg.transform != nil {
		v = cfg.transform(raw)
	}

	if cfg != nil {
		if msg, violated := firstViolation(v, cfg.changeRules); violated {
			f.setError(name, msg)
		}
	}

	// The value is stored even when invalid.
	f.mu.Lock()
	f.values[name] = v
	_, tracked := f.watched[name]
	f.mu.Unlock()

	if tracked {
		f.listeners.notifyAll()
	}
}

// applyBlur implements the blur path. Blur never writes the value store
// and never consults the subscription registry.
func (f *Form) applyBlur(name string, raw any) {
	f.mu.RLock()
	cfg := f.configs[name]
	f.mu.RUnlock()

	// A field registered without options ignores blur.
	if cfg == nil {
		return
	}

	if msg, violated := firstViolation(raw, cfg.blurRules); violated {
		f.setError(name, msg)
	}
}

// setError records msg for name if it differs from the stored message.
// Only an actual write refocuses the element and wakes listeners, so an
// unchanged error never produces a second render signal. Error writes
// bypass the subscription gate.
func (f *Form) setError(name, msg string) {
	f.mu.Lock()
	cur, ok := f.errors[name]
	changed := !ok || cur != msg
	if changed {
		f.errors[name] = msg
	}
	el := f.elements[name]
	f.mu.Unlock()

	if !changed {
		return
	}
	if el != nil {
		el.Focus()
	}
	f.listeners.notifyAll()
}

// bindElement records el for name if the field has no element yet.
// Returns the handle the form holds and whether this call bound it.
func (f *Form) bindElement(name string, el Element) (Element, bool) {
	if el == nil {
		f.mu.RLock()
		existing := f.elements[name]
		f.mu.RUnlock()
		return existing, false
	}

	f.mu.Lock()
	if existing, ok := f.elements[name]; ok {
		f.mu.Unlock()
		return existing, false
	}
	f.elements[name] = el

	cfg := f.configs[name]
	var seed any
	var seeded bool
	if cfg != nil && cfg.hasInitial {
		// The only path by which the value store gains a value without
		// a change event.
		f.values[name] = cfg.initial
		seed = cfg.initial
		seeded = true
	}
	focus := cfg != nil && cfg.mountFocus
	f.mu.Unlock()

	if seeded {
		el.SetValue(seed)
	}
	if focus {
		el.Focus()
	}
	return el, true
}
