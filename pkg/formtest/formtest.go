package formtest

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vango-dev/fieldset/pkg/form"
)

// listenerIDCounter hands out unique IDs for render counters.
var listenerIDCounter uint64

// MockElement is a form.Element that records every call the form makes
// against it. Safe for concurrent use.
type MockElement struct {
	mu         sync.Mutex
	value      any
	setCalls   int
	focusCalls int
}

// NewMockElement creates an unbound mock element.
func NewMockElement() *MockElement {
	return &MockElement{}
}

// Value returns the element's current native value.
func (e *MockElement) Value() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// SetValue overwrites the element's native value and counts the call.
func (e *MockElement) SetValue(v any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = v
	e.setCalls++
}

// Focus counts the focus call.
func (e *MockElement) Focus() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focusCalls++
}

// SetCalls returns how many times the form wrote the element's value.
func (e *MockElement) SetCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setCalls
}

// FocusCalls returns how many times the form focused the element.
func (e *MockElement) FocusCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focusCalls
}

// RenderCounter is a form.Listener that counts MarkDirty signals.
type RenderCounter struct {
	id    uint64
	mu    sync.Mutex
	count int
}

// NewRenderCounter creates a listener with a fresh unique ID.
func NewRenderCounter() *RenderCounter {
	return &RenderCounter{id: atomic.AddUint64(&listenerIDCounter, 1)}
}

// MarkDirty counts one render signal.
func (r *RenderCounter) MarkDirty() {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
}

// ID returns the listener's unique identifier.
func (r *RenderCounter) ID() uint64 {
	return r.id
}

// Count returns how many render signals have arrived.
func (r *RenderCounter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset zeroes the counter.
func (r *RenderCounter) Reset() {
	r.mu.Lock()
	r.count = 0
	r.mu.Unlock()
}

// Fixture is a form wired for testing: every declared field is
// registered and bound to a MockElement, and Renders counts the render
// signals the form emits.
type Fixture struct {
	Form    *form.Form
	Renders *RenderCounter

	bindings map[string]*form.Binding
	elements map[string]*MockElement
}

// Binding returns the binding handle for a declared field, or nil if
// the field was not declared on the builder.
func (x *Fixture) Binding(name string) *form.Binding {
	return x.bindings[name]
}

// Element returns the mock element bound to a declared field, or nil if
// the field was not declared on the builder.
func (x *Fixture) Element(name string) *MockElement {
	return x.elements[name]
}

// Change dispatches a change event for a declared field.
func (x *Fixture) Change(name string, value any) {
	if b := x.bindings[name]; b != nil {
		b.OnChange(value)
	}
}

// Blur dispatches a blur event for a declared field.
func (x *Fixture) Blur(name string, value any) {
	if b := x.bindings[name]; b != nil {
		b.OnBlur(value)
	}
}

// Submit runs a submit handler and returns the value snapshot it
// delivered.
func (x *Fixture) Submit() form.Values {
	return Snapshot(x.Form)
}

// FixtureBuilder allows fluent construction of test fixtures.
type FixtureBuilder struct {
	opts   []form.Option
	fields []fieldSpec
}

type fieldSpec struct {
	name string
	opts []form.FieldOption
}

// NewFixture creates a new fixture builder.
//
// Example:
//
//	fx := formtest.NewFixture().
//	    WithField("email", form.Required("required")).
//	    Build()
func NewFixture() *FixtureBuilder {
	return &FixtureBuilder{}
}

// WithMiddleware installs middleware on the form under test.
func (b *FixtureBuilder) WithMiddleware(mw ...form.Middleware) *FixtureBuilder {
	b.opts = append(b.opts, form.WithMiddleware(mw...))
	return b
}

// WithField declares a field to register and bind to a mock element.
func (b *FixtureBuilder) WithField(name string, opts ...form.FieldOption) *FixtureBuilder {
	b.fields = append(b.fields, fieldSpec{name: name, opts: opts})
	return b
}

// Build assembles the fixture: the form is constructed, each declared
// field is registered and bound, and the render counter is subscribed.
func (b *FixtureBuilder) Build() *Fixture {
	f := form.New(b.opts...)
	fx := &Fixture{
		Form:     f,
		Renders:  NewRenderCounter(),
		bindings: make(map[string]*form.Binding, len(b.fields)),
		elements: make(map[string]*MockElement, len(b.fields)),
	}
	for _, spec := range b.fields {
		binding := f.Register(spec.name, spec.opts...)
		el := NewMockElement()
		binding.Ref(el)
		fx.bindings[spec.name] = binding
		fx.elements[spec.name] = el
	}
	f.Subscribe(fx.Renders)
	// Binds during setup are not the behavior under test.
	fx.Renders.Reset()
	return fx
}

// Snapshot returns the form's current values without touching the
// subscription registry. It reads through a submit handler, so any
// installed middleware observes one submit event.
func Snapshot(f *form.Form) form.Values {
	var got form.Values
	f.HandleSubmit(func(v form.Values) { got = v })(nil)
	return got
}

// ExpectValue asserts the value store holds want for name. Reads via
// Snapshot, so the field is not subscribed as a side effect.
//
// Example:
//
//	formtest.ExpectValue(t, fx.Form, "age", 42)
func ExpectValue(t *testing.T, f *form.Form, name string, want any) {
	t.Helper()
	got, ok := Snapshot(f)[name]
	if !ok {
		t.Errorf("expected field %q to hold %v, but it has no value", name, want)
		return
	}
	if got != want {
		t.Errorf("field %q = %v (%T), want %v (%T)", name, got, got, want, want)
	}
}

// ExpectNoValue asserts the value store has no entry for name.
func ExpectNoValue(t *testing.T, f *form.Form, name string) {
	t.Helper()
	if got, ok := Snapshot(f)[name]; ok {
		t.Errorf("expected field %q to have no value, got %v", name, got)
	}
}

// ExpectError asserts the error state holds want for name.
//
// Example:
//
//	formtest.ExpectError(t, fx.Form, "email", "email is required")
func ExpectError(t *testing.T, f *form.Form, name, want string) {
	t.Helper()
	if !f.HasError(name) {
		t.Errorf("expected field %q to have error %q, but it is valid", name, want)
		return
	}
	if got := f.Error(name); got != want {
		t.Errorf("field %q error = %q, want %q", name, got, want)
	}
}

// ExpectNoError asserts name is absent from the error state.
func ExpectNoError(t *testing.T, f *form.Form, name string) {
	t.Helper()
	if f.HasError(name) {
		t.Errorf("expected field %q to be valid, got error %q", name, f.Error(name))
	}
}

// ExpectRenders asserts the counter has seen exactly want signals.
//
// Example:
//
//	formtest.ExpectRenders(t, fx.Renders, 1)
func ExpectRenders(t *testing.T, rc *RenderCounter, want int) {
	t.Helper()
	if got := rc.Count(); got != want {
		t.Errorf("render count = %d, want %d", got, want)
	}
}

// ExpectFocused asserts the element received exactly want focus calls.
func ExpectFocused(t *testing.T, el *MockElement, want int) {
	t.Helper()
	if got := el.FocusCalls(); got != want {
		t.Errorf("focus count = %d, want %d", got, want)
	}
}
