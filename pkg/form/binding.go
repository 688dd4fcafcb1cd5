package form

// Binding is the per-field handle returned by Register. A host UI
// element participates in the form by attaching to one: Ref records the
// element handle, OnChange and OnBlur feed the element's events into
// the form.
type Binding struct {
	// ID is a DOM-safe identifier for the bound element, unique across
	// concurrently live form instances.
	ID string

	// Name is the field name the binding was registered under.
	Name string

	form *Form
}

// Ref binds el as the field's element handle and returns the handle the
// form actually holds. The first bind wins: if the field already has an
// element recorded, el is ignored and the recorded handle is returned,
// even when el is a different instance. On a first bind the field's
// initial value (if configured) is written onto the element and into
// the value store, and the element is focused if FocusOnMount was set.
//
// A nil el never binds; it returns whatever handle is recorded.
func (b *Binding) Ref(el Element) Element {
	bound, first := b.form.bindElement(b.Name, el)
	if first {
		b.form.emit(Event{Type: EventBind, Field: b.Name})
	}
	return bound
}

// OnChange feeds a change event's raw value into the form. The value is
// transformed by SetValueAs when configured, checked against the
// change-time rules (maxLength, max, pattern, first violation wins),
// and stored regardless of the validation outcome. A new error message
// refocuses the element and wakes all listeners; a plain value change
// wakes listeners only if the field is in the subscription registry.
func (b *Binding) OnChange(value any) {
	b.form.emit(Event{Type: EventChange, Field: b.Name, Value: value})
}

// OnBlur checks the raw value present at blur against the blur-time
// rules (required, minLength, first violation wins). Blur never writes
// the value store; its only observable effect is a possible error
// write, which refocuses the element and wakes all listeners. A field
// registered without options ignores blur entirely.
func (b *Binding) OnBlur(value any) {
	b.form.emit(Event{Type: EventBlur, Field: b.Name, Value: value})
}
