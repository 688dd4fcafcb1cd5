package form

// Element is the handle a registered field binds to. It is the form's
// window onto one host input: the form seeds the input's native value
// through it and pulls input focus back when validation fails.
//
// Implementations come from the host side (a DOM bridge, a terminal
// prompt, a test fake); the form never constructs elements itself, and
// an element is owned by at most one field for the field's lifetime.
type Element interface {
	// Value returns the element's current native value.
	Value() any

	// SetValue overwrites the element's native value.
	SetValue(value any)

	// Focus gives the element input focus.
	Focus()
}
