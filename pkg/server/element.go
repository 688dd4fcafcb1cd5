package server

import "sync"

// remoteElement is a form.Element backed by the live socket. SetValue
// and Focus queue ops toward the thin client; Value reports the last
// raw value the client sent for the field.
type remoteElement struct {
	field   string
	session *Session

	mu   sync.Mutex
	last any
}

// Value returns the element's current native value: the most recent raw
// value reported by the client, or the last value the form wrote.
func (e *remoteElement) Value() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// SetValue overwrites the element's native value and queues a value op
// so the client input follows.
func (e *remoteElement) SetValue(value any) {
	e.mu.Lock()
	e.last = value
	e.mu.Unlock()

	e.session.queueOp(Op{Op: OpValue, Field: e.field, Value: value})
}

// Focus queues a focus op for the client input.
func (e *remoteElement) Focus() {
	e.session.queueOp(Op{Op: OpFocus, Field: e.field})
}

// setLast records the client-reported raw value without emitting an op.
func (e *remoteElement) setLast(value any) {
	e.mu.Lock()
	e.last = value
	e.mu.Unlock()
}
