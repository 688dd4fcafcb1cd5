package server

// OpType identifies a server-to-client instruction.
type OpType string

const (
	// OpHello announces the session after the socket opens. It carries
	// the session ID and the form name.
	OpHello OpType = "hello"

	// OpErrors replaces the client's error display with a full snapshot
	// of the form's error state.
	OpErrors OpType = "errors"

	// OpValue writes a value into a field's input element.
	OpValue OpType = "value"

	// OpFocus moves input focus to a field's element.
	OpFocus OpType = "focus"

	// OpSubmitted acknowledges a stored submission.
	OpSubmitted OpType = "submitted"

	// OpReload tells the page to reload itself. Sent when the form
	// definition changes in dev mode.
	OpReload OpType = "reload"
)

// Op is one instruction in a frame sent to the thin client.
// Only the fields relevant to the op type are populated.
type Op struct {
	Op      OpType            `json:"op"`
	Field   string            `json:"field,omitempty"`
	Value   any               `json:"value,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Session string            `json:"session,omitempty"`
	Form    string            `json:"form,omitempty"`
	ID      string            `json:"id,omitempty"`
}

// Frame is one server-to-client WebSocket message: a sequence number
// and the ops to apply in order.
type Frame struct {
	Seq uint64 `json:"seq"`
	Ops []Op   `json:"ops"`
}

// Client message types.
const (
	// MessageChange carries the current value of an input after an edit.
	MessageChange = "change"

	// MessageBlur carries the value present when an input lost focus.
	MessageBlur = "blur"

	// MessageSubmit requests a form submission.
	MessageSubmit = "submit"
)

// ClientMessage is one client-to-server WebSocket message.
type ClientMessage struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value any    `json:"value,omitempty"`
}
