package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for common session and server error conditions.
var (
	// ErrSessionClosed is returned when an operation is attempted on a closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrSessionNotFound is returned when a session ID does not exist.
	ErrSessionNotFound = errors.New("server: session not found")

	// ErrEventQueueFull is returned when the event queue is full and a message is dropped.
	ErrEventQueueFull = errors.New("server: event queue full")

	// ErrMaxSessionsReached is returned when the maximum number of sessions is reached.
	ErrMaxSessionsReached = errors.New("server: max sessions reached")

	// ErrNilDefinition is returned when the server is built without a form definition.
	ErrNilDefinition = errors.New("server: nil definition")

	// ErrUnknownField is returned when a client message names a field the
	// form never registered.
	ErrUnknownField = errors.New("server: unknown field")

	// ErrUnknownMessageType is returned when a client message carries a
	// type the protocol does not define.
	ErrUnknownMessageType = errors.New("server: unknown message type")

	// ErrNoConnection is returned when attempting to send on a nil connection.
	ErrNoConnection = errors.New("server: no connection")
)

// MessageError wraps an error with the client message that provoked it.
type MessageError struct {
	Type  string // Message type as sent by the client
	Field string // Field the message addressed, if any
	Err   error  // Underlying error
}

// Error returns the error message with message context.
func (e *MessageError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("server: message %q: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("server: message %q for field %q: %v", e.Type, e.Field, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *MessageError) Unwrap() error {
	return e.Err
}

// NewMessageError creates a new MessageError.
func NewMessageError(msgType, field string, err error) *MessageError {
	return &MessageError{
		Type:  msgType,
		Field: field,
		Err:   err,
	}
}
