package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g. Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")

	// ErrNilDefinition is returned when the runner is built without a
	// definition.
	ErrNilDefinition = errors.New("prompt: nil definition")
)
