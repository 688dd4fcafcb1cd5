package formdef

import (
	"errors"
	"fmt"
)

// Sentinel errors for definition loading and binding.
var (
	// ErrEmptyDocument is returned when a definition document has no content.
	ErrEmptyDocument = errors.New("formdef: empty document")

	// ErrDuplicateField is returned when two fields share a name.
	ErrDuplicateField = errors.New("formdef: duplicate field name")

	// ErrBadPattern is returned when a pattern constraint does not compile.
	ErrBadPattern = errors.New("formdef: pattern does not compile")

	// ErrBoundsInverted is returned when a min exceeds its matching max.
	ErrBoundsInverted = errors.New("formdef: constraint bounds inverted")

	// ErrBadConstraint is returned when a constraint value has an unusable type.
	ErrBadConstraint = errors.New("formdef: constraint value has wrong type")

	// ErrNilForm is returned when Bind is called with a nil form.
	ErrNilForm = errors.New("formdef: nil form")

	// ErrSchemaNotFound is returned when a named schema is missing from a document.
	ErrSchemaNotFound = errors.New("formdef: schema not found")

	// ErrSchemaNotObject is returned when a named schema is not an object.
	ErrSchemaNotObject = errors.New("formdef: schema is not an object")
)

// FieldError wraps an error with the offending field's name.
type FieldError struct {
	Field string
	Err   error
}

// Error returns the error message with field context.
func (e *FieldError) Error() string {
	return fmt.Sprintf("formdef: field %q: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// SchemaError wraps an error with the schema name that caused it.
type SchemaError struct {
	Schema string
	Err    error
}

// Error returns the error message with schema context.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("formdef: schema %q: %v", e.Schema, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SchemaError) Unwrap() error {
	return e.Err
}
