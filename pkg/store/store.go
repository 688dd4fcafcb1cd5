package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/fieldset/pkg/form"
)

// Sentinel errors for submission stores.
var (
	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("store: closed")
)

// Submission is one accepted form snapshot.
type Submission struct {
	ID         string      `json:"id"`
	Form       string      `json:"form"`
	Values     form.Values `json:"values"`
	ReceivedAt time.Time   `json:"received_at"`
}

// NewSubmission stamps a values snapshot with a fresh ID and the
// current time.
func NewSubmission(formName string, values form.Values) Submission {
	return Submission{
		ID:         uuid.NewString(),
		Form:       formName,
		Values:     values,
		ReceivedAt: time.Now().UTC(),
	}
}

// Store persists accepted submissions. Implementations must be safe
// for concurrent use.
type Store interface {
	// Save persists one submission. If the submission's ID already
	// exists it is stored again; stores do not deduplicate.
	Save(ctx context.Context, sub Submission) error

	// List returns the most recent submissions for a form, newest
	// first. limit <= 0 returns everything the store retained.
	List(ctx context.Context, formName string, limit int) ([]Submission, error)

	// Close releases any resources held by the store.
	Close() error
}
