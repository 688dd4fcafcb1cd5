package prompt

import "github.com/vango-dev/fieldset/pkg/store"

// Option configures the runner.
type Option func(*Runner)

// WithDriver overrides the prompt driver. The default talks to the
// terminal via survey.
func WithDriver(d Driver) Option {
	return func(r *Runner) {
		if d != nil {
			r.driver = d
		}
	}
}

// WithStore persists the collected submission when the walk completes.
// Without a store the values are only returned to the caller.
func WithStore(st store.Store) Option {
	return func(r *Runner) {
		r.store = st
	}
}

// WithMaxAttempts bounds how often a field is re-prompted after a
// fresh validation error before the walk moves on. Default: 3.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}
