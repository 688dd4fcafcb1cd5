// Package prompt runs a form definition as an interactive terminal
// walk, driving the same engine the WebSocket host uses.
package prompt

import (
	"context"
	"fmt"

	"github.com/vango-dev/fieldset/pkg/form"
	"github.com/vango-dev/fieldset/pkg/formdef"
	"github.com/vango-dev/fieldset/pkg/store"
)

// Runner walks a form definition on the terminal. Each field is asked
// once, the answer is dispatched through the form engine's change and
// blur paths, and a resulting error write re-prompts the field. When
// the walk completes the form is submitted and the collected values
// are returned.
type Runner struct {
	def         *formdef.Definition
	driver      Driver
	store       store.Store
	maxAttempts int
}

// New builds a runner for the definition. The definition is validated
// up front.
func New(def *formdef.Definition, opts ...Option) (*Runner, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		def:         def,
		driver:      newSurveyDriver(),
		maxAttempts: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Run prompts for every field in definition order, submits, and
// returns the value snapshot. Validation is not a submission gate: a
// field that keeps failing is left with its last answer and its error
// is reported after the walk.
//
// The returned values are valid even when err is non-nil, unless the
// walk itself was aborted.
func (r *Runner) Run(ctx context.Context) (form.Values, error) {
	f := form.New()

	bindings, err := r.def.Bind(f)
	if err != nil {
		return nil, err
	}

	elements := make(map[string]*promptElement, len(bindings))
	for i := range r.def.Fields {
		name := r.def.Fields[i].Name
		el := &promptElement{name: name}
		bindings[name].Ref(el)
		elements[name] = el
	}

	for i := range r.def.Fields {
		fd := &r.def.Fields[i]
		if err := r.promptField(ctx, f, fd, bindings[fd.Name], elements[fd.Name]); err != nil {
			return nil, err
		}
	}

	var collected form.Values
	submit := f.HandleSubmit(func(values form.Values) {
		collected = values
	})
	submit(nil)

	r.reportErrors(ctx, f)

	if r.store != nil {
		sub := store.NewSubmission(r.def.Form, collected)
		if err := r.store.Save(ctx, sub); err != nil {
			return collected, fmt.Errorf("prompt: save submission: %w", err)
		}
		_ = r.driver.Info(ctx, fmt.Sprintf("Saved submission %s", sub.ID))
	}

	return collected, nil
}

// promptField asks for one field until the answer produces no fresh
// error write or the attempt budget runs out. The engine signals a
// fresh violation by refocusing the element; on the terminal that
// means asking again.
func (r *Runner) promptField(ctx context.Context, f *form.Form, fd *formdef.FieldDef, b *form.Binding, el *promptElement) error {
	message := fd.Label
	if message == "" {
		message = fd.Name
	}
	help := fd.Help
	if help == "" {
		help = fd.Placeholder
	}

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		cfg := InputConfig{
			Message: message,
			Default: el.displayValue(),
			Help:    help,
		}

		var raw string
		var err error
		if fd.Kind == "password" {
			raw, err = r.driver.Password(ctx, cfg)
		} else {
			raw, err = r.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}

		// The prompt itself just held focus; only requests made by the
		// dispatch below matter.
		el.takeFocusRequest()
		el.SetValue(raw)

		b.OnChange(raw)
		b.OnBlur(raw)

		if !el.takeFocusRequest() {
			return nil
		}
		if msg := f.Error(fd.Name); msg != "" {
			if err := r.driver.Info(ctx, fmt.Sprintf("%s: %s", message, msg)); err != nil {
				return err
			}
		}
	}
	return nil
}

// reportErrors prints the fields still carrying an error, in
// definition order.
func (r *Runner) reportErrors(ctx context.Context, f *form.Form) {
	if f.Valid() {
		return
	}
	for i := range r.def.Fields {
		name := r.def.Fields[i].Name
		if msg := f.Error(name); msg != "" {
			_ = r.driver.Info(ctx, fmt.Sprintf("! %s: %s", name, msg))
		}
	}
}
