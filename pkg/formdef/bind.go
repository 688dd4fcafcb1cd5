package formdef

import (
	"strconv"
	"strings"

	"github.com/vango-dev/fieldset/pkg/form"
)

// Options compiles the field definition into the option set Register
// expects. Constraint values must already have passed Validate;
// unusable ones are reported as errors here too so Options is safe to
// call on hand-built definitions.
func (fd *FieldDef) Options() ([]form.FieldOption, error) {
	var opts []form.FieldOption

	if fd.Initial != nil {
		opts = append(opts, form.InitialValue(fd.Initial))
	}
	if fd.Autofocus {
		opts = append(opts, form.FocusOnMount())
	}
	switch fd.Coerce {
	case "trim":
		opts = append(opts, form.SetValueAs(coerceTrim))
	case "number":
		opts = append(opts, form.SetValueAs(coerceNumber))
	}

	if fd.Required != nil {
		opts = append(opts, form.Required(fd.Required.Message))
	}
	if fd.MinLength != nil {
		n, err := constraintInt(fd.Name, fd.MinLength)
		if err != nil {
			return nil, err
		}
		opts = append(opts, form.MinLength(n, fd.MinLength.Message))
	}
	if fd.MaxLength != nil {
		n, err := constraintInt(fd.Name, fd.MaxLength)
		if err != nil {
			return nil, err
		}
		opts = append(opts, form.MaxLength(n, fd.MaxLength.Message))
	}
	if fd.Min != nil {
		n, err := constraintFloat(fd.Name, fd.Min)
		if err != nil {
			return nil, err
		}
		opts = append(opts, form.Min(n, fd.Min.Message))
	}
	if fd.Max != nil {
		n, err := constraintFloat(fd.Name, fd.Max)
		if err != nil {
			return nil, err
		}
		opts = append(opts, form.Max(n, fd.Max.Message))
	}
	if fd.Pattern != nil {
		expr, err := constraintString(fd.Name, fd.Pattern)
		if err != nil {
			return nil, err
		}
		opts = append(opts, form.Pattern(expr, fd.Pattern.Message))
	}

	return opts, nil
}

// Bind validates the definition and registers every field on f.
// Bindings are returned keyed by field name. Fields without hints or
// constraints register with no options, so blurring them stays a no-op.
func (d *Definition) Bind(f *form.Form) (map[string]*form.Binding, error) {
	if f == nil {
		return nil, ErrNilForm
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	bindings := make(map[string]*form.Binding, len(d.Fields))
	for i := range d.Fields {
		fd := &d.Fields[i]
		opts, err := fd.Options()
		if err != nil {
			return nil, err
		}
		bindings[fd.Name] = f.Register(fd.Name, opts...)
	}
	return bindings, nil
}

// coerceTrim strips surrounding whitespace from string input.
func coerceTrim(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}

// coerceNumber converts numeric string input to float64. Input that
// does not parse passes through unchanged, leaving the range rules to
// decide what to do with it.
func coerceNumber(v any) any {
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return v
}
