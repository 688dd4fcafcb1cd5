package form

// FieldOption configures one registered field. Options are applied in
// the order given to Register; the evaluation order of the validation
// rules they activate is fixed regardless of option order.
type FieldOption func(*fieldConfig)

// fieldConfig is the per-field configuration assembled by Register.
type fieldConfig struct {
	initial    any
	hasInitial bool
	mountFocus bool
	transform  func(any) any

	required  Rule
	minLength Rule
	maxLength Rule
	min       Rule
	max       Rule
	pattern   Rule

	// changeRules and blurRules are assembled once per Register call.
	// Change events check maxLength, max, pattern; blur events check
	// required, minLength. Both stop at the first violation.
	changeRules []Rule
	blurRules   []Rule
}

func newFieldConfig(opts []FieldOption) *fieldConfig {
	cfg := &fieldConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	cfg.changeRules = appendRules(nil, cfg.maxLength, cfg.max, cfg.pattern)
	cfg.blurRules = appendRules(nil, cfg.required, cfg.minLength)
	return cfg
}

func appendRules(dst []Rule, rules ...Rule) []Rule {
	for _, r := range rules {
		if r != nil {
			dst = append(dst, r)
		}
	}
	return dst
}

// InitialValue seeds the field on first bind: the value is written onto
// the bound element and into the value store before any change event.
func InitialValue(v any) FieldOption {
	return func(c *fieldConfig) {
		c.initial = v
		c.hasInitial = true
	}
}

// FocusOnMount gives the field's element input focus on first bind.
func FocusOnMount() FieldOption {
	return func(c *fieldConfig) {
		c.mountFocus = true
	}
}

// SetValueAs transforms the raw change value before it is validated and
// stored, e.g. parsing a string input into a number. Blur events are
// not transformed.
func SetValueAs(fn func(any) any) FieldOption {
	return func(c *fieldConfig) {
		c.transform = fn
	}
}

// Required rejects empty values. Checked on blur.
func Required(message string) FieldOption {
	return func(c *fieldConfig) {
		c.required = requiredRule(message)
	}
}

// MinLength rejects values shorter than n characters. Checked on blur.
func MinLength(n int, message string) FieldOption {
	return func(c *fieldConfig) {
		c.minLength = minLengthRule(n, message)
	}
}

// MaxLength rejects values longer than n characters. Checked on change.
func MaxLength(n int, message string) FieldOption {
	return func(c *fieldConfig) {
		c.maxLength = maxLengthRule(n, message)
	}
}

// Min sets a lower numeric bound. The bound is recorded but not
// evaluated by either event path: change checks maxLength, max and
// pattern; blur checks required and minLength.
func Min(n any, message string) FieldOption {
	return func(c *fieldConfig) {
		c.min = minRule(n, message)
	}
}

// Max rejects values whose numeric interpretation is above n. Checked
// on change. Non-numeric values pass.
func Max(n any, message string) FieldOption {
	return func(c *fieldConfig) {
		c.max = maxRule(n, message)
	}
}

// Pattern rejects values that fail to match the regular expression.
// Checked on change. An expression that does not compile deactivates
// the rule rather than failing the form.
func Pattern(expr string, message string) FieldOption {
	return func(c *fieldConfig) {
		c.pattern = patternRule(expr, message)
	}
}
