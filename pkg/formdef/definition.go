package formdef

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is the shared validator instance.
var validate = validator.New()

// Definition describes one form: an identifying name plus its fields in
// presentation order.
type Definition struct {
	Form   string     `yaml:"form" validate:"required"`
	Fields []FieldDef `yaml:"fields" validate:"required,min=1,dive"`
}

// FieldDef describes a single field: presentation hints plus the
// constraints the form enforces on it.
type FieldDef struct {
	Name        string `yaml:"name" validate:"required"`
	Kind        string `yaml:"kind" validate:"omitempty,oneof=text password number"`
	Label       string `yaml:"label"`
	Placeholder string `yaml:"placeholder"`
	Help        string `yaml:"help"`
	Initial     any    `yaml:"initial"`
	Autofocus   bool   `yaml:"autofocus"`
	Coerce      string `yaml:"coerce" validate:"omitempty,oneof=trim number"`

	Required  *Constraint `yaml:"required"`
	MinLength *Constraint `yaml:"minLength"`
	MaxLength *Constraint `yaml:"maxLength"`
	Min       *Constraint `yaml:"min"`
	Max       *Constraint `yaml:"max"`
	Pattern   *Constraint `yaml:"pattern"`
}

// Constraint pairs a rule threshold with its custom message. Value is
// ignored for required, an integer for the length rules, a number for
// min/max, and a regular expression source for pattern. Message may be
// empty, in which case the form supplies its default.
type Constraint struct {
	Value   any    `yaml:"value"`
	Message string `yaml:"message"`
}

// Parse decodes a YAML definition document and validates it.
func Parse(data []byte) (*Definition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("formdef: unmarshal: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Load reads and parses a definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formdef: read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the definition's struct tags and its cross-field
// semantics: field names must be unique, patterns must compile, paired
// bounds must not invert, and constraint values must have usable types.
//
// The form itself degrades malformed constraints to no-ops at event
// time; a definition file is the place to reject them loudly instead.
func (d *Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("formdef: invalid definition: %w", err)
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for i := range d.Fields {
		fd := &d.Fields[i]
		if _, dup := seen[fd.Name]; dup {
			return &FieldError{Field: fd.Name, Err: ErrDuplicateField}
		}
		seen[fd.Name] = struct{}{}
		if err := fd.check(); err != nil {
			return err
		}
	}
	return nil
}

// check verifies one field's constraint values and cross-constraint
// consistency.
func (fd *FieldDef) check() error {
	minLen, err := constraintInt(fd.Name, fd.MinLength)
	if err != nil {
		return err
	}
	maxLen, err := constraintInt(fd.Name, fd.MaxLength)
	if err != nil {
		return err
	}
	if fd.MinLength != nil && fd.MaxLength != nil && minLen > maxLen {
		return &FieldError{Field: fd.Name, Err: ErrBoundsInverted}
	}

	minVal, err := constraintFloat(fd.Name, fd.Min)
	if err != nil {
		return err
	}
	maxVal, err := constraintFloat(fd.Name, fd.Max)
	if err != nil {
		return err
	}
	if fd.Min != nil && fd.Max != nil && minVal > maxVal {
		return &FieldError{Field: fd.Name, Err: ErrBoundsInverted}
	}

	if fd.Pattern != nil {
		expr, err := constraintString(fd.Name, fd.Pattern)
		if err != nil {
			return err
		}
		if _, err := regexp.Compile(expr); err != nil {
			return &FieldError{Field: fd.Name, Err: ErrBadPattern}
		}
	}
	return nil
}

// constraintInt extracts an integer threshold. YAML integers decode as
// int; integral floats are accepted for documents written as 3.0.
func constraintInt(field string, c *Constraint) (int, error) {
	if c == nil {
		return 0, nil
	}
	switch v := c.Value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return 0, &FieldError{Field: field, Err: ErrBadConstraint}
}

// constraintFloat extracts a numeric threshold.
func constraintFloat(field string, c *Constraint) (float64, error) {
	if c == nil {
		return 0, nil
	}
	switch v := c.Value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, &FieldError{Field: field, Err: ErrBadConstraint}
}

// constraintString extracts a string threshold.
func constraintString(field string, c *Constraint) (string, error) {
	if c == nil {
		return "", nil
	}
	if s, ok := c.Value.(string); ok {
		return s, nil
	}
	return "", &FieldError{Field: field, Err: ErrBadConstraint}
}
