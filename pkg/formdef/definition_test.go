package formdef_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vango-dev/fieldset/pkg/formdef"
)

const signupDoc = `
form: signup
fields:
  - name: email
    label: Email address
    placeholder: you@example.com
    autofocus: true
    coerce: trim
    required:
      message: Email is required
    pattern:
      value: '^[^@\s]+@[^@\s]+$'
      message: That does not look like an email address
    maxLength:
      value: 64
  - name: password
    kind: password
    minLength:
      value: 8
      message: Use at least 8 characters
  - name: age
    kind: number
    coerce: number
    initial: "18"
    min:
      value: 13
      message: You must be at least 13
    max:
      value: 130
`

func TestParse(t *testing.T) {
	def, err := formdef.Parse([]byte(signupDoc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if def.Form != "signup" {
		t.Errorf("Form = %q, want %q", def.Form, "signup")
	}
	if len(def.Fields) != 3 {
		t.Fatalf("len(Fields) = %d, want 3", len(def.Fields))
	}

	email := def.Fields[0]
	if email.Name != "email" {
		t.Errorf("Fields[0].Name = %q, want %q", email.Name, "email")
	}
	if !email.Autofocus {
		t.Error("email should have autofocus")
	}
	if email.Required == nil || email.Required.Message != "Email is required" {
		t.Errorf("email required constraint = %+v", email.Required)
	}
	if email.MaxLength == nil || email.MaxLength.Message != "" {
		t.Errorf("email maxLength should carry no message, got %+v", email.MaxLength)
	}

	age := def.Fields[2]
	if age.Kind != "number" || age.Coerce != "number" {
		t.Errorf("age kind/coerce = %q/%q, want number/number", age.Kind, age.Coerce)
	}
	if age.Initial != "18" {
		t.Errorf("age initial = %v, want %q", age.Initial, "18")
	}
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "empty document",
			doc:  "   \n",
			want: formdef.ErrEmptyDocument,
		},
		{
			name: "duplicate field names",
			doc: `
form: t
fields:
  - name: a
  - name: a
`,
			want: formdef.ErrDuplicateField,
		},
		{
			name: "pattern does not compile",
			doc: `
form: t
fields:
  - name: a
    pattern:
      value: '([a-z'
`,
			want: formdef.ErrBadPattern,
		},
		{
			name: "length bounds inverted",
			doc: `
form: t
fields:
  - name: a
    minLength:
      value: 9
    maxLength:
      value: 3
`,
			want: formdef.ErrBoundsInverted,
		},
		{
			name: "range bounds inverted",
			doc: `
form: t
fields:
  - name: a
    min:
      value: 100
    max:
      value: 1
`,
			want: formdef.ErrBoundsInverted,
		},
		{
			name: "non-numeric length threshold",
			doc: `
form: t
fields:
  - name: a
    minLength:
      value: three
`,
			want: formdef.ErrBadConstraint,
		},
		{
			name: "non-string pattern threshold",
			doc: `
form: t
fields:
  - name: a
    pattern:
      value: 7
`,
			want: formdef.ErrBadConstraint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formdef.Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse_StructTagViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing form name", "fields:\n  - name: a\n"},
		{"no fields", "form: t\n"},
		{"field without name", "form: t\nfields:\n  - label: x\n"},
		{"unknown kind", "form: t\nfields:\n  - name: a\n    kind: checkbox\n"},
		{"unknown coercion", "form: t\nfields:\n  - name: a\n    coerce: upper\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := formdef.Parse([]byte(tt.doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	if _, err := formdef.Parse([]byte("form: [unclosed")); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signup.yaml")
	if err := os.WriteFile(path, []byte(signupDoc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	def, err := formdef.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if def.Form != "signup" {
		t.Errorf("Form = %q, want %q", def.Form, "signup")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := formdef.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestFieldError_Message(t *testing.T) {
	err := &formdef.FieldError{Field: "email", Err: formdef.ErrBadPattern}
	want := `formdef: field "email": formdef: pattern does not compile`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, formdef.ErrBadPattern) {
		t.Error("FieldError should unwrap to its underlying error")
	}
}
