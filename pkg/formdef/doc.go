// Package formdef loads declarative form definitions.
//
// A definition is a YAML document naming a form and its fields, with
// per-field presentation hints (label, placeholder, help, kind) and
// the constraint set the form enforces: required, minLength, maxLength,
// min, max and pattern, each carrying an optional custom message.
//
//	form: signup
//	fields:
//	  - name: email
//	    label: Email address
//	    autofocus: true
//	    coerce: trim
//	    required:
//	      message: Email is required
//	    pattern:
//	      value: '^[^@\s]+@[^@\s]+$'
//	      message: That does not look like an email address
//	  - name: age
//	    kind: number
//	    coerce: number
//	    max:
//	      value: 130
//	      message: That seems unlikely
//
// # Loading and Binding
//
// Load (or Parse) validates the document and returns a Definition;
// Bind compiles its fields into registrations on a form:
//
//	def, err := formdef.Load("signup.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f := form.New()
//	bindings, err := def.Bind(f)
//
// Validation is deliberately strict: the form core quietly disables
// malformed constraints at event time, but a definition file that
// carries one is a mistake worth rejecting at load.
//
// # Other Sources
//
// FromOpenAPI derives a definition from an object schema in an OpenAPI
// 3 document, mapping the schema's string and numeric constraints onto
// the same six rules. Watch re-parses a definition file on every write
// for live-reloading hosts.
package formdef
