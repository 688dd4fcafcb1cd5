// Package form provides the state core for interactive forms: it tracks
// field values and validation errors outside the host UI's render cycle
// and wakes only the consumers that declared interest in a field.
//
// The package deliberately splits form state three ways. The value store
// is silent: writing a field value never triggers a re-render by itself.
// The error state is reactive: every error write marks all of the form's
// listeners dirty. Between the two sits the subscription registry, a set
// of field names some consumer has read through an accessor; membership
// in that set is what turns a plain value change into a render signal.
//
// # Binding fields
//
//	f := form.New()
//	email := f.Register("email",
//	    form.Required("email is required"),
//	    form.MaxLength(64, "too long"),
//	)
//	el := email.Ref(hostInput) // bind once; later binds are ignored
//	email.OnChange("a@b.c")    // checks maxLength, max, pattern; stores the value
//	email.OnBlur("")           // checks required, minLength
//
// Change-time rules run in the fixed order maxLength, max, pattern and
// stop at the first violation. Blur-time rules run required, minLength.
// Values are stored even when invalid; an error write also refocuses the
// offending element.
//
// # Reading values
//
// GetValue, GetValues, and Watch read the value store and, as a side
// effect, subscribe the field: once a field has been read this way,
// later value changes mark the form's listeners dirty. A field never
// read through an accessor still validates and stores correctly, but a
// plain value change on it wakes nobody.
//
// # Submitting
//
//	submit := f.HandleSubmit(func(v form.Values) { save(v) })
//	submit(ev) // prevents the default action, calls back with a snapshot
//
// Submit does not run validation; the callback fires even while errors
// are present.
//
// # Thread safety
//
// All of a form's stores are mutex-guarded, so bindings and accessors
// may be driven from any goroutine, though a single UI event loop is
// the expected caller.
package form
