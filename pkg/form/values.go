package form

import (
	"errors"
	"reflect"
	"strings"
)

// ErrDecodeTarget is returned by Values.Decode when the destination is
// not a non-nil pointer to a struct.
var ErrDecodeTarget = errors.New("form: decode target must be a non-nil struct pointer")

// Values is a snapshot of a form's value store keyed by field name.
// Fields that were never registered with an initial value and never
// received a change event are absent, not zero.
type Values map[string]any

// Has reports whether name holds a defined value.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns the named value rendered as a string, or "" when the
// value is absent.
func (v Values) String(name string) string {
	val, ok := v[name]
	if !ok {
		return ""
	}
	return toString(val)
}

// Int returns the named value's numeric interpretation truncated to an
// int, or 0 when the value is absent or non-numeric.
func (v Values) Int(name string) int {
	n, ok := toNumber(v[name])
	if !ok {
		return 0
	}
	return int(n)
}

// Float returns the named value's numeric interpretation, or 0 when the
// value is absent or non-numeric.
func (v Values) Float(name string) float64 {
	n, ok := toNumber(v[name])
	if !ok {
		return 0
	}
	return n
}

// Bool returns the named value's boolean interpretation, or false when
// the value is absent or not boolean.
func (v Values) Bool(name string) bool {
	b, ok := toBool(v[name])
	if !ok {
		return false
	}
	return b
}

// Decode copies values into dst's exported fields, matching map keys
// against `form` struct tags and falling back to the lowercased field
// name. A tag of "-" skips the field. Entries with no matching field
// are ignored; string, numeric, and bool destinations accept the usual
// loose interpretations of the stored value.
func (v Values) Decode(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return ErrDecodeTarget
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return ErrDecodeTarget
	}

	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("form")
		if tag == "" {
			tag = strings.ToLower(field.Name)
		}
		if tag == "-" {
			continue
		}

		raw, ok := v[tag]
		if !ok || raw == nil {
			continue
		}

		fv := rv.Field(i)
		if !fv.CanSet() {
			continue
		}
		assignValue(fv, raw)
	}
	return nil
}

// assignValue sets raw into fv, interpreting loosely by destination
// kind. Values that cannot be interpreted leave the field untouched.
func assignValue(fv reflect.Value, raw any) {
	nv := reflect.ValueOf(raw)
	if nv.Type().AssignableTo(fv.Type()) {
		fv.Set(nv)
		return
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(toString(raw))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, ok := toNumber(raw); ok {
			fv.SetInt(int64(n))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, ok := toNumber(raw); ok && n >= 0 {
			fv.SetUint(uint64(n))
		}
	case reflect.Float32, reflect.Float64:
		if n, ok := toNumber(raw); ok {
			fv.SetFloat(n)
		}
	case reflect.Bool:
		if b, ok := toBool(raw); ok {
			fv.SetBool(b)
		}
	default:
		if nv.Type().ConvertibleTo(fv.Type()) {
			fv.Set(nv.Convert(fv.Type()))
		}
	}
}
