// Package formtest provides testing helpers for form-driven code.
//
// The formtest package reduces boilerplate when testing registered
// fields by providing a fluent fixture builder, mock elements, and
// state assertions.
//
// # Quick Start
//
//	func TestSignup_EmailRequired(t *testing.T) {
//	    fx := formtest.NewFixture().
//	        WithField("email", form.Required("email is required")).
//	        Build()
//
//	    fx.Blur("email", "")
//	    formtest.ExpectError(t, fx.Form, "email", "email is required")
//	    formtest.ExpectFocused(t, fx.Element("email"), 1)
//	}
//
// # Fluent Fixture Builder
//
// The fixture builder registers fields, binds each one to a mock
// element, and attaches a render counter:
//
//	fx := formtest.NewFixture().
//	    WithMiddleware(myMiddleware).
//	    WithField("name", form.MinLength(2, "too short")).
//	    WithField("age", form.Max(120, "too old")).
//	    Build()
//
// # Driving Events
//
// Change and Blur dispatch events by field name, the way a host UI
// would through the field's binding:
//
//	fx.Change("name", "al")
//	fx.Blur("name", "al")
//
// # State Assertions
//
// Assert on form state without disturbing the subscription registry:
//
//	formtest.ExpectValue(t, fx.Form, "name", "al")
//	formtest.ExpectNoError(t, fx.Form, "name")
//	formtest.ExpectRenders(t, fx.Renders, 0)
package formtest
