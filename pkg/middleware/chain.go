package middleware

import "github.com/vango-dev/fieldset/pkg/form"

// Chain composes middlewares into a single middleware. The first
// middleware is the outermost: it sees every event first and its
// wrapped handler runs last before the terminal handler.
//
// Example:
//
//	f := form.New(form.WithMiddleware(middleware.Chain(
//	    middleware.Logging(),
//	    middleware.Prometheus(),
//	)))
func Chain(mws ...form.Middleware) form.Middleware {
	return func(next form.Handler) form.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
