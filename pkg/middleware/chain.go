package middleware

import "net/http"

// Middleware wraps an http.Handler with one pipeline stage
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares so the first argument is the outermost stage.
// Chain(a, b, c)(h) serves a → b → c → h.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		h := final
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		return h
	}
}
