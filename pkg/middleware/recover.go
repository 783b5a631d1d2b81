package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/edgechat/edgechat/pkg/httputil"
	"github.com/edgechat/edgechat/pkg/observability"
)

// Recover converts a downstream panic into the uniform 500 envelope instead
// of a dropped connection. It sits directly inside the request ID stage so
// the envelope and logs still carry the correlation ID.
func Recover(logger *observability.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					observability.FromContext(r.Context(), logger).
						WithField("panic", rec).
						WithField("stack", string(debug.Stack())).
						Error("panic while serving request")
					httputil.WriteError(w, r, errors.New("panic recovered"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
