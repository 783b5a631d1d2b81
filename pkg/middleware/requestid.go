package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/edgechat/edgechat/pkg/contextkeys"
	"github.com/edgechat/edgechat/pkg/observability"
)

// RequestIDHeader is the correlation header read from the request and echoed
// on every response, error paths included.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns a correlation ID to each request. A non-empty inbound
// X-Request-ID is propagated; otherwise a fresh UUID is generated. The ID is
// stored in the context together with a request-scoped logger and set on the
// response header before any downstream stage can write.
func RequestID(logger *observability.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, requestID)

			ctx := contextkeys.WithRequestID(r.Context(), requestID)
			ctx = contextkeys.WithLogger(ctx, logger.WithRequestID(requestID))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
