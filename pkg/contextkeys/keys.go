// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// RequestIDKey contains the request correlation ID string (UUID)
	// Set by: middleware.RequestID
	// Used by: Logger, error translator, usage recorder
	// Type: string
	RequestIDKey Key = "request_id"

	// UserKey contains the authenticated user
	// Set by: middleware.Authenticator.Handler after token verification and user lookup
	// Required by: All protected API endpoints
	// Type: *storage.User
	UserKey Key = "user"

	// SubjectIDKey contains the verified token subject ID
	// Set by: middleware.UsageHook when the bearer token decodes as a valid access token
	// Used by: usage recording
	// Type: int64
	SubjectIDKey Key = "subject_id"

	// LoggerKey contains the request-scoped logger
	// Set by: middleware.RequestID
	// Type: *observability.Logger
	LoggerKey Key = "logger"
)

// WithRequestID adds the request correlation ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request correlation ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithUser adds the authenticated user to the context
func WithUser(ctx context.Context, user interface{}) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser retrieves the authenticated user from context
func GetUser(ctx context.Context) interface{} {
	return ctx.Value(UserKey)
}

// WithSubjectID adds the verified token subject to the context
func WithSubjectID(ctx context.Context, subjectID int64) context.Context {
	return context.WithValue(ctx, SubjectIDKey, subjectID)
}

// GetSubjectID retrieves the verified token subject from context.
// The second return value is false when the request was unauthenticated.
func GetSubjectID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(SubjectIDKey).(int64)
	return id, ok
}

// WithLogger adds the request-scoped logger to the context
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetLogger retrieves the request-scoped logger from context
func GetLogger(ctx context.Context) interface{} {
	return ctx.Value(LoggerKey)
}
