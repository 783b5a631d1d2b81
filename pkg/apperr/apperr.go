// Package apperr defines the semantic error taxonomy shared by middleware and
// handlers. Components raise these instead of writing HTTP responses; the API
// layer owns the single translation point to the client-visible envelope.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind classifies a failure for status-code mapping
type Kind int

const (
	// KindUnhandled is anything not explicitly classified; maps to 500
	KindUnhandled Kind = iota
	// KindValidation is a malformed or invalid request body; maps to 400
	KindValidation
	// KindUnauthenticated is any authentication failure; maps to 401
	KindUnauthenticated
	// KindNotFound maps to 404
	KindNotFound
	// KindConflict maps to 409
	KindConflict
	// KindRateLimited maps to 429 with Retry-After
	KindRateLimited
	// KindUnavailable is an upstream dependency failure; maps to 503
	KindUnavailable
	// KindCorruptCredential is a malformed stored password digest; maps to 500
	KindCorruptCredential
)

// Error is a classified application failure. Detail is the exact string shown
// to the client, so it must never carry internal error text.
type Error struct {
	Kind       Kind
	Detail     string
	RetryAfter int // seconds, only meaningful for KindRateLimited
	err        error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.err
}

// Status returns the HTTP status code for the error kind
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates a classified error with a client-visible detail
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap classifies an underlying error. The detail is client-visible; the
// wrapped error is only for logs.
func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, err: err}
}

// Unauthenticated returns a 401 error with a deliberately generic detail.
// Never distinguish unknown-user from wrong-password or expired-token here;
// that distinction enables user enumeration.
func Unauthenticated(detail string, err error) *Error {
	return &Error{Kind: KindUnauthenticated, Detail: detail, err: err}
}

// RateLimited returns a 429 error carrying the remaining window seconds
func RateLimited(retryAfter int) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Detail:     "Too many requests",
		RetryAfter: retryAfter,
	}
}

// CorruptCredential signals a stored password digest that cannot be parsed
func CorruptCredential(err error) *Error {
	return &Error{Kind: KindCorruptCredential, Detail: "Internal server error", err: err}
}
