// Package ai defines the completion provider contract and its Gemini
// implementation. Handlers depend on the Provider interface only; provider
// failures surface as typed errors the API layer translates.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// Message roles understood by the provider
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of a conversation sent to the provider
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrNoAPIKey means the provider was constructed without credentials
var ErrNoAPIKey = errors.New("gemini API key is not set")

// QuotaError means the upstream model rejected the call for quota or rate
// limit reasons. RetryAfter is the upstream hint in seconds, zero when the
// upstream did not provide one.
type QuotaError struct {
	RetryAfter int
	err        error
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("model quota exceeded: %v", e.err)
}

func (e *QuotaError) Unwrap() error {
	return e.err
}

// Provider is the completion collaborator behind the AI endpoints
type Provider interface {
	// Model returns the model identifier reported in responses.
	Model() string
	// Complete sends a multi-turn conversation and returns the reply text.
	Complete(ctx context.Context, messages []Message) (string, error)
	// Summarize returns a concise summary of the given text.
	Summarize(ctx context.Context, text string) (string, error)
	// Vision describes an image, optionally steered by a prompt.
	Vision(ctx context.Context, image []byte, mimeType, prompt string) (string, error)
}
