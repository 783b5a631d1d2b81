package ai

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

func TestNewGemini_RequiresAPIKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "   ", "gemini-2.5-flash", nil, nil)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestBuildContents(t *testing.T) {
	contents := buildContents([]Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleModel, Content: "hi there"},
		{Role: "system", Content: "unknown role"},
	})
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	if contents[0].Role != string(genai.RoleUser) {
		t.Errorf("expected user role, got %q", contents[0].Role)
	}
	if contents[1].Role != string(genai.RoleModel) {
		t.Errorf("expected model role, got %q", contents[1].Role)
	}
	// unknown roles fall back to user
	if contents[2].Role != string(genai.RoleUser) {
		t.Errorf("expected unknown role to map to user, got %q", contents[2].Role)
	}
}

func TestClassifyGeminiError(t *testing.T) {
	quota := genai.APIError{
		Code:    429,
		Message: "Resource has been exhausted. Please retry in 42.5s.",
	}
	err := classifyGeminiError("gemini-2.5-flash", quota)

	var quotaErr *QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
	if quotaErr.RetryAfter != 43 {
		t.Errorf("expected retry hint 43, got %d", quotaErr.RetryAfter)
	}

	notFound := genai.APIError{Code: 404, Message: "model not found"}
	err = classifyGeminiError("gemini-2.5-flash", notFound)
	if errors.As(err, &quotaErr) {
		t.Fatalf("404 must not classify as quota: %v", err)
	}

	plain := errors.New("connection reset")
	err = classifyGeminiError("gemini-2.5-flash", plain)
	if !errors.Is(err, plain) {
		t.Fatalf("unclassified errors must wrap the original, got %v", err)
	}
}

func TestRetryHint(t *testing.T) {
	cases := []struct {
		message string
		want    int
	}{
		{"Please retry in 10s", 11},
		{"please RETRY IN 3.2 s", 4},
		{"quota exceeded", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := retryHint(tc.message); got != tc.want {
			t.Errorf("retryHint(%q) = %d, want %d", tc.message, got, tc.want)
		}
	}
}
