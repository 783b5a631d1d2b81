package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgechat/edgechat/pkg/observability"
)

// emptyReply is returned when the model answers with no text parts.
const emptyReply = "(No text in response)"

const summarizeInstruction = "Summarize the user's text concisely. " +
	"Reply with the summary only, no preamble."

// retryHintRe extracts the upstream retry hint from quota error messages,
// e.g. "Please retry in 42.5s".
var retryHintRe = regexp.MustCompile(`(?i)retry in (\d+(?:\.\d+)?)\s*s`)

// Gemini is the google.golang.org/genai backed Provider
type Gemini struct {
	client  *genai.Client
	model   string
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewGemini creates a Gemini provider. The API key is required; model falls
// back to gemini-2.5-flash when empty.
func NewGemini(ctx context.Context, apiKey, model string, logger *observability.Logger, metrics *observability.Metrics) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   model,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Model returns the configured model identifier
func (g *Gemini) Model() string {
	return g.model
}

// Complete sends a multi-turn conversation and returns the model's reply
func (g *Gemini) Complete(ctx context.Context, messages []Message) (string, error) {
	contents := buildContents(messages)
	return g.generate(ctx, "complete", contents, nil)
}

// Summarize returns a concise summary of text
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(summarizeInstruction, genai.RoleUser),
	}
	return g.generate(ctx, "summarize", contents, config)
}

// Vision describes an image. An empty prompt asks for a plain description.
func (g *Gemini) Vision(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if prompt == "" {
		prompt = "Describe this image."
	}
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return g.generate(ctx, "vision", contents, nil)
}

func (g *Gemini) generate(ctx context.Context, operation string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	g.metrics.ObserveAIRequest(operation, err, time.Since(start))
	if err != nil {
		g.logger.WithError(err).WithField("operation", operation).Warn("gemini call failed")
		return "", classifyGeminiError(g.model, err)
	}

	text := resp.Text()
	if text == "" {
		return emptyReply, nil
	}
	return text, nil
}

// buildContents converts conversation messages to the wire representation.
// Unknown roles are sent as user turns.
func buildContents(messages []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

// classifyGeminiError maps upstream failures to the provider error taxonomy.
// Quota rejections become QuotaError carrying the upstream retry hint.
func classifyGeminiError(model string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return &QuotaError{RetryAfter: retryHint(apiErr.Message), err: err}
		case http.StatusNotFound:
			return fmt.Errorf("model %q not found for this API version: %w", model, err)
		}
	}
	return fmt.Errorf("gemini API error: %w", err)
}

// retryHint parses the retry-after seconds out of a quota error message.
// Rounds up so clients never retry inside the penalty window.
func retryHint(message string) int {
	m := retryHintRe.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return int(seconds) + 1
}
