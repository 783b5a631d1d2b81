package api

import (
	"time"

	"github.com/edgechat/edgechat/pkg/ai"
)

// TokenResponse is the body returned by register, login, and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RegisterRequest is the body for POST /api/v1/auth/register
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the body for POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body for POST /api/v1/auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// MeResponse is the body for GET /api/v1/auth/me
type MeResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the body for POST /api/v1/ai/chat
type ChatRequest struct {
	ConversationID string       `json:"conversation_id,omitempty"`
	Messages       []ai.Message `json:"messages" validate:"required,min=1"`
}

// ChatResponse carries the model reply and the conversation it was stored in
type ChatResponse struct {
	Reply          string `json:"reply"`
	Model          string `json:"model"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// SummarizeRequest is the body for POST /api/v1/ai/summarize
type SummarizeRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// SummarizeResponse is the body returned by summarize
type SummarizeResponse struct {
	Summary string `json:"summary"`
	Model   string `json:"model"`
}

// VisionRequest is the body for POST /api/v1/ai/vision
type VisionRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
	MimeType    string `json:"mime_type" validate:"required"`
	Prompt      string `json:"prompt,omitempty"`
}

// VisionResponse is the body returned by vision
type VisionResponse struct {
	Description string `json:"description"`
	Model       string `json:"model"`
}

// ConversationSummary is one entry in the conversation list
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationListResponse is the body for GET /api/v1/chat/conversations
type ConversationListResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
}

// RootResponse is the body for GET /
type RootResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
}
