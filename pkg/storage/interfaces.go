// Package storage defines the data models and store contracts the pipeline
// depends on. The relational stores (users, usage) are backed by PostgreSQL,
// the counter store by Redis, and the conversational history by a document
// store; in-memory implementations ship for tests and local development.
package storage

import (
	"context"
	"errors"
	"time"
)

// Store lookup errors
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is a registered account. The password digest never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UsageRecord is one row of per-user API accounting, append-only
type UsageRecord struct {
	SubjectID int64
	Path      string
	Method    string
	Timestamp time.Time
}

// UsageStats aggregates a user's recorded API calls
type UsageStats struct {
	TotalRequests     int64 `json:"total_requests"`
	RequestsLast24h   int64 `json:"requests_last_24h"`
	RequestsLast7d    int64 `json:"requests_last_7d"`
}

// ChatMessage is one message inside a conversation
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation is a stored chat history thread
type Conversation struct {
	ID        string        `json:"id"`
	SubjectID int64         `json:"-"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// UserStore is the persistence collaborator for user records
type UserStore interface {
	// Create inserts a new user; ErrDuplicateEmail when the email exists.
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	// GetByEmail returns the user or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID returns the user or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*User, error)
}

// UsageStore is the append-only usage accounting collaborator
type UsageStore interface {
	Append(ctx context.Context, record UsageRecord) error
	Stats(ctx context.Context, subjectID int64, now time.Time) (UsageStats, error)
}

// ChatStore is the document-store collaborator for conversational history
type ChatStore interface {
	// AppendMessages adds messages to a conversation, creating it when
	// conversationID is empty or names no existing conversation. Returns
	// the conversation ID. Appending to another subject's conversation
	// fails with ErrNotFound.
	AppendMessages(ctx context.Context, subjectID int64, conversationID string, messages []ChatMessage) (string, error)
	// ListConversations returns the caller's conversations, newest first,
	// without message bodies.
	ListConversations(ctx context.Context, subjectID int64) ([]Conversation, error)
	// GetConversation returns one conversation with messages, or ErrNotFound
	// when it does not exist or belongs to another subject.
	GetConversation(ctx context.Context, subjectID int64, conversationID string) (*Conversation, error)
	// DeleteConversation removes a conversation, ErrNotFound as above.
	DeleteConversation(ctx context.Context, subjectID int64, conversationID string) error
}

// CounterStore is the atomic counter collaborator behind the rate limiter
type CounterStore interface {
	// Incr atomically increments key and, when this creates the key, sets its
	// expiry to window. Returns the post-increment count.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	// TTL returns the remaining lifetime of key; zero or negative when the
	// key has no expiry or does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
