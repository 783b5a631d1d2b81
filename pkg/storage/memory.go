package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryUserStore is an in-memory UserStore for tests and local development
type MemoryUserStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*User
}

// NewMemoryUserStore creates an empty in-memory user store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{byID: make(map[int64]*User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Exact match, like the UNIQUE constraint on the users table. Case
	// folding is the caller's job.
	for _, u := range s.byID {
		if u.Email == email {
			return nil, ErrDuplicateEmail
		}
	}

	s.nextID++
	user := &User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.byID[user.ID] = user

	copied := *user
	return &copied, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// MemoryUsageStore is an in-memory UsageStore
type MemoryUsageStore struct {
	mu      sync.RWMutex
	records []UsageRecord
}

// NewMemoryUsageStore creates an empty in-memory usage store
func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{}
}

func (s *MemoryUsageStore) Append(ctx context.Context, record UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *MemoryUsageStore) Stats(ctx context.Context, subjectID int64, now time.Time) (UsageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats UsageStats
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	for _, r := range s.records {
		if r.SubjectID != subjectID {
			continue
		}
		stats.TotalRequests++
		if r.Timestamp.After(dayAgo) {
			stats.RequestsLast24h++
		}
		if r.Timestamp.After(weekAgo) {
			stats.RequestsLast7d++
		}
	}
	return stats, nil
}

// Records returns a snapshot of everything appended. Tests only.
func (s *MemoryUsageStore) Records() []UsageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UsageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// MemoryChatStore is an in-memory ChatStore standing in for the document
// store collaborator.
type MemoryChatStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// NewMemoryChatStore creates an empty in-memory chat store
func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{conversations: make(map[string]*Conversation)}
}

func (s *MemoryChatStore) AppendMessages(ctx context.Context, subjectID int64, conversationID string, messages []ChatMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	conv, ok := s.conversations[conversationID]
	if !ok {
		title := ""
		if len(messages) > 0 {
			title = truncateTitle(messages[0].Content)
		}
		conv = &Conversation{
			ID:        conversationID,
			SubjectID: subjectID,
			Title:     title,
		}
		s.conversations[conversationID] = conv
	}
	if conv.SubjectID != subjectID {
		return "", ErrNotFound
	}

	conv.Messages = append(conv.Messages, messages...)
	conv.UpdatedAt = now
	return conversationID, nil
}

func (s *MemoryChatStore) ListConversations(ctx context.Context, subjectID int64) ([]Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Conversation
	for _, conv := range s.conversations {
		if conv.SubjectID != subjectID {
			continue
		}
		out = append(out, Conversation{
			ID:        conv.ID,
			SubjectID: conv.SubjectID,
			Title:     conv.Title,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryChatStore) GetConversation(ctx context.Context, subjectID int64, conversationID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[conversationID]
	if !ok || conv.SubjectID != subjectID {
		return nil, ErrNotFound
	}

	copied := *conv
	copied.Messages = make([]ChatMessage, len(conv.Messages))
	copy(copied.Messages, conv.Messages)
	return &copied, nil
}

func (s *MemoryChatStore) DeleteConversation(ctx context.Context, subjectID int64, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok || conv.SubjectID != subjectID {
		return ErrNotFound
	}
	delete(s.conversations, conversationID)
	return nil
}

// truncateTitle caps a title at 60 runes. Slicing bytes would cut
// multi-byte characters in half.
func truncateTitle(s string) string {
	const max = 60
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
