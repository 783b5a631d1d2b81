package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgechat/edgechat/pkg/ai"
	"github.com/edgechat/edgechat/pkg/storage"
)

func seedConversation(t *testing.T, server *Server, token string) string {
	t.Helper()

	rec := doJSON(t, server, http.MethodPost, "/api/v1/ai/chat", token, ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Seed message"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ConversationID)

	// History lands off the request path; wait for the write.
	require.Eventually(t, func() bool {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/chat/conversations/"+resp.ConversationID, token, nil)
		return rec.Code == http.StatusOK
	}, time.Second, 10*time.Millisecond, "conversation was never persisted")

	return resp.ConversationID
}

func TestListConversations(t *testing.T) {
	server, _ := newTestServer(t)
	tokens := registerUser(t, server, "alice@example.com", "password123")
	conversationID := seedConversation(t, server, tokens.AccessToken)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/chat/conversations", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConversationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 1)
	assert.Equal(t, conversationID, resp.Conversations[0].ID)
	assert.NotEmpty(t, resp.Conversations[0].Title)
}

func TestGetConversation(t *testing.T) {
	server, _ := newTestServer(t)
	tokens := registerUser(t, server, "alice@example.com", "password123")
	conversationID := seedConversation(t, server, tokens.AccessToken)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/chat/conversations/"+conversationID, tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var conversation storage.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conversation))
	assert.Equal(t, conversationID, conversation.ID)
	require.Len(t, conversation.Messages, 2)
	assert.Equal(t, ai.RoleUser, conversation.Messages[0].Role)
	assert.Equal(t, ai.RoleModel, conversation.Messages[1].Role)
}

// A conversation is only visible to the subject that created it.
func TestGetConversation_CrossSubject(t *testing.T) {
	server, _ := newTestServer(t)
	alice := registerUser(t, server, "alice@example.com", "password123")
	bob := registerUser(t, server, "bob@example.com", "password123")
	conversationID := seedConversation(t, server, alice.AccessToken)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/chat/conversations/"+conversationID, bob.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Conversation not found", decodeError(t, rec).Detail)
}

func TestDeleteConversation(t *testing.T) {
	server, _ := newTestServer(t)
	tokens := registerUser(t, server, "alice@example.com", "password123")
	conversationID := seedConversation(t, server, tokens.AccessToken)

	rec := doJSON(t, server, http.MethodDelete, "/api/v1/chat/conversations/"+conversationID, tokens.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/chat/conversations/"+conversationID, tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteConversation_Unknown(t *testing.T) {
	server, _ := newTestServer(t)
	tokens := registerUser(t, server, "alice@example.com", "password123")

	rec := doJSON(t, server, http.MethodDelete, "/api/v1/chat/conversations/no-such-id", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
