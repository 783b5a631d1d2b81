package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/edgechat/edgechat/pkg/apperr"
	"github.com/edgechat/edgechat/pkg/httputil"
	"github.com/edgechat/edgechat/pkg/middleware"
	"github.com/edgechat/edgechat/pkg/storage"
)

// chatHandlers serves stored conversation history
type chatHandlers struct {
	chats storage.ChatStore
}

func newChatHandlers(chats storage.ChatStore) *chatHandlers {
	return &chatHandlers{chats: chats}
}

// list handles GET /api/v1/chat/conversations
func (h *chatHandlers) list(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Invalid or expired token", nil))
		return
	}

	conversations, err := h.chats.ListConversations(r.Context(), user.ID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, c := range conversations {
		summaries = append(summaries, ConversationSummary{
			ID:        c.ID,
			Title:     c.Title,
			UpdatedAt: c.UpdatedAt,
		})
	}

	httputil.WriteSuccess(w, ConversationListResponse{Conversations: summaries})
}

// get handles GET /api/v1/chat/conversations/{id}
func (h *chatHandlers) get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Invalid or expired token", nil))
		return
	}

	conversationID := mux.Vars(r)["id"]
	conversation, err := h.chats.GetConversation(r.Context(), user.ID, conversationID)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteError(w, r, apperr.Wrap(apperr.KindNotFound, "Conversation not found", err))
		return
	}
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, conversation)
}

// delete handles DELETE /api/v1/chat/conversations/{id}
func (h *chatHandlers) delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Invalid or expired token", nil))
		return
	}

	conversationID := mux.Vars(r)["id"]
	err := h.chats.DeleteConversation(r.Context(), user.ID, conversationID)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteError(w, r, apperr.Wrap(apperr.KindNotFound, "Conversation not found", err))
		return
	}
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteNoContent(w)
}
