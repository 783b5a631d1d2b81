package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/edgechat/edgechat/pkg/ai"
	"github.com/edgechat/edgechat/pkg/apperr"
	"github.com/edgechat/edgechat/pkg/async"
	"github.com/edgechat/edgechat/pkg/contextkeys"
	"github.com/edgechat/edgechat/pkg/httputil"
	"github.com/edgechat/edgechat/pkg/observability"
	"github.com/edgechat/edgechat/pkg/storage"
)

// persistTimeout bounds the background history write
const persistTimeout = 5 * time.Second

// aiHandlers fronts the completion provider
type aiHandlers struct {
	provider ai.Provider
	chats    storage.ChatStore
	logger   *observability.Logger
}

func newAIHandlers(provider ai.Provider, chats storage.ChatStore, logger *observability.Logger) *aiHandlers {
	return &aiHandlers{provider: provider, chats: chats, logger: logger}
}

// chat handles POST /api/v1/ai/chat
func (h *aiHandlers) chat(w http.ResponseWriter, r *http.Request) {
	provider, err := h.ready()
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req ChatRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	reply, err := provider.Complete(r.Context(), req.Messages)
	if err != nil {
		httputil.WriteError(w, r, translateProviderError(err))
		return
	}

	// History persistence is best effort; a storage hiccup must not cost the
	// caller the reply they already paid a model call for.
	conversationID := h.persist(r, req, reply)

	httputil.WriteSuccess(w, ChatResponse{
		Reply:          reply,
		Model:          provider.Model(),
		ConversationID: conversationID,
	})
}

// summarize handles POST /api/v1/ai/summarize
func (h *aiHandlers) summarize(w http.ResponseWriter, r *http.Request) {
	provider, err := h.ready()
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req SummarizeRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	summary, err := provider.Summarize(r.Context(), req.Text)
	if err != nil {
		httputil.WriteError(w, r, translateProviderError(err))
		return
	}

	httputil.WriteSuccess(w, SummarizeResponse{Summary: summary, Model: provider.Model()})
}

// vision handles POST /api/v1/ai/vision
func (h *aiHandlers) vision(w http.ResponseWriter, r *http.Request) {
	provider, err := h.ready()
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req VisionRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		httputil.WriteError(w, r, apperr.Wrap(apperr.KindValidation, "image_base64 is not valid base64", err))
		return
	}

	description, err := provider.Vision(r.Context(), image, req.MimeType, req.Prompt)
	if err != nil {
		httputil.WriteError(w, r, translateProviderError(err))
		return
	}

	httputil.WriteSuccess(w, VisionResponse{Description: description, Model: provider.Model()})
}

// ready returns the provider or a 503 when the service runs without one
func (h *aiHandlers) ready() (ai.Provider, error) {
	if h.provider == nil {
		return nil, apperr.New(apperr.KindUnavailable, "AI provider is not configured")
	}
	return h.provider, nil
}

// persist writes the exchanged turns to the caller's conversation off the
// request path and returns the conversation ID, or empty string when
// persistence is not possible. New conversations get their ID here so the
// response can carry it before the write lands.
func (h *aiHandlers) persist(r *http.Request, req ChatRequest, reply string) string {
	subjectID, ok := contextkeys.GetSubjectID(r.Context())
	if !ok || h.chats == nil {
		return ""
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	now := time.Now().UTC()
	last := req.Messages[len(req.Messages)-1]
	turns := []storage.ChatMessage{
		{Role: ai.RoleUser, Content: last.Content, CreatedAt: now},
		{Role: ai.RoleModel, Content: reply, CreatedAt: now},
	}

	logger := observability.FromContext(r.Context(), h.logger)
	async.SafeGo(persistTimeout, "chat history persist", logger, func(ctx context.Context) error {
		if _, err := h.chats.AppendMessages(ctx, subjectID, conversationID, turns); err != nil {
			return fmt.Errorf("persisting chat history: %w", err)
		}
		return nil
	})
	return conversationID
}

// translateProviderError maps provider failures onto the response taxonomy.
// Quota rejections become 429 with the upstream retry hint; everything else
// is a 503.
func translateProviderError(err error) error {
	var quota *ai.QuotaError
	if errors.As(err, &quota) {
		translated := apperr.RateLimited(quota.RetryAfter)
		translated.Detail = "Model quota exceeded. Try again in a minute."
		return translated
	}
	return apperr.Wrap(apperr.KindUnavailable, "AI service unavailable", err)
}
