package api

import (
	"net/http"

	"github.com/edgechat/edgechat/pkg/apperr"
	"github.com/edgechat/edgechat/pkg/httputil"
	"github.com/edgechat/edgechat/pkg/middleware"
	"github.com/edgechat/edgechat/pkg/usage"
)

// usageHandlers serves per-user accounting stats
type usageHandlers struct {
	recorder *usage.Recorder
}

func newUsageHandlers(recorder *usage.Recorder) *usageHandlers {
	return &usageHandlers{recorder: recorder}
}

// me handles GET /api/v1/usage/me
func (h *usageHandlers) me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Invalid or expired token", nil))
		return
	}

	stats, err := h.recorder.Stats(r.Context(), user.ID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, stats)
}
