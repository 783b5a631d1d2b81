package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/edgechat/edgechat/pkg/apperr"
	"github.com/edgechat/edgechat/pkg/auth"
	"github.com/edgechat/edgechat/pkg/httputil"
	"github.com/edgechat/edgechat/pkg/middleware"
	"github.com/edgechat/edgechat/pkg/storage"
)

// loginDetail is the one detail both unknown-email and wrong-password share,
// so the login endpoint cannot be used to probe which emails exist.
const loginDetail = "Invalid email or password"

// normalizeEmail folds an address to its stored form. The users table
// matches exactly, so case must be settled before the store sees it.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// authHandlers handles registration, login, and the token lifecycle
type authHandlers struct {
	tokens *auth.TokenService
	hasher *auth.PasswordHasher
	users  storage.UserStore
}

func newAuthHandlers(tokens *auth.TokenService, hasher *auth.PasswordHasher, users storage.UserStore) *authHandlers {
	return &authHandlers{tokens: tokens, hasher: hasher, users: users}
}

// register handles POST /api/v1/auth/register
func (h *authHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	digest, err := h.hasher.Hash(req.Password)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), normalizeEmail(req.Email), digest)
	if errors.Is(err, storage.ErrDuplicateEmail) {
		httputil.WriteError(w, r, apperr.Wrap(apperr.KindValidation, "Email already registered", err))
		return
	}
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	pair, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteCreated(w, tokenResponse(pair))
}

// login handles POST /api/v1/auth/login
func (h *authHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), normalizeEmail(req.Email))
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteError(w, r, apperr.Unauthenticated(loginDetail, err))
		return
	}
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	ok, err := h.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		// Corrupt stored digest; a server fault, never an auth failure.
		httputil.WriteError(w, r, err)
		return
	}
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated(loginDetail, nil))
		return
	}

	pair, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, tokenResponse(pair))
}

// refresh handles POST /api/v1/auth/refresh. Both tokens rotate; the old
// refresh token stays valid until its own expiry.
func (h *authHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	pair, err := h.tokens.Refresh(req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, r, apperr.Unauthenticated("Invalid or expired refresh token", err))
		return
	}

	httputil.WriteSuccess(w, tokenResponse(pair))
}

// me handles GET /api/v1/auth/me
func (h *authHandlers) me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Invalid or expired token", nil))
		return
	}

	httputil.WriteSuccess(w, MeResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func tokenResponse(pair auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	}
}
