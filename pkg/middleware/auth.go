package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/edgechat/edgechat/pkg/apperr"
	"github.com/edgechat/edgechat/pkg/auth"
	"github.com/edgechat/edgechat/pkg/contextkeys"
	"github.com/edgechat/edgechat/pkg/httputil"
	"github.com/edgechat/edgechat/pkg/storage"
)

// authDetail is the one detail string every authentication failure shares.
// Missing header, bad signature, expiry, wrong type and unknown subject are
// indistinguishable to the client.
const authDetail = "Invalid or expired token"

// Authenticator gates protected routes: it verifies the bearer token as an
// access token and resolves the subject's user record.
type Authenticator struct {
	tokens *auth.TokenService
	users  storage.UserStore
}

// NewAuthenticator creates the auth gate
func NewAuthenticator(tokens *auth.TokenService, users storage.UserStore) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Handler wraps next, rejecting requests without a valid access token
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := BearerToken(r)
		if !ok {
			httputil.WriteError(w, r, apperr.Unauthenticated(authDetail, nil))
			return
		}

		claims, err := a.tokens.Verify(tokenString, auth.TokenTypeAccess)
		if err != nil {
			httputil.WriteError(w, r, apperr.Unauthenticated(authDetail, err))
			return
		}

		subjectID, err := claims.SubjectID()
		if err != nil {
			httputil.WriteError(w, r, apperr.Unauthenticated(authDetail, err))
			return
		}

		user, err := a.users.GetByID(r.Context(), subjectID)
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteError(w, r, apperr.Unauthenticated(authDetail, err))
			return
		}
		if err != nil {
			// Persistence failure during authentication is a server fault,
			// not an auth failure; surface it as 5xx.
			httputil.WriteError(w, r, err)
			return
		}

		ctx := contextkeys.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser returns the authenticated user set by the auth gate
func CurrentUser(r *http.Request) (*storage.User, bool) {
	user, ok := contextkeys.GetUser(r.Context()).(*storage.User)
	return user, ok
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
