package middleware

import (
	"net/http"

	"github.com/edgechat/edgechat/pkg/auth"
	"github.com/edgechat/edgechat/pkg/contextkeys"
	"github.com/edgechat/edgechat/pkg/usage"
)

// UsageHook records one usage row per authenticated request, after the
// handler has run. The bearer token is decoded here independently of the
// auth gate so public routes called with a valid access token are still
// accounted; an invalid or absent token simply means no record.
//
// Recording is fire-and-forget through the recorder's worker pool; the
// response never waits for it.
func UsageHook(tokens *auth.TokenService, recorder *usage.Recorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subjectID, authenticated := subjectFromBearer(tokens, r)
			if authenticated {
				r = r.WithContext(contextkeys.WithSubjectID(r.Context(), subjectID))
			}

			next.ServeHTTP(w, r)

			if authenticated {
				recorder.Record(subjectID, r.URL.Path, r.Method)
			}
		})
	}
}

func subjectFromBearer(tokens *auth.TokenService, r *http.Request) (int64, bool) {
	tokenString, ok := BearerToken(r)
	if !ok {
		return 0, false
	}
	claims, err := tokens.Verify(tokenString, auth.TokenTypeAccess)
	if err != nil {
		return 0, false
	}
	subjectID, err := claims.SubjectID()
	if err != nil {
		return 0, false
	}
	return subjectID, true
}
