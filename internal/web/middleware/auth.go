package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/zander/internal/auth"
	"github.com/JonMunkholm/zander/internal/core"
	"github.com/JonMunkholm/zander/internal/logging"
)

// ErrorFunc writes an error response. The web server passes its respondError.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error, status int)

// BearerAuth returns middleware that requires a valid "Authorization: Bearer"
// token and puts the caller it names on the request context.
func BearerAuth(issuer *auth.Issuer, onError ErrorFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := issuer.Parse(bearerToken(r))
			if err != nil {
				onError(w, r, err, http.StatusUnauthorized)
				return
			}

			ctx := core.ContextWithActor(r.Context(), actor)
			ctx = logging.ContextWith(ctx, "tenant_id", actor.TenantID.String(), "user_id", actor.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
