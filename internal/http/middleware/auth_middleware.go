package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ldaehi0205/go-board-backend/internal/http/response"
	"github.com/ldaehi0205/go-board-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// RequireAuth rejects requests without a live access token. The failure
// codes are distinct so clients can tell a stale token (refreshable) from
// a bad one (re-login required).
func RequireAuth(codec *security.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				response.Error(w, http.StatusUnauthorized, response.CodeAuthorization, "authorization required")
				return
			}
			claims, err := codec.ParseAccessToken(raw)
			if err != nil {
				if errors.Is(err, security.ErrTokenExpired) {
					response.Error(w, http.StatusUnauthorized, response.CodeExpiredToken, "access token expired")
					return
				}
				response.Error(w, http.StatusUnauthorized, response.CodeInvalidToken, "invalid access token")
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*security.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}
