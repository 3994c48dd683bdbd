package auth

import (
	"net/http"
	"strings"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/respond"
)

// TokenFromRequest returns the token from the "token" cookie, falling back to
// an "Authorization: Bearer" header. The cookie wins when both are present.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > len("Bearer ") && strings.EqualFold(authHeader[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

// Middleware rejects requests without a valid token and stores the caller's
// Identity in the request context.
func Middleware(tokens *TokenIssuer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				respond.Error(w, r, apperror.NewAuthError("Authentication required", nil))
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			ctx := NewContextWithIdentity(r.Context(), &Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MustIdentity returns the caller set by Middleware. Handlers mounted behind
// Middleware can rely on it; elsewhere it reports Unauthorized.
func MustIdentity(r *http.Request) (*Identity, error) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		return nil, apperror.NewAuthError("Authentication required", nil)
	}
	return id, nil
}
