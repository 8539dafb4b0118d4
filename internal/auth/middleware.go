package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenHeader is the alternate header carrying a raw token.
const TokenHeader = "x-auth-token"

// PrincipalFromContext retrieves the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// RequireAdmin returns an HTTP middleware that admits requests carrying a
// valid admin token in either "Authorization: Bearer <token>" or the
// x-auth-token header. The principal is stored in the request context.
func RequireAdmin(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, msg := extractToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, msg)
				return
			}

			p, err := verifier.Verify(token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if p.Role != RoleAdmin {
				writeAuthError(w, http.StatusForbidden, "admin role required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func extractToken(r *http.Request) (string, string) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", "invalid authorization format, expected Bearer <token>"
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return "", "empty token"
		}
		return token, ""
	}
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token, ""
	}
	return "", "authorization required"
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
