package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vietart/artmarket/internal/auth"
	"github.com/vietart/artmarket/internal/domain"
)

// contextKey is a private type for context keys defined in this package.
type contextKey string

// IdentityContextKey is the context key holding the verified caller identity.
const IdentityContextKey contextKey = "identity"

// Authenticator verifies bearer tokens and injects the caller identity into
// the request context. Authorization decisions live on the route middleware,
// not in handlers.
type Authenticator struct {
	tokens *auth.TokenManager
}

// NewAuthenticator creates an authenticator backed by the token manager.
func NewAuthenticator(tokens *auth.TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// RequireAuth rejects requests without a valid bearer access token.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := a.authenticate(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose identity is not an admin.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.requireRole(next, domain.RoleAdmin)
}

// RequireArtistOrAdmin rejects requests unless the caller is an artist or admin.
func (a *Authenticator) RequireArtistOrAdmin(next http.Handler) http.Handler {
	return a.requireRole(next, domain.RoleArtist, domain.RoleAdmin)
}

func (a *Authenticator) requireRole(next http.Handler, roles ...domain.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := a.authenticate(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		allowed := false
		for _, role := range roles {
			if identity.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			writeAuthError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) authenticate(r *http.Request) (*domain.Identity, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}

	identity, err := a.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, false
	}
	return identity, true
}

// GetIdentity retrieves the verified caller identity from the context.
func GetIdentity(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*domain.Identity)
	return identity, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
