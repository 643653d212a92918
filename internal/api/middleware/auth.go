package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/achrafidrissi/urc/internal/models"
	"github.com/achrafidrissi/urc/internal/store"
)

type contextKey string

const PrincipalContextKey contextKey = "principal"

// AuthMiddleware resolves bearer tokens to principals. A request that cannot
// be resolved is halted before any conversation operation runs.
type AuthMiddleware struct {
	sessions store.ChatStore
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(sessions store.ChatStore) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth resolves the Authorization header to a principal and stores it
// in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			jsonError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			jsonError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		principal, err := m.sessions.GetSession(r.Context(), token)
		if err != nil {
			jsonError(w, http.StatusServiceUnavailable, "session store unavailable")
			return
		}
		if principal == nil {
			jsonError(w, http.StatusUnauthorized, "session expired")
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetPrincipalFromContext retrieves the authenticated principal from the
// request context.
func GetPrincipalFromContext(ctx context.Context) *models.Principal {
	p, ok := ctx.Value(PrincipalContextKey).(*models.Principal)
	if !ok {
		return nil
	}
	return p
}
