package middleware

import (
	"context"
	"net/http"
	"strings"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"
	"nfl-pickem-go/services"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware validates bearer tokens and attaches the user to the
// request context
type AuthMiddleware struct {
	auth   *services.AuthService
	logger *logging.Logger
}

func NewAuthMiddleware(auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		logger: logging.WithPrefix("auth_middleware"),
	}
}

// RequireAuth rejects requests without a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeUnauthorized(w, "missing or malformed authorization header")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		user, err := m.auth.GetUserFromToken(r.Context(), token)
		if err != nil {
			m.logger.Debugf("Rejected token: %v", err)
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user attached by RequireAuth
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// WithUser attaches a user to a context. Used by handler tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
