package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfl-pickem-go/models"
	"nfl-pickem-go/services"
)

type singleUserRepo struct {
	user *models.User
}

func (r *singleUserRepo) CreateUser(ctx context.Context, user *models.User) error { return nil }

func (r *singleUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, nil
}

func (r *singleUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func (r *singleUserRepo) GetAllUsers(ctx context.Context) ([]*models.User, error) { return nil, nil }

func (r *singleUserRepo) UpdateLegacyStats(ctx context.Context, userID string, year int, season, allTime models.SeasonRecord) error {
	return nil
}

func TestRequireAuth(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@b.com", DisplayName: "Alice"}
	auth := services.NewAuthService(&singleUserRepo{user: user}, "test-secret", clockwork.NewRealClock())
	mw := NewAuthMiddleware(auth)

	var seenUser *models.User
	protected := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest("GET", "/api/picks", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "error")
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/picks", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/picks", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := auth.GenerateToken(user)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/picks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seenUser)
		assert.Equal(t, "u1", seenUser.ID)
	})
}
