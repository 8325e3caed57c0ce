package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linkup/internal/config"
	"linkup/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(ttl time.Duration) *Auth {
	return NewAuth(&config.AuthConfig{JWTSecret: "test-secret", TokenTTL: ttl})
}

func TestTokenRoundTrip(t *testing.T) {
	auth := newTestAuth(time.Hour)
	userID := uuid.New()

	token, err := auth.GenerateToken(userID, models.RoleAdmin)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestExpiredTokenRejected(t *testing.T) {
	auth := newTestAuth(-time.Minute)
	token, err := auth.GenerateToken(uuid.New(), models.RoleUser)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := newTestAuth(time.Hour).GenerateToken(uuid.New(), models.RoleUser)
	require.NoError(t, err)

	other := NewAuth(&config.AuthConfig{JWTSecret: "other-secret", TokenTTL: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	auth := newTestAuth(time.Hour)
	userID := uuid.New()
	token, err := auth.GenerateToken(userID, models.RoleUser)
	require.NoError(t, err)

	var gotUserID uuid.UUID
	var gotRole models.Role
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserIDFromContext(r.Context())
		gotRole, _ = GetRoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/messages/conversations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, gotUserID)
		assert.Equal(t, models.RoleUser, gotRole)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/messages/conversations", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/messages/conversations", nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unprotected route passes without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	userID := uuid.New()

	assert.True(t, rl.Allow(userID))
	assert.True(t, rl.Allow(userID))
	// Burst exhausted.
	assert.False(t, rl.Allow(userID))
	// Other users have their own bucket.
	assert.True(t, rl.Allow(uuid.New()))
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	userID := uuid.New()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	makeRequest := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/messages", nil)
		req = req.WithContext(SetUserIDInContext(req.Context(), userID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, makeRequest().Code)
	rec := makeRequest()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOO_MANY_REQUESTS")
}
