package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *TokenManager {
	return NewTokenManager(config.AuthConfig{
		JWTSecret:  "secret",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, "e-sell")
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))

	_, err = HashPassword("abc")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTokenManager(t *testing.T) {
	tm := testManager()
	u := &domain.User{ID: 1234567890123, Role: domain.RoleSeller}

	pair, err := tm.Issue(u)
	require.NoError(t, err)
	assert.Equal(t, int64(60), pair.ExpiresIn)

	id, err := tm.Parse(pair.AccessToken, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	id, err = tm.Parse(pair.RefreshToken, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = tm.Parse(pair.AccessToken, KindRefresh)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = tm.Parse("garbage", KindAccess)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	other := NewTokenManager(config.AuthConfig{JWTSecret: "other", AccessTTL: time.Minute}, "e-sell")
	_, err = other.Parse(pair.AccessToken, KindAccess)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := testManager()
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	tok, err := tm.IssueAccess(&domain.User{ID: 1})
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Parse(tok, KindAccess)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

type usersByID map[int64]*domain.User

func (m usersByID) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, domain.NotFoundf("user not found")
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm := testManager()
	active := &domain.User{ID: 1, Email: "a@x.io", IsActive: true}
	inactive := &domain.User{ID: 2, Email: "b@x.io"}
	users := usersByID{1: active, 2: inactive}

	r := gin.New()
	r.GET("/me", RequireAuth(tm, users), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Email)
	})

	tokenFor := func(u *domain.User) string {
		s, err := tm.IssueAccess(u)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "bearer token", header: "Bearer " + tokenFor(active), status: http.StatusOK, body: "a@x.io"},
		{name: "raw token", header: tokenFor(active), status: http.StatusOK, body: "a@x.io"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "inactive", header: "Bearer " + tokenFor(inactive), status: http.StatusUnauthorized},
		{name: "unknown user", header: "Bearer " + tokenFor(&domain.User{ID: 99}), status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}
