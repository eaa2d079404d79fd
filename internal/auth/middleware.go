package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const userKey = "auth.user"

// UserLoader resolves the account a token was issued for.
type UserLoader interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// RequireAuth resolves the bearer token to an active user and stores it on
// the gin context. Requests without a valid identity are answered with 401.
func RequireAuth(tm *TokenManager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c.GetHeader("Authorization"))
		if raw == "" {
			abort(c, "authorization token required")
			return
		}
		id, err := tm.Parse(raw, KindAccess)
		if err != nil {
			abort(c, err.Error())
			return
		}
		u, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				abort(c, "user not found")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !u.IsActive {
			abort(c, "account is inactive")
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func abort(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func bearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// CurrentUser returns the user stored by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
