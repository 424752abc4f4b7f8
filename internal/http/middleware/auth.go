package middleware

import (
	"context"
	"net/http"
	"strings"

	"sales_arena/internal/logger"
	"sales_arena/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserIDKey = "user_id"
	TokenKey  = "token"
)

// Authenticator verifies a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*service.TokenClaims, error)
}

// JWT requires "Authorization: Bearer <token>" and stores the user id and raw token.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		token = strings.TrimSpace(token)

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TokenKey, token)
		c.Request = c.Request.WithContext(logger.ContextWith(c.Request.Context(), "user_id", claims.UserID))
		c.Next()
	}
}

// UserID returns the id stored by JWT.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
