package ws

import (
	"context"
	"net/http"

	"sales_arena/internal/logger"
	"sales_arena/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Authenticator verifies the ?token= query parameter.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*service.TokenClaims, error)
}

// HandleWS upgrades authenticated requests. An empty origin list allows any origin.
func HandleWS(hub *Hub, auth Authenticator, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "user_id", claims.UserID, "error", err)
			return
		}

		go NewClient(claims.UserID, conn, hub).Run()
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
