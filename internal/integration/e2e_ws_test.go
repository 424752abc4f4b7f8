package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales_arena/internal/config"
	"sales_arena/internal/domain"
	httpserver "sales_arena/internal/http"
	"sales_arena/internal/http/handlers"
	"sales_arena/internal/http/middleware"
	"sales_arena/internal/realtime"
	"sales_arena/internal/service"
	"sales_arena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_PrivateMessageOverWS(t *testing.T) {
	pool := openDB(t)
	gin.SetMode(gin.TestMode)
	require.NoError(t, handlers.RegisterValidators())

	hub := ws.NewHub()
	t.Cleanup(hub.Close)

	notify := service.NewNotificationService(pool, realtime.NewLocalBroker(hub))
	audit := service.NewAuditService(pool)
	sessions := service.NewSessionService(pool, service.NewMemoryDenylist(), audit)

	cfg := &config.Config{
		APIRateLimit:     1000,
		APIRateWindow:    time.Minute,
		MutationRate:     100,
		MutationBurst:    100,
		StageRemovalMode: config.StageRemovalApplied,
		ChatHistoryLimit: 50,
	}
	r := gin.New()
	httpserver.RegisterRoutes(r, httpserver.Deps{
		Config: cfg,
		Handler: handlers.NewHandler(handlers.Services{
			Sessions:      sessions,
			Profiles:      service.NewProfileService(pool, nil, time.Minute, notify),
			Social:        service.NewSocialService(pool, notify),
			Notifications: notify,
			Audit:         audit,
		}),
		Health:   handlers.NewHealthHandler(pool, nil, "test"),
		Hub:      hub,
		Limiter:  middleware.NewMutationLimiter(cfg.MutationRate, cfg.MutationBurst),
		Sessions: sessions,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	userA := newProfile(t, pool, domain.RoleManager)
	userB := newProfile(t, pool, domain.RoleCloser)
	tokenA, err := service.GenerateJWT(userA.ID)
	require.NoError(t, err)
	tokenB, err := service.GenerateJWT(userB.ID)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tokenB
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// wait for the hub to register B
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, first, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(first), ws.MsgReady)

	body, _ := json.Marshal(map[string]any{
		"recipient_id": userB.ID,
		"subject":      "hi",
		"message":      "hello from A",
	})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenA)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var frame ws.Message
		require.NoError(t, json.Unmarshal(msg, &frame))
		if frame.Type == string(domain.EventPrivateMessage) {
			break
		}
	}

	// signed-out tokens are refused by the API
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/api/v1/session/signout", nil)
	req.Header.Set("Authorization", "Bearer "+tokenA)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/v1/session", nil)
	req.Header.Set("Authorization", "Bearer "+tokenA)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
