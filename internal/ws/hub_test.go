package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales_arena/internal/domain"
	"sales_arena/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliverRoutesByUser(t *testing.T) {
	hub := NewHub()
	alice, bob := uuid.New(), uuid.New()

	a := &Client{UserID: alice, Send: make(chan []byte, 4), Hub: hub}
	b := &Client{UserID: bob, Send: make(chan []byte, 4), Hub: hub}
	hub.Register(a)
	hub.Register(b)

	hub.Deliver(domain.Event{Type: domain.EventPrivateMessage, UserIDs: []uuid.UUID{bob}, Payload: "hi"})
	hub.Deliver(domain.Event{Type: domain.EventChatMessage, Broadcast: true})

	assert.Len(t, a.Send, 1)
	assert.Len(t, b.Send, 2)

	var msg Message
	require.NoError(t, json.Unmarshal(<-b.Send, &msg))
	assert.Equal(t, "private_message", msg.Type)
	assert.Equal(t, "hi", msg.Payload)
}

func TestHub_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: uuid.New(), Send: make(chan []byte, 1), Hub: hub}
	hub.Register(c)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Deliver(domain.Event{Type: domain.EventProfileUpdated, UserIDs: []uuid.UUID{c.UserID}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked on a full queue")
	}
	assert.Len(t, c.Send, 1)
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: uuid.New(), Send: make(chan []byte, 1), Hub: hub}
	hub.Register(c)
	assert.Equal(t, 1, hub.Connected(c.UserID))

	hub.Unregister(c)
	hub.Unregister(c)
	assert.Equal(t, 0, hub.Connected(c.UserID))
	assert.False(t, hub.send(c, []byte("x")))
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	check := originChecker([]string{"https://app.example"})
	assert.True(t, check(req("https://app.example")))
	assert.False(t, check(req("https://evil.example")))
	assert.True(t, check(req("")))

	assert.True(t, originChecker([]string{"*"})(req("https://evil.example")))
	assert.True(t, originChecker(nil)(req("https://evil.example")))
}

func TestHandleWS_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service.InitJWT("ws-secret", "")
	sessions := service.NewSessionService(nil, service.NewMemoryDenylist(), nil)

	hub := NewHub()
	r := gin.New()
	r.GET("/ws", HandleWS(hub, sessions, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	userID := uuid.New()
	token, err := service.GenerateJWT(userID)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() Message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var m Message
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}

	assert.Equal(t, MsgReady, read().Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": MsgPing}))
	assert.Equal(t, MsgPong, read().Type)

	hub.Deliver(domain.Event{Type: domain.EventRankChanged, UserIDs: []uuid.UUID{userID}})
	assert.Equal(t, string(domain.EventRankChanged), read().Type)
}
