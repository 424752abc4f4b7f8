package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/logger"
	"sales_arena/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// ws_smoke signs in two users against a running server, sends a private
// message from A to B over REST and waits for B to receive it on /ws.
func main() {
	_ = godotenv.Load()
	logger.Init("debug", false)
	defer logger.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	service.InitJWT(os.Getenv("JWT_SECRET"), os.Getenv("JWT_ISSUER"))

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	profiles := service.NewProfileService(pool, nil, 0, nil)
	ensure := func(id uuid.UUID, name string) {
		if _, err := profiles.Create(ctx, id, service.CreateProfileInput{Username: name, Role: domain.RoleManager}); err != nil {
			logger.Fatal("create profile", "username", name, "error", err)
		}
	}
	userA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	userB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	ensure(userA, "smoke_a")
	ensure(userB, "smoke_b")

	tokenA, err := service.GenerateJWT(userA)
	if err != nil {
		logger.Fatal("gen token A", "error", err)
	}
	tokenB, err := service.GenerateJWT(userB)
	if err != nil {
		logger.Fatal("gen token B", "error", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "127.0.0.1:" + port
	connB, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", base, tokenB), nil)
	if err != nil {
		logger.Fatal("dial B", "error", err)
	}
	defer connB.Close()

	body, _ := json.Marshal(map[string]any{
		"recipient_id": userB,
		"subject":      "smoke",
		"message":      "hello from A",
	})
	req, _ := http.NewRequest(http.MethodPost, "http://"+base+"/api/v1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenA)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Fatal("send message", "error", err)
	}
	resp.Body.Close()
	logger.Info("message sent", "status", resp.StatusCode)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = connB.SetReadDeadline(deadline)
		_, msg, err := connB.ReadMessage()
		if err != nil {
			logger.Fatal("B read", "error", err)
		}
		var frame struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(msg, &frame)
		logger.Info("B got", "frame", string(msg))
		if frame.Type == string(domain.EventPrivateMessage) {
			logger.Info("smoke test finished")
			return
		}
	}
	logger.Fatal("B never received the message")
}
