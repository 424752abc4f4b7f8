package main

import (
	"context"
	"flag"
	"os"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/logger"
	"sales_arena/internal/service"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger.Init("info", false)
	defer logger.Sync()

	id := flag.String("id", "", "user id (random when empty)")
	username := flag.String("username", "testuser", "profile username")
	role := flag.String("role", string(domain.RoleManager), "manager, closer or leader")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	service.InitJWT(os.Getenv("JWT_SECRET"), os.Getenv("JWT_ISSUER"))

	userID := uuid.New()
	if *id != "" {
		parsed, err := uuid.Parse(*id)
		if err != nil {
			logger.Fatal("invalid id", "error", err)
		}
		userID = parsed
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	profiles := service.NewProfileService(pool, nil, 0, nil)
	p, err := profiles.Create(ctx, userID, service.CreateProfileInput{
		Username: *username,
		FullName: "Test " + *username,
		Role:     domain.Role(*role),
	})
	if err != nil {
		logger.Fatal("create profile failed", "error", err)
	}
	logger.Info("profile ready", "id", p.ID, "username", p.Username, "role", p.Role, "rank", p.RankTitle)

	token, err := service.GenerateJWT(p.ID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	logger.Info("token", "token", token)
}
