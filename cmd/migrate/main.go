package main

import (
	"errors"
	"flag"
	"os"

	"sales_arena/internal/logger"
	"sales_arena/internal/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger.Init("info", false)
	defer logger.Sync()

	down := flag.Bool("down", false, "roll back every migration")
	steps := flag.Int("steps", 0, "apply n migrations (negative rolls back)")
	force := flag.Int("force", -1, "force the schema version after a failed run")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	m, err := migrations.New(dsn)
	if err != nil {
		logger.Fatal("open migrator", "error", err)
	}
	defer m.Close()

	switch {
	case *force >= 0:
		err = m.Force(*force)
	case *steps != 0:
		err = m.Steps(*steps)
	case *down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("migration failed", "error", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Fatal("read version", "error", err)
	}
	logger.Info("migrations applied", "version", version, "dirty", dirty)
}
