package integration

import (
	"context"
	"os"
	"testing"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/migrations"
	"sales_arena/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "integration-secret"

// openDB migrates the database at DATABASE_URL and returns a pool, or skips.
func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	require.NoError(t, migrations.Up(dsn))
	service.InitJWT(jwtSecret, "")

	pool := db.Connect(dsn)
	t.Cleanup(pool.Close)
	return pool
}

// newProfile bootstraps a profile with a unique username.
func newProfile(t *testing.T, pool *pgxpool.Pool, role domain.Role) *domain.Profile {
	t.Helper()
	id := uuid.New()
	p, err := service.NewProfileService(pool, nil, 0, nil).Create(context.Background(), id, service.CreateProfileInput{
		Username: "it_" + id.String()[:8],
		FullName: "Integration " + string(role),
		Role:     role,
	})
	require.NoError(t, err)
	return p
}
