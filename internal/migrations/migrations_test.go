package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/arena", DriverURL("postgres://u:p@localhost:5432/arena"))
	assert.Equal(t, "pgx5://localhost/arena", DriverURL("postgresql://localhost/arena"))
	assert.Equal(t, "pgx5://localhost/arena", DriverURL("pgx5://localhost/arena"))
}

func TestEmbeddedPairs(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(FS, "*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
