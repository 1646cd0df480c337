package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/factures?sslmode=disable", migrateURL("postgres://u:p@db:5432/factures?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/factures", migrateURL("postgresql://u@db/factures"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}

func TestMigracionesEmbebidas(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
