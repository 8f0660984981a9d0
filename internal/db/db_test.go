package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_UpAndDown(t *testing.T) {
	database, err := Init("sqlite", ":memory:")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RunMigrations(database.DB, "sqlite"))

	version, err := Version(database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	var tables []string
	err = database.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'books') ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "users"}, tables)

	require.NoError(t, MigrateDown(database.DB, "sqlite"))

	version, err = Version(database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestGetDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", getDialect("sqlite"))
	assert.Equal(t, "postgres", getDialect("pgx"))
	assert.Equal(t, "mysql", getDialect("mysql"))
}
