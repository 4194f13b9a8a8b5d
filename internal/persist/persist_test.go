package persist

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgarena/survivor/internal/config"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "migrations/00001_init.sql", files[0])

	for _, f := range files {
		raw, err := fs.ReadFile(migrations, f)
		require.NoError(t, err)
		sql := string(raw)
		assert.True(t, strings.HasPrefix(sql, "-- +goose Up"), f)
		assert.Contains(t, sql, "-- +goose Down", f)
	}
}

func TestInitCreatesRunAndLedgerTables(t *testing.T) {
	raw, err := fs.ReadFile(migrations, "migrations/00001_init.sql")
	require.NoError(t, err)
	sql := string(raw)
	assert.Contains(t, sql, "CREATE TABLE runs")
	assert.Contains(t, sql, "CREATE TABLE shop_ledger")
	assert.Contains(t, sql, "REFERENCES runs (id)")
}

func TestEnabled(t *testing.T) {
	assert.False(t, Enabled(config.DatabaseConfig{}))
	assert.True(t, Enabled(config.DatabaseConfig{DSN: "postgres://localhost/survivor"}))
}

func TestSpent(t *testing.T) {
	assert.Zero(t, Spent(nil))
	assert.Equal(t, 950, Spent([]LedgerEntry{
		{Item: "upgrade", Cost: 500},
		{Item: "reload", Cost: 150},
		{Item: "reroll", Cost: 300},
	}))
}
