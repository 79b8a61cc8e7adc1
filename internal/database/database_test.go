package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/database"
	"github.com/pageza/recipefinder/backend/internal/testhelpers"
)

func TestNewSQLite(t *testing.T) {
	cfg := config.DBConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db")}

	db, err := database.New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, zap.NewNop()))
	assert.NoError(t, database.HealthCheck(context.Background(), db))

	for _, table := range []string{"recipes", "user_profiles", "recipe_favorites", "search_history"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// migrations are idempotent
	require.NoError(t, database.RunMigrations(db, zap.NewNop()))

	require.NoError(t, database.Close(db))
	assert.Error(t, database.HealthCheck(context.Background(), db))
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := database.New(config.DBConfig{Driver: "mongodb"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrationsPostgres(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	var indexes []string
	require.NoError(t, db.Raw(`SELECT indexname FROM pg_indexes WHERE tablename = 'recipes'`).Scan(&indexes).Error)
	assert.Contains(t, indexes, "idx_recipes_embedding_hnsw")
	assert.Contains(t, indexes, "idx_recipes_search_text_fts")

	var columnType string
	require.NoError(t, db.Raw(
		`SELECT format_type(atttypid, atttypmod) FROM pg_attribute WHERE attrelid = 'recipes'::regclass AND attname = 'embedding'`,
	).Scan(&columnType).Error)
	assert.Equal(t, "vector(384)", columnType)

	require.NoError(t, database.RunMigrations(db, zap.NewNop()))
}
