package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipefinder/backend/internal/model"
)

// postgresIndexes are created after auto-migration on postgres only
var postgresIndexes = []struct {
	name string
	sql  string
}{
	{
		name: "idx_recipes_embedding_hnsw",
		sql:  `CREATE INDEX IF NOT EXISTS idx_recipes_embedding_hnsw ON recipes USING hnsw (embedding vector_cosine_ops)`,
	},
	{
		name: "idx_recipes_search_text_fts",
		sql:  `CREATE INDEX IF NOT EXISTS idx_recipes_search_text_fts ON recipes USING GIN (to_tsvector('english', search_text))`,
	},
	{
		name: "idx_recipes_tags",
		sql:  `CREATE INDEX IF NOT EXISTS idx_recipes_tags ON recipes USING GIN (tags)`,
	},
}

// Models lists every table owned by the service
func Models() []interface{} {
	return []interface{}{
		&model.Recipe{},
		&model.UserProfile{},
		&model.RecipeFavorite{},
		&model.SearchHistory{},
	}
}

// RunMigrations creates or updates the schema. On postgres it also enables
// pgvector and builds the similarity and full-text indexes.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	postgres := db.Dialector.Name() == "postgres"

	if postgres {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to create vector extension: %w", err)
		}
	} else {
		log.Info("Using GORM auto-migration without vector indexes", zap.String("dialect", db.Dialector.Name()))
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	if !postgres {
		return nil
	}

	for _, idx := range postgresIndexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Debug("Ensured index", zap.String("index", idx.name))
	}

	log.Info("Database migrations applied")
	return nil
}
