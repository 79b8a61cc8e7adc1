package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/database"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/repository"
	"github.com/pageza/recipefinder/backend/internal/service"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// batchSize is the number of recipes embedded and stored per call
const batchSize = 25

//go:embed recipes.json
var bundledRecipes []byte

func loadRecipes(path string) ([]types.IndexRecipeRequest, error) {
	raw := bundledRecipes
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		raw = data
	}

	var recipes []types.IndexRecipeRequest
	if err := json.Unmarshal(raw, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse recipes: %w", err)
	}
	return recipes, nil
}

func main() {
	file := flag.String("file", "", "JSON file of recipes to index instead of the bundled samples")
	flag.Parse()

	if err := run(*file); err != nil {
		log.Fatalf("seed_recipes: %v", err)
	}
}

func run(file string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.Env.JSONLogs())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	recipes, err := loadRecipes(file)
	if err != nil {
		zl.Error("Failed to load recipes", zap.Error(err))
		return err
	}

	db, err := database.New(cfg.DB, zl)
	if err != nil {
		zl.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, zl); err != nil {
		zl.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	// The seed run talks to the embedding provider directly, without the
	// redis cache
	embedder, err := service.NewEmbedder(cfg.Embedding, nil, zl)
	if err != nil {
		zl.Error("Failed to create embedder", zap.Error(err))
		return err
	}

	indexer := service.NewIndexService(embedder, repository.NewRecipeRepository(db), zl)
	ctx := context.Background()

	var total types.IndexResult
	for start := 0; start < len(recipes); start += batchSize {
		end := min(start+batchSize, len(recipes))

		result, err := indexer.Index(ctx, recipes[start:end])
		if err != nil {
			zl.Error("Failed to index batch", zap.Int("start", start), zap.Int("end", end), zap.Error(err))
			return err
		}
		total.Indexed += result.Indexed
		total.Embedded += result.Embedded
		zl.Info("Indexed batch", zap.Int("start", start+1), zap.Int("end", end))
	}

	zl.Info("Successfully seeded recipes",
		zap.Int("indexed", total.Indexed),
		zap.Int("embedded", total.Embedded),
		zap.String("provider", embedder.Name()),
	)
	return nil
}
