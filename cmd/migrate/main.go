package main

import (
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/database"
	"github.com/pageza/recipefinder/backend/internal/logger"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Only check the database connection")
	flag.Parse()

	if err := run(*dryRun); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func run(dryRun bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.Env.JSONLogs())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.New(cfg.DB, zl)
	if err != nil {
		zl.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	defer func() { _ = database.Close(db) }()

	if dryRun {
		zl.Info("Database reachable, skipping migrations")
		return nil
	}

	if err := database.RunMigrations(db, zl); err != nil {
		zl.Error("Failed to apply migrations", zap.Error(err))
		return err
	}
	zl.Info("All migrations applied successfully", zap.String("driver", cfg.DB.Driver))
	return nil
}
