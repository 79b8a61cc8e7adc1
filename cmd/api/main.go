package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/api"
	"github.com/pageza/recipefinder/backend/internal/database"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/repository"
	"github.com/pageza/recipefinder/backend/internal/router"
	"github.com/pageza/recipefinder/backend/internal/server"
	"github.com/pageza/recipefinder/backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("recipefinder: %v", err)
	}
}

// run returns instead of exiting so every deferred Close executes
func run() error {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.Env.JSONLogs())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
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

	// Redis is optional: without it embeddings are not cached and
	// searches are not rate limited
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.NewRedisClient(cfg.Redis, zl)
		if err != nil {
			zl.Warn("Redis unavailable, continuing without cache and rate limiting", zap.Error(err))
			rdb = nil
		} else {
			defer func() { _ = rdb.Close() }()
		}
	}

	embedder, err := service.NewEmbedder(cfg.Embedding, rdb, zl)
	if err != nil {
		zl.Error("Failed to create embedder", zap.Error(err))
		return err
	}
	zl.Info("Embedding provider ready", zap.String("provider", embedder.Name()), zap.Int("dimension", cfg.Embedding.Dimension))

	recipes := repository.NewRecipeRepository(db)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	profiles := service.NewProfileService(db, tokens, zl)
	retriever := service.NewCandidateRetriever(embedder, recipes, cfg.Retrieval, zl)
	search := service.NewSearchService(
		service.NewTemplateGenerator(nil),
		retriever,
		zl,
		service.WithHistory(profiles),
		service.WithRetrievalLimit(cfg.Retrieval.Limit),
	)

	services := api.Services{
		Search:  search,
		Recipes: service.NewRecipeService(recipes, embedder, retriever, zl),
		Indexer: service.NewIndexService(embedder, recipes, zl),
		Profile: profiles,
		Tokens:  tokens,
	}

	if cfg.S3.Enabled {
		store, err := config.NewS3Config(context.Background(), cfg.S3)
		if err != nil {
			zl.Error("Failed to configure avatar storage", zap.Error(err))
			return err
		}
		avatars := service.NewAvatarService(store, db, zl)
		profiles.SetAvatarResolver(avatars)
		services.Avatars = avatars
	}

	opts := router.Options{
		DB:          db,
		Log:         zl,
		CORSOrigins: cfg.Server.CORSOrigins,
	}
	if rdb != nil && cfg.RateLimit.Enabled {
		opts.RateLimiter = middleware.NewRateLimiter(rdb, middleware.RateLimitConfig{
			Window:    cfg.RateLimit.Window,
			Limit:     cfg.RateLimit.Requests,
			KeyPrefix: "rate_limit:search",
		}, zl)
	}

	srv := server.New(cfg.Server, router.SetupRouter(services, opts), zl)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			zl.Error("Server error", zap.Error(err))
			return err
		}
		return nil
	case sig := <-quit:
		zl.Info("Received signal", zap.String("signal", sig.String()))
	}

	zl.Info("Shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		zl.Error("Server shutdown error", zap.Error(err))
		return err
	}
	zl.Info("Server stopped")
	return nil
}
