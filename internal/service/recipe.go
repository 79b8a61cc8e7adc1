package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/model"
	"github.com/pageza/recipefinder/backend/internal/repository"
	"github.com/pageza/recipefinder/backend/internal/types"
)

const (
	DefaultPopularLimit = 10
	MaxPopularLimit     = 50
)

const healthCheckTimeout = 2 * time.Second

// RecipeReader reads stored recipes
type RecipeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	Popular(ctx context.Context, limit int) ([]model.Recipe, error)
	Count(ctx context.Context) (int64, error)
}

// BreakerReporter exposes the vector search circuit breaker state
type BreakerReporter interface {
	BreakerState() string
}

// RecipeService handles stored recipe lookups and health reporting
type RecipeService struct {
	store    RecipeReader
	embedder Embedder
	breaker  BreakerReporter
	log      *zap.Logger
}

// NewRecipeService creates a new RecipeService instance. breaker may be nil.
func NewRecipeService(store RecipeReader, embedder Embedder, breaker BreakerReporter, log *zap.Logger) *RecipeService {
	return &RecipeService{
		store:    store,
		embedder: embedder,
		breaker:  breaker,
		log:      logger.OrNop(log),
	}
}

// GetRecipe retrieves a stored recipe by id
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*types.RecipeCandidate, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound(apperror.CodeRecipeNotFound, "Recipe details not found")
	}

	recipe, err := s.store.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound(apperror.CodeRecipeNotFound, "Recipe details not found")
		}
		s.log.Error("Get recipe failed", zap.String("id", id), zap.Error(err))
		return nil, apperror.Internal(err, apperror.CodeFetch, "Unable to fetch recipe details")
	}

	c := recipe.ToCandidate(nil)
	return &c, nil
}

// Popular returns the highest-rated stored recipes. limit defaults to 10
// and is capped at 50.
func (s *RecipeService) Popular(ctx context.Context, limit int) ([]types.RecipeCandidate, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	if limit > MaxPopularLimit {
		limit = MaxPopularLimit
	}

	rows, err := s.store.Popular(ctx, limit)
	if err != nil {
		s.log.Error("Popular recipes failed", zap.Error(err))
		return nil, apperror.Internal(err, apperror.CodeFetch, "Unable to fetch popular recipes")
	}

	out := make([]types.RecipeCandidate, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToCandidate(nil))
	}
	return out, nil
}

// Health checks the embedding provider and the recipe store. It never
// fails; unavailable components are reported as degraded.
func (s *RecipeService) Health(ctx context.Context) types.HealthReport {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	status := types.ServiceStatus{AIService: "healthy", VectorSearch: "healthy"}

	if _, err := s.embedder.Embed(ctx, "health check"); err != nil {
		s.log.Warn("Embedding provider unhealthy", zap.String("provider", s.embedder.Name()), zap.Error(err))
		status.AIService = "degraded"
	}

	count, err := s.store.Count(ctx)
	switch {
	case err != nil:
		s.log.Warn("Recipe store unhealthy", zap.Error(err))
		status.VectorSearch = "unavailable"
	case s.breaker != nil && s.breaker.BreakerState() != "closed":
		status.VectorSearch = "degraded"
	}
	status.StoredRecipes = count

	overall := "healthy"
	if status.AIService != "healthy" || status.VectorSearch != "healthy" {
		overall = "degraded"
	}

	return types.HealthReport{
		Status:    overall,
		Services:  status,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}
