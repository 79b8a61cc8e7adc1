package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/metrics"
	"github.com/pageza/recipefinder/backend/internal/model"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// MaxIndexBatch bounds the number of recipes accepted by one Index call
const MaxIndexBatch = 500

// RecipeWriter persists indexed recipes
type RecipeWriter interface {
	UpsertByName(ctx context.Context, recipe *model.Recipe) error
}

// IndexService embeds recipes and stores them for retrieval
type IndexService struct {
	embedder Embedder
	store    RecipeWriter
	log      *zap.Logger
}

// NewIndexService creates an IndexService
func NewIndexService(embedder Embedder, store RecipeWriter, log *zap.Logger) *IndexService {
	return &IndexService{embedder: embedder, store: store, log: logger.OrNop(log)}
}

// Index validates every recipe, then embeds and upserts them by name. A
// recipe whose embedding fails is stored without one so keyword search can
// still find it.
func (s *IndexService) Index(ctx context.Context, recipes []types.IndexRecipeRequest) (types.IndexResult, error) {
	if len(recipes) == 0 {
		return types.IndexResult{}, apperror.New(http.StatusBadRequest, apperror.CodeValidation, "At least one recipe is required")
	}
	if len(recipes) > MaxIndexBatch {
		return types.IndexResult{}, apperror.New(http.StatusBadRequest, apperror.CodeValidation,
			fmt.Sprintf("Maximum %d recipes per request", MaxIndexBatch))
	}
	for i := range recipes {
		if err := ValidateRecipe(recipes[i]); err != nil {
			return types.IndexResult{}, apperror.New(http.StatusBadRequest, apperror.CodeValidation,
				fmt.Sprintf("recipes[%d]: %s", i, err.Error()))
		}
	}

	var result types.IndexResult
	for i := range recipes {
		recipe := toModel(recipes[i])

		start := time.Now()
		vec, err := s.embedder.Embed(ctx, recipe.EmbeddingText())
		metrics.RecordEmbedding(s.embedder.Name(), time.Since(start), err)
		switch {
		case err != nil:
			s.log.Warn("Storing recipe without embedding", zap.String("name", recipe.Name), zap.Error(err))
		case len(vec) != model.EmbeddingDimension:
			s.log.Warn("Storing recipe without embedding",
				zap.String("name", recipe.Name),
				zap.Int("dimension", len(vec)),
			)
		default:
			v := pgvector.NewVector(vec)
			recipe.Embedding = &v
			result.Embedded++
		}

		if err := s.store.UpsertByName(ctx, recipe); err != nil {
			s.log.Error("Failed to index recipe", zap.String("name", recipe.Name), zap.Error(err))
			return result, apperror.Internal(err, apperror.CodeIndex, "Failed to index recipes")
		}
		result.Indexed++
	}

	s.log.Info("Indexed recipes", zap.Int("indexed", result.Indexed), zap.Int("embedded", result.Embedded))
	return result, nil
}

// ValidateRecipe checks that a recipe has the fields needed for retrieval
func ValidateRecipe(r types.IndexRecipeRequest) error {
	switch {
	case len([]rune(strings.TrimSpace(r.Name))) < 3:
		return fmt.Errorf("recipe name must be at least 3 characters long")
	case len([]rune(strings.TrimSpace(r.Description))) < 10:
		return fmt.Errorf("recipe description must be at least 10 characters long")
	case len(r.Ingredients) == 0:
		return fmt.Errorf("recipe must have at least one ingredient")
	case len(r.Instructions) == 0:
		return fmt.Errorf("recipe must have at least one instruction")
	case r.Rating != nil && (*r.Rating < 0 || *r.Rating > 5):
		return fmt.Errorf("rating must be a number between 0 and 5")
	}
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("ingredient names must not be empty")
		}
	}
	return nil
}

func toModel(r types.IndexRecipeRequest) *model.Recipe {
	rating := DefaultRating
	if r.Rating != nil {
		rating = *r.Rating
	}
	mood := strings.ToLower(strings.TrimSpace(r.Mood))

	ingredients := make(model.IngredientList, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ingredients = append(ingredients, types.IngredientAmount{
			Name:   strings.TrimSpace(ing.Name),
			Amount: strings.TrimSpace(ing.Amount),
		})
	}
	tags := make(model.StringArray, 0, len(r.Tags))
	for _, t := range r.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}

	return &model.Recipe{
		Name:         strings.TrimSpace(r.Name),
		Description:  strings.TrimSpace(r.Description),
		CookTime:     r.CookTime,
		Difficulty:   r.Difficulty,
		Rating:       rating,
		Image:        r.Image,
		Mood:         mood,
		Ingredients:  ingredients,
		Instructions: model.JSONBStringArray(r.Instructions),
		Tip:          r.Tip,
		Tags:         tags,
	}
}
