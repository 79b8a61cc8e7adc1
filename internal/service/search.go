package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/metrics"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// Generator produces template recipes for a query
type Generator interface {
	Generate(query types.IngredientQuery) []types.RecipeCandidate
}

// Retriever finds stored recipes for a query and never fails
type Retriever interface {
	Retrieve(ctx context.Context, query types.IngredientQuery, limit int) []types.RecipeCandidate
}

// HistoryRecorder stores searches made by named users
type HistoryRecorder interface {
	RecordSearch(ctx context.Context, userName string, query types.IngredientQuery, resultCount int) error
}

var randomQuery = types.IngredientQuery{
	Ingredients: []string{"chicken", "vegetables", "herbs"},
	Mood:        "comfort",
}

// SearchService runs the search pipeline: normalize, then generate and
// retrieve concurrently, then assemble.
type SearchService struct {
	generator Generator
	retriever Retriever
	assembler *Assembler
	history   HistoryRecorder
	limit     int
	now       func() time.Time
	log       *zap.Logger
}

// SearchOption configures a SearchService
type SearchOption func(*SearchService)

// WithHistory records searches of named users
func WithHistory(h HistoryRecorder) SearchOption {
	return func(s *SearchService) { s.history = h }
}

// WithRetrievalLimit sets how many stored recipes are requested per search
func WithRetrievalLimit(limit int) SearchOption {
	return func(s *SearchService) { s.limit = limit }
}

// WithClock overrides the clock used for ids and timestamps
func WithClock(now func() time.Time) SearchOption {
	return func(s *SearchService) { s.now = now }
}

// NewSearchService creates a SearchService
func NewSearchService(gen Generator, ret Retriever, log *zap.Logger, opts ...SearchOption) *SearchService {
	s := &SearchService{
		generator: gen,
		retriever: ret,
		limit:     2,
		now:       time.Now,
		log:       logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.assembler = NewAssembler(s.now)
	return s
}

// Search validates req and returns exactly three recipes. Validation
// failures are returned as *apperror.Error with a 400 status.
func (s *SearchService) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	start := time.Now()

	query, err := Normalize(req.Ingredients, req.Mood)
	if err != nil {
		metrics.RecordSearch("validation_error", time.Since(start))
		return nil, err
	}
	named := strings.TrimSpace(req.UserName) != ""
	userName := DefaultUserName
	if named {
		if userName, err = CanonicalUserName(req.UserName); err != nil {
			metrics.RecordSearch("validation_error", time.Since(start))
			return nil, err
		}
	}
	query.UserName = userName

	s.log.Info("Recipe search request",
		zap.String("user", userName),
		zap.Strings("ingredients", query.Ingredients),
		zap.String("mood", query.Mood),
	)

	var generated, retrieved []types.RecipeCandidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("generator panicked: %v", r)
			}
		}()
		generated = s.generator.Generate(query)
		return nil
	})
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				// Retrieval problems never fail a search
				s.log.Error("Retriever panicked", zap.Any("panic", r))
				retrieved = nil
			}
		}()
		retrieved = s.retriever.Retrieve(gctx, query, s.limit)
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.RecordSearch("error", time.Since(start))
		return nil, apperror.Internal(err, apperror.CodeSearch,
			"An error occurred while searching for recipes. Please try again.")
	}

	recipes := s.assembler.Assemble(generated, retrieved, query)

	if named && s.history != nil {
		if err := s.history.RecordSearch(ctx, userName, query, len(recipes)); err != nil {
			s.log.Warn("Failed to record search history", zap.String("user", userName), zap.Error(err))
		}
	}

	metrics.RecordSearch("ok", time.Since(start))
	s.log.Info("Recipe search completed",
		zap.String("user", userName),
		zap.Int("results", len(recipes)),
		zap.Int("generated", len(generated)),
		zap.Int("retrieved", len(retrieved)),
	)

	return &types.SearchResponse{
		Success:     true,
		Recipes:     recipes,
		SearchQuery: query,
		Metadata: types.SearchMetadata{
			TotalResults:    len(recipes),
			AIGenerated:     len(generated),
			DatabaseMatches: len(retrieved),
			Timestamp:       s.now().UTC().Format(time.RFC3339Nano),
		},
	}, nil
}

// Random returns one generated recipe for a fixed pantry of ingredients
func (s *SearchService) Random() (*types.RecipeCandidate, error) {
	recipes := s.generator.Generate(randomQuery)
	if len(recipes) == 0 {
		return nil, apperror.Internal(fmt.Errorf("generator returned no recipes"),
			apperror.CodeGeneration, "Unable to generate random recipe")
	}
	recipe := recipes[0]
	recipe.ID = fmt.Sprintf("random_%.6f", float64(s.now().UnixNano())/1e9)
	return &recipe, nil
}
