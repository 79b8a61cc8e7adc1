package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/logger"
	"github.com/pageza/recipefinder/backend/internal/metrics"
	"github.com/pageza/recipefinder/backend/internal/repository"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// RecipeStore is the document store queried by the retriever
type RecipeStore interface {
	NearestByEmbedding(ctx context.Context, vec []float32, numCandidates, limit int) ([]repository.ScoredRecipe, error)
	KeywordSearch(ctx context.Context, terms []string, limit int) ([]repository.ScoredRecipe, error)
}

// BreakerSettings configures the circuit breaker around vector search
type BreakerSettings struct {
	FailureThreshold uint32
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
}

// DefaultBreakerSettings trips after five consecutive failures and lets a trial
// request through after thirty seconds.
var DefaultBreakerSettings = BreakerSettings{
	FailureThreshold: 5,
	MaxRequests:      1,
	Interval:         time.Minute,
	Timeout:          30 * time.Second,
}

// CandidateRetriever finds stored recipes similar to a query. It never
// fails: vector search problems degrade to keyword search, and keyword
// search problems to an empty result.
type CandidateRetriever struct {
	embedder Embedder
	store    RecipeStore
	cfg      config.RetrievalConfig
	breaker  *gobreaker.CircuitBreaker[[]repository.ScoredRecipe]
	log      *zap.Logger
}

// NewCandidateRetriever creates a retriever with the default breaker settings
func NewCandidateRetriever(embedder Embedder, store RecipeStore, cfg config.RetrievalConfig, log *zap.Logger) *CandidateRetriever {
	return NewCandidateRetrieverWithBreaker(embedder, store, cfg, DefaultBreakerSettings, log)
}

// NewCandidateRetrieverWithBreaker creates a retriever with explicit breaker settings
func NewCandidateRetrieverWithBreaker(embedder Embedder, store RecipeStore, cfg config.RetrievalConfig, bs BreakerSettings, log *zap.Logger) *CandidateRetriever {
	log = logger.OrNop(log)
	settings := gobreaker.Settings{
		Name:        "vector-search",
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// A caller hanging up says nothing about the store
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	}

	return &CandidateRetriever{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		breaker:  gobreaker.NewCircuitBreaker[[]repository.ScoredRecipe](settings),
		log:      log,
	}
}

// BreakerState reports the vector search circuit breaker state
func (r *CandidateRetriever) BreakerState() string {
	return r.breaker.State().String()
}

// Retrieve returns up to limit stored recipes for query, best first. A
// non-positive limit uses the configured default.
func (r *CandidateRetriever) Retrieve(ctx context.Context, query types.IngredientQuery, limit int) []types.RecipeCandidate {
	if limit <= 0 {
		limit = r.cfg.Limit
	}
	if limit <= 0 || len(query.Ingredients) == 0 {
		return nil
	}

	rows, reason := r.vectorSearch(ctx, query, limit)
	if reason == "" {
		metrics.RetrievalPath.WithLabelValues("vector").Inc()
		return r.postProcess(rows)
	}

	metrics.RetrievalDegradations.WithLabelValues(reason).Inc()
	r.log.Info("Falling back to keyword search", zap.String("reason", reason))

	rows = r.keywordSearch(ctx, query, limit)
	if len(rows) == 0 {
		metrics.RetrievalPath.WithLabelValues("empty").Inc()
		return nil
	}
	metrics.RetrievalPath.WithLabelValues("keyword").Inc()
	return r.postProcess(rows)
}

// vectorSearch returns the filtered nearest recipes, or a non-empty
// degradation reason when keyword search should take over.
func (r *CandidateRetriever) vectorSearch(parent context.Context, query types.IngredientQuery, limit int) ([]repository.ScoredRecipe, string) {
	ctx, cancel := r.withTimeout(parent)
	defer cancel()

	start := time.Now()
	vec, err := r.embedder.Embed(ctx, strings.Join(query.Ingredients, ", "))
	metrics.RecordEmbedding(r.embedder.Name(), time.Since(start), err)
	if err != nil || len(vec) == 0 {
		if err != nil {
			r.log.Warn("Embedding unavailable", zap.String("provider", r.embedder.Name()), zap.Error(err))
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, "timeout"
		}
		return nil, "embedding_unavailable"
	}

	numCandidates := limit * r.cfg.CandidateMultiplier
	if r.cfg.MaxCandidates > 0 && numCandidates > r.cfg.MaxCandidates {
		numCandidates = r.cfg.MaxCandidates
	}

	rows, err := r.breaker.Execute(func() ([]repository.ScoredRecipe, error) {
		return r.store.NearestByEmbedding(ctx, vec, numCandidates, limit*2)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, "circuit_open"
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, "timeout"
		default:
			r.log.Warn("Vector search failed", zap.Error(err))
			return nil, "vector_error"
		}
	}

	return r.filter(rows, query.Mood, limit), ""
}

// filter keeps candidates that match the mood or clear the similarity
// threshold, best first.
func (r *CandidateRetriever) filter(rows []repository.ScoredRecipe, mood string, limit int) []repository.ScoredRecipe {
	kept := make([]repository.ScoredRecipe, 0, len(rows))
	for _, row := range rows {
		if row.Score >= r.cfg.SimilarityThreshold {
			kept = append(kept, row)
			continue
		}
		if mood == "" {
			continue
		}
		if strings.EqualFold(row.Mood, mood) || containsFold(row.Tags, mood) {
			kept = append(kept, row)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

func (r *CandidateRetriever) keywordSearch(parent context.Context, query types.IngredientQuery, limit int) []repository.ScoredRecipe {
	// The vector attempt may have used up its deadline, so start a fresh one
	ctx, cancel := r.withTimeout(parent)
	defer cancel()

	terms := append([]string(nil), query.Ingredients...)
	if query.Mood != "" {
		terms = append(terms, query.Mood)
	}

	rows, err := r.store.KeywordSearch(ctx, terms, limit)
	if err != nil {
		r.log.Error("Keyword search failed", zap.Error(err))
		return nil
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func (r *CandidateRetriever) postProcess(rows []repository.ScoredRecipe) []types.RecipeCandidate {
	out := make([]types.RecipeCandidate, 0, len(rows))
	for i := range rows {
		score := rows[i].Score
		c := rows[i].Recipe.ToCandidate(&score)
		if c.Rating == nil {
			c.Rating = ratingPtr(DefaultRating)
		}
		if c.Image == "" {
			c.Image = DefaultImage
		}
		if c.Tip == "" {
			c.Tip = DefaultTip
		}
		out = append(out, c)
	}
	return out
}

func (r *CandidateRetriever) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, r.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func containsFold(items []string, s string) bool {
	for _, it := range items {
		if strings.EqualFold(it, s) {
			return true
		}
	}
	return false
}
