package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/mocks"
	"github.com/pageza/recipefinder/backend/internal/model"
	"github.com/pageza/recipefinder/backend/internal/repository"
	"github.com/pageza/recipefinder/backend/internal/types"
)

var testRetrieval = config.RetrievalConfig{
	Limit:               2,
	SimilarityThreshold: 0.7,
	MaxCandidates:       100,
	CandidateMultiplier: 10,
	Timeout:             time.Second,
}

func scored(name, mood string, score float64, tags ...string) repository.ScoredRecipe {
	return repository.ScoredRecipe{
		Recipe: model.Recipe{Name: name, Mood: mood, Tags: model.StringArray(tags)},
		Score:  score,
	}
}

func names(cs []types.RecipeCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestRetrieveVectorPath(t *testing.T) {
	emb := new(mocks.MockEmbedder)
	store := new(mocks.MockRecipeStore)
	vec := []float32{0.1, 0.2}
	emb.On("Embed", mock.Anything, "chicken, rice").Return(vec, nil)
	store.On("NearestByEmbedding", mock.Anything, vec, 20, 4).Return([]repository.ScoredRecipe{
		scored("low", "fresh", 0.3),
		scored("best", "fresh", 0.95),
		scored("good", "fresh", 0.8),
		scored("mood match", "comfort", 0.4),
	}, nil)

	r := NewCandidateRetriever(emb, store, testRetrieval, nil)
	out := r.Retrieve(context.Background(), types.IngredientQuery{Ingredients: []string{"chicken", "rice"}}, 2)

	assert.Equal(t, []string{"best", "good"}, names(out))
	require.NotNil(t, out[0].SearchScore)
	assert.Equal(t, 0.95, *out[0].SearchScore)
	require.NotNil(t, out[0].Rating)
	assert.Equal(t, 0.0, *out[0].Rating, "a stored zero rating is a real rating")
	assert.Equal(t, DefaultImage, out[0].Image)
	store.AssertNotCalled(t, "KeywordSearch", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetrieveKeepsMoodMatchesBelowThreshold(t *testing.T) {
	emb := new(mocks.MockEmbedder)
	store := new(mocks.MockRecipeStore)
	emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	store.On("NearestByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]repository.ScoredRecipe{
		scored("other", "fresh", 0.5),
		scored("tagged", "", 0.4, "Comfort"),
		scored("mood", "comfort", 0.6),
	}, nil)

	r := NewCandidateRetriever(emb, store, testRetrieval, nil)
	out := r.Retrieve(context.Background(), types.IngredientQuery{Ingredients: []string{"rice"}, Mood: "comfort"}, 2)

	assert.Equal(t, []string{"mood", "tagged"}, names(out))
}

func TestRetrieveCapsCandidatePool(t *testing.T) {
	emb := new(mocks.MockEmbedder)
	store := new(mocks.MockRecipeStore)
	emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	store.On("NearestByEmbedding", mock.Anything, mock.Anything, 100, 40).Return([]repository.ScoredRecipe{}, nil)

	r := NewCandidateRetriever(emb, store, testRetrieval, nil)
	out := r.Retrieve(context.Background(), types.IngredientQuery{Ingredients: []string{"rice"}}, 20)

	assert.Empty(t, out)
	store.AssertExpectations(t)
}

func TestRetrieveFallsBackWhenEmbeddingFails(t *testing.T) {
	emb := new(mocks.MockEmbedder)
	store := new(mocks.MockRecipeStore)
	emb.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("provider down"))
	store.On("KeywordSearch", mock.Anything, []string{"beans", "spicy"}, 2).Return([]repository.ScoredRecipe{
		scored("chili", "spicy", 1),
	}, nil)

	r := NewCandidateRetriever(emb, store, testRetrieval, nil)
	out := r.Retrieve(context.Background(), types.IngredientQuery{Ingredients: []string{"beans"}, Mood: "spicy"}, 2)

	assert.Equal(t, []string{"chili"}, names(out))
	store.AssertNotCalled(t, "NearestByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRetrieveFallsBackOnVectorError(t *testing.T) {
	emb := new(mocks.MockEmbedder)
	store := new(mocks.MockRecipeStore)
	emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	store.On("NearestByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("index missing"))
	store.On("KeywordSearch", mock.Anything, mock.Anything, 2).Return([]repository.ScoredRecipe{
		scored("a", "", 0.5), scored("b", "", 0.4), scored("c", "", 0.3),
	}, nil)

	r := NewCandidateRetriever(emb, store, testRetrieval, nil)
	out := r.Retrieve(context.Background(), types.IngredientQuery{Ingredients: []string{"rice"}}, 2)

	assert.Equal(t, []string{"a", "b"}, names(out))
}

func TestRetrieveNeverFails(t *testing.T) {
	emb := new(mocks.MockEmbedder)
	store := new(mocks.MockRecipeStore)
	emb.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("provider down"))
	store.On("KeywordSearch", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	r := NewCandidateRetriever(emb, store, testRetrieval, nil)
	out := r.Retrieve(context.Background(), types.IngredientQuery{Ingredients: []string{"rice"}}, 2)
	assert.Empty(t, out)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	r := NewCandidateRetriever(new(mocks.MockEmbedder), new(mocks.MockRecipeStore), testRetrieval, nil)
	assert.Nil(t, r.Retrieve(context.Background(), types.IngredientQuery{}, 2))
}

func TestRetrieveOpensCircuit(t *testing.T) {
	emb := new(mocks.MockEmbedder)
	store := new(mocks.MockRecipeStore)
	emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
	store.On("NearestByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	store.On("KeywordSearch", mock.Anything, mock.Anything, mock.Anything).Return([]repository.ScoredRecipe{}, nil)

	bs := BreakerSettings{FailureThreshold: 2, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute}
	r := NewCandidateRetrieverWithBreaker(emb, store, testRetrieval, bs, nil)
	q := types.IngredientQuery{Ingredients: []string{"rice"}}

	for i := 0; i < 4; i++ {
		r.Retrieve(context.Background(), q, 2)
	}

	assert.Equal(t, "open", r.BreakerState())
	store.AssertNumberOfCalls(t, "NearestByEmbedding", 2)
	store.AssertNumberOfCalls(t, "KeywordSearch", 4)
}

func TestRetrieveFallsBackOnEmptyEmbedding(t *testing.T) {
	emb := new(mocks.MockEmbedder)
	store := new(mocks.MockRecipeStore)
	emb.On("Embed", mock.Anything, "rice").Return([]float32{}, nil)
	store.On("KeywordSearch", mock.Anything, []string{"rice", "comfort"}, 2).Return([]repository.ScoredRecipe{
		scored("congee", "comfort", 0.9),
	}, nil)

	r := NewCandidateRetriever(emb, store, testRetrieval, nil)
	var out []types.RecipeCandidate
	require.NotPanics(t, func() {
		out = r.Retrieve(context.Background(), types.IngredientQuery{Ingredients: []string{"rice"}, Mood: "comfort"}, 2)
	})

	assert.Equal(t, []string{"congee"}, names(out))
	store.AssertCalled(t, "KeywordSearch", mock.Anything, []string{"rice", "comfort"}, 2)
	store.AssertNotCalled(t, "NearestByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRetrieveFallsBackOnTimeout(t *testing.T) {
	cfg := testRetrieval
	cfg.Timeout = 50 * time.Millisecond

	waitForDeadline := func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}

	tests := []struct {
		name  string
		setup func(emb *mocks.MockEmbedder, store *mocks.MockRecipeStore)
	}{
		{
			name: "slow embedder",
			setup: func(emb *mocks.MockEmbedder, store *mocks.MockRecipeStore) {
				emb.On("Embed", mock.Anything, mock.Anything).Run(waitForDeadline).Return(nil, context.DeadlineExceeded)
			},
		},
		{
			name: "slow vector search",
			setup: func(emb *mocks.MockEmbedder, store *mocks.MockRecipeStore) {
				emb.On("Embed", mock.Anything, mock.Anything).Return([]float32{1}, nil)
				store.On("NearestByEmbedding", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Run(waitForDeadline).Return(nil, context.DeadlineExceeded)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb := new(mocks.MockEmbedder)
			store := new(mocks.MockRecipeStore)
			tt.setup(emb, store)

			var keywordCtxErr error
			store.On("KeywordSearch", mock.Anything, mock.Anything, 2).
				Run(func(args mock.Arguments) {
					keywordCtxErr = args.Get(0).(context.Context).Err()
				}).
				Return([]repository.ScoredRecipe{scored("pilaf", "", 0.5)}, nil)

			r := NewCandidateRetriever(emb, store, cfg, nil)
			start := time.Now()
			out := r.Retrieve(context.Background(), types.IngredientQuery{Ingredients: []string{"rice"}}, 2)

			assert.Equal(t, []string{"pilaf"}, names(out))
			assert.NoError(t, keywordCtxErr, "keyword search gets its own deadline")
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}
