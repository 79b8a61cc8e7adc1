package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/types"
)

type stubRetriever struct {
	recipes []types.RecipeCandidate
	limit   int
	query   types.IngredientQuery
	panics  bool
}

func (r *stubRetriever) Retrieve(_ context.Context, q types.IngredientQuery, limit int) []types.RecipeCandidate {
	if r.panics {
		panic("store exploded")
	}
	r.query = q
	r.limit = limit
	return r.recipes
}

type panicGenerator struct{}

func (panicGenerator) Generate(types.IngredientQuery) []types.RecipeCandidate {
	panic("template missing")
}

type fixedGenerator []types.RecipeCandidate

func (g fixedGenerator) Generate(types.IngredientQuery) []types.RecipeCandidate { return g }

type recordingHistory struct {
	mu      sync.Mutex
	entries []string
	err     error
}

func (h *recordingHistory) RecordSearch(_ context.Context, userName string, _ types.IngredientQuery, _ int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, userName)
	return h.err
}

func TestSearchReturnsThreeRecipes(t *testing.T) {
	ret := &stubRetriever{recipes: candidates("db", 2)}
	svc := NewSearchService(NewTemplateGenerator(seededChooser()), ret, nil, WithClock(fixedClock))

	resp, err := svc.Search(context.Background(), types.SearchRequest{Ingredients: "Chicken, Rice", Mood: "Comfort"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Len(t, resp.Recipes, 3)
	assert.Equal(t, 3, resp.Metadata.TotalResults)
	assert.Equal(t, 3, resp.Metadata.AIGenerated)
	assert.Equal(t, 2, resp.Metadata.DatabaseMatches)
	assert.Equal(t, "2024-03-01T10:30:00.5Z", resp.Metadata.Timestamp)
	assert.Equal(t, []string{"chicken", "rice"}, resp.SearchQuery.Ingredients)
	assert.Equal(t, "comfort", resp.SearchQuery.Mood)
	assert.Equal(t, DefaultUserName, resp.SearchQuery.UserName)

	assert.Equal(t, 2, ret.limit)
	assert.Equal(t, resp.SearchQuery.Ingredients, ret.query.Ingredients)
}

func TestSearchUsesRetrievedWhenGeneratorIsShort(t *testing.T) {
	gen := fixedGenerator(candidates("gen", 1))
	svc := NewSearchService(gen, &stubRetriever{recipes: candidates("db", 2)}, nil, WithClock(fixedClock))

	resp, err := svc.Search(context.Background(), types.SearchRequest{Ingredients: "rice"})
	require.NoError(t, err)
	assert.Equal(t, "gen 0", resp.Recipes[0].Name)
	assert.Equal(t, "db 0", resp.Recipes[1].Name)
	assert.Equal(t, "db 1", resp.Recipes[2].Name)
}

func TestSearchValidationErrors(t *testing.T) {
	svc := NewSearchService(NewTemplateGenerator(seededChooser()), &stubRetriever{}, nil)

	_, err := svc.Search(context.Background(), types.SearchRequest{Ingredients: "  "})
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeMissingIngredients, ae.Code)

	_, err = svc.Search(context.Background(), types.SearchRequest{Ingredients: "rice", UserName: "<bob>"})
	assert.Equal(t, apperror.KindInvalidUserName, apperror.KindOf(err))
}

func TestSearchGeneratorFailure(t *testing.T) {
	svc := NewSearchService(panicGenerator{}, &stubRetriever{}, nil)

	_, err := svc.Search(context.Background(), types.SearchRequest{Ingredients: "rice"})
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSearch, ae.Code)
	assert.Equal(t, 500, ae.Status)
}

func TestSearchSurvivesRetrieverPanic(t *testing.T) {
	svc := NewSearchService(NewTemplateGenerator(seededChooser()), &stubRetriever{panics: true}, nil)

	resp, err := svc.Search(context.Background(), types.SearchRequest{Ingredients: "rice"})
	require.NoError(t, err)
	assert.Len(t, resp.Recipes, 3)
	assert.Equal(t, 0, resp.Metadata.DatabaseMatches)
}

func TestSearchRecordsHistoryForNamedUsers(t *testing.T) {
	history := &recordingHistory{}
	svc := NewSearchService(NewTemplateGenerator(seededChooser()), &stubRetriever{}, nil, WithHistory(history))

	_, err := svc.Search(context.Background(), types.SearchRequest{Ingredients: "rice"})
	require.NoError(t, err)
	assert.Empty(t, history.entries)

	_, err = svc.Search(context.Background(), types.SearchRequest{Ingredients: "rice", UserName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada"}, history.entries)
}

func TestSearchIgnoresHistoryFailure(t *testing.T) {
	history := &recordingHistory{err: errors.New("db down")}
	svc := NewSearchService(NewTemplateGenerator(seededChooser()), &stubRetriever{}, nil, WithHistory(history))

	resp, err := svc.Search(context.Background(), types.SearchRequest{Ingredients: "rice", UserName: "Ada"})
	require.NoError(t, err)
	assert.Len(t, resp.Recipes, 3)
}

func TestRandom(t *testing.T) {
	svc := NewSearchService(NewTemplateGenerator(seededChooser()), &stubRetriever{}, nil, WithClock(fixedClock))

	recipe, err := svc.Random()
	require.NoError(t, err)
	assert.Equal(t, "random_1709289000.500000", recipe.ID)
	assert.Contains(t, recipe.Name, "Chicken")
	assert.Equal(t, "comfort", recipe.Mood)

	_, err = NewSearchService(fixedGenerator(nil), &stubRetriever{}, nil).Random()
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeGeneration, ae.Code)
}

func TestSearchChickenRiceTomatoScenario(t *testing.T) {
	svc := NewSearchService(NewTemplateGenerator(seededChooser()), &stubRetriever{}, nil, WithClock(fixedClock))

	resp, err := svc.Search(context.Background(), types.SearchRequest{Ingredients: "chicken, rice, Tomato", Mood: "comfort"})
	require.NoError(t, err)

	assert.Equal(t, []string{"chicken", "rice", "tomato"}, resp.SearchQuery.Ingredients)
	assert.Equal(t, "comfort", resp.SearchQuery.Mood)
	require.Len(t, resp.Recipes, 3)
	assert.Equal(t, 3, resp.Metadata.AIGenerated)
	assert.Equal(t, 0, resp.Metadata.DatabaseMatches)

	for _, r := range resp.Recipes {
		assert.Equal(t, "35-45 min", r.CookTime)
		assert.Equal(t, "Simple", r.Difficulty)
		assert.NotEmpty(t, r.ID)
		require.NotNil(t, r.Rating)
		assert.NotEmpty(t, r.Image)
		assert.NotEmpty(t, r.Tip)
	}
}

func TestSearchEmptyInputSkipsPipeline(t *testing.T) {
	ret := &stubRetriever{}
	history := &recordingHistory{}
	svc := NewSearchService(panicGenerator{}, ret, nil, WithHistory(history))

	_, err := svc.Search(context.Background(), types.SearchRequest{Ingredients: "", UserName: "Ada"})
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindEmptyInput, ae.Kind)
	assert.Equal(t, 400, ae.Status)
	assert.Nil(t, ret.query.Ingredients)
	assert.Empty(t, history.entries)
}
