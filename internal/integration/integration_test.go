package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipefinder/backend/config"
	"github.com/pageza/recipefinder/backend/internal/api"
	"github.com/pageza/recipefinder/backend/internal/model"
	"github.com/pageza/recipefinder/backend/internal/repository"
	"github.com/pageza/recipefinder/backend/internal/router"
	"github.com/pageza/recipefinder/backend/internal/service"
	"github.com/pageza/recipefinder/backend/internal/testhelpers"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// setupApp wires the real services over db the same way cmd/api does
func setupApp(t *testing.T, db *gorm.DB) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	embedder := service.NewHashEmbedder(model.EmbeddingDimension)
	recipes := repository.NewRecipeRepository(db)
	tokens := service.NewTokenService("integration-secret", time.Hour)
	profiles := service.NewProfileService(db, tokens, nil)
	retriever := service.NewCandidateRetriever(embedder, recipes, config.RetrievalConfig{
		Limit:               2,
		SimilarityThreshold: 0.1,
		MaxCandidates:       100,
		CandidateMultiplier: 10,
		Timeout:             5 * time.Second,
	}, nil)

	services := api.Services{
		Search:  service.NewSearchService(service.NewTemplateGenerator(nil), retriever, nil, service.WithHistory(profiles)),
		Recipes: service.NewRecipeService(recipes, embedder, retriever, nil),
		Indexer: service.NewIndexService(embedder, recipes, nil),
		Profile: profiles,
		Tokens:  tokens,
	}
	return router.SetupRouter(services, router.Options{DB: db})
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func runUserJourney(t *testing.T, db *gorm.DB) {
	c := &client{t: t, handler: setupApp(t, db)}

	// index a small catalog
	batch := types.IndexRequest{Recipes: []types.IndexRecipeRequest{
		{
			Name:         "Garlic Chicken",
			Description:  "Golden chicken thighs with lots of garlic",
			Mood:         "comfort",
			Ingredients:  []types.IngredientAmount{{Name: "chicken", Amount: "4 thighs"}, {Name: "garlic", Amount: "6 cloves"}},
			Instructions: []string{"Brown the chicken.", "Add garlic and roast."},
			Tags:         []string{"dinner"},
		},
		{
			Name:         "Berry Parfait",
			Description:  "Layers of yogurt with fresh berries",
			Mood:         "sweet",
			Ingredients:  []types.IngredientAmount{{Name: "yogurt", Amount: "1 cup"}, {Name: "berries", Amount: "1 cup"}},
			Instructions: []string{"Layer and chill."},
		},
	}}
	var indexed map[string]interface{}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/recipes/index", batch, &indexed))
	assert.EqualValues(t, 2, indexed["indexed"])

	// create a profile and keep its token
	var profile struct {
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/users/profile", map[string]interface{}{
		"name":           "Ada",
		"preferredMoods": []string{"comfort"},
	}, &profile))
	require.NotEmpty(t, profile.Token)

	// search mixes generated and stored recipes
	var results types.SearchResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/recipes/search", types.SearchRequest{
		Ingredients: "Chicken, garlic, chicken",
		Mood:        "comfort",
		UserName:    "Ada",
	}, &results))
	require.Len(t, results.Recipes, service.ResultSize)
	assert.Equal(t, []string{"chicken", "garlic"}, results.SearchQuery.Ingredients)
	assert.Equal(t, service.ResultSize, results.Metadata.TotalResults)
	assert.GreaterOrEqual(t, results.Metadata.DatabaseMatches, 1)

	// the search was recorded
	var history struct {
		Searches   []types.SearchHistoryEntry `json:"searches"`
		Pagination types.Pagination           `json:"pagination"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/users/search-history/Ada", nil, &history))
	require.Len(t, history.Searches, 1)
	assert.Equal(t, []string{"chicken", "garlic"}, history.Searches[0].Ingredients)
	assert.EqualValues(t, 1, history.Pagination.Total)

	// favorites need a token
	fav := types.FavoriteRequest{
		UserName:   "Ada",
		RecipeID:   results.Recipes[0].ID,
		RecipeName: results.Recipes[0].Name,
	}
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/v1/users/favorites", fav, nil))

	c.token = profile.Token
	assert.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/users/favorites", fav, nil))
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/users/favorites", fav, nil))

	var favorites struct {
		Favorites []types.Favorite `json:"favorites"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/users/favorites/Ada", nil, &favorites))
	require.Len(t, favorites.Favorites, 1)

	assert.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/api/v1/users/favorites/Ada/"+fav.RecipeID, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, "/api/v1/users/favorites/Ada/"+fav.RecipeID, nil, nil))

	// stored recipes are reachable by id and popularity
	var popular struct {
		Recipes []types.RecipeCandidate `json:"recipes"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/recipes/popular", nil, &popular))
	require.Len(t, popular.Recipes, 2)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/recipes/recipe/"+popular.Recipes[0].SourceID, nil, nil))

	var health types.HealthReport
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/recipes/health", nil, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.EqualValues(t, 2, health.Services.StoredRecipes)
}

func TestUserJourneySQLite(t *testing.T) {
	runUserJourney(t, testhelpers.SetupSQLite(t))
}

func TestUserJourneyPostgres(t *testing.T) {
	runUserJourney(t, testhelpers.SetupTestDatabase(t))
}

func TestSearchValidation(t *testing.T) {
	c := &client{t: t, handler: setupApp(t, testhelpers.SetupSQLite(t))}

	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/v1/recipes/search", types.SearchRequest{Ingredients: " , "}, &body))
	assert.Equal(t, "MISSING_INGREDIENTS", body["code"])

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/v1/recipes/search", types.SearchRequest{Ingredients: "rice", Mood: "grumpy"}, &body))
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func createProfile(t *testing.T, c *client, name string) string {
	t.Helper()
	var profile struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/users/profile", map[string]interface{}{"name": name}, &profile))
	require.NotEmpty(t, profile.Token)
	return profile.Token
}

func TestUsersDifferingByCaseAreIsolated(t *testing.T) {
	handler := setupApp(t, testhelpers.SetupSQLite(t))
	upper := &client{t: t, handler: handler}
	lower := &client{t: t, handler: handler}
	upper.token = createProfile(t, upper, "Ada")
	lower.token = createProfile(t, lower, "ada")

	fav := types.FavoriteRequest{UserName: "ada", RecipeID: "r1", RecipeName: "Stew"}
	require.Equal(t, http.StatusCreated, lower.do(http.MethodPost, "/api/v1/users/favorites", fav, nil))

	assert.Equal(t, http.StatusForbidden, upper.do(http.MethodDelete, "/api/v1/users/favorites/ada/r1", nil, nil))
	assert.Equal(t, http.StatusForbidden, upper.do(http.MethodPost, "/api/v1/users/favorites", fav, nil))

	var favorites struct {
		Favorites []types.Favorite `json:"favorites"`
	}
	require.Equal(t, http.StatusOK, lower.do(http.MethodGet, "/api/v1/users/favorites/ada", nil, &favorites))
	assert.Len(t, favorites.Favorites, 1)
}

func TestSearchHistoryForApostropheName(t *testing.T) {
	c := &client{t: t, handler: setupApp(t, testhelpers.SetupSQLite(t))}
	createProfile(t, c, "O'Brien")

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/recipes/search", types.SearchRequest{
		Ingredients: "potato, leek",
		UserName:    "O'Brien",
	}, nil))

	var history struct {
		Searches []types.SearchHistoryEntry `json:"searches"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/users/search-history/OBrien", nil, &history))
	require.Len(t, history.Searches, 1)
	assert.Equal(t, []string{"potato", "leek"}, history.Searches[0].Ingredients)
}
