package types

import (
	"encoding/json"
	"time"
)

// SearchRequest is the body of POST /recipes/search
type SearchRequest struct {
	Ingredients string `json:"ingredients"`
	Mood        string `json:"mood"`
	UserName    string `json:"userName"`
}

// SearchMetadata summarizes where the returned recipes came from
type SearchMetadata struct {
	TotalResults    int    `json:"totalResults"`
	AIGenerated     int    `json:"aiGenerated"`
	DatabaseMatches int    `json:"databaseMatches"`
	Timestamp       string `json:"timestamp"`
}

// SearchResponse is the body returned by a successful search
type SearchResponse struct {
	Success     bool              `json:"success"`
	Recipes     []RecipeCandidate `json:"recipes"`
	SearchQuery IngredientQuery   `json:"searchQuery"`
	Metadata    SearchMetadata    `json:"metadata"`
}

// IndexRecipeRequest is one recipe submitted for indexing
type IndexRecipeRequest struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	CookTime     string             `json:"cookTime"`
	Difficulty   string             `json:"difficulty"`
	Rating       *float64           `json:"rating"`
	Image        string             `json:"image"`
	Mood         string             `json:"mood"`
	Ingredients  []IngredientAmount `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	Tip          string             `json:"tip"`
	Tags         []string           `json:"tags"`
}

// IndexRequest is the body of POST /recipes/index
type IndexRequest struct {
	Recipes []IndexRecipeRequest `json:"recipes"`
}

// IndexResult reports the outcome of an indexing batch
type IndexResult struct {
	Indexed  int `json:"indexed"`
	Embedded int `json:"embedded"`
}

// ProfileRequest is the body of POST /users/profile
type ProfileRequest struct {
	Name                *string  `json:"name"`
	Email               string   `json:"email"`
	FavoriteIngredients []string `json:"favoriteIngredients"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	PreferredMoods      []string `json:"preferredMoods"`
}

// FavoriteRequest is the body of POST /users/favorites
type FavoriteRequest struct {
	UserName   string          `json:"userName"`
	RecipeID   string          `json:"recipeId"`
	RecipeName string          `json:"recipeName"`
	RecipeData json.RawMessage `json:"recipeData"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// SearchHistoryEntry is one recorded search
type SearchHistoryEntry struct {
	ID          string    `json:"id"`
	UserName    string    `json:"userName"`
	Ingredients []string  `json:"ingredients"`
	Mood        string    `json:"mood"`
	ResultCount int       `json:"resultCount"`
	Timestamp   time.Time `json:"timestamp"`
}

// ServiceStatus reports the state of the components behind search
type ServiceStatus struct {
	AIService     string `json:"ai_service"`
	VectorSearch  string `json:"vector_search"`
	StoredRecipes int64  `json:"stored_recipes"`
}

// HealthReport is the body of GET /recipes/health
type HealthReport struct {
	Status    string        `json:"status"`
	Services  ServiceStatus `json:"services"`
	Timestamp string        `json:"timestamp"`
}
