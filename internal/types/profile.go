package types

import (
	"encoding/json"
	"time"
)

// UserPreferences groups the cooking preferences stored on a profile
type UserPreferences struct {
	FavoriteIngredients []string `json:"favoriteIngredients"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	PreferredMoods      []string `json:"preferredMoods"`
}

// UserProfile is the public view of a stored profile
type UserProfile struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	AvatarURL   string          `json:"avatarUrl,omitempty"`
	Preferences UserPreferences `json:"preferences"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Favorite is the public view of a saved recipe
type Favorite struct {
	ID         string          `json:"id"`
	UserName   string          `json:"userName"`
	RecipeID   string          `json:"recipeId"`
	RecipeName string          `json:"recipeName"`
	RecipeData json.RawMessage `json:"recipeData"`
	CreatedAt  time.Time       `json:"createdAt"`
}
