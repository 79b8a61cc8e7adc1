package service

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/types"
)

func seededChooser() Chooser {
	return rand.New(rand.NewPCG(1, 2)).IntN
}

func TestGenerateShape(t *testing.T) {
	g := NewTemplateGenerator(seededChooser())
	query := types.IngredientQuery{Ingredients: []string{"chicken", "rice", "onion", "garlic"}, Mood: "comfort"}

	recipes := g.Generate(query)
	require.Len(t, recipes, 3)

	wantRatings := []float64{4.3, 4.5, 4.7}
	for i, r := range recipes {
		assert.Contains(t, r.Name, "Chicken")
		assert.Equal(t, "35-45 min", r.CookTime)
		assert.Equal(t, "Easy", r.Difficulty)
		require.NotNil(t, r.Rating)
		assert.Equal(t, wantRatings[i], *r.Rating)
		assert.Len(t, r.Instructions, 5)
		assert.Equal(t, []string{"chicken", "rice", "onion", "comfort"}, r.Tags)
		assert.Equal(t, "comfort", r.Mood)
		assert.NotEmpty(t, r.Tip)
		assert.NotEmpty(t, r.Image)

		require.GreaterOrEqual(t, len(r.Ingredients), 4)
		assert.Equal(t, types.IngredientAmount{Name: "Chicken", Amount: "300-400g"}, r.Ingredients[0])
		assert.Equal(t, types.IngredientAmount{Name: "Rice", Amount: "200g"}, r.Ingredients[1])
		assert.Equal(t, types.IngredientAmount{Name: "Garlic", Amount: "1 cup"}, r.Ingredients[3])
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	query := types.IngredientQuery{Ingredients: []string{"tofu", "kale"}, Mood: "fresh"}
	a := NewTemplateGenerator(seededChooser()).Generate(query)
	b := NewTemplateGenerator(seededChooser()).Generate(query)
	assert.Equal(t, a, b)
}

func TestGenerateSkipsDuplicateComplements(t *testing.T) {
	g := NewTemplateGenerator(seededChooser())
	recipes := g.Generate(types.IngredientQuery{Ingredients: []string{"salt", "pasta"}, Mood: "indulgent"})

	count := 0
	for _, ing := range recipes[0].Ingredients {
		if ing.Name == "Salt" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, "Simple", recipes[0].Difficulty)
}

func TestGenerateLimitsIngredientList(t *testing.T) {
	g := NewTemplateGenerator(seededChooser())
	ings := []string{"beef", "carrot", "potato", "onion", "celery", "thyme", "bay leaf", "stock"}
	recipes := g.Generate(types.IngredientQuery{Ingredients: ings, Mood: "savory"})

	// six user ingredients plus three complements
	assert.Len(t, recipes[0].Ingredients, maxGeneratedIngredients+len(complementIngredients))
	assert.Equal(t, "Medium", recipes[0].Difficulty)
}

func TestGenerateEmptyQuery(t *testing.T) {
	recipes := NewTemplateGenerator(seededChooser()).Generate(types.IngredientQuery{})
	require.Len(t, recipes, 1)
	assert.Equal(t, "Simple Comfort Dish", recipes[0].Name)
}

func TestEstimates(t *testing.T) {
	assert.Equal(t, "2 cups", EstimateAmount("baby spinach"))
	assert.Equal(t, "100ml", EstimateAmount("Heavy Cream"))
	assert.Equal(t, "25-35 min", EstimateCookTime([]string{"salmon", "lemon"}))
	assert.Equal(t, "20-30 min", EstimateCookTime([]string{"quinoa"}))
	assert.Equal(t, "15-25 min", EstimateCookTime([]string{"apple"}))
	assert.Equal(t, "Advanced", EstimateDifficulty(10))
}

func TestEstimateDifficultyBoundaries(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{1, "Simple"},
		{3, "Simple"},
		{4, "Easy"},
		{6, "Easy"},
		{7, "Medium"},
		{9, "Medium"},
		{10, "Advanced"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateDifficulty(tt.count), "count %d", tt.count)
	}
}
