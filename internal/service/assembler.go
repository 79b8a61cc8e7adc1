package service

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/recipefinder/backend/internal/metrics"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// ResultSize is the number of recipes in every search response
const ResultSize = 3

// Field defaults applied to candidates that lack them
const (
	DefaultRating = 4.5
	DefaultImage  = "🍽️"
	DefaultTip    = "Enjoy this delicious creation!"
)

const maxFallbackIngredients = 5

var fallbackInstructions = []string{
	"Prepare your ingredients with care.",
	"Cook them together until perfectly done.",
	"Season to taste and serve with love.",
}

// Assembler merges generated and retrieved candidates into the final list
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates an Assembler. A nil clock uses time.Now.
func NewAssembler(now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{now: now}
}

// Assemble returns exactly ResultSize candidates. Generated candidates come
// first, then retrieved ones in order, then fallback recipes. Inputs are
// not modified.
func (a *Assembler) Assemble(generated, retrieved []types.RecipeCandidate, query types.IngredientQuery) []types.RecipeCandidate {
	out := make([]types.RecipeCandidate, 0, ResultSize)
	for _, c := range generated {
		if len(out) == ResultSize {
			break
		}
		out = append(out, c)
	}
	for _, c := range retrieved {
		if len(out) == ResultSize {
			break
		}
		out = append(out, c)
	}
	for len(out) < ResultSize {
		out = append(out, fallbackRecipe(query))
		metrics.PaddedRecipes.Inc()
	}

	mood := query.Mood
	if mood == "" {
		mood = DefaultMood
	}
	ts := float64(a.now().UnixNano()) / 1e9
	for i := range out {
		out[i].ID = fmt.Sprintf("recipe_%d_%.6f", i+1, ts)
		applyDefaults(&out[i], query.Ingredients, mood)
	}
	return out
}

func applyDefaults(c *types.RecipeCandidate, ingredients []string, mood string) {
	if c.Rating == nil {
		c.Rating = ratingPtr(DefaultRating)
	}
	if c.Image == "" {
		c.Image = DefaultImage
	}
	if c.Tip == "" {
		c.Tip = DefaultTip
	}
	if len(c.Tags) == 0 {
		c.Tags = defaultTags(ingredients, mood)
	}
	if c.Mood == "" {
		c.Mood = mood
	}
}

func ratingPtr(v float64) *float64 { return &v }

func fallbackRecipe(query types.IngredientQuery) types.RecipeCandidate {
	mood := query.Mood
	if mood == "" {
		mood = DefaultMood
	}
	title := cases.Title(language.English)

	ingredients := make([]types.IngredientAmount, 0, maxFallbackIngredients)
	for _, ing := range firstN(query.Ingredients, maxFallbackIngredients) {
		ingredients = append(ingredients, types.IngredientAmount{Name: title.String(ing), Amount: "as needed"})
	}

	return types.RecipeCandidate{
		Name:         fmt.Sprintf("Simple %s Creation", title.String(mood)),
		Description:  fmt.Sprintf("A delightful %s dish made with your ingredients", strings.ToLower(mood)),
		CookTime:     "20 min",
		Difficulty:   "Easy",
		Rating:       ratingPtr(DefaultRating),
		Image:        DefaultImage,
		Ingredients:  ingredients,
		Instructions: append([]string(nil), fallbackInstructions...),
		Tip:          "Trust your instincts - you're the chef! 👨‍🍳",
		Tags:         defaultTags(query.Ingredients, mood),
		Mood:         mood,
	}
}
