package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/types"
)

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 500000000, time.UTC)

func fixedClock() time.Time { return fixedNow }

func candidates(prefix string, n int) []types.RecipeCandidate {
	out := make([]types.RecipeCandidate, n)
	for i := range out {
		out[i] = types.RecipeCandidate{Name: fmt.Sprintf("%s %d", prefix, i), Rating: ratingPtr(4.0), Tags: []string{prefix}}
	}
	return out
}

func TestAssembleOrdering(t *testing.T) {
	a := NewAssembler(fixedClock)
	q := types.IngredientQuery{Ingredients: []string{"rice"}, Mood: "comfort"}

	out := a.Assemble(candidates("gen", 2), candidates("db", 2), q)
	require.Len(t, out, ResultSize)
	assert.Equal(t, "gen 0", out[0].Name)
	assert.Equal(t, "gen 1", out[1].Name)
	assert.Equal(t, "db 0", out[2].Name)
}

func TestAssembleGeneratedKeepPriority(t *testing.T) {
	a := NewAssembler(fixedClock)
	out := a.Assemble(candidates("gen", 3), candidates("db", 2), types.IngredientQuery{Ingredients: []string{"rice"}})
	for _, c := range out {
		assert.Contains(t, c.Name, "gen")
	}
}

func TestAssemblePadsWithFallback(t *testing.T) {
	a := NewAssembler(fixedClock)
	q := types.IngredientQuery{Ingredients: []string{"egg", "toast", "jam", "butter", "milk", "tea"}, Mood: "sweet"}

	out := a.Assemble(nil, nil, q)
	require.Len(t, out, ResultSize)
	for _, c := range out {
		assert.Equal(t, "Simple Sweet Creation", c.Name)
		assert.Equal(t, "20 min", c.CookTime)
		assert.Equal(t, "Easy", c.Difficulty)
		assert.Len(t, c.Ingredients, 5)
		assert.Equal(t, types.IngredientAmount{Name: "Egg", Amount: "as needed"}, c.Ingredients[0])
		assert.Equal(t, []string{"egg", "toast", "jam", "sweet"}, c.Tags)
	}
}

func TestAssembleAssignsPositionalIDs(t *testing.T) {
	a := NewAssembler(fixedClock)
	out := a.Assemble(candidates("gen", 1), candidates("db", 1), types.IngredientQuery{Ingredients: []string{"rice"}})

	ts := float64(fixedNow.UnixNano()) / 1e9
	for i, c := range out {
		assert.Equal(t, fmt.Sprintf("recipe_%d_%.6f", i+1, ts), c.ID)
	}
}

func TestAssembleFillsMissingFields(t *testing.T) {
	a := NewAssembler(fixedClock)
	bare := []types.RecipeCandidate{{Name: "Bare"}}
	q := types.IngredientQuery{Ingredients: []string{"rice", "beans"}, Mood: "spicy"}

	out := a.Assemble(bare, nil, q)
	require.NotNil(t, out[0].Rating)
	assert.Equal(t, DefaultRating, *out[0].Rating)
	assert.Equal(t, DefaultImage, out[0].Image)
	assert.Equal(t, DefaultTip, out[0].Tip)
	assert.Equal(t, []string{"rice", "beans", "spicy"}, out[0].Tags)
	assert.Equal(t, "spicy", out[0].Mood)

	// the input is left untouched
	assert.Empty(t, bare[0].ID)
	assert.Nil(t, bare[0].Rating)
}

func TestAssembleKeepsExistingFields(t *testing.T) {
	a := NewAssembler(fixedClock)
	in := []types.RecipeCandidate{{Name: "Full", Rating: ratingPtr(3.9), Image: "🍜", Tip: "Slurp.", Tags: []string{"noodles"}}}

	out := a.Assemble(in, nil, types.IngredientQuery{Ingredients: []string{"noodles"}})
	assert.Equal(t, 3.9, *out[0].Rating)
	assert.Equal(t, "🍜", out[0].Image)
	assert.Equal(t, "Slurp.", out[0].Tip)
	assert.Equal(t, []string{"noodles"}, out[0].Tags)
}

func TestAssembleKeepsZeroRating(t *testing.T) {
	a := NewAssembler(fixedClock)
	in := []types.RecipeCandidate{{Name: "Burnt Toast", Rating: ratingPtr(0)}}

	out := a.Assemble(in, nil, types.IngredientQuery{Ingredients: []string{"bread"}})
	require.NotNil(t, out[0].Rating)
	assert.Equal(t, 0.0, *out[0].Rating)
	require.NotNil(t, out[1].Rating)
	assert.Equal(t, DefaultRating, *out[1].Rating)
}
