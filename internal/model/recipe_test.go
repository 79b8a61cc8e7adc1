package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/types"
)

func sampleRecipe() Recipe {
	return Recipe{
		Name:        "Garlic Chicken",
		Description: "Weeknight Dinner",
		Mood:        "comfort",
		Ingredients: IngredientList{
			{Name: "Chicken", Amount: "400g"},
			{Name: "Garlic", Amount: "4 cloves"},
		},
		Instructions: JSONBStringArray{"Brown.", "Simmer."},
		Tags:         StringArray{"dinner"},
	}
}

func TestSearchAndEmbeddingText(t *testing.T) {
	r := sampleRecipe()
	assert.Equal(t, "garlic chicken weeknight dinner chicken garlic dinner comfort", r.BuildSearchText())
	assert.Equal(t, "chicken, garlic, dinner", r.EmbeddingText())

	require.NoError(t, r.BeforeSave(nil))
	assert.Equal(t, r.BuildSearchText(), r.SearchText)
}

func TestToCandidateCopies(t *testing.T) {
	r := sampleRecipe()
	score := 0.82
	c := r.ToCandidate(&score)

	assert.Equal(t, r.ID.String(), c.SourceID)
	assert.Equal(t, 0.82, c.Score())
	assert.Equal(t, []types.IngredientAmount{{Name: "Chicken", Amount: "400g"}, {Name: "Garlic", Amount: "4 cloves"}}, c.Ingredients)

	c.Ingredients[0].Name = "Tofu"
	c.Tags[0] = "lunch"
	assert.Equal(t, "Chicken", r.Ingredients[0].Name)
	assert.Equal(t, "dinner", r.Tags[0])
}

func TestColumnValues(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	var tags StringArray
	require.NoError(t, tags.Scan(`{spicy,"one pot"}`))
	assert.Equal(t, StringArray{"spicy", "one pot"}, tags)

	v, err = IngredientList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var list IngredientList
	require.NoError(t, list.Scan([]byte(`[{"name":"rice","amount":"1 cup"}]`)))
	assert.Equal(t, []string{"rice"}, list.Names())

	var steps JSONBStringArray
	require.NoError(t, steps.Scan(nil))
	assert.Nil(t, steps)
}
