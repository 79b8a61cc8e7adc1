package types

import "strings"

// IngredientQuery is the canonical form of a search request after
// normalization. Ingredients are lowercased, trimmed and unique.
type IngredientQuery struct {
	Ingredients []string `json:"ingredients"`
	Mood        string   `json:"mood"`
	UserName    string   `json:"userName"`
}

// IngredientAmount is one line of a recipe's ingredient list
type IngredientAmount struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// RecipeCandidate is the unit exchanged between the generator, the
// retriever and the assembler. SearchScore is only set for retrieved
// candidates. A nil Rating means the rating is missing; 0 is a real rating.
type RecipeCandidate struct {
	ID           string             `json:"id,omitempty"`
	SourceID     string             `json:"sourceId,omitempty"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	CookTime     string             `json:"cookTime"`
	Difficulty   string             `json:"difficulty"`
	Rating       *float64           `json:"rating"`
	Image        string             `json:"image"`
	Ingredients  []IngredientAmount `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	Tip          string             `json:"tip"`
	Tags         []string           `json:"tags"`
	Mood         string             `json:"mood"`
	SearchScore  *float64           `json:"searchScore,omitempty"`
}

// Score returns the similarity score, or 0 for generated candidates
func (c RecipeCandidate) Score() float64 {
	if c.SearchScore == nil {
		return 0
	}
	return *c.SearchScore
}

// HasTag reports whether the candidate carries tag, ignoring case
func (c RecipeCandidate) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
