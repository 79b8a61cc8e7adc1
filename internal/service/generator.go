package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/recipefinder/backend/internal/types"
)

// Chooser returns an index in [0, n). Shared generators need a chooser
// that is safe for concurrent use.
type Chooser func(n int) int

const maxGeneratedIngredients = 6

var (
	adjectives = []string{"Spectacular", "Heavenly", "Epic", "Legendary", "Magical", "Supreme"}

	// name patterns take the adjective, style and main ingredient in order
	namePatterns = []string{
		"%[1]s %[2]s %[3]s Surprise",
		"%[2]s %[3]s %[1]s Delight",
		"%[1]s %[3]s Extravaganza",
		"%[2]s %[3]s Bowl of Wonder",
	}

	cookingVerbs = []string{
		"lovingly dice", "enthusiastically chop", "gently massage",
		"carefully pamper", "boldly attack", "gracefully dance with",
	}

	tipPool = []string{
		"Pro tip: Taste as you go - cooking is like a conversation with your taste buds!",
		"Remember: Confidence is the secret ingredient that makes everything taste better!",
		"Chef wisdom: If you drop something, it's just gravity seasoning. Keep going!",
		"Golden rule: Cook with music on - your food will absorb the good vibes!",
		"Time to channel your inner Gordon Ramsay (but nicer)!",
		"Let's cook something that won't require a fire extinguisher!",
		"Warning: This recipe may cause uncontrollable happiness!",
		"Prepare to amaze yourself (and possibly your neighbors)!",
		"Get ready to create some culinary magic ✨",
	}

	complementIngredients = []types.IngredientAmount{
		{Name: "Salt", Amount: "to taste"},
		{Name: "Black Pepper", Amount: "to taste"},
		{Name: "Olive Oil", Amount: "2 tbsp"},
	}
)

// TemplateGenerator builds recipe candidates from fixed templates. Every
// stylistic random choice goes through its chooser.
type TemplateGenerator struct {
	choose Chooser
}

// NewTemplateGenerator creates a generator. A nil chooser uses math/rand/v2.
func NewTemplateGenerator(choose Chooser) *TemplateGenerator {
	if choose == nil {
		choose = rand.IntN
	}
	return &TemplateGenerator{choose: choose}
}

// Generate returns exactly three candidates for query, or a single
// fallback candidate when the query has no ingredients.
func (g *TemplateGenerator) Generate(query types.IngredientQuery) []types.RecipeCandidate {
	if len(query.Ingredients) == 0 {
		return []types.RecipeCandidate{fallbackDish()}
	}

	mood := query.Mood
	if mood == "" {
		mood = DefaultMood
	}
	bucket := styleFor(mood)
	title := cases.Title(language.English)
	main := title.String(query.Ingredients[0])
	cookTime := EstimateCookTime(query.Ingredients)
	difficulty := EstimateDifficulty(len(query.Ingredients))
	ingredients := g.ingredientList(query.Ingredients)

	candidates := make([]types.RecipeCandidate, 0, 3)
	for i := 0; i < 3; i++ {
		style := bucket.styles[i%len(bucket.styles)]
		method := bucket.methods[i%len(bucket.methods)]
		emoji := bucket.emoji[i%len(bucket.emoji)]

		adjective := adjectives[g.choose(len(adjectives))]
		pattern := namePatterns[g.choose(len(namePatterns))]

		candidates = append(candidates, types.RecipeCandidate{
			Name: fmt.Sprintf(pattern, adjective, style, main),
			Description: fmt.Sprintf("A %s %s dish, %s to bring out the best of your %s.",
				strings.ToLower(style), mood, method, joinReadable(firstN(query.Ingredients, 3))),
			CookTime:     cookTime,
			Difficulty:   difficulty,
			Rating:       ratingPtr(round1(4.3 + 0.2*float64(i))),
			Image:        emoji,
			Ingredients:  append([]types.IngredientAmount(nil), ingredients...),
			Instructions: g.instructions(query.Ingredients, method),
			Tip:          tipPool[g.choose(len(tipPool))],
			Tags:         defaultTags(query.Ingredients, mood),
			Mood:         mood,
		})
	}
	return candidates
}

func (g *TemplateGenerator) ingredientList(ingredients []string) []types.IngredientAmount {
	title := cases.Title(language.English)
	list := make([]types.IngredientAmount, 0, maxGeneratedIngredients+len(complementIngredients))
	seen := make(map[string]struct{})
	for _, ing := range firstN(ingredients, maxGeneratedIngredients) {
		name := title.String(ing)
		seen[name] = struct{}{}
		list = append(list, types.IngredientAmount{Name: name, Amount: EstimateAmount(ing)})
	}
	for _, c := range complementIngredients {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		list = append(list, c)
	}
	return list
}

func (g *TemplateGenerator) instructions(ingredients []string, method string) []string {
	verb := cookingVerbs[g.choose(len(cookingVerbs))]
	rest := ingredients[1:]
	combine := "Add everything to the pan"
	if len(rest) > 0 {
		combine = fmt.Sprintf("Add the %s", joinReadable(firstN(rest, 5)))
	}
	return []string{
		fmt.Sprintf("First, %s your %s like it owes you money (but in a loving way). This is where the magic begins!", verb, ingredients[0]),
		"Heat a splash of olive oil in a large pan over medium heat.",
		fmt.Sprintf("%s and cook until beautifully %s.", combine, method),
		"Season with salt and black pepper, then taste and adjust.",
		"Plate your masterpiece with the confidence of a Michelin star chef. Take a photo, then devour immediately!",
	}
}

func fallbackDish() types.RecipeCandidate {
	return types.RecipeCandidate{
		Name:         "Simple Comfort Dish",
		Description:  "A reliable, delicious meal when you need it most",
		CookTime:     "20 min",
		Difficulty:   "Easy",
		Rating:       ratingPtr(DefaultRating),
		Image:        DefaultImage,
		Ingredients:  []types.IngredientAmount{{Name: "Available ingredients", Amount: "As needed"}},
		Instructions: []string{"Cook with love and enjoy!"},
		Tip:          "Sometimes the simplest dishes are the most satisfying! 💚",
		Tags:         []string{DefaultMood},
		Mood:         DefaultMood,
	}
}

func defaultTags(ingredients []string, mood string) []string {
	tags := append([]string(nil), firstN(ingredients, 3)...)
	return append(tags, mood)
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func joinReadable(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
