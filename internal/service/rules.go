package service

import (
	"strings"
)

// keywordRule maps any of its keywords to a result. Rule tables are
// evaluated in order and the first rule with a matching keyword wins.
type keywordRule struct {
	name     string
	keywords []string
	result   string
}

func (r keywordRule) matches(text string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func firstMatch(rules []keywordRule, text, fallback string) string {
	text = strings.ToLower(text)
	for _, r := range rules {
		if r.matches(text) {
			return r.result
		}
	}
	return fallback
}

var (
	proteinKeywords   = []string{"chicken", "beef", "pork", "fish", "salmon", "tuna", "shrimp", "turkey", "lamb", "tofu"}
	vegetableKeywords = []string{"tomato", "onion", "pepper", "carrot", "zucchini", "potato", "cucumber", "eggplant"}
	greensKeywords    = []string{"spinach", "lettuce", "kale", "arugula", "cabbage", "greens"}
	grainKeywords     = []string{"rice", "pasta", "noodle", "quinoa", "spaghetti", "couscous", "oats", "barley"}
	dairyKeywords     = []string{"milk", "cream", "yogurt", "butter", "cheese"}
)

const defaultAmount = "1 cup"

var amountRules = []keywordRule{
	{name: "protein", keywords: proteinKeywords, result: "300-400g"},
	{name: "vegetable", keywords: vegetableKeywords, result: "2-3 pieces"},
	{name: "greens", keywords: greensKeywords, result: "2 cups"},
	{name: "grain", keywords: grainKeywords, result: "200g"},
	{name: "dairy", keywords: dairyKeywords, result: "100ml"},
}

// EstimateAmount guesses a serving amount for one ingredient
func EstimateAmount(ingredient string) string {
	return firstMatch(amountRules, ingredient, defaultAmount)
}

type cookTimeRule struct {
	meat, grain bool
	result      string
}

var cookTimeRules = []cookTimeRule{
	{meat: true, grain: true, result: "35-45 min"},
	{meat: true, grain: false, result: "25-35 min"},
	{meat: false, grain: true, result: "20-30 min"},
	{meat: false, grain: false, result: "15-25 min"},
}

// EstimateCookTime picks a cook time from the presence of protein and
// grain keywords in the joined ingredient text.
func EstimateCookTime(ingredients []string) string {
	text := strings.ToLower(strings.Join(ingredients, " "))
	meat := keywordRule{keywords: proteinKeywords}.matches(text)
	grain := keywordRule{keywords: grainKeywords}.matches(text)
	for _, r := range cookTimeRules {
		if r.meat == meat && r.grain == grain {
			return r.result
		}
	}
	return "15-25 min"
}

var difficultyRules = []struct {
	maxIngredients int
	label          string
}{
	{3, "Simple"},
	{6, "Easy"},
	{9, "Medium"},
}

// EstimateDifficulty labels a recipe by its ingredient count
func EstimateDifficulty(count int) string {
	for _, r := range difficultyRules {
		if count <= r.maxIngredients {
			return r.label
		}
	}
	return "Advanced"
}

// styleBucket holds the stylistic vocabulary for a mood
type styleBucket struct {
	styles  []string
	methods []string
	emoji   []string
}

var styleRules = []struct {
	mood   string
	bucket styleBucket
}{
	{"comfort", styleBucket{
		styles:  []string{"Hearty", "Cozy", "Classic"},
		methods: []string{"slow-simmered", "oven-baked", "pan-braised"},
		emoji:   []string{"🍲", "🥘", "🍛"},
	}},
	{"fresh", styleBucket{
		styles:  []string{"Vibrant", "Zesty", "Garden"},
		methods: []string{"tossed", "lightly steamed", "quick-seared"},
		emoji:   []string{"🥗", "🥙", "🌮"},
	}},
	{"indulgent", styleBucket{
		styles:  []string{"Decadent", "Rich", "Golden"},
		methods: []string{"butter-basted", "cheese-crusted", "cream-simmered"},
		emoji:   []string{"🍝", "🧀", "🍰"},
	}},
}

var defaultStyle = styleBucket{
	styles:  []string{"Signature", "Chef's", "Rustic"},
	methods: []string{"pan-seared", "roasted", "stir-fried"},
	emoji:   []string{"🍽️", "⭐", "🍳"},
}

func styleFor(mood string) styleBucket {
	for _, r := range styleRules {
		if r.mood == mood {
			return r.bucket
		}
	}
	return defaultStyle
}
