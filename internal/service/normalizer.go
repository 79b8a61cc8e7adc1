package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pageza/recipefinder/backend/internal/apperror"
	"github.com/pageza/recipefinder/backend/internal/types"
)

const (
	MaxIngredients      = 15
	MinIngredientLength = 2
	MaxIngredientLength = 50
	MaxUserNameLength   = 50

	DefaultMood     = "comfort"
	DefaultUserName = "Chef"
)

// ValidMoods lists the accepted mood tags in display order
var ValidMoods = []string{"comfort", "fresh", "indulgent", "spicy", "sweet", "savory"}

var (
	allowedChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-']+$`)
	whitespace   = regexp.MustCompile(`\s+`)
	unsafeChars  = regexp.MustCompile(`[<>"']`)
)

// Normalize turns the raw ingredients and mood fields of a search request
// into a canonical query. It has no side effects.
func Normalize(rawIngredients, rawMood string) (types.IngredientQuery, error) {
	ingredients := splitIngredients(rawIngredients)
	if len(ingredients) == 0 {
		return types.IngredientQuery{}, apperror.Validation(apperror.KindEmptyInput,
			"Please provide at least one ingredient")
	}
	if len(ingredients) > MaxIngredients {
		return types.IngredientQuery{}, apperror.Validation(apperror.KindTooManyIngredients,
			fmt.Sprintf("Maximum %d ingredients allowed", MaxIngredients))
	}

	for _, ing := range ingredients {
		n := len([]rune(ing))
		if n < MinIngredientLength {
			return types.IngredientQuery{}, apperror.Validation(apperror.KindInvalidIngredientLength,
				fmt.Sprintf("Ingredient %q is too short (minimum %d characters)", ing, MinIngredientLength))
		}
		if n > MaxIngredientLength {
			return types.IngredientQuery{}, apperror.Validation(apperror.KindInvalidIngredientLength,
				fmt.Sprintf("Ingredient %q is too long (maximum %d characters)", ing, MaxIngredientLength))
		}
		if !allowedChars.MatchString(ing) {
			return types.IngredientQuery{}, apperror.Validation(apperror.KindInvalidCharacters,
				fmt.Sprintf("Ingredient %q contains invalid characters", ing))
		}
	}

	mood, err := NormalizeMood(rawMood)
	if err != nil {
		return types.IngredientQuery{}, err
	}

	return types.IngredientQuery{Ingredients: ingredients, Mood: mood}, nil
}

// NormalizeMood lowercases and validates a mood, defaulting to comfort
func NormalizeMood(raw string) (string, error) {
	mood := strings.ToLower(strings.TrimSpace(raw))
	if mood == "" {
		return DefaultMood, nil
	}
	for _, m := range ValidMoods {
		if m == mood {
			return mood, nil
		}
	}
	return "", apperror.Validation(apperror.KindInvalidMood,
		fmt.Sprintf("Invalid mood. Must be one of: %s", strings.Join(ValidMoods, ", ")))
}

// ValidateUserName checks the optional user name of a search and returns it
// trimmed, or the default name when empty.
func ValidateUserName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return DefaultUserName, nil
	}
	if len([]rune(name)) > MaxUserNameLength {
		return "", apperror.Validation(apperror.KindInvalidUserName,
			fmt.Sprintf("User name is too long (maximum %d characters)", MaxUserNameLength))
	}
	if !allowedChars.MatchString(name) {
		return "", apperror.Validation(apperror.KindInvalidUserName, "User name contains invalid characters")
	}
	return name, nil
}

// CanonicalUserName is the stored form of a user name: validated, then
// sanitized. Profiles, history, favorites and tokens all key on it and
// compare it exactly.
func CanonicalUserName(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", apperror.Validation(apperror.KindInvalidUserName, "Valid user name is required")
	}
	name, err := ValidateUserName(raw)
	if err != nil {
		return "", err
	}
	if name = Sanitize(name); name == "" {
		return "", apperror.Validation(apperror.KindInvalidUserName, "Valid user name is required")
	}
	return name, nil
}

// Sanitize collapses whitespace and strips characters that could break out
// of HTML or quoted contexts.
func Sanitize(text string) string {
	text = whitespace.ReplaceAllString(strings.TrimSpace(text), " ")
	return unsafeChars.ReplaceAllString(text, "")
}

// splitIngredients splits on commas, trims, lowercases and removes empty
// and repeated tokens, keeping first occurrences in order.
func splitIngredients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		tok := strings.ToLower(strings.TrimSpace(p))
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
