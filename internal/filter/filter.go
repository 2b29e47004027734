// Package filter narrows a result set by the derived classification labels.
package filter

import (
	"fmt"
	"strings"

	"recipe-finder/internal/classify"
	"recipe-finder/internal/recipe"
)

// Any disables filtering on a dimension.
const Any = "any"

// Filters is the active filter state. Each field is either Any or a
// bucket label of its dimension.
type Filters struct {
	Time       string `json:"cookingTime"`
	Difficulty string `json:"difficulty"`
	Meal       string `json:"category"`
}

// Default returns filters that let every recipe through.
func Default() Filters {
	return Filters{Time: Any, Difficulty: Any, Meal: Any}
}

// Active reports whether any dimension is set.
func (f Filters) Active() bool {
	return !isAny(f.Time) || !isAny(f.Difficulty) || !isAny(f.Meal)
}

func (f Filters) String() string {
	return fmt.Sprintf("time=%s difficulty=%s category=%s", orAny(f.Time), orAny(f.Difficulty), orAny(f.Meal))
}

func isAny(v string) bool {
	return v == "" || v == Any
}

func orAny(v string) string {
	if v == "" {
		return Any
	}
	return v
}

var (
	validTimes        = []string{string(classify.TimeQuick), string(classify.TimeMedium), string(classify.TimeLong)}
	validDifficulties = []string{string(classify.DifficultyEasy), string(classify.DifficultyMedium), string(classify.DifficultyHard)}
	validMeals        = []string{string(classify.MealBreakfast), string(classify.MealLunch), string(classify.MealDinner), string(classify.MealDessert)}
)

// Parse reads space-separated key=value pairs, e.g.
// "time=quick difficulty=easy category=dinner". Unmentioned dimensions
// keep their value from base.
func Parse(base Filters, input string) (Filters, error) {
	f := base
	for _, field := range strings.Fields(strings.ToLower(input)) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || value == "" {
			return base, fmt.Errorf("expected key=value, got %q", field)
		}
		switch key {
		case "time", "cookingtime":
			if err := check(key, value, validTimes); err != nil {
				return base, err
			}
			f.Time = value
		case "difficulty":
			if err := check(key, value, validDifficulties); err != nil {
				return base, err
			}
			f.Difficulty = value
		case "category", "meal":
			if err := check(key, value, validMeals); err != nil {
				return base, err
			}
			f.Meal = value
		default:
			return base, fmt.Errorf("unknown filter %q", key)
		}
	}
	return f, nil
}

func check(key, value string, valid []string) error {
	if value == Any {
		return nil
	}
	for _, v := range valid {
		if v == value {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q (want %s or %s)", key, value, strings.Join(valid, ", "), Any)
}

// Matches reports whether a recipe name satisfies every active dimension.
func Matches(name string, f Filters) bool {
	if !isAny(f.Time) && string(classify.CookingTime(name)) != f.Time {
		return false
	}
	if !isAny(f.Difficulty) && string(classify.EstimateDifficulty(name)) != f.Difficulty {
		return false
	}
	if !isAny(f.Meal) && !classify.MatchesMeal(name, classify.Meal(f.Meal)) {
		return false
	}
	return true
}

// Apply returns the recipes that satisfy f, in their original order.
// The input slice is not modified.
func Apply(recipes []recipe.Recipe, f Filters) []recipe.Recipe {
	if !f.Active() {
		return recipes
	}
	out := make([]recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if Matches(r.Name, f) {
			out = append(out, r)
		}
	}
	return out
}
