// Package classify estimates cooking time, difficulty and meal type from a
// recipe name. The estimates are keyword heuristics over the name alone and
// are not reconciled with the catalog's own category or area.
package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Time is a cooking-time bucket.
type Time string

const (
	TimeQuick  Time = "quick"
	TimeMedium Time = "medium"
	TimeLong   Time = "long"
)

// Difficulty is a difficulty bucket.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Meal is a meal-type bucket.
type Meal string

const (
	MealBreakfast Meal = "breakfast"
	MealLunch     Meal = "lunch"
	MealDinner    Meal = "dinner"
	MealDessert   Meal = "dessert"
	MealNone      Meal = "none"
)

// Classification is the full set of derived labels for one recipe name.
type Classification struct {
	Time       Time       `json:"time"`
	Difficulty Difficulty `json:"difficulty"`
	Meal       Meal       `json:"meal"`
}

var (
	quickWords = []string{"quick", "simple", "easy", "salad", "smoothie", "sandwich"}
	longWords  = []string{"roast", "slow", "braised", "stew", "casserole", "baked", "pot", "whole"}

	easyWords = []string{"simple", "easy", "quick", "basic", "grilled", "fried", "sandwich", "salad", "scrambled", "boiled"}
	hardWords = []string{"wellington", "souffle", "confit", "flambe", "ragu", "risotto", "bisque", "coq au vin", "osso buco", "bourguignon"}

	mealOrder = []Meal{MealBreakfast, MealLunch, MealDinner, MealDessert}

	mealMatchers = map[Meal]func(name string) bool{
		MealBreakfast: func(name string) bool {
			return containsAny(name, "breakfast", "pancake", "french toast", "omelette", "scrambled",
				"eggs benedict", "porridge", "muffin", "toast")
		},
		MealLunch: func(name string) bool {
			return containsAny(name, "sandwich", "salad", "soup", "wrap", "burger", "pasta", "noodles",
				"pizza", "quesadilla")
		},
		MealDinner: func(name string) bool {
			if containsAny(name, "curry", "steak", "roast", "chops", "braised", "grilled", "baked", "stew",
				"casserole", "pot") {
				return true
			}
			// Most chicken dishes are dinner.
			return strings.Contains(name, "chicken") && !containsAny(name, "salad", "sandwich")
		},
		MealDessert: func(name string) bool {
			return containsAny(name, "cake", "cookie", "pie", "tart", "pudding", "ice cream", "chocolate",
				"dessert", "sweet", "brownie")
		},
	}
)

// Meals returns the meal buckets in evaluation order.
func Meals() []Meal {
	return append([]Meal(nil), mealOrder...)
}

// Normalize lower-cases name and strips diacritics, so "Soufflé" and
// "souffle" classify the same way.
func Normalize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// CookingTime estimates the cooking-time bucket. Quick keywords win over
// long ones.
func CookingTime(name string) Time {
	n := Normalize(name)
	switch {
	case containsAny(n, quickWords...):
		return TimeQuick
	case containsAny(n, longWords...):
		return TimeLong
	default:
		return TimeMedium
	}
}

// EstimateDifficulty estimates the difficulty bucket. Easy keywords win
// over hard ones.
func EstimateDifficulty(name string) Difficulty {
	n := Normalize(name)
	switch {
	case containsAny(n, easyWords...):
		return DifficultyEasy
	case containsAny(n, hardWords...):
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// MatchesMeal reports whether name matches the predicate of meal.
// MealNone and unknown buckets match nothing.
func MatchesMeal(name string, meal Meal) bool {
	match, ok := mealMatchers[meal]
	if !ok {
		return false
	}
	return match(Normalize(name))
}

// MealType returns the first meal bucket whose predicate matches name, or
// MealNone.
func MealType(name string) Meal {
	n := Normalize(name)
	for _, m := range mealOrder {
		if mealMatchers[m](n) {
			return m
		}
	}
	return MealNone
}

// Classify computes all three labels for name.
func Classify(name string) Classification {
	return Classification{
		Time:       CookingTime(name),
		Difficulty: EstimateDifficulty(name),
		Meal:       MealType(name),
	}
}
