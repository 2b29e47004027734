package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCookingTime(t *testing.T) {
	tests := []struct {
		name string
		want Time
	}{
		{"Quick Beef Stew", TimeQuick},
		{"Easy Chicken Salad", TimeQuick},
		{"Beef Stew", TimeLong},
		{"Slow Cooker Pulled Pork", TimeLong},
		{"Hot Pot", TimeLong},
		{"Teriyaki Chicken Casserole", TimeLong},
		{"Spicy Arrabiata Penne", TimeMedium},
		{"", TimeMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CookingTime(tt.name))
		})
	}
}

func TestEstimateDifficulty(t *testing.T) {
	tests := []struct {
		name string
		want Difficulty
	}{
		{"Beef Wellington", DifficultyHard},
		{"Chocolate Soufflé", DifficultyHard},
		{"Duck Confit", DifficultyHard},
		{"Coq au vin", DifficultyHard},
		{"Grilled Wellington", DifficultyEasy},
		{"Fried Rice", DifficultyEasy},
		{"Scrambled Eggs", DifficultyEasy},
		{"Lasagne", DifficultyMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateDifficulty(tt.name))
		})
	}
}

func TestMatchesMeal(t *testing.T) {
	assert.True(t, MatchesMeal("Banana Pancakes", MealBreakfast))
	assert.True(t, MatchesMeal("French Toast", MealBreakfast))
	assert.True(t, MatchesMeal("Chicken Noodles", MealLunch))
	assert.True(t, MatchesMeal("Chicken Noodles", MealDinner))
	assert.True(t, MatchesMeal("Kung Pao Chicken", MealDinner))
	assert.False(t, MatchesMeal("Chicken Caesar Salad", MealDinner))
	assert.False(t, MatchesMeal("Chicken Club Sandwich", MealDinner))
	assert.True(t, MatchesMeal("Chicken Club Sandwich", MealLunch))
	assert.True(t, MatchesMeal("Sticky Toffee Pudding", MealDessert))
	assert.False(t, MatchesMeal("Sticky Toffee Pudding", MealNone))
	assert.False(t, MatchesMeal("Anything", Meal("brunch")))
}

func TestMealType(t *testing.T) {
	assert.Equal(t, MealBreakfast, MealType("Breakfast Potatoes"))
	assert.Equal(t, MealLunch, MealType("Tomato Soup"))
	assert.Equal(t, MealDinner, MealType("Beef Curry"))
	assert.Equal(t, MealDessert, MealType("Apple Tart"))
	assert.Equal(t, MealNone, MealType("Sushi"))
	// Buckets are checked in order; pancake wins over cake.
	assert.Equal(t, MealBreakfast, MealType("Chocolate Pancake"))
}

func TestClassifyIsPureAndIndependent(t *testing.T) {
	name := "Quick Risotto Pie"
	first := Classify(name)
	second := Classify(name)

	assert.Equal(t, first, second)
	assert.Equal(t, Classification{Time: TimeQuick, Difficulty: DifficultyEasy, Meal: MealDessert}, first)

	hard := Classify("Beef Bourguignon")
	assert.Equal(t, TimeMedium, hard.Time)
	assert.Equal(t, DifficultyHard, hard.Difficulty)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "creme brulee", Normalize("  Crème Brûlée "))
	assert.Equal(t, "flambe", Normalize("FLAMBÉ"))
}

func TestMeals(t *testing.T) {
	meals := Meals()
	assert.Equal(t, []Meal{MealBreakfast, MealLunch, MealDinner, MealDessert}, meals)

	meals[0] = MealNone
	assert.Equal(t, MealBreakfast, Meals()[0])
}
