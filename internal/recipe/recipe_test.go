package recipe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailJSON = `{
	"idMeal": "52772",
	"strMeal": "Teriyaki Chicken Casserole",
	"strCategory": "Chicken",
	"strArea": "Japanese",
	"strInstructions": "Preheat oven to 350.\r\n\r\nCombine soy sauce.\nBake for 30 minutes.\r",
	"strMealThumb": "https://www.themealdb.com/images/media/meals/wvpsxx1468256321.jpg",
	"strTags": "Meat, Casserole",
	"strYoutube": "https://www.youtube.com/watch?v=4aZr5hZXP_s",
	"strIngredient1": "soy sauce",
	"strIngredient2": " water ",
	"strIngredient3": "",
	"strIngredient4": null,
	"strIngredient5": "brown sugar",
	"strMeasure1": "3/4 cup",
	"strMeasure2": "1/2 cup ",
	"strMeasure3": "",
	"strMeasure4": null,
	"strMeasure5": "1/4 cup",
	"strSource": null
}`

func TestUnmarshalWireRecord(t *testing.T) {
	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(detailJSON), &r))

	assert.Equal(t, "52772", r.ID)
	assert.Equal(t, "Teriyaki Chicken Casserole", r.Name)
	assert.Equal(t, "Chicken", r.Category)
	assert.Equal(t, "Japanese", r.Area)
	assert.Empty(t, r.SourceURL)
	assert.True(t, r.Detailed)
	assert.Equal(t, []string{"Meat", "Casserole"}, r.Tags)
	assert.Equal(t, []Ingredient{
		{Name: "soy sauce", Measure: "3/4 cup"},
		{Name: "water", Measure: "1/2 cup"},
		{Name: "brown sugar", Measure: "1/4 cup"},
	}, r.Ingredients)
}

func TestUnmarshalSummaryRecord(t *testing.T) {
	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(`{"strMeal":"Brown Stew Chicken","strMealThumb":"x.jpg","idMeal":"52940"}`), &r))

	assert.Equal(t, "52940", r.ID)
	assert.Equal(t, "x.jpg", r.Thumbnail)
	assert.False(t, r.Detailed)
	assert.Empty(t, r.Ingredients)
}

func TestRecipeJSONRoundTrip(t *testing.T) {
	var wire Recipe
	require.NoError(t, json.Unmarshal([]byte(detailJSON), &wire))

	data, err := json.Marshal(wire)
	require.NoError(t, err)

	var back Recipe
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, wire, back)
}

func TestSteps(t *testing.T) {
	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(detailJSON), &r))

	assert.Equal(t, []string{
		"Preheat oven to 350.",
		"Combine soy sauce.",
		"Bake for 30 minutes.",
	}, r.Steps())

	assert.Empty(t, Recipe{}.Steps())
}

func TestYouTubeID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=4aZr5hZXP_s", "4aZr5hZXP_s"},
		{"https://youtu.be/abc123", "abc123"},
		{"https://www.youtube.com/embed/xyz/", "xyz"},
		{"https://vimeo.com/1234", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Recipe{VideoURL: tt.url}.YouTubeID(), tt.url)
	}
}

func TestDedupe(t *testing.T) {
	in := []Recipe{
		{ID: "1", Name: "first"},
		{ID: "2", Name: "second"},
		{ID: "1", Name: "duplicate"},
		{ID: "3", Name: "third"},
	}

	out := Dedupe(in)
	require.Len(t, out, 3)
	assert.Equal(t, "first", out[0].Name)
	assert.Equal(t, "3", out[2].ID)
}

func TestScaleMeasure(t *testing.T) {
	tests := []struct {
		name       string
		measure    string
		multiplier float64
		want       string
	}{
		{"unchanged at one", "1/2 cup", 1, "1/2 cup"},
		{"empty", "", 2, ""},
		{"integer", "2 tbs", 2, "4 tbs"},
		{"decimal", "1.5 kg", 2, "3 kg"},
		{"one decimal", "1 cup", 1.5, "1.5 cup"},
		{"fraction to half", "1/4 cup", 2, "1/2 cup"},
		{"fraction to one and a half", "3/4 tsp", 2, "1 1/2 tsp"},
		{"fraction to whole", "1/2 cup", 2, "1 cup"},
		{"fraction to quarter", "1/2 cup", 0.5, "1/4 cup"},
		{"fraction other", "1/3 cup", 2, "0.7 cup"},
		{"several numbers", "2 x 400g tins", 3, "6 x 1200g tins"},
		{"no numbers", "pinch", 3, "pinch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScaleMeasure(tt.measure, tt.multiplier))
		})
	}
}
