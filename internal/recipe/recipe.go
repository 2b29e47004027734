// Package recipe holds the recipe data model decoded from TheMealDB records.
package recipe

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// MaxIngredients is the number of ingredient slots a catalog record carries.
const MaxIngredients = 20

// Ingredient is one (name, measure) pair of a recipe.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Recipe is a catalog recipe. Summary records (from list endpoints) carry
// only ID, Name and Thumbnail; Detailed is set when ingredients and
// instructions were part of the payload.
type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Thumbnail    string       `json:"thumbnail,omitempty"`
	Category     string       `json:"category,omitempty"`
	Area         string       `json:"area,omitempty"`
	Ingredients  []Ingredient `json:"ingredients,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
	VideoURL     string       `json:"video_url,omitempty"`
	SourceURL    string       `json:"source_url,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Detailed     bool         `json:"detailed,omitempty"`
}

// Meal is the raw wire record returned by TheMealDB. Ingredient and
// measure slots are numbered strIngredient1..20 / strMeasure1..20, so the
// record is decoded through a map rather than a fixed struct.
type Meal map[string]*string

func (m Meal) field(key string) string {
	if v, ok := m[key]; ok && v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}

// Recipe converts the wire record into a Recipe.
func (m Meal) Recipe() Recipe {
	r := Recipe{
		ID:           m.field("idMeal"),
		Name:         m.field("strMeal"),
		Thumbnail:    m.field("strMealThumb"),
		Category:     m.field("strCategory"),
		Area:         m.field("strArea"),
		Instructions: m.field("strInstructions"),
		VideoURL:     m.field("strYoutube"),
		SourceURL:    m.field("strSource"),
	}

	for i := 1; i <= MaxIngredients; i++ {
		name := m.field(fmt.Sprintf("strIngredient%d", i))
		if name == "" {
			continue
		}
		r.Ingredients = append(r.Ingredients, Ingredient{
			Name:    name,
			Measure: m.field(fmt.Sprintf("strMeasure%d", i)),
		})
	}

	if tags := m.field("strTags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				r.Tags = append(r.Tags, t)
			}
		}
	}

	_, hasInstructions := m["strInstructions"]
	r.Detailed = hasInstructions || len(r.Ingredients) > 0
	return r
}

// UnmarshalJSON accepts both the catalog wire format and the Recipe's own
// JSON encoding, so persisted favorites and cached lookups decode the same way.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if _, wire := probe["idMeal"]; wire {
		var m Meal
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode meal: %w", err)
		}
		*r = m.Recipe()
		return nil
	}

	type plain Recipe
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Recipe(p)
	return nil
}

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// Steps splits the instructions into non-empty lines.
func (r Recipe) Steps() []string {
	var steps []string
	for _, line := range lineBreak.Split(r.Instructions, -1) {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

// YouTubeID returns the video id of a YouTube link, or "" when the recipe
// has no recognisable video.
func (r Recipe) YouTubeID() string {
	if r.VideoURL == "" {
		return ""
	}
	u, err := url.Parse(r.VideoURL)
	if err != nil {
		return ""
	}
	switch strings.TrimPrefix(u.Host, "www.") {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id
		}
		if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
			return strings.Trim(rest, "/")
		}
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	}
	return ""
}

// Dedupe returns recipes with duplicate IDs removed, keeping the first
// occurrence of each.
func Dedupe(recipes []Recipe) []Recipe {
	seen := make(map[string]struct{}, len(recipes))
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
