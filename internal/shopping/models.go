package shopping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"recipe-finder/internal/recipe"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrEmptyItem is returned when a custom item has no text.
var ErrEmptyItem = errors.New("shopping: empty item")

// Item is one consolidated ingredient across the selected recipes.
type Item struct {
	// Key is the trimmed, lower-cased ingredient name. It doubles as the
	// item's id in the checked set.
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Measures []string `json:"measures"`
	Recipes  []string `json:"recipes"`
}

// CustomItem is a free-text entry added by the user.
type CustomItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// List is a shopping list built from a set of recipes.
type List struct {
	Owner       string          `json:"owner"`
	RecipeIDs   []string        `json:"recipe_ids"`
	RecipeCount int             `json:"recipe_count"`
	Items       []Item          `json:"items"`
	Custom      []CustomItem    `json:"custom"`
	Checked     map[string]bool `json:"checked"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Consolidate merges the ingredients of recipes by case-insensitive name.
// Measures and recipe names accumulate in encounter order; the display
// name is the first spelling seen. Items are sorted by display name.
func Consolidate(recipes []recipe.Recipe) []Item {
	index := make(map[string]int)
	var items []Item

	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			measure := strings.TrimSpace(ing.Measure)

			if i, ok := index[key]; ok {
				items[i].Measures = append(items[i].Measures, measure)
				items[i].Recipes = append(items[i].Recipes, r.Name)
				continue
			}
			index[key] = len(items)
			items = append(items, Item{
				Key:      key,
				Name:     name,
				Measures: []string{measure},
				Recipes:  []string{r.Name},
			})
		}
	}

	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		return col.CompareString(items[i].Name, items[j].Name) < 0
	})
	return items
}

// NewList consolidates recipes into a list owned by owner.
func NewList(owner string, recipes []recipe.Recipe) *List {
	ids := make([]string, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return &List{
		Owner:       owner,
		RecipeIDs:   ids,
		RecipeCount: len(recipes),
		Items:       Consolidate(recipes),
		Checked:     make(map[string]bool),
		UpdatedAt:   time.Now().UTC(),
	}
}

// AddCustom appends a free-text item.
func (l *List) AddCustom(text string) (CustomItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return CustomItem{}, ErrEmptyItem
	}
	item := CustomItem{ID: uuid.NewString(), Text: text}
	l.Custom = append(l.Custom, item)
	return item, nil
}

// RemoveCustom deletes the custom item with id and reports whether it existed.
func (l *List) RemoveCustom(id string) bool {
	for i, item := range l.Custom {
		if item.ID == id {
			l.Custom = append(l.Custom[:i], l.Custom[i+1:]...)
			delete(l.Checked, id)
			return true
		}
	}
	return false
}

// Toggle flips the checked state of an ingredient key or custom item id
// and returns the new state.
func (l *List) Toggle(id string) bool {
	if l.Checked == nil {
		l.Checked = make(map[string]bool)
	}
	if l.Checked[id] {
		delete(l.Checked, id)
		return false
	}
	l.Checked[id] = true
	return true
}

// EntryID maps a 1-based display number to the id Toggle expects.
// Ingredients are numbered first, then custom items.
func (l *List) EntryID(n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	if n <= len(l.Items) {
		return l.Items[n-1].Key, true
	}
	n -= len(l.Items)
	if n <= len(l.Custom) {
		return l.Custom[n-1].ID, true
	}
	return "", false
}

// Text renders the list for export. Checked entries are left out.
func (l *List) Text(now time.Time) string {
	plural := ""
	if l.RecipeCount > 1 {
		plural = "s"
	}

	lines := []string{
		fmt.Sprintf("Shopping List for %d Recipe%s", l.RecipeCount, plural),
		"Generated on " + now.Format("1/2/2006"),
		"",
		"INGREDIENTS:",
	}
	for _, item := range l.Items {
		if l.Checked[item.Key] {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s (%s)", item.Name, strings.Join(item.Measures, ", ")))
	}
	lines = append(lines, "")

	var custom []string
	for _, item := range l.Custom {
		if !l.Checked[item.ID] {
			custom = append(custom, "• "+item.Text)
		}
	}
	if len(custom) > 0 {
		lines = append(lines, "ADDITIONAL ITEMS:")
		lines = append(lines, custom...)
	}
	return strings.Join(lines, "\n")
}
