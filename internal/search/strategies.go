package search

import (
	"context"
	"strings"

	"recipe-finder/internal/recipe"

	"golang.org/x/sync/errgroup"
)

// Strategy names, in cascade order.
const (
	StrategyIngredient = "ingredient"
	StrategyName       = "name"
	StrategyTokenName  = "token-name"
	StrategyCategory   = "category"
	StrategyFallback   = "fallback-ingredient"
	StrategyRandom     = "random"
)

const (
	// CategoryLimit caps the recipes taken from an inferred category.
	CategoryLimit = 12
	// FallbackLimit caps the recipes taken from a fallback ingredient.
	FallbackLimit = 6
	// RandomCount is the number of random recipes drawn as a last resort.
	RandomCount = 8
)

type categoryRule struct {
	keyword  string
	category string
}

// Checked in declaration order; the first keyword whose category lookup
// returns anything wins.
var categoryRules = []categoryRule{
	{"pasta", "Pasta"},
	{"noodles", "Pasta"},
	{"maggie", "Pasta"},
	{"rolls", "Side"},
	{"bread", "Side"},
	{"chicken", "Chicken"},
	{"beef", "Beef"},
	{"seafood", "Seafood"},
	{"vegetarian", "Vegetarian"},
	{"dessert", "Dessert"},
	{"breakfast", "Breakfast"},
}

type fallbackRule struct {
	keyword     string
	ingredients []string
}

var fallbackRules = []fallbackRule{
	{"maggie", []string{"chicken", "beef"}},
	{"rolls", []string{"chicken", "pork"}},
	{"vegies", []string{"mushroom", "spinach"}},
	{"veggies", []string{"mushroom", "spinach"}},
	{"flour", []string{"chicken", "beef"}},
}

func head(rs []recipe.Recipe, n int) []recipe.Recipe {
	if len(rs) > n {
		return rs[:n:n]
	}
	return rs
}

// byIngredient looks up every token as an ingredient and unions the hits.
func (e *Engine) byIngredient(ctx context.Context, q Query, t *Tracker) []recipe.Recipe {
	var out []recipe.Recipe
	for _, token := range q.Tokens {
		hits, err := e.catalog.LookupByIngredient(ctx, token)
		if !t.Record(StrategyIngredient, token, err) {
			continue
		}
		out = append(out, hits...)
	}
	return out
}

// byName searches recipe names with the whole query.
func (e *Engine) byName(ctx context.Context, q Query, t *Tracker) []recipe.Recipe {
	hits, err := e.catalog.SearchByName(ctx, q.Raw)
	if !t.Record(StrategyName, q.Raw, err) {
		return nil
	}
	return hits
}

// byTokenName searches recipe names with each token and unions the hits.
func (e *Engine) byTokenName(ctx context.Context, q Query, t *Tracker) []recipe.Recipe {
	var out []recipe.Recipe
	for _, token := range q.Tokens {
		hits, err := e.catalog.SearchByName(ctx, token)
		if !t.Record(StrategyTokenName, token, err) {
			continue
		}
		out = append(out, hits...)
	}
	return out
}

// byCategory infers a catalog category from keywords in the query.
func (e *Engine) byCategory(ctx context.Context, q Query, t *Tracker) []recipe.Recipe {
	for _, rule := range categoryRules {
		if !strings.Contains(q.Lower, rule.keyword) {
			continue
		}
		hits, err := e.catalog.LookupByCategory(ctx, rule.category)
		if t.Record(StrategyCategory, rule.category, err) && len(hits) > 0 {
			return head(hits, CategoryLimit)
		}
	}
	return nil
}

// byFallbackIngredient maps loose keywords to substitute ingredients.
func (e *Engine) byFallbackIngredient(ctx context.Context, q Query, t *Tracker) []recipe.Recipe {
	for _, rule := range fallbackRules {
		if !strings.Contains(q.Lower, rule.keyword) {
			continue
		}
		for _, ingredient := range rule.ingredients {
			hits, err := e.catalog.LookupByIngredient(ctx, ingredient)
			if t.Record(StrategyFallback, ingredient, err) && len(hits) > 0 {
				return head(hits, FallbackLimit)
			}
		}
	}
	return nil
}

// byRandom draws randomCount recipes concurrently. Failed draws are skipped.
func (e *Engine) byRandom(ctx context.Context, _ Query, t *Tracker) []recipe.Recipe {
	draws := make([]recipe.Recipe, e.randomCount)
	ok := make([]bool, e.randomCount)

	var g errgroup.Group
	for i := 0; i < e.randomCount; i++ {
		i := i
		g.Go(func() error {
			r, err := e.catalog.FetchRandom(ctx)
			if t.Record(StrategyRandom, "", err) {
				draws[i], ok[i] = r, true
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []recipe.Recipe
	for i, r := range draws {
		if ok[i] {
			out = append(out, r)
		}
	}
	return out
}
