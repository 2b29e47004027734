package app

import (
	"context"
	"database/sql"
	"sync"

	"recipe-finder/internal/classify"
	"recipe-finder/internal/filter"
	"recipe-finder/internal/mealdb"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/recipe"
	"recipe-finder/internal/search"
	"recipe-finder/internal/shopping"
	"recipe-finder/internal/source"
	"recipe-finder/internal/storage"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Storage keys, one set per owner namespace.
const (
	FavoritesKey = "recipe-favorites"
	ThemeKey     = "theme"
	HistoryKey   = "search-history"
	FiltersKey   = "search-filters"
)

// detailConcurrency bounds parallel detail fetches for shopping lists.
const detailConcurrency = 4

// App holds the application's dependencies and the per-owner sessions.
type App struct {
	catalog      mealdb.Client
	engine       *search.Engine
	store        *storage.Store
	shoppingRepo *shopping.Repository
	metricsStore *metrics.Store
	previewer    *source.Previewer
	logger       zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewApp creates and initializes a new App instance.
func NewApp(
	catalog mealdb.Client,
	db *sql.DB,
	previewer *source.Previewer,
	logger zerolog.Logger,
	engineOpts ...search.Option,
) *App {
	if previewer == nil {
		previewer = source.NewPreviewer(nil)
	}
	return &App{
		catalog:      catalog,
		engine:       search.NewEngine(catalog, logger, engineOpts...),
		store:        storage.NewStore(db, ""),
		shoppingRepo: shopping.NewRepository(db),
		metricsStore: metrics.NewStore(db),
		previewer:    previewer,
		logger:       logger.With().Str("component", "app").Logger(),
		sessions:     make(map[string]*Session),
	}
}

// Catalog exposes the catalog client for listing endpoints.
func (a *App) Catalog() mealdb.Client {
	return a.catalog
}

// Metrics exposes the search metrics store.
func (a *App) Metrics() *metrics.Store {
	return a.metricsStore
}

// Session returns the session of owner, loading its persisted state on
// first use.
func (a *App) Session(ctx context.Context, owner string) *Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.sessions[owner]; ok {
		return s
	}
	s := newSession(a, owner)
	s.load(ctx)
	a.sessions[owner] = s
	return s
}

// Classify derives the heuristic labels of a recipe from its name.
func (a *App) Classify(r recipe.Recipe) classify.Classification {
	return classify.Classify(r.Name)
}

// ApplyFilters returns the recipes matching every active filter.
func (a *App) ApplyFilters(recipes []recipe.Recipe, f filter.Filters) []recipe.Recipe {
	return filter.Apply(recipes, f)
}

// GetDetails fetches the full record for id. Any failure returns fallback
// unchanged, so a detail view never fails.
func (a *App) GetDetails(ctx context.Context, id string, fallback recipe.Recipe) recipe.Recipe {
	if id == "" {
		return fallback
	}
	detail, err := a.catalog.FetchByID(ctx, id)
	if err != nil {
		a.logger.Warn().Err(err).Str("id", id).Msg("detail fetch failed, using summary")
		return fallback
	}
	if detail.ID == "" {
		return fallback
	}
	return detail
}

// Details fetches the details of several recipes concurrently. Recipes
// that are already detailed are kept as they are, failures fall back to
// the given summary. Order is preserved.
func (a *App) Details(ctx context.Context, recipes []recipe.Recipe) []recipe.Recipe {
	out := make([]recipe.Recipe, len(recipes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, r := range recipes {
		if r.Detailed {
			out[i] = r
			continue
		}
		i, r := i, r
		g.Go(func() error {
			out[i] = a.GetDetails(gctx, r.ID, r)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Preview fetches the source page preview of a recipe.
func (a *App) Preview(ctx context.Context, r recipe.Recipe) (*source.Preview, error) {
	if r.SourceURL == "" {
		return nil, source.ErrNoSource
	}
	return a.previewer.Preview(ctx, r.SourceURL)
}

// Suggestions are the search hints offered before the first search.
type Suggestions struct {
	PopularIngredients []string `json:"popular_ingredients"`
	TrendingDishes     []string `json:"trending_dishes"`
}

// Suggestions returns the search hints.
func (a *App) Suggestions() Suggestions {
	return Suggestions{
		PopularIngredients: []string{
			"chicken", "beef", "pasta", "tomato", "cheese", "onion",
			"garlic", "rice", "potato", "salmon", "mushroom", "spinach",
		},
		TrendingDishes: []string{
			"Beef Wellington", "Chicken Tikka Masala", "Chocolate Cake", "Caesar Salad",
			"Fish and Chips", "Pad Thai", "Lasagna", "Sushi",
		},
	}
}
