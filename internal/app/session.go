package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"recipe-finder/internal/filter"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/recipe"
	"recipe-finder/internal/search"
	"recipe-finder/internal/storage"

	"github.com/rs/zerolog"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Resolution is the outcome of Session.Resolve.
type Resolution struct {
	Token search.Token
	search.Result
	// HistoryUpdate is the query recorded into the search history.
	HistoryUpdate string
	History       []string
	// Stale is set when a newer resolution was issued before this one
	// finished. Stale results must not be shown.
	Stale bool
}

// Session is the state of one owner: a chat, or the local CLI user.
type Session struct {
	Owner string

	app     *App
	store   *storage.Store
	history *search.History
	seq     search.Sequencer
	logger  zerolog.Logger

	mu             sync.Mutex
	favorites      []recipe.Recipe
	filters        filter.Filters
	results        []recipe.Recipe
	resultsQuery   string
	resultsMessage int
}

func newSession(a *App, owner string) *Session {
	return &Session{
		Owner:   owner,
		app:     a,
		store:   a.store.WithNamespace(owner),
		history: search.NewHistory(search.HistorySize),
		logger:  a.logger.With().Str("owner", owner).Logger(),
		filters: filter.Default(),
	}
}

// load reads the persisted favorites, history and filters. Unreadable
// values are logged and replaced by defaults.
func (s *Session) load(ctx context.Context) {
	var favorites []recipe.Recipe
	if err := s.store.GetJSON(ctx, FavoritesKey, &favorites); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error().Err(err).Msg("error loading favorites")
		favorites = nil
	}
	s.favorites = favorites

	var history []string
	if err := s.store.GetJSON(ctx, HistoryKey, &history); err == nil {
		s.history.Restore(history)
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error().Err(err).Msg("error loading search history")
	}

	var filters filter.Filters
	if err := s.store.GetJSON(ctx, FiltersKey, &filters); err == nil {
		s.filters = filters
	}
}

// Resolve runs a search for query. The query is recorded in the history
// whether or not anything was found. A resolution superseded by a later
// call is returned with Stale set and does not replace the session's
// results.
func (s *Session) Resolve(ctx context.Context, query string) (Resolution, error) {
	token := s.seq.Next()
	start := time.Now()

	res, err := s.app.engine.Resolve(ctx, query)
	if errors.Is(err, search.ErrEmptyQuery) {
		return Resolution{Token: token}, err
	}

	out := Resolution{Token: token, Result: res}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return out, err
	}

	out.HistoryUpdate = res.Query
	out.History = s.history.Add(res.Query)
	if perr := s.store.PutJSON(ctx, HistoryKey, out.History); perr != nil {
		s.logger.Error().Err(perr).Msg("error saving search history")
	}

	if rerr := s.app.metricsStore.Record(ctx, metrics.SearchMetric{
		Query:     res.Query,
		Strategy:  res.Strategy,
		Results:   len(res.Recipes),
		Failures:  res.Failures,
		LatencyMS: time.Since(start).Milliseconds(),
	}); rerr != nil {
		s.logger.Warn().Err(rerr).Msg("failed to record search metric")
	}

	if !s.seq.IsLatest(token) {
		out.Stale = true
		metrics.StaleResolution()
		s.logger.Debug().Str("query", res.Query).Uint64("token", uint64(token)).Msg("discarding stale resolution")
		return out, err
	}

	s.mu.Lock()
	s.results = res.Recipes
	s.resultsQuery = res.Query
	s.mu.Unlock()
	return out, err
}

// History returns the search history, most recent first.
func (s *Session) History() []string {
	return s.history.Entries()
}

// ClearHistory empties the search history.
func (s *Session) ClearHistory(ctx context.Context) error {
	s.history.Clear()
	return s.store.Delete(ctx, HistoryKey)
}

// Results returns the recipes of the latest resolution.
func (s *Session) Results() []recipe.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recipe.Recipe(nil), s.results...)
}

// ResultsQuery returns the query that produced Results. It can differ
// from the newest history entry when that search was stale.
func (s *Session) ResultsQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultsQuery
}

// FilteredResults returns the latest results narrowed by the session filters.
func (s *Session) FilteredResults() []recipe.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Apply(append([]recipe.Recipe(nil), s.results...), s.filters)
}

// FindResult looks up a recipe of the latest results or the favorites by id.
func (s *Session) FindResult(id string) (recipe.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		if r.ID == id {
			return r, true
		}
	}
	for _, r := range s.favorites {
		if r.ID == id {
			return r, true
		}
	}
	return recipe.Recipe{}, false
}

// SetResultsHandle records the front-end handle (a chat message id) of
// the results view. Closing a detail view returns focus to it.
func (s *Session) SetResultsHandle(handle int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resultsMessage = handle
}

// ResultsHandle returns the handle recorded by SetResultsHandle, or 0.
func (s *Session) ResultsHandle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultsMessage
}

// Filters returns the active filters.
func (s *Session) Filters() filter.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters replaces and persists the active filters.
func (s *Session) SetFilters(ctx context.Context, f filter.Filters) error {
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
	return s.store.PutJSON(ctx, FiltersKey, f)
}

// ToggleFavorite adds r to the favorites, or removes it if it is already
// there, and persists the list. It reports whether r is now a favorite.
func (s *Session) ToggleFavorite(ctx context.Context, r recipe.Recipe) (bool, error) {
	if r.ID == "" {
		return false, fmt.Errorf("invalid recipe for favorites: missing id")
	}

	s.mu.Lock()
	added := true
	next := make([]recipe.Recipe, 0, len(s.favorites)+1)
	for _, f := range s.favorites {
		if f.ID == r.ID {
			added = false
			continue
		}
		next = append(next, f)
	}
	if added {
		next = append(next, r)
	}
	s.favorites = next
	s.mu.Unlock()

	if err := s.store.PutJSON(ctx, FavoritesKey, next); err != nil {
		return added, fmt.Errorf("error saving favorites: %w", err)
	}

	if added {
		s.logger.Info().Str("recipe", r.Name).Msg("added to favorites")
	} else {
		s.logger.Info().Str("recipe", r.Name).Msg("removed from favorites")
	}
	return added, nil
}

// IsFavorite reports whether id is in the favorites.
func (s *Session) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.favorites {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Favorites returns the favorites in insertion order.
func (s *Session) Favorites() []recipe.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recipe.Recipe(nil), s.favorites...)
}

// Theme returns the stored theme preference, light by default.
func (s *Session) Theme(ctx context.Context) string {
	theme, err := s.store.Get(ctx, ThemeKey)
	if err != nil || (theme != ThemeDark && theme != ThemeLight) {
		return ThemeLight
	}
	return theme
}

// SetTheme stores the theme preference.
func (s *Session) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("invalid theme %q (want %s or %s)", theme, ThemeLight, ThemeDark)
	}
	return s.store.Put(ctx, ThemeKey, theme)
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *Session) ToggleTheme(ctx context.Context) (string, error) {
	next := ThemeDark
	if s.Theme(ctx) == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(ctx, next)
}
