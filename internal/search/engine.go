// Package search resolves a free-text query into a deduplicated recipe
// result set by running a fixed cascade of lookup strategies.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"recipe-finder/internal/mealdb"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/recipe"

	"github.com/rs/zerolog"
)

var (
	// ErrEmptyQuery is returned when the query is blank. No catalog call is made.
	ErrEmptyQuery = errors.New("empty search query")
	// ErrNoResults is reported by Result.Err when the cascade found nothing.
	ErrNoResults = errors.New("no recipes found")
)

// AggregateError is returned when every catalog call made during a
// resolution failed, including the random fallback.
type AggregateError struct {
	Calls int
	Last  error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("all %d catalog calls failed: %v", e.Calls, e.Last)
}

func (e *AggregateError) Unwrap() error {
	return e.Last
}

// Catalog is the subset of the catalog client the cascade needs.
type Catalog interface {
	LookupByIngredient(ctx context.Context, ingredient string) ([]recipe.Recipe, error)
	SearchByName(ctx context.Context, name string) ([]recipe.Recipe, error)
	LookupByCategory(ctx context.Context, category string) ([]recipe.Recipe, error)
	FetchRandom(ctx context.Context) (recipe.Recipe, error)
}

var _ Catalog = (mealdb.Client)(nil)

// Result is the outcome of one resolution.
type Result struct {
	Query   string          `json:"query"`
	Recipes []recipe.Recipe `json:"recipes"`
	// Strategy names the strategy that produced Recipes; empty when none did.
	Strategy string `json:"strategy,omitempty"`
	Calls    int    `json:"calls"`
	Failures int    `json:"failures"`
}

// Err returns ErrNoResults when the result set is empty.
func (r Result) Err() error {
	if len(r.Recipes) == 0 {
		return ErrNoResults
	}
	return nil
}

// Tracker counts the catalog calls made during one resolution. It is safe
// for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	calls    int
	failures int
	last     error
	logger   zerolog.Logger
}

func newTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// Record notes one call and reports whether it succeeded. Failures are
// logged and otherwise treated as an empty result.
func (t *Tracker) Record(strategy, term string, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls++
	if err == nil {
		return true
	}
	t.failures++
	t.last = err
	t.logger.Warn().
		Err(err).
		Str("strategy", strategy).
		Str("term", term).
		Str("kind", string(mealdb.KindOf(err))).
		Msg("lookup failed, continuing")
	return false
}

// Calls returns the number of calls recorded so far.
func (t *Tracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Failures returns the number of failed calls recorded so far.
func (t *Tracker) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

func (t *Tracker) allFailed() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls > 0 && t.failures == t.calls, t.last
}

// Strategy is one step of the cascade. Run returns the recipes it found;
// an empty result hands over to the next strategy.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, q Query, t *Tracker) []recipe.Recipe
}

// Engine runs the search cascade against a catalog.
type Engine struct {
	catalog     Catalog
	logger      zerolog.Logger
	randomCount int
	strategies  []Strategy
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandomCount sets how many random recipes the last strategy draws.
func WithRandomCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.randomCount = n
		}
	}
}

// NewEngine creates an Engine over catalog.
func NewEngine(catalog Catalog, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog:     catalog,
		logger:      logger.With().Str("component", "search").Logger(),
		randomCount: RandomCount,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.strategies = []Strategy{
		{Name: StrategyIngredient, Run: e.byIngredient},
		{Name: StrategyName, Run: e.byName},
		{Name: StrategyTokenName, Run: e.byTokenName},
		{Name: StrategyCategory, Run: e.byCategory},
		{Name: StrategyFallback, Run: e.byFallbackIngredient},
		{Name: StrategyRandom, Run: e.byRandom},
	}
	return e
}

// Strategies returns the cascade in evaluation order.
func (e *Engine) Strategies() []Strategy {
	return append([]Strategy(nil), e.strategies...)
}

// Resolve runs the cascade for query. Strategies run in order and the
// first one returning at least one recipe ends the cascade. A query that
// finds nothing is not an error; an *AggregateError is returned only when
// every catalog call failed.
func (e *Engine) Resolve(ctx context.Context, query string) (Result, error) {
	q, err := ParseQuery(query)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	tracker := newTracker(e.logger)
	res := Result{Query: q.Raw}

	for _, s := range e.strategies {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		hits := s.Run(ctx, q, tracker)
		if len(hits) > 0 {
			res.Recipes = recipe.Dedupe(hits)
			res.Strategy = s.Name
			break
		}
	}

	res.Calls = tracker.Calls()
	res.Failures = tracker.Failures()
	elapsed := time.Since(start)
	metrics.ObserveResolve(res.Strategy, elapsed)

	e.logger.Info().
		Str("query", q.Raw).
		Strs("tokens", q.Tokens).
		Str("strategy", res.Strategy).
		Int("results", len(res.Recipes)).
		Int("calls", res.Calls).
		Int("failures", res.Failures).
		Dur("elapsed", elapsed).
		Msg("search resolved")

	if len(res.Recipes) == 0 {
		if failed, last := tracker.allFailed(); failed {
			return res, &AggregateError{Calls: res.Calls, Last: last}
		}
	}
	return res, nil
}
