package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"recipe-finder/internal/config"
	"recipe-finder/internal/database"
	"recipe-finder/internal/filter"
	"recipe-finder/internal/mealdb"
	"recipe-finder/internal/recipe"
	"recipe-finder/internal/search"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stewDetail = `{"meals":[{"idMeal":"52940","strMeal":"Brown Stew Chicken","strCategory":"Chicken",
	"strArea":"Jamaican","strInstructions":"Brown the chicken.\r\nAdd the stock.",
	"strMealThumb":"a.jpg","strIngredient1":"Chicken","strMeasure1":"1 whole",
	"strIngredient2":"Tomato","strMeasure2":"1 chopped","strIngredient3":"","strMeasure3":""}]}`

const congeeDetail = `{"meals":[{"idMeal":"52956","strMeal":"Chicken Congee","strCategory":"Chicken",
	"strInstructions":"Simmer the rice.","strMealThumb":"b.jpg",
	"strIngredient1":"chicken","strMeasure1":"8 oz","strIngredient2":"Rice","strMeasure2":"1 cup"}]}`

// fakeMealDB serves a tiny fixed catalog. Ingredient lookups for "slow"
// block until release is closed.
type fakeMealDB struct {
	release chan struct{}

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeMealDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.mu.Unlock()

	switch r.URL.Path {
	case "/filter.php":
		switch q.Get("i") {
		case "chicken":
			fmt.Fprint(w, `{"meals":[
				{"idMeal":"52940","strMeal":"Brown Stew Chicken","strMealThumb":"a.jpg"},
				{"idMeal":"52956","strMeal":"Chicken Congee","strMealThumb":"b.jpg"}]}`)
		case "slow":
			<-f.release
			fmt.Fprint(w, `{"meals":[{"idMeal":"1","strMeal":"Slow Roast","strMealThumb":"s.jpg"}]}`)
		default:
			fmt.Fprint(w, `{"meals":null}`)
		}
	case "/lookup.php":
		switch q.Get("i") {
		case "52940":
			fmt.Fprint(w, stewDetail)
		case "52956":
			fmt.Fprint(w, congeeDetail)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	case "/random.php":
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		fmt.Fprint(w, `{"meals":null}`)
	}
}

func (f *fakeMealDB) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

type testEnv struct {
	app    *App
	db     *database.DB
	dbPath string
	fake   *fakeMealDB
	client mealdb.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := &fakeMealDB{release: make(chan struct{}), calls: make(map[string]int)}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	t.Cleanup(func() {
		select {
		case <-fake.release:
		default:
			close(fake.release)
		}
	})

	client := mealdb.NewClient(&config.Config{MealDBURL: server.URL, MealDBTimeout: 2 * time.Second})

	dbPath := filepath.Join(t.TempDir(), "app.db")
	db, err := database.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		app:    NewApp(client, db.SQL, nil, zerolog.Nop(), search.WithRandomCount(2)),
		db:     db,
		dbPath: dbPath,
		fake:   fake,
		client: client,
	}
}

func TestSessionResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("RecordsResultsAndHistory", func(t *testing.T) {
		env := newTestEnv(t)
		s := env.app.Session(ctx, "local")

		res, err := s.Resolve(ctx, "Chicken")
		require.NoError(t, err)
		assert.False(t, res.Stale)
		assert.Equal(t, search.StrategyIngredient, res.Strategy)
		assert.Len(t, res.Recipes, 2)
		assert.Equal(t, "Chicken", res.HistoryUpdate)
		assert.Equal(t, []string{"Chicken"}, s.History())
		assert.Len(t, s.Results(), 2)

		usage, err := env.app.Metrics().GetDailyUsage(ctx, 1)
		require.NoError(t, err)
		require.Len(t, usage, 1)
		assert.Equal(t, 1, usage[0].Searches)
	})

	t.Run("EmptyQuery", func(t *testing.T) {
		env := newTestEnv(t)
		s := env.app.Session(ctx, "local")

		_, err := s.Resolve(ctx, "   ")
		assert.ErrorIs(t, err, search.ErrEmptyQuery)
		assert.Empty(t, s.History())
		assert.Zero(t, env.fake.count("/filter.php"))
	})

	t.Run("NoResultsStillRecordsHistory", func(t *testing.T) {
		env := newTestEnv(t)
		s := env.app.Session(ctx, "local")

		res, err := s.Resolve(ctx, "zzqx")
		require.NoError(t, err)
		assert.ErrorIs(t, res.Err(), search.ErrNoResults)
		assert.Empty(t, res.Strategy)
		assert.Equal(t, 2, res.Failures)
		assert.Equal(t, []string{"zzqx"}, s.History())
	})

	t.Run("HistoryIsDedupedAndCapped", func(t *testing.T) {
		env := newTestEnv(t)
		s := env.app.Session(ctx, "local")

		for _, q := range []string{"chicken", "aaa", "bbb", "ccc", "ddd", "chicken", "eee"} {
			_, _ = s.Resolve(ctx, q)
		}
		assert.Equal(t, []string{"eee", "chicken", "ddd", "ccc", "bbb"}, s.History())

		require.NoError(t, s.ClearHistory(ctx))
		assert.Empty(t, s.History())
	})

	t.Run("StaleResolutionIsDiscarded", func(t *testing.T) {
		env := newTestEnv(t)
		s := env.app.Session(ctx, "local")

		done := make(chan Resolution, 1)
		go func() {
			res, _ := s.Resolve(ctx, "slow")
			done <- res
		}()

		require.Eventually(t, func() bool { return env.fake.count("/filter.php") == 1 }, time.Second, 5*time.Millisecond)

		latest, err := s.Resolve(ctx, "chicken")
		require.NoError(t, err)
		assert.False(t, latest.Stale)

		close(env.fake.release)
		first := <-done

		assert.True(t, first.Stale)
		assert.Less(t, uint64(first.Token), uint64(latest.Token))
		require.Len(t, s.Results(), 2)
		assert.Equal(t, "52940", s.Results()[0].ID)
		assert.Equal(t, "slow", s.History()[0])
		assert.Equal(t, "chicken", s.ResultsQuery())
	})

	t.Run("CanceledContext", func(t *testing.T) {
		env := newTestEnv(t)
		s := env.app.Session(ctx, "local")

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.Resolve(cctx, "chicken")
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Empty(t, s.History())
	})
}

func TestSessionPersistence(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	s := env.app.Session(ctx, "chat:1")
	_, err := s.Resolve(ctx, "chicken")
	require.NoError(t, err)

	stew := s.Results()[0]
	added, err := s.ToggleFavorite(ctx, stew)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, s.IsFavorite(stew.ID))

	f, err := filter.Parse(s.Filters(), "time=quick")
	require.NoError(t, err)
	require.NoError(t, s.SetFilters(ctx, f))

	theme, err := s.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	reopened := NewApp(env.client, env.db.SQL, nil, zerolog.Nop())
	again := reopened.Session(ctx, "chat:1")
	assert.Equal(t, []string{"chicken"}, again.History())
	require.Len(t, again.Favorites(), 1)
	assert.Equal(t, "Brown Stew Chicken", again.Favorites()[0].Name)
	assert.Equal(t, "quick", again.Filters().Time)
	assert.Equal(t, ThemeDark, again.Theme(ctx))

	other := reopened.Session(ctx, "chat:2")
	assert.Empty(t, other.Favorites())
	assert.Equal(t, ThemeLight, other.Theme(ctx))

	added, err = again.ToggleFavorite(ctx, stew)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, again.Favorites())

	_, err = again.ToggleFavorite(ctx, recipe.Recipe{Name: "No id"})
	assert.Error(t, err)
	assert.Error(t, again.SetTheme(ctx, "blue"))
}

func TestFilteredResults(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	s := env.app.Session(ctx, "local")

	_, err := s.Resolve(ctx, "chicken")
	require.NoError(t, err)

	f, err := filter.Parse(s.Filters(), "category=dinner")
	require.NoError(t, err)
	require.NoError(t, s.SetFilters(ctx, f))
	assert.Len(t, s.FilteredResults(), 2)

	f, err = filter.Parse(s.Filters(), "category=breakfast")
	require.NoError(t, err)
	require.NoError(t, s.SetFilters(ctx, f))
	assert.Empty(t, s.FilteredResults())
	assert.Len(t, s.Results(), 2)
}

func TestGetDetails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("Detailed", func(t *testing.T) {
		r := env.app.GetDetails(ctx, "52940", recipe.Recipe{ID: "52940", Name: "Brown Stew Chicken"})
		assert.True(t, r.Detailed)
		assert.Equal(t, "Jamaican", r.Area)
		assert.Len(t, r.Ingredients, 2)
		assert.Equal(t, []string{"Brown the chicken.", "Add the stock."}, r.Steps())
	})

	t.Run("FallsBackToSummary", func(t *testing.T) {
		summary := recipe.Recipe{ID: "999", Name: "Mystery", Thumbnail: "m.jpg"}
		assert.Equal(t, summary, env.app.GetDetails(ctx, "999", summary))
	})

	t.Run("Batch", func(t *testing.T) {
		got := env.app.Details(ctx, []recipe.Recipe{
			{ID: "52956", Name: "Chicken Congee"},
			{ID: "999", Name: "Mystery"},
			{ID: "52940", Name: "Brown Stew Chicken"},
		})
		require.Len(t, got, 3)
		assert.Equal(t, "Chicken Congee", got[0].Name)
		assert.True(t, got[0].Detailed)
		assert.False(t, got[1].Detailed)
		assert.True(t, got[2].Detailed)
	})
}

func TestShoppingList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	s := env.app.Session(ctx, "local")

	_, err := s.ShoppingList(ctx)
	assert.ErrorIs(t, err, ErrNoRecipes)

	_, err = s.Resolve(ctx, "chicken")
	require.NoError(t, err)
	for _, r := range s.Results() {
		_, err := s.ToggleFavorite(ctx, r)
		require.NoError(t, err)
	}

	list, err := s.ShoppingList(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, list.RecipeCount)
	require.Len(t, list.Items, 3)
	assert.Equal(t, "Chicken", list.Items[0].Name)
	assert.Equal(t, []string{"1 whole", "8 oz"}, list.Items[0].Measures)

	item, err := list.AddCustom("paper towels")
	require.NoError(t, err)
	list.Toggle("rice")
	require.NoError(t, s.SaveShoppingList(ctx, list))

	restored, err := s.ShoppingList(ctx)
	require.NoError(t, err)
	require.Len(t, restored.Custom, 1)
	assert.Equal(t, item.ID, restored.Custom[0].ID)
	assert.True(t, restored.Checked["rice"])

	text := restored.Text(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, text, "Shopping List for 2 Recipes")
	assert.Contains(t, text, "• paper towels")
	assert.NotContains(t, text, "Rice")

	require.NoError(t, s.ClearShoppingList(ctx))
	cleared, err := s.ShoppingList(ctx)
	require.NoError(t, err)
	assert.Empty(t, cleared.Custom)
}

func TestPreviewWithoutSource(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.app.Preview(context.Background(), recipe.Recipe{ID: "1"})
	assert.Error(t, err)
}
