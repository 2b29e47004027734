package mealdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-finder/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		MealDBURL:     server.URL,
		MealDBTimeout: time.Second,
	}
	return NewClient(cfg)
}

func TestLookupByIngredient(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/filter.php", r.URL.Path)
			assert.Equal(t, "chicken breast", r.URL.Query().Get("i"))
			fmt.Fprintln(w, `{"meals":[
				{"strMeal":"Brown Stew Chicken","strMealThumb":"a.jpg","idMeal":"52940"},
				{"strMeal":"Chicken Congee","strMealThumb":"b.jpg","idMeal":"52956"}
			]}`)
		})

		meals, err := client.LookupByIngredient(context.Background(), "chicken breast")
		require.NoError(t, err)
		require.Len(t, meals, 2)
		assert.Equal(t, "52940", meals[0].ID)
		assert.Equal(t, "Chicken Congee", meals[1].Name)
		assert.False(t, meals[0].Detailed)
	})

	t.Run("NullMeals", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"meals":null}`)
		})

		meals, err := client.LookupByIngredient(context.Background(), "xyz")
		require.NoError(t, err)
		assert.NotNil(t, meals)
		assert.Empty(t, meals)
	})

	t.Run("ServerError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.LookupByIngredient(context.Background(), "chicken")
		require.Error(t, err)
		assert.Equal(t, KindServer, KindOf(err))
		assert.Equal(t, "Server error. Please try again in a few minutes.", UserMessage(err))
	})

	t.Run("NotFound", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.LookupByIngredient(context.Background(), "chicken")
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("MalformedResponse", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `<html>oops</html>`)
		})

		_, err := client.LookupByIngredient(context.Background(), "chicken")
		assert.Equal(t, KindMalformed, KindOf(err))
	})

	t.Run("UnexpectedStatus", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		_, err := client.LookupByIngredient(context.Background(), "chicken")
		assert.Equal(t, KindUnknown, KindOf(err))
		assert.Equal(t, "Something went wrong. Please try again.", UserMessage(err))
	})
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(&config.Config{MealDBURL: server.URL, MealDBTimeout: 50 * time.Millisecond})

	_, err := client.SearchByName(context.Background(), "slow")
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))

	var lerr *LookupError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "searchByName", lerr.Op)
}

func TestCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(&config.Config{MealDBURL: server.URL, MealDBTimeout: 5 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := client.SearchByName(ctx, "slow")
	require.Error(t, err)
	assert.Equal(t, KindCanceled, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEqual(t, KindTimeout.UserMessage(), UserMessage(err))
}

func TestNetworkUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := NewClient(&config.Config{MealDBURL: addr, MealDBTimeout: time.Second})

	_, err := client.LookupByCategory(context.Background(), "Pasta")
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, "Network connection failed. Please check your internet connection.", UserMessage(err))
}

func TestSearchByNameDetailed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.php", r.URL.Path)
		assert.Equal(t, "Arrabiata", r.URL.Query().Get("s"))
		fmt.Fprintln(w, `{"meals":[{"idMeal":"52771","strMeal":"Spicy Arrabiata Penne","strCategory":"Vegetarian",
			"strInstructions":"Boil water.\r\nAdd pasta.","strIngredient1":"penne rigate","strMeasure1":"1 pound"}]}`)
	})

	meals, err := client.SearchByName(context.Background(), "Arrabiata")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.True(t, meals[0].Detailed)
	assert.Equal(t, []string{"Boil water.", "Add pasta."}, meals[0].Steps())
}

func TestFetchByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/lookup.php", r.URL.Path)
			assert.Equal(t, "52772", r.URL.Query().Get("i"))
			fmt.Fprintln(w, `{"meals":[{"idMeal":"52772","strMeal":"Teriyaki Chicken Casserole","strInstructions":"Bake."}]}`)
		})

		meal, err := client.FetchByID(context.Background(), "52772")
		require.NoError(t, err)
		assert.Equal(t, "Teriyaki Chicken Casserole", meal.Name)
	})

	t.Run("Missing", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"meals":null}`)
		})

		_, err := client.FetchByID(context.Background(), "1")
		assert.Equal(t, KindNotFound, KindOf(err))
	})
}

func TestFetchRandom(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/random.php", r.URL.Path)
			fmt.Fprintln(w, `{"meals":[{"idMeal":"53000","strMeal":"Surprise","strInstructions":"Cook."}]}`)
		})

		meal, err := client.FetchRandom(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "53000", meal.ID)
	})

	t.Run("Empty", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"meals":null}`)
		})

		_, err := client.FetchRandom(context.Background())
		assert.Equal(t, KindMalformed, KindOf(err))
	})
}

func TestListCategoriesAndAreas(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/categories.php":
			fmt.Fprintln(w, `{"categories":[{"idCategory":"1","strCategory":"Beef","strCategoryThumb":"beef.png","strCategoryDescription":"Cow."}]}`)
		case "/list.php":
			assert.Equal(t, "list", r.URL.Query().Get("a"))
			fmt.Fprintln(w, `{"meals":[{"strArea":"American"},{"strArea":"British"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	categories, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Beef", categories[0].Name)

	areas, err := client.ListAreas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"American", "British"}, areas)
}

func TestLookupErrorMessage(t *testing.T) {
	err := &LookupError{Kind: KindServer, Op: "searchByName", Status: 503}
	assert.Equal(t, "mealdb searchByName: server-error (status 503)", err.Error())

	wrapped := fmt.Errorf("resolve: %w", err)
	assert.Equal(t, KindServer, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "Request timed out. The server might be slow. Please try again.", KindTimeout.UserMessage())
	assert.Equal(t, "Recipe service not found. Please try again later.", KindNotFound.UserMessage())
}
