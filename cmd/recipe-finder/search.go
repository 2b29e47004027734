package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"recipe-finder/internal/classify"
	"recipe-finder/internal/filter"
	"recipe-finder/internal/mealdb"
	"recipe-finder/internal/recipe"
	"recipe-finder/internal/search"

	"github.com/spf13/cobra"
)

var searchFilter string

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(suggestCmd)

	searchCmd.Flags().StringVar(&searchFilter, "filter", "", `Set filters before searching, e.g. "time=quick category=dinner"`)
	historyCmd.Flags().Bool("clear", false, "Clear the search history")
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recipes by ingredient, name or description",
	Long: `Search recipes. The query is tried as ingredients first, then as a dish
name, then word by word, then as a category, and finally random recipes
are suggested.

Active filters are remembered between runs.

Examples:
  recipe-finder search chicken
  recipe-finder search "beef noodles" --filter "difficulty=easy"
  recipe-finder search maggie --filter "time=any difficulty=any category=any"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s := session(ctx)

	if searchFilter != "" {
		f, err := filter.Parse(s.Filters(), searchFilter)
		if err != nil {
			return err
		}
		if err := s.SetFilters(ctx, f); err != nil {
			return fmt.Errorf("failed to save filters: %w", err)
		}
	}

	res, err := s.Resolve(ctx, strings.Join(args, " "))
	var agg *search.AggregateError
	if errors.As(err, &agg) {
		return errors.New(mealdb.UserMessage(agg))
	} else if err != nil {
		return err
	}

	recipes := s.FilteredResults()
	if outputJSON {
		return printJSON(map[string]any{
			"query":    res.Query,
			"strategy": res.Strategy,
			"filters":  s.Filters(),
			"recipes":  recipes,
		})
	}

	if errors.Is(res.Err(), search.ErrNoResults) {
		fmt.Printf("No recipes found for %q.\n", res.Query)
		fmt.Println("Try main ingredients like chicken, beef, tomato or mushroom, or dish names like pasta or curry.")
		return nil
	}

	fmt.Printf("Found %d recipe(s) for %q via %s search", len(recipes), res.Query, res.Strategy)
	if f := s.Filters(); f.Active() {
		fmt.Printf(" (%s)", f)
	}
	fmt.Println()
	printRecipeTable(recipes, s.IsFavorite)
	return nil
}

func printRecipeTable(recipes []recipe.Recipe, favorite func(string) bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDIFFICULTY\tMEAL\t")
	for _, r := range recipes {
		c := classify.Classify(r.Name)
		name := r.Name
		if favorite(r.ID) {
			name += " ♥"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", r.ID, name, c.Time, c.Difficulty, c.Meal)
	}
	w.Flush()
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		s := session(ctx)

		if clearAll, _ := cmd.Flags().GetBool("clear"); clearAll {
			return s.ClearHistory(ctx)
		}
		if outputJSON {
			return printJSON(s.History())
		}
		for i, q := range s.History() {
			fmt.Printf("%d. %s\n", i+1, q)
		}
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "Show popular ingredients and trending dishes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sug := finder.Suggestions()
		if outputJSON {
			return printJSON(sug)
		}
		fmt.Println("Popular ingredients: " + strings.Join(sug.PopularIngredients, ", "))
		fmt.Println("Trending dishes:     " + strings.Join(sug.TrendingDishes, ", "))
		return nil
	},
}
