package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"recipe-finder/internal/classify"
	"recipe-finder/internal/mealdb"
	"recipe-finder/internal/recipe"

	"github.com/spf13/cobra"
)

var (
	showScale   float64
	showPreview bool
)

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(areasCmd)
	rootCmd.AddCommand(browseCmd)

	showCmd.Flags().Float64Var(&showScale, "scale", 1, "Multiply ingredient quantities")
	showCmd.Flags().BoolVar(&showPreview, "preview", false, "Fetch a preview of the source page")
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the full recipe",
	Long: `Show the ingredients and instructions of a recipe. When the details
cannot be fetched, whatever is known from the last search is shown.

Examples:
  recipe-finder show 52772
  recipe-finder show 52772 --scale 0.5 --preview`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if showScale <= 0 {
			return fmt.Errorf("--scale must be positive")
		}
		s := session(ctx)

		fallback, found := s.FindResult(args[0])
		if !found {
			fallback = recipe.Recipe{ID: args[0]}
		}
		r := finder.GetDetails(ctx, args[0], fallback)
		if r.Name == "" {
			return fmt.Errorf("recipe %s not found", args[0])
		}

		if outputJSON {
			return printJSON(r)
		}
		printRecipe(r, showScale, s.IsFavorite(r.ID))

		if showPreview {
			p, err := finder.Preview(ctx, r)
			if err != nil {
				return fmt.Errorf("failed to load source preview: %w", err)
			}
			fmt.Printf("\nSource: %s\n%s\n%s\n", p.Title, p.Description, p.Excerpt)
		}
		return nil
	},
}

func printRecipe(r recipe.Recipe, scale float64, favorite bool) {
	c := classify.Classify(r.Name)
	title := r.Name
	if favorite {
		title += " ♥"
	}
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", len([]rune(title))))

	var meta []string
	for _, v := range []string{r.Category, r.Area} {
		if v != "" {
			meta = append(meta, v)
		}
	}
	meta = append(meta, string(c.Time), string(c.Difficulty))
	if c.Meal != classify.MealNone {
		meta = append(meta, string(c.Meal))
	}
	fmt.Println(strings.Join(meta, " · "))
	if len(r.Tags) > 0 {
		fmt.Println("Tags: " + strings.Join(r.Tags, ", "))
	}

	if !r.Detailed {
		fmt.Println("\nFull recipe details are not available right now.")
		return
	}

	if len(r.Ingredients) > 0 {
		fmt.Printf("\nIngredients (%d)", len(r.Ingredients))
		if scale != 1 {
			fmt.Printf(" x%g", scale)
		}
		fmt.Println()
		for _, ing := range r.Ingredients {
			measure := recipe.ScaleMeasure(ing.Measure, scale)
			if measure != "" {
				fmt.Printf("  • %s - %s\n", ing.Name, measure)
			} else {
				fmt.Printf("  • %s\n", ing.Name)
			}
		}
	}

	if steps := r.Steps(); len(steps) > 0 {
		fmt.Println("\nInstructions")
		for i, step := range steps {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	}

	if id := r.YouTubeID(); id != "" {
		fmt.Println("\nVideo:  https://www.youtube.com/watch?v=" + id)
	}
	if r.SourceURL != "" {
		fmt.Println("Source: " + r.SourceURL)
	}
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Show a random recipe",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := finder.Catalog().FetchRandom(cmd.Context())
		if err != nil {
			return errors.New(mealdb.UserMessage(err))
		}
		if outputJSON {
			return printJSON(r)
		}
		printRecipe(r, 1, session(cmd.Context()).IsFavorite(r.ID))
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List recipe categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cats, err := finder.Catalog().ListCategories(cmd.Context())
		if err != nil {
			return errors.New(mealdb.UserMessage(err))
		}
		if outputJSON {
			return printJSON(cats)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\t")
		for _, c := range cats {
			fmt.Fprintf(w, "%s\t%s\t\n", c.ID, c.Name)
		}
		return w.Flush()
	},
}

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List cuisines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		areas, err := finder.Catalog().ListAreas(cmd.Context())
		if err != nil {
			return errors.New(mealdb.UserMessage(err))
		}
		if outputJSON {
			return printJSON(areas)
		}
		fmt.Println(strings.Join(areas, "\n"))
		return nil
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse (category|area) <name>",
	Short: "List the recipes of a category or cuisine",
	Long: `List the recipes of a category or cuisine.

Examples:
  recipe-finder browse category Seafood
  recipe-finder browse area Italian`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"category", "area"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var (
			recipes []recipe.Recipe
			err     error
		)
		switch args[0] {
		case "category":
			recipes, err = finder.Catalog().LookupByCategory(ctx, args[1])
		case "area":
			recipes, err = finder.Catalog().LookupByArea(ctx, args[1])
		default:
			return fmt.Errorf("unknown listing %q (want category or area)", args[0])
		}
		if err != nil {
			return errors.New(mealdb.UserMessage(err))
		}
		recipes = finder.ApplyFilters(recipes, session(ctx).Filters())
		if outputJSON {
			return printJSON(recipes)
		}
		printRecipeTable(recipes, session(ctx).IsFavorite)
		return nil
	},
}
