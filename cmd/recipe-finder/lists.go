package main

import (
	"errors"
	"fmt"
	"time"

	"recipe-finder/internal/app"
	"recipe-finder/internal/recipe"
	"recipe-finder/internal/shopping"

	"github.com/spf13/cobra"
)

var (
	shopAdd    string
	shopCheck  int
	shopRemove string
	shopExport bool
	shopReset  bool

	cleanupDays int
)

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesToggleCmd)

	rootCmd.AddCommand(shoppingCmd)
	shoppingCmd.Flags().StringVar(&shopAdd, "add", "", "Add a custom item")
	shoppingCmd.Flags().IntVar(&shopCheck, "check", 0, "Toggle the checked state of entry N")
	shoppingCmd.Flags().StringVar(&shopRemove, "remove", "", "Remove the custom item with this id")
	shoppingCmd.Flags().BoolVar(&shopExport, "export", false, "Print the list as plain text")
	shoppingCmd.Flags().BoolVar(&shopReset, "reset", false, "Drop custom items and checked state")

	rootCmd.AddCommand(themeCmd)

	rootCmd.AddCommand(metricsCleanupCmd)
	metricsCleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "Keep records for the last N days")
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage favorite recipes",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := session(cmd.Context())
		if outputJSON {
			return printJSON(s.Favorites())
		}
		favs := s.Favorites()
		if len(favs) == 0 {
			fmt.Println("No favorites yet.")
			return nil
		}
		printRecipeTable(favs, s.IsFavorite)
		return nil
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:     "toggle <id>",
	Aliases: []string{"add", "remove"},
	Short:   "Add a recipe to favorites, or remove it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := session(ctx)

		r, found := s.FindResult(args[0])
		if !found {
			r = finder.GetDetails(ctx, args[0], recipe.Recipe{ID: args[0]})
		}
		if r.Name == "" {
			return fmt.Errorf("recipe %s not found", args[0])
		}

		added, err := s.ToggleFavorite(ctx, r)
		if err != nil {
			return err
		}
		if added {
			fmt.Printf("Added %q to favorites.\n", r.Name)
		} else {
			fmt.Printf("Removed %q from favorites.\n", r.Name)
		}
		return nil
	},
}

var shoppingCmd = &cobra.Command{
	Use:   "shopping",
	Short: "Shopping list for your favorites",
	Long: `Build a shopping list from the ingredients of your favorites. Custom
items and checked entries are remembered.

Examples:
  recipe-finder shopping
  recipe-finder shopping --add "paper towels"
  recipe-finder shopping --check 3
  recipe-finder shopping --export > list.txt`,
	Args: cobra.NoArgs,
	RunE: runShopping,
}

func runShopping(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	s := session(ctx)

	if shopReset {
		return s.ClearShoppingList(ctx)
	}

	list, err := s.ShoppingList(ctx)
	if errors.Is(err, app.ErrNoRecipes) {
		fmt.Println("No favorites yet. Add some with: recipe-finder favorites add <id>")
		return nil
	} else if err != nil {
		return err
	}

	changed := false
	if shopAdd != "" {
		if _, err := list.AddCustom(shopAdd); err != nil {
			return err
		}
		changed = true
	}
	if shopRemove != "" {
		if !list.RemoveCustom(shopRemove) {
			return fmt.Errorf("no custom item %s", shopRemove)
		}
		changed = true
	}
	if shopCheck != 0 {
		id, ok := list.EntryID(shopCheck)
		if !ok {
			return fmt.Errorf("no entry %d", shopCheck)
		}
		list.Toggle(id)
		changed = true
	}
	if changed {
		if err := s.SaveShoppingList(ctx, list); err != nil {
			return fmt.Errorf("failed to save shopping list: %w", err)
		}
	}

	switch {
	case outputJSON:
		return printJSON(list)
	case shopExport:
		fmt.Println(list.Text(time.Now()))
		return nil
	}
	printShopping(list)
	return nil
}

func printShopping(l *shopping.List) {
	fmt.Printf("Shopping list for %d recipe(s)\n\n", l.RecipeCount)
	n := 0
	for _, item := range l.Items {
		n++
		fmt.Printf("%s %2d. %s (%v)\n", checkbox(l.Checked[item.Key]), n, item.Name, item.Measures)
	}
	if len(l.Custom) > 0 {
		fmt.Println("\nAdditional items")
		for _, item := range l.Custom {
			n++
			fmt.Printf("%s %2d. %s  [%s]\n", checkbox(l.Checked[item.ID]), n, item.Text, item.ID)
		}
	}
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Show, set or toggle the theme preference",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{app.ThemeLight, app.ThemeDark, "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := session(ctx)
		switch {
		case len(args) == 0:
			fmt.Println(s.Theme(ctx))
			return nil
		case args[0] == "toggle":
			theme, err := s.ToggleTheme(ctx)
			if err != nil {
				return err
			}
			fmt.Println(theme)
			return nil
		default:
			return s.SetTheme(ctx, args[0])
		}
	},
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Remove old search metric records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		affected, err := finder.Metrics().Cleanup(cmd.Context(), cleanupDays)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return nil
	},
}
