package app

import (
	"context"
	"fmt"

	"recipe-finder/internal/recipe"
	"recipe-finder/internal/shopping"
)

// ErrNoRecipes is returned when a shopping list is requested for nothing.
var ErrNoRecipes = fmt.Errorf("no recipes selected for the shopping list")

// ShoppingList consolidates the ingredients of the given recipes into a
// list owned by owner. Summary records are upgraded to detailed ones
// first, since only those carry ingredients.
func (a *App) ShoppingList(ctx context.Context, owner string, recipes []recipe.Recipe) (*shopping.List, error) {
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}
	return shopping.NewList(owner, a.Details(ctx, recipes)), nil
}

// ShoppingList builds the shopping list for the session's favorites and
// restores the custom items and checked entries saved for it.
func (s *Session) ShoppingList(ctx context.Context) (*shopping.List, error) {
	list, err := s.app.ShoppingList(ctx, s.Owner, s.Favorites())
	if err != nil {
		return nil, err
	}

	saved, err := s.app.shoppingRepo.Get(ctx, s.Owner)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load saved shopping list")
		return list, nil
	}
	if saved != nil {
		saved.Apply(list)
	}
	return list, nil
}

// SaveShoppingList persists the custom items and checked state of list.
func (s *Session) SaveShoppingList(ctx context.Context, list *shopping.List) error {
	return s.app.shoppingRepo.Save(ctx, list)
}

// ClearShoppingList drops the saved custom items and checked state.
func (s *Session) ClearShoppingList(ctx context.Context) error {
	return s.app.shoppingRepo.Delete(ctx, s.Owner)
}
