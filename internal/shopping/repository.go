package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Saved is the persisted state of an owner's shopping list. Items are
// rebuilt from RecipeIDs on load.
type Saved struct {
	Owner     string
	RecipeIDs []string
	Custom    []CustomItem
	Checked   []string
	UpdatedAt time.Time
}

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores the list as the owner's current list, replacing any previous one.
func (r *Repository) Save(ctx context.Context, list *List) error {
	idsJSON, err := json.Marshal(list.RecipeIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe ids: %w", err)
	}
	custom := list.Custom
	if custom == nil {
		custom = []CustomItem{}
	}
	customJSON, err := json.Marshal(custom)
	if err != nil {
		return fmt.Errorf("failed to marshal custom items: %w", err)
	}
	checked := make([]string, 0, len(list.Checked))
	for id, on := range list.Checked {
		if on {
			checked = append(checked, id)
		}
	}
	checkedJSON, err := json.Marshal(checked)
	if err != nil {
		return fmt.Errorf("failed to marshal checked items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (owner, recipe_ids, custom_items, checked, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (owner) DO UPDATE SET
		   recipe_ids = excluded.recipe_ids,
		   custom_items = excluded.custom_items,
		   checked = excluded.checked,
		   updated_at = excluded.updated_at`,
		list.Owner, string(idsJSON), string(customJSON), string(checkedJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save shopping list: %w", err)
	}
	return nil
}

// Get returns the owner's saved list, or nil if there is none.
func (r *Repository) Get(ctx context.Context, owner string) (*Saved, error) {
	var idsJSON, customJSON, checkedJSON, updated string
	err := r.db.QueryRowContext(ctx,
		`SELECT recipe_ids, custom_items, checked, updated_at FROM shopping_lists WHERE owner = ?`, owner,
	).Scan(&idsJSON, &customJSON, &checkedJSON, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}

	saved := &Saved{Owner: owner}
	if err := json.Unmarshal([]byte(idsJSON), &saved.RecipeIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe ids: %w", err)
	}
	if err := json.Unmarshal([]byte(customJSON), &saved.Custom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal custom items: %w", err)
	}
	if err := json.Unmarshal([]byte(checkedJSON), &saved.Checked); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checked items: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		saved.UpdatedAt = t
	}
	return saved, nil
}

// Delete removes the owner's list.
func (r *Repository) Delete(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE owner = ?`, owner)
	return err
}

// Apply copies the saved custom items and checked state onto list.
func (s *Saved) Apply(list *List) {
	list.Custom = append([]CustomItem(nil), s.Custom...)
	list.Checked = make(map[string]bool, len(s.Checked))
	for _, id := range s.Checked {
		list.Checked[id] = true
	}
	if !s.UpdatedAt.IsZero() {
		list.UpdatedAt = s.UpdatedAt
	}
}
