package storage

import (
	"context"
	"path/filepath"
	"testing"

	"recipe-finder/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "storage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL, "local")
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.Get(ctx, "recipe-theme")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.False(t, store.Exists(ctx, "recipe-theme"))
	})

	t.Run("PutAndOverwrite", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "recipe-theme", "light"))
		require.NoError(t, store.Put(ctx, "recipe-theme", "dark"))

		value, err := store.Get(ctx, "recipe-theme")
		require.NoError(t, err)
		assert.Equal(t, "dark", value)
	})

	t.Run("NamespacesAreIsolated", func(t *testing.T) {
		other := store.WithNamespace("chat:42")
		_, err := other.Get(ctx, "recipe-theme")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, "chat:42", other.Namespace())
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "recipe-theme"))
		require.NoError(t, store.Delete(ctx, "recipe-theme"))
		assert.False(t, store.Exists(ctx, "recipe-theme"))
	})
}

func TestStoreJSON(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	type favorite struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	in := []favorite{{ID: "1", Name: "Arrabiata"}, {ID: "2", Name: "Pad Thai"}}

	require.NoError(t, store.PutJSON(ctx, "recipe-favorites", in))

	var out []favorite
	require.NoError(t, store.GetJSON(ctx, "recipe-favorites", &out))
	assert.Equal(t, in, out)

	require.NoError(t, store.Put(ctx, "broken", "{not json"))
	err := store.GetJSON(ctx, "broken", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
