package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"recipe-finder/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db.SQL)
	now := time.Now().UTC()

	require.NoError(t, store.Record(ctx, SearchMetric{Query: "chicken", Strategy: "ingredient", Results: 4, LatencyMS: 100, Timestamp: now}))
	require.NoError(t, store.Record(ctx, SearchMetric{Query: "xyz", Strategy: "", Results: 0, Failures: 2, LatencyMS: 300, Timestamp: now}))
	require.NoError(t, store.Record(ctx, SearchMetric{Query: "old", Strategy: "name", Results: 1, LatencyMS: 50, Timestamp: now.AddDate(0, 0, -40)}))

	usage, err := store.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, now.Format("2006-01-02"), usage[0].Date)
	assert.Equal(t, 2, usage[0].Searches)
	assert.Equal(t, 1, usage[0].Empty)
	assert.Equal(t, int64(200), usage[0].AvgLatencyMS)

	removed, err := store.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestGetSysHealth(t *testing.T) {
	health := GetSysHealth(t.TempDir())
	assert.Positive(t, health.Goroutines)
	assert.Equal(t, "0 B", health.DataDiskSize)
}
