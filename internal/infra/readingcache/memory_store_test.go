package readingcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/aqi-search/internal/domain/aqi"
)

func TestMemoryStoreExpiresEntries(t *testing.T) {
	store := NewMemoryStore(10)
	clock := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "pune", aqi.Reading{City: "Pune"}, 10*time.Minute))

	got, ok, err := store.Get(ctx, "pune")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Pune", got.City)

	clock = clock.Add(9*time.Minute + 59*time.Second)
	_, ok, _ = store.Get(ctx, "pune")
	require.True(t, ok)

	clock = clock.Add(time.Second)
	_, ok, _ = store.Get(ctx, "pune")
	require.False(t, ok)
	require.Equal(t, 0, store.Len())
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", aqi.Reading{City: "A"}, 0))
	require.NoError(t, store.Set(ctx, "b", aqi.Reading{City: "B"}, 0))
	_, ok, _ := store.Get(ctx, "a")
	require.True(t, ok)
	require.NoError(t, store.Set(ctx, "c", aqi.Reading{City: "C"}, 0))

	_, ok, _ = store.Get(ctx, "b")
	require.False(t, ok, "b was least recently used")
	_, ok, _ = store.Get(ctx, "a")
	require.True(t, ok)
	_, ok, _ = store.Get(ctx, "c")
	require.True(t, ok)
	require.Equal(t, 2, store.Len())
}

func TestMemoryStoreOverwriteRefreshesEntry(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "pune", aqi.Reading{City: "Pune", AQI: aqi.FloatPtr(40)}, time.Minute))
	require.NoError(t, store.Set(ctx, "pune", aqi.Reading{City: "Pune", AQI: aqi.FloatPtr(55)}, time.Minute))

	got, ok, err := store.Get(ctx, "pune")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 55.0, *got.AQI)
	require.Equal(t, 1, store.Len())
}
