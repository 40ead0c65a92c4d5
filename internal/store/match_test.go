package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueflaggreece/shorecast/internal/conditions"
	"github.com/blueflaggreece/shorecast/internal/store"
)

func namedRecord(name string, lat, lon float64) conditions.Record {
	return conditions.NewRecord(name, lat, lon, time.Now())
}

func TestMatcher_Find_ExactKey(t *testing.T) {
	cache := store.Cache{
		"37.94510126_23.63171091": namedRecord("Vouliagmeni", 37.94510126, 23.63171091),
	}

	matcher := store.NewMatcher(0)
	rec, err := matcher.Find(37.94510126, 23.63171091, cache)
	require.NoError(t, err)
	assert.Equal(t, "Vouliagmeni", rec.BeachName)
}

func TestMatcher_Find_RoundedPrecisionFallback(t *testing.T) {
	// Producer wrote a 6-digit key; consumer queries with extra noise.
	// The rounding fallback must hit without the nearest-neighbor scan.
	cache := store.Cache{
		"37.5_23": namedRecord("Six digit key", 37.5, 23.0),
	}

	matcher := store.NewMatcher(0)
	rec, err := matcher.Find(37.500001, 23.000001, cache)
	require.NoError(t, err)
	assert.Equal(t, "Six digit key", rec.BeachName)
}

func TestMatcher_Find_FixedDecimalFormat(t *testing.T) {
	// Some historical producers wrote keys with trailing zeros.
	cache := store.Cache{
		"37.500000_23.000000": namedRecord("Fixed format", 37.5, 23.0),
	}

	matcher := store.NewMatcher(0)
	rec, err := matcher.Find(37.5, 23.0, cache)
	require.NoError(t, err)
	assert.Equal(t, "Fixed format", rec.BeachName)
}

func TestMatcher_Find_NearestNeighborWithinRadius(t *testing.T) {
	cache := store.Cache{
		"37.5_23": namedRecord("Nearby", 37.5, 23.0),
	}

	// (37.51, 23.01) is roughly 1.4 km from the entry: inside the
	// default radius, outside a 1 km one.
	rec, err := store.NewMatcher(0).Find(37.51, 23.01, cache)
	require.NoError(t, err)
	assert.Equal(t, "Nearby", rec.BeachName)

	_, err = store.NewMatcher(1.0).Find(37.51, 23.01, cache)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMatcher_Find_EmptyCache(t *testing.T) {
	_, err := store.NewMatcher(0).Find(37.5, 23.0, store.Cache{})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = store.NewMatcher(0).Find(37.5, 23.0, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMatcher_Find_DeterministicTieBreak(t *testing.T) {
	// Two entries exactly the same distance from the query point. The
	// matcher visits keys in sorted order, so the lexicographically
	// smaller key wins on every call.
	cache := store.Cache{
		"37.51_23": namedRecord("North", 37.51, 23.0),
		"37.49_23": namedRecord("South", 37.49, 23.0),
	}

	matcher := store.NewMatcher(1.5)
	for i := 0; i < 10; i++ {
		rec, err := matcher.Find(37.5, 23.0, cache)
		require.NoError(t, err)
		assert.Equal(t, "South", rec.BeachName)
	}
}

func TestMatcher_Find_DegenerateEntryFallsBackToKey(t *testing.T) {
	// Historical entries occasionally lost their coordinate fields; the
	// key itself still locates them.
	rec := conditions.Record{BeachName: "Key only"}
	cache := store.Cache{"37.5_23": rec}

	got, err := store.NewMatcher(0).Find(37.501, 23.001, cache)
	require.NoError(t, err)
	assert.Equal(t, "Key only", got.BeachName)
}

func TestMatcher_Find_DoesNotMutateCache(t *testing.T) {
	cache := store.Cache{
		"37.5_23": namedRecord("A", 37.5, 23.0),
	}

	_, _ = store.NewMatcher(0).Find(40.0, 25.0, cache)
	assert.Len(t, cache, 1)
	assert.Equal(t, "A", cache["37.5_23"].BeachName)
}
