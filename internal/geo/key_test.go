package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueflaggreece/shorecast/internal/geo"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name      string
		lat, lon  float64
		precision int
		expected  string
	}{
		{"full precision source", 37.9451012, 23.6317109, 6, "37.945101_23.631711"},
		{"short coordinates stay short", 37.5, 23.0, 6, "37.5_23"},
		{"three digits", 37.9451012, 23.6317109, 3, "37.945_23.632"},
		{"seven digits", 37.94510126, 23.63171091, 7, "37.9451013_23.6317109"},
		{"rounding collision", 37.12345678, 23.1, 6, "37.123457_23.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, geo.Key(tc.lat, tc.lon, tc.precision))
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	first := geo.Key(38.2466395, 21.734574, 6)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, geo.Key(38.2466395, 21.734574, 6))
	}
}

func TestKey_NegativeZeroNormalizes(t *testing.T) {
	// Rounding -0.0000001 to six digits lands on zero; the key must not
	// carry a sign that 0.0 would not.
	assert.Equal(t, geo.Key(0, 23.0, 6), geo.Key(-0.0000001, 23.0, 6))
	assert.Equal(t, "0_23", geo.Key(-0.0000001, 23.0, 6))
}

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, geo.Key(37.9451012, 23.6317109, 6), geo.CanonicalKey(37.9451012, 23.6317109))
}

func TestFixedKey(t *testing.T) {
	assert.Equal(t, "37.500000_23.000000", geo.FixedKey(37.5, 23.0, 6))
	assert.Equal(t, "37.945_23.632", geo.FixedKey(37.9451012, 23.6317109, 3))
}

func TestExactKey(t *testing.T) {
	assert.Equal(t, "37.5_23", geo.ExactKey(37.5, 23.0))
	assert.Equal(t, "37.94510126_23.63171091", geo.ExactKey(37.94510126, 23.63171091))
}

func TestCandidateKeys(t *testing.T) {
	keys := geo.CandidateKeys(37.9451012, 23.6317109)

	require.NotEmpty(t, keys)
	assert.Equal(t, geo.ExactKey(37.9451012, 23.6317109), keys[0])

	// Highest precision candidates come before lower ones.
	idx := func(k string) int {
		for i, key := range keys {
			if key == k {
				return i
			}
		}
		return -1
	}
	require.GreaterOrEqual(t, idx(geo.Key(37.9451012, 23.6317109, 7)), 0)
	require.GreaterOrEqual(t, idx(geo.Key(37.9451012, 23.6317109, 3)), 0)
	assert.Less(t, idx(geo.Key(37.9451012, 23.6317109, 7)), idx(geo.Key(37.9451012, 23.6317109, 3)))

	// No duplicates.
	seen := make(map[string]struct{})
	for _, k := range keys {
		_, dup := seen[k]
		assert.False(t, dup, "duplicate candidate %q", k)
		seen[k] = struct{}{}
	}
}

func TestParseKey(t *testing.T) {
	lat, lon, ok := geo.ParseKey("37.945101_23.631711")
	require.True(t, ok)
	assert.InDelta(t, 37.945101, lat, 1e-9)
	assert.InDelta(t, 23.631711, lon, 1e-9)

	for _, bad := range []string{"", "37.5", "37.5_abc", "abc_23.0", "_"} {
		_, _, ok := geo.ParseKey(bad)
		assert.False(t, ok, "expected %q to fail", bad)
	}
}
