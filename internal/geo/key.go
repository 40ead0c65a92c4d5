// Package geo provides coordinate cache-key encoding and planar distance
// helpers shared by the updater and the lookup matcher.
package geo

import (
	"math"
	"strconv"
)

// WritePrecision is the canonical decimal precision used when writing
// cache keys. Historical cache files also contain keys at other
// precisions; readers go through CandidateKeys instead of assuming it.
const WritePrecision = 6

// LookupPrecisions is the descending list of precisions tried by readers
// when the exact key misses.
var LookupPrecisions = []int{7, 6, 5, 4, 3}

// Key builds the cache key for a coordinate pair at the given decimal
// precision. Coordinates are rounded, then formatted with the shortest
// representation (no trailing zeros), matching the historical producer
// format "37.945101_23.631711".
func Key(lat, lon float64, precision int) string {
	return formatCoord(roundTo(lat, precision)) + "_" + formatCoord(roundTo(lon, precision))
}

// CanonicalKey builds the key at WritePrecision. All new cache entries
// are addressed by this key.
func CanonicalKey(lat, lon float64) string {
	return Key(lat, lon, WritePrecision)
}

// ExactKey builds the key from the unrounded coordinates using the
// shortest float formatting. Used as the first lookup strategy.
func ExactKey(lat, lon float64) string {
	return formatCoord(lat) + "_" + formatCoord(lon)
}

// FixedKey builds the key with a fixed number of decimal digits,
// including trailing zeros ("37.500000_23.000000"). Some historical
// consumers wrote keys in this form.
func FixedKey(lat, lon float64, precision int) string {
	return strconv.FormatFloat(roundTo(lat, precision), 'f', precision, 64) +
		"_" + strconv.FormatFloat(roundTo(lon, precision), 'f', precision, 64)
}

// CandidateKeys returns the ordered key candidates for a lookup: the
// exact key first, then for each precision in LookupPrecisions the
// round-then-shortest form and the fixed-decimal form. Duplicates are
// removed preserving first occurrence.
func CandidateKeys(lat, lon float64) []string {
	keys := make([]string, 0, 1+2*len(LookupPrecisions))
	seen := make(map[string]struct{}, cap(keys))

	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	add(ExactKey(lat, lon))
	for _, p := range LookupPrecisions {
		add(Key(lat, lon, p))
		add(FixedKey(lat, lon, p))
	}
	return keys
}

// ParseKey splits a "lat_lon" cache key back into coordinates. Returns
// false for keys that do not parse; the matcher skips those entries.
func ParseKey(key string) (lat, lon float64, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] != '_' {
			continue
		}
		lat, errLat := strconv.ParseFloat(key[:i], 64)
		lon, errLon := strconv.ParseFloat(key[i+1:], 64)
		if errLat != nil || errLon != nil {
			return 0, 0, false
		}
		return lat, lon, true
	}
	return 0, 0, false
}

// roundTo rounds v to the given number of decimal digits and normalizes
// negative zero so that coordinates straddling 0 produce one key.
func roundTo(v float64, precision int) float64 {
	shift := math.Pow10(precision)
	r := math.Round(v*shift) / shift
	if r == 0 {
		return 0
	}
	return r
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
