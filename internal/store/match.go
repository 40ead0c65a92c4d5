package store

import (
	"errors"
	"sort"

	"github.com/blueflaggreece/shorecast/internal/conditions"
	"github.com/blueflaggreece/shorecast/internal/geo"
)

// ErrNotFound is returned when no cache entry matches a query under any
// strategy.
var ErrNotFound = errors.New("no cache entry matches the coordinate")

// DefaultMaxDistanceKm is the nearest-neighbor fallback radius. The
// historical consumers used thresholds between roughly 0.1 and 2 km;
// this sits in the middle and is configurable.
const DefaultMaxDistanceKm = 1.5

// Matcher resolves a display-layer coordinate to the best-matching
// cache entry. Producers and consumers have historically disagreed on
// key precision and formatting, so a bare map lookup is not enough.
type Matcher struct {
	maxDistanceKm float64
}

// NewMatcher creates a matcher with the given nearest-neighbor radius
// in kilometers. Zero or negative uses DefaultMaxDistanceKm.
func NewMatcher(maxDistanceKm float64) *Matcher {
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxDistanceKm
	}
	return &Matcher{maxDistanceKm: maxDistanceKm}
}

// Find resolves the record for a query coordinate. Strategies in order,
// first hit wins:
//
//  1. Exact key from the unrounded coordinates.
//  2. Keys at descending precisions (7..3), in both the
//     round-then-shortest and the fixed-decimal historical formats.
//  3. Nearest-neighbor scan over every entry's stored coordinates,
//     accepted only within the configured radius.
//
// The cache is never mutated; an empty cache always yields ErrNotFound.
func (m *Matcher) Find(lat, lon float64, cache Cache) (conditions.Record, error) {
	if len(cache) == 0 {
		return conditions.Record{}, ErrNotFound
	}

	for _, key := range geo.CandidateKeys(lat, lon) {
		if rec, ok := cache[key]; ok {
			return rec, nil
		}
	}

	return m.nearest(lat, lon, cache)
}

// nearest scans the whole cache for the entry closest to the query
// point. Keys are visited in sorted order and only a strictly smaller
// distance replaces the current best, so the result is deterministic
// for a fixed cache snapshot even when two entries tie.
func (m *Matcher) nearest(lat, lon float64, cache Cache) (conditions.Record, error) {
	keys := make([]string, 0, len(cache))
	for key := range cache {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var (
		best     conditions.Record
		bestDist = -1.0
	)
	for _, key := range keys {
		rec := cache[key]
		recLat, recLon := rec.Latitude, rec.Longitude
		if recLat == 0 && recLon == 0 {
			// Degenerate historical entry; fall back to the key itself.
			var ok bool
			if recLat, recLon, ok = geo.ParseKey(key); !ok {
				continue
			}
		}

		d := geo.EquirectangularKm(lat, lon, recLat, recLon)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = rec
		}
	}

	if bestDist < 0 || bestDist > m.maxDistanceKm {
		return conditions.Record{}, ErrNotFound
	}
	return best, nil
}
