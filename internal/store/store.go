// Package store persists the weather cache as a single flat JSON object
// keyed by coordinate cache keys, and resolves display-layer queries
// against it with fuzzy coordinate matching.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/blueflaggreece/shorecast/internal/conditions"
)

// Cache is the full cache content: cache key to conditions record.
type Cache map[string]conditions.Record

// Store reads and writes the canonical cache file. Save is the only
// code path that touches the on-disk representation.
type Store struct {
	path   string
	logger zerolog.Logger
}

// NewStore creates a store for the cache file at path.
func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted cache. An absent file yields an empty cache;
// a file that does not parse as a JSON object yields an empty cache
// with a warning, leaving the file itself untouched until the next
// successful Save. Load never fails: losing the merge base for one run
// is recoverable, aborting the pipeline is not.
func (s *Store) Load() Cache {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", s.path).
				Msg("cache file unreadable, starting from empty cache")
		}
		return Cache{}
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).
			Msg("cache file is not a well-formed JSON object, starting from empty cache")
		return Cache{}
	}
	if cache == nil {
		cache = Cache{}
	}
	return cache
}

// Save writes the complete cache. The content goes to a temporary file
// in the same directory first and is renamed into place, so a crash
// mid-write cannot corrupt the previous valid cache.
func (s *Store) Save(cache Cache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}

// Merge returns the key-wise union of existing and updates. Updates win
// on conflict; existing entries whose keys are absent from updates are
// preserved unchanged. Neither input is mutated.
func Merge(existing, updates Cache) Cache {
	merged := make(Cache, len(existing)+len(updates))
	for key, rec := range existing {
		merged[key] = rec
	}
	for key, rec := range updates {
		merged[key] = rec
	}
	return merged
}
