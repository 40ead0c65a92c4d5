// Package updater implements the batch update engine. Each run loads
// the beach registry and the persisted cache, decides which locations
// are stale, fetches fresh conditions through a worker pool and merges
// the results back without disturbing untouched entries.
package updater

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blueflaggreece/shorecast/internal/conditions"
	"github.com/blueflaggreece/shorecast/internal/geo"
	"github.com/blueflaggreece/shorecast/internal/registry"
	"github.com/blueflaggreece/shorecast/internal/store"
)

const (
	// DefaultFreshnessWindow is the maximum record age before a
	// location is refreshed. The value is policy, not truth; override
	// it through Config.
	DefaultFreshnessWindow = 6 * time.Hour

	// DefaultWorkers is the fetch pool size. The shared rate limiter
	// inside the provider client is the real throttle, so the pool
	// mostly hides per-request latency.
	DefaultWorkers = 6
)

// Fetcher produces one conditions record for a location. Implemented by
// conditions.Service.
type Fetcher interface {
	Fetch(ctx context.Context, beachName string, lat, lon float64) (conditions.Record, error)
}

// Config holds the engine's policy knobs.
type Config struct {
	// FreshnessWindow is the maximum record age before re-fetch.
	// Zero or negative uses DefaultFreshnessWindow.
	FreshnessWindow time.Duration

	// Workers is the fetch pool size. Zero or negative uses
	// DefaultWorkers.
	Workers int

	// BatchSize restricts a run to a slice of the de-duplicated
	// location list. Zero or negative processes every location.
	BatchSize int

	// BatchIndex selects which slice to process, zero-based.
	BatchIndex int

	// Now is the clock used for staleness checks. Nil uses time.Now.
	Now func() time.Time
}

// Engine runs batch updates against a store.
type Engine struct {
	fetcher Fetcher
	store   *store.Store
	cfg     Config
	logger  zerolog.Logger
}

// NewEngine creates a batch update engine.
func NewEngine(fetcher Fetcher, st *store.Store, cfg Config, logger zerolog.Logger) *Engine {
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = DefaultFreshnessWindow
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{fetcher: fetcher, store: st, cfg: cfg, logger: logger}
}

// Result summarizes one run.
type Result struct {
	StartTime  time.Time
	Duration   time.Duration
	Considered int // unique locations in this run's partition
	Stale      int // locations that needed a fetch
	Updated    int
	Failed     int
	CacheSize  int // entries in the cache after merge
}

// Run executes one batch update. Per-location fetch failures are
// logged and counted but never abort the run; only store persistence
// errors propagate. The cache is saved even when nothing was stale so
// downstream tooling always observes a fresh file.
func (e *Engine) Run(ctx context.Context, beaches []registry.Beach) (*Result, error) {
	start := e.cfg.Now()
	result := &Result{StartTime: start}

	unique := registry.UniqueLocations(beaches)
	partition := e.partition(unique)
	result.Considered = len(partition)

	cache := e.store.Load()

	stale := make([]registry.Beach, 0, len(partition))
	for _, b := range partition {
		if e.needsUpdate(cache, b, start) {
			stale = append(stale, b)
		}
	}
	result.Stale = len(stale)

	e.logger.Info().
		Int("beaches", len(beaches)).
		Int("unique", len(unique)).
		Int("considered", result.Considered).
		Int("stale", result.Stale).
		Int("workers", e.cfg.Workers).
		Msg("starting batch update")

	updates := e.fetchAll(ctx, stale, result)

	merged := store.Merge(cache, updates)
	if err := e.store.Save(merged); err != nil {
		return result, err
	}
	result.CacheSize = len(merged)
	result.Duration = e.cfg.Now().Sub(start)

	e.logger.Info().
		Int("considered", result.Considered).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Int("cache_size", result.CacheSize).
		Dur("duration", result.Duration).
		Msg("batch update completed")

	return result, nil
}

// partition returns the slice of locations this run is responsible
// for. An out-of-range batch index yields an empty partition, which is
// a successful no-op run.
func (e *Engine) partition(unique []registry.Beach) []registry.Beach {
	if e.cfg.BatchSize <= 0 {
		return unique
	}
	lo := e.cfg.BatchIndex * e.cfg.BatchSize
	if lo >= len(unique) || lo < 0 {
		return nil
	}
	hi := lo + e.cfg.BatchSize
	if hi > len(unique) {
		hi = len(unique)
	}
	return unique[lo:hi]
}

// needsUpdate reports whether a location's cached record is missing,
// unparseable or older than the freshness window.
func (e *Engine) needsUpdate(cache store.Cache, b registry.Beach, now time.Time) bool {
	rec, ok := cache[geo.CanonicalKey(b.Latitude, b.Longitude)]
	if !ok {
		return true
	}
	ts, ok := rec.UpdatedAt()
	if !ok {
		return true
	}
	return now.Sub(ts) > e.cfg.FreshnessWindow
}

type fetchResult struct {
	key string
	rec conditions.Record
	err error
}

// fetchAll fans the stale locations out over the worker pool and
// collects the successful records keyed for merge.
func (e *Engine) fetchAll(ctx context.Context, stale []registry.Beach, result *Result) store.Cache {
	updates := make(store.Cache, len(stale))
	if len(stale) == 0 {
		return updates
	}

	jobs := make(chan registry.Beach, len(stale))
	results := make(chan fetchResult, len(stale))

	var wg sync.WaitGroup
	for i := 0; i < e.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx, jobs, results)
		}()
	}

	for _, b := range stale {
		jobs <- b
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for fr := range results {
		if fr.err != nil {
			result.Failed++
			e.logger.Warn().Err(fr.err).
				Str("key", fr.key).
				Msg("location update failed, continuing with the rest")
			continue
		}
		updates[fr.key] = fr.rec
		result.Updated++
	}

	return updates
}

func (e *Engine) worker(ctx context.Context, jobs <-chan registry.Beach, results chan<- fetchResult) {
	for b := range jobs {
		select {
		case <-ctx.Done():
			results <- fetchResult{
				key: geo.CanonicalKey(b.Latitude, b.Longitude),
				err: ctx.Err(),
			}
			continue
		default:
		}

		rec, err := e.fetcher.Fetch(ctx, b.Name, b.Latitude, b.Longitude)
		results <- fetchResult{
			key: geo.CanonicalKey(b.Latitude, b.Longitude),
			rec: rec,
			err: err,
		}
	}
}
