// Package erddap provides the bulk sea-surface-temperature source: one
// gridded NOAA ERDDAP request covers the whole Greek coastline, cached
// in memory for a TTL, with per-point nearest-grid-cell lookup.
package erddap

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blueflaggreece/shorecast/internal/conditions"
	"github.com/blueflaggreece/shorecast/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the ERDDAP griddap endpoint for the MUR SST
	// analysis dataset.
	DefaultBaseURL = "https://coastwatch.pfeg.noaa.gov/erddap/griddap/jplMURSST41.json"

	// DefaultTTL is how long one grid download is reused before a
	// refresh is attempted.
	DefaultTTL = 4 * time.Hour

	// DefaultMaxDegrees is the nearest-grid-point cutoff in degrees.
	// A beach farther than this from every valid grid cell gets no sea
	// temperature from this source.
	DefaultMaxDegrees = 2.0
)

// Greece bounding box for the grid query. Matches the coverage of the
// beach registry.
const (
	latMin = 34
	latMax = 42
	lonMin = 19
	lonMax = 29
)

// Grid values outside this range are sensor artifacts, not Celsius sea
// temperatures.
const (
	minValidCelsius = -10
	maxValidCelsius = 50
)

// GridConfig holds configuration for the SST grid source.
type GridConfig struct {
	// BaseURL overrides the ERDDAP endpoint (tests).
	BaseURL string

	// TTL is how long a downloaded grid stays fresh. Default: 4 hours.
	TTL time.Duration

	// MaxDegrees is the nearest-point cutoff. Default: 2.0 degrees.
	MaxDegrees float64

	// HTTPClient is the resilient HTTP client to use. If nil, uses a
	// client with defaults and no rate limiter.
	HTTPClient *resilience.Client

	// Logger for grid operations.
	Logger zerolog.Logger
}

// Grid is the in-memory SST grid cache. Constructed once per engine and
// shared by the fetch workers; reads vastly outnumber refreshes, both
// are guarded by one mutex.
type Grid struct {
	baseURL    string
	ttl        time.Duration
	maxDegrees float64
	httpClient *resilience.Client
	logger     zerolog.Logger

	mu        sync.Mutex
	points    []gridPoint
	fetchedAt time.Time
}

type gridPoint struct {
	lat  float64
	lon  float64
	temp float64
}

// NewGrid creates a new SST grid source.
func NewGrid(cfg GridConfig) *Grid {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	maxDegrees := cfg.MaxDegrees
	if maxDegrees == 0 {
		maxDegrees = DefaultMaxDegrees
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("erddap"))
	}

	return &Grid{
		baseURL:    baseURL,
		ttl:        ttl,
		maxDegrees: maxDegrees,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// SeaTempNear returns the sea temperature at the grid point nearest to
// the given coordinate, or the unavailable sentinel when the grid could
// not be fetched or no valid point lies within the cutoff. Best-effort
// by contract; it never returns an error.
func (g *Grid) SeaTempNear(ctx context.Context, lat, lon float64) conditions.Measurement {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.refreshLocked(ctx)

	if len(g.points) == 0 {
		return conditions.Unavailable()
	}

	// Degree-space scan; at the cutoff scale the latitude distortion
	// does not change which cell wins.
	minDistance := math.Inf(1)
	var nearest float64
	for _, p := range g.points {
		d := math.Hypot(p.lat-lat, p.lon-lon)
		if d < minDistance {
			minDistance = d
			nearest = p.temp
		}
	}

	if minDistance >= g.maxDegrees {
		return conditions.Unavailable()
	}
	return conditions.Available(nearest)
}

// PointCount returns the number of valid grid points currently cached.
func (g *Grid) PointCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.points)
}

// refreshLocked re-downloads the grid when the cached copy is older
// than the TTL. A failed refresh keeps serving the previous grid.
func (g *Grid) refreshLocked(ctx context.Context) {
	if g.points != nil && time.Since(g.fetchedAt) < g.ttl {
		return
	}

	points, err := g.download(ctx)
	if err != nil {
		g.logger.Warn().Err(err).
			Int("cached_points", len(g.points)).
			Msg("sea temperature grid refresh failed, keeping cached data")
		return
	}

	g.points = points
	g.fetchedAt = time.Now()
	g.logger.Info().
		Int("valid_points", len(points)).
		Msg("sea temperature grid refreshed")
}

func (g *Grid) download(ctx context.Context) ([]gridPoint, error) {
	url := fmt.Sprintf("%s?analysed_sst[(last)][(%d):1:(%d)][(%d):1:(%d)]",
		g.baseURL, latMin, latMax, lonMin, lonMax)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body gridResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", conditions.ErrMalformedResponse, err)
	}

	// Rows are [time, lat, lon, sst]; sst may be null over land.
	points := make([]gridPoint, 0, len(body.Table.Rows))
	for _, row := range body.Table.Rows {
		if len(row) < 4 {
			continue
		}
		lat, okLat := row[1].(float64)
		lon, okLon := row[2].(float64)
		temp, okTemp := row[3].(float64)
		if !okLat || !okLon || !okTemp {
			continue
		}
		if temp <= minValidCelsius || temp >= maxValidCelsius {
			continue
		}
		points = append(points, gridPoint{lat: lat, lon: lon, temp: temp})
	}

	return points, nil
}

type gridResponse struct {
	Table struct {
		Rows [][]any `json:"rows"`
	} `json:"table"`
}
