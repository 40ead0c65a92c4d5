// Package config reads runtime configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/blueflaggreece/shorecast/internal/provider/resilience"
	"github.com/blueflaggreece/shorecast/internal/store"
	"github.com/blueflaggreece/shorecast/internal/updater"
)

// AppConfig holds everything the updater and API processes need.
type AppConfig struct {
	// BaseDir is the data directory holding the registry CSV and the
	// cache JSON.
	BaseDir string

	// RegistryFile is the beach registry CSV file name inside BaseDir.
	RegistryFile string

	// CacheFile is the weather cache JSON file name inside BaseDir.
	CacheFile string

	// FreshnessWindow is the maximum record age before re-fetch.
	FreshnessWindow time.Duration

	// RatePerMinute caps outbound provider requests across all workers.
	RatePerMinute int

	// Workers is the fetch pool size.
	Workers int

	// MaxMatchDistanceKm is the lookup nearest-neighbor radius.
	MaxMatchDistanceKm float64

	// ForecastURL and MarineURL override the Open-Meteo endpoints,
	// mainly for tests.
	ForecastURL string
	MarineURL   string

	// SSTGridURL overrides the ERDDAP griddap endpoint.
	SSTGridURL string

	// Port is the API listen port.
	Port string
}

// RegistryPath returns the full path of the beach registry CSV.
func (c *AppConfig) RegistryPath() string {
	return filepath.Join(c.BaseDir, c.RegistryFile)
}

// CachePath returns the full path of the weather cache JSON.
func (c *AppConfig) CachePath() string {
	return filepath.Join(c.BaseDir, c.CacheFile)
}

// Load reads configuration from environment with sensible defaults. A
// missing .env file is fine; malformed durations or numbers are not.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		BaseDir:      getenvDefault("SHORECAST_BASE_DIR", "data"),
		RegistryFile: getenvDefault("SHORECAST_REGISTRY_FILE", "blueflag_greece.csv"),
		CacheFile:    getenvDefault("SHORECAST_CACHE_FILE", "weather_cache.json"),
		ForecastURL:  os.Getenv("SHORECAST_FORECAST_URL"),
		MarineURL:    os.Getenv("SHORECAST_MARINE_URL"),
		SSTGridURL:   os.Getenv("SHORECAST_SST_GRID_URL"),
		Port:         getenvDefault("PORT", "8080"),
	}

	window, err := getenvDuration("SHORECAST_FRESHNESS_WINDOW", updater.DefaultFreshnessWindow)
	if err != nil {
		return nil, err
	}
	cfg.FreshnessWindow = window

	cfg.RatePerMinute, err = getenvInt("SHORECAST_RATE_PER_MINUTE", resilience.DefaultRatePerMinute)
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = getenvInt("SHORECAST_WORKERS", updater.DefaultWorkers)
	if err != nil {
		return nil, err
	}

	cfg.MaxMatchDistanceKm, err = getenvFloat("SHORECAST_MAX_MATCH_KM", store.DefaultMaxDistanceKm)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
