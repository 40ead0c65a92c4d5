// Package main provides the entrypoint for the batch conditions updater.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/blueflaggreece/shorecast/internal/conditions"
	"github.com/blueflaggreece/shorecast/internal/conditions/erddap"
	"github.com/blueflaggreece/shorecast/internal/conditions/openmeteo"
	"github.com/blueflaggreece/shorecast/internal/config"
	"github.com/blueflaggreece/shorecast/internal/provider/resilience"
	"github.com/blueflaggreece/shorecast/internal/registry"
	"github.com/blueflaggreece/shorecast/internal/store"
	"github.com/blueflaggreece/shorecast/internal/updater"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	once := flag.Bool("once", false, "run a single batch and exit")
	interval := flag.Int("interval", 0, "minutes between runs; 0 with -once unset still runs once")
	batchSize := flag.Int("batch-size", 0, "unique locations per run, 0 processes all")
	batchIndex := flag.Int("batch-index", 0, "zero-based slice of the location list to process")
	baseDir := flag.String("base-dir", "", "data directory override")
	flag.Parse()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "shorecast-updater").
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *baseDir != "" {
		cfg.BaseDir = *baseDir
	}

	engine := buildEngine(cfg, *batchSize, *batchIndex, log)

	runOnce := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		beaches, err := registry.Load(cfg.RegistryPath(), log)
		if err != nil {
			return err
		}
		_, err = engine.Run(ctx, beaches)
		return err
	}

	if *once || *interval <= 0 {
		if err := runOnce(); err != nil {
			log.Fatal().Err(err).Msg("batch update failed")
		}
		return
	}

	// Continuous mode for environments without an external scheduler.
	scheduler := gocron.NewScheduler(time.UTC)
	_, err = scheduler.Every(*interval).Minutes().Do(func() {
		if err := runOnce(); err != nil {
			log.Error().Err(err).Msg("scheduled batch update failed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule batch updates")
	}

	log.Info().Int("interval_minutes", *interval).Msg("scheduler started")
	scheduler.StartAsync()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down scheduler")
	scheduler.Stop()
}

// buildEngine wires the provider clients behind one shared rate limiter
// and assembles the batch engine.
func buildEngine(cfg *config.AppConfig, batchSize, batchIndex int, log zerolog.Logger) *updater.Engine {
	limiter := resilience.NewSharedLimiter(cfg.RatePerMinute)

	forecastCfg := resilience.DefaultClientConfig(openmeteo.ProviderName)
	forecastCfg.Limiter = limiter

	gridCfg := resilience.DefaultClientConfig("erddap")
	gridCfg.Limiter = limiter

	forecast := openmeteo.NewClient(openmeteo.ClientConfig{
		ForecastURL: cfg.ForecastURL,
		MarineURL:   cfg.MarineURL,
		HTTPClient:  resilience.NewClient(forecastCfg),
		Logger:      log,
	})

	grid := erddap.NewGrid(erddap.GridConfig{
		BaseURL:    cfg.SSTGridURL,
		HTTPClient: resilience.NewClient(gridCfg),
		Logger:     log,
	})

	service := conditions.NewService(conditions.ServiceConfig{
		Forecast: forecast,
		SeaTemp:  grid,
		Logger:   log,
	})

	st := store.NewStore(cfg.CachePath(), log)

	return updater.NewEngine(service, st, updater.Config{
		FreshnessWindow: cfg.FreshnessWindow,
		Workers:         cfg.Workers,
		BatchSize:       batchSize,
		BatchIndex:      batchIndex,
	}, log)
}
