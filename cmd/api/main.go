// Package main provides the entrypoint for the conditions API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/blueflaggreece/shorecast/internal/api"
	"github.com/blueflaggreece/shorecast/internal/config"
	"github.com/blueflaggreece/shorecast/internal/store"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "shorecast-api").
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	st := store.NewStore(cfg.CachePath(), log)
	log.Info().Str("cache", st.Path()).Int("entries", len(st.Load())).Msg("cache store opened")

	router := api.NewRouter(api.RouterConfig{
		Version: Version,
		Logger:  log,
		Cache:   st,
		Matcher: store.NewMatcher(cfg.MaxMatchDistanceKm),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
