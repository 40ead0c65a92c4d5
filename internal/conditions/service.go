package conditions

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Forecaster is the per-point forecast source: one atmospheric call and
// one marine call per location.
type Forecaster interface {
	GetAtmospheric(ctx context.Context, lat, lon float64) (*Atmospheric, error)
	GetMarine(ctx context.Context, lat, lon float64) (*Marine, error)
	Name() string
}

// SeaTempSource is the bulk sea-surface-temperature source. Best-effort
// enrichment only: it reports unavailable rather than failing.
type SeaTempSource interface {
	SeaTempNear(ctx context.Context, lat, lon float64) Measurement
}

// ServiceConfig holds configuration for the conditions service.
type ServiceConfig struct {
	// Forecast is the per-point forecast provider (required).
	Forecast Forecaster

	// SeaTemp is the gridded SST source (optional).
	SeaTemp SeaTempSource

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service assembles one Record per beach from the forecast endpoints
// and the SST grid. Safe for concurrent use by the fetch workers.
type Service struct {
	forecast Forecaster
	seaTemp  SeaTempSource
	logger   zerolog.Logger
}

// NewService creates a new conditions service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		forecast: cfg.Forecast,
		seaTemp:  cfg.SeaTemp,
		logger:   cfg.Logger,
	}
}

// Fetch builds the conditions record for one beach. A record is
// produced as long as at least one of the two forecast endpoints
// answered; the failed endpoint's metrics stay unavailable. When both
// fail, returns a FetchError carrying the beach name and both causes.
func (s *Service) Fetch(ctx context.Context, beachName string, lat, lon float64) (Record, error) {
	rec := NewRecord(beachName, lat, lon, time.Now())

	atmo, atmoErr := s.forecast.GetAtmospheric(ctx, lat, lon)
	if atmoErr != nil {
		s.logger.Warn().Err(atmoErr).
			Str("beach", beachName).
			Str("provider", s.forecast.Name()).
			Msg("atmospheric fetch failed")
	} else {
		rec.AirTemp = atmo.AirTemp
		rec.WindSpeed = atmo.WindSpeed
		rec.WindDirection = atmo.WindDirection
	}

	marine, marineErr := s.forecast.GetMarine(ctx, lat, lon)
	if marineErr != nil {
		s.logger.Warn().Err(marineErr).
			Str("beach", beachName).
			Str("provider", s.forecast.Name()).
			Msg("marine fetch failed")
	} else {
		rec.WaveHeight = marine.WaveHeight
		rec.WaveDirection = marine.WaveDirection
		rec.WavePeriod = marine.WavePeriod
		rec.SeaTemp = marine.SeaTemp
	}

	if atmoErr != nil && marineErr != nil {
		return Record{}, &FetchError{
			Beach: beachName,
			Err:   errors.Join(ErrAllSourcesFailed, atmoErr, marineErr),
		}
	}

	if !rec.SeaTemp.IsAvailable() && s.seaTemp != nil {
		rec.SeaTemp = s.seaTemp.SeaTempNear(ctx, lat, lon)
	}

	s.logger.Debug().
		Str("beach", beachName).
		Float64("lat", lat).
		Float64("lon", lon).
		Msg("conditions fetched")

	return rec, nil
}
