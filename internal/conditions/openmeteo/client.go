// Package openmeteo provides clients for the Open-Meteo atmospheric and
// marine forecast endpoints.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/blueflaggreece/shorecast/internal/conditions"
	"github.com/blueflaggreece/shorecast/internal/provider/resilience"
)

const (
	// ProviderName identifies this forecast provider.
	ProviderName = "openmeteo"

	// DefaultForecastURL is the atmospheric forecast endpoint.
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

	// DefaultMarineURL is the marine forecast endpoint.
	DefaultMarineURL = "https://marine-api.open-meteo.com/v1/marine"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// ForecastURL overrides the atmospheric endpoint (tests).
	ForecastURL string

	// MarineURL overrides the marine endpoint (tests).
	MarineURL string

	// HTTPClient is the resilient HTTP client to use. If nil, uses a
	// client with defaults and no rate limiter.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches current atmospheric and marine conditions. Requests
// carry the exact source coordinates; rounding only happens when cache
// keys are built.
type Client struct {
	forecastURL string
	marineURL   string
	httpClient  *resilience.Client
	logger      zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	forecastURL := cfg.ForecastURL
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}

	marineURL := cfg.MarineURL
	if marineURL == "" {
		marineURL = DefaultMarineURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		forecastURL: forecastURL,
		marineURL:   marineURL,
		httpClient:  httpClient,
		logger:      cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetAtmospheric fetches current air temperature, wind speed (km/h) and
// wind direction for a location.
func (c *Client) GetAtmospheric(ctx context.Context, lat, lon float64) (*conditions.Atmospheric, error) {
	url := fmt.Sprintf("%s?latitude=%s&longitude=%s&current=temperature_2m,wind_speed_10m,wind_direction_10m&timezone=auto&forecast_days=1",
		c.forecastURL, coord(lat), coord(lon))

	var body forecastResponse
	if err := c.getJSON(ctx, url, &body); err != nil {
		return nil, err
	}

	return &conditions.Atmospheric{
		AirTemp:       conditions.FromPtr(body.Current.Temperature2m),
		WindSpeed:     conditions.FromPtr(body.Current.WindSpeed10m),
		WindDirection: conditions.FromPtr(body.Current.WindDirection10m),
	}, nil
}

// GetMarine fetches current wave height, direction, period and, when
// the endpoint carries it, sea surface temperature for a location.
func (c *Client) GetMarine(ctx context.Context, lat, lon float64) (*conditions.Marine, error) {
	url := fmt.Sprintf("%s?latitude=%s&longitude=%s&current=wave_height,wave_direction,wave_period,sea_surface_temperature&timezone=auto",
		c.marineURL, coord(lat), coord(lon))

	var body marineResponse
	if err := c.getJSON(ctx, url, &body); err != nil {
		return nil, err
	}

	return &conditions.Marine{
		WaveHeight:    conditions.FromPtr(body.Current.WaveHeight),
		WaveDirection: conditions.FromPtr(body.Current.WaveDirection),
		WavePeriod:    conditions.FromPtr(body.Current.WavePeriod),
		SeaTemp:       conditions.FromPtr(body.Current.SeaSurfaceTemperature),
	}, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", conditions.ErrMalformedResponse, err)
	}
	return nil
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Open-Meteo API response structures. Nullable metrics decode into
// pointers so missing values map to the unavailable sentinel.

type forecastResponse struct {
	Current struct {
		Temperature2m    *float64 `json:"temperature_2m"`
		WindSpeed10m     *float64 `json:"wind_speed_10m"`
		WindDirection10m *float64 `json:"wind_direction_10m"`
	} `json:"current"`
}

type marineResponse struct {
	Current struct {
		WaveHeight            *float64 `json:"wave_height"`
		WaveDirection         *float64 `json:"wave_direction"`
		WavePeriod            *float64 `json:"wave_period"`
		SeaSurfaceTemperature *float64 `json:"sea_surface_temperature"`
	} `json:"current"`
}
