// Package resilience provides the retrying HTTP client used for all
// outbound provider calls: exponential backoff on transient failures, a
// circuit breaker per provider, and a process-wide rate limiter shared
// by every client so concurrent workers cannot exceed the dispatch
// ceiling.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// DefaultRatePerMinute is the default process-wide ceiling on outbound
// HTTP dispatches. Both forecast providers and the SST grid share it.
const DefaultRatePerMinute = 30

// NewSharedLimiter builds the process-wide limiter for the given
// per-minute ceiling. One instance is constructed at startup and handed
// to every client; worker concurrency overlaps I/O wait, the limiter
// serializes actual dispatch.
func NewSharedLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		perMinute = DefaultRatePerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming.
	Name string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 10 seconds.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts after the
	// initial call. Default: 3.
	MaxRetries uint64

	// InitialInterval is the base retry backoff interval, doubled on
	// each attempt. Default: 500ms.
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff interval. Default: 10 seconds.
	MaxInterval time.Duration

	// Limiter gates every dispatch attempt, including retries. When
	// nil, no rate limiting is applied.
	Limiter *rate.Limiter

	// CircuitBreaker overrides the breaker settings. If nil, uses
	// DefaultCircuitBreakerConfig for Name.
	CircuitBreaker *CircuitBreakerConfig
}

// DefaultClientConfig returns client defaults for the given provider
// name, without a limiter attached.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Client is a rate-limited HTTP client with circuit breaker and retry
// logic. A single instance is safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	limiter        *rate.Limiter
	config         ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 10 * time.Second
	}

	cbConfig := cfg.CircuitBreaker
	if cbConfig == nil {
		c := DefaultCircuitBreakerConfig(cfg.Name)
		cbConfig = &c
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: NewCircuitBreaker[*http.Response](*cbConfig), //nolint:bodyclose // type param, not a response
		limiter:        cfg.Limiter,
		config:         cfg,
	}
}

// Do executes an HTTP request, waiting on the shared rate limiter
// before each attempt and retrying transient failures (network errors,
// 5xx, 429) with exponential backoff. Returns ErrCircuitOpen without
// consuming rate budget when the breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries bounded by WithMaxRetries, not wall clock

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		if err := c.waitForSlot(ctx); err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, doErr := c.httpClient.Do(req.Clone(ctx))
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
				// The body of a failed attempt is never surfaced to the
				// caller, close it before retrying.
				r.Body.Close()
				return nil, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			return err
		}

		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return lastResp, nil
}

func (c *Client) waitForSlot(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// ServerError represents a retryable HTTP status from a provider.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}
