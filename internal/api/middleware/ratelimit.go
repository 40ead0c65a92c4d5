package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/blueflaggreece/shorecast/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// StandardRateLimit applies to the public lookup endpoints (120 req/min
// per IP). The data is a single JSON file lookup, so the limit mostly
// deflects abuse.
var StandardRateLimit = RateLimitConfig{
	RequestLimit: 120,
	WindowLength: time.Minute,
}

// RateLimitByIP creates a rate limiter middleware keyed on client IP.
// Uses X-Forwarded-For when present (extracted by chi's RealIP).
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	problem := models.NewTooManyRequests(GetRequestID(r.Context()),
		"Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	w.Header().Set("Retry-After", strconv.Itoa(60))
	problem.Write(w)
}
