package conditions

import (
	"errors"
	"fmt"
)

// Sentinel errors for condition fetching.
var (
	// ErrAllSourcesFailed indicates neither the atmospheric nor the
	// marine endpoint produced data for a location.
	ErrAllSourcesFailed = errors.New("all forecast sources failed")

	// ErrMalformedResponse indicates a provider returned a body that
	// did not decode as the expected JSON shape.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// FetchError reports a failed update for one beach. The batch engine
// logs it and moves on; it never aborts the run.
type FetchError struct {
	Beach string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching conditions for %q: %v", e.Beach, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
