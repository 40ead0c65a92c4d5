// Package handler provides HTTP handlers for the conditions API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blueflaggreece/shorecast/internal/api/response"
	"github.com/blueflaggreece/shorecast/internal/store"
)

// CacheLoader supplies the current cache snapshot. Implemented by
// store.Store; each request reloads so the handler always serves the
// latest updater output.
type CacheLoader interface {
	Load() store.Cache
}

// ConditionsHandler serves cached beach conditions by coordinate.
type ConditionsHandler struct {
	cache   CacheLoader
	matcher *store.Matcher
}

// NewConditionsHandler creates a new ConditionsHandler.
func NewConditionsHandler(cache CacheLoader, matcher *store.Matcher) *ConditionsHandler {
	return &ConditionsHandler{cache: cache, matcher: matcher}
}

// GetConditions handles GET /v1/conditions?lat=&lon=.
func (h *ConditionsHandler) GetConditions(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoord(r.URL.Query().Get("lat"), 90)
	if err != nil {
		response.BadRequest(w, r, "lat must be a number between -90 and 90")
		return
	}
	lon, err := parseCoord(r.URL.Query().Get("lon"), 180)
	if err != nil {
		response.BadRequest(w, r, "lon must be a number between -180 and 180")
		return
	}

	rec, err := h.matcher.Find(lat, lon, h.cache.Load())
	if errors.Is(err, store.ErrNotFound) {
		response.NotFound(w, r, "no conditions recorded near that coordinate")
		return
	}
	if err != nil {
		response.InternalError(w, r, "lookup failed")
		return
	}

	response.JSON(w, r, http.StatusOK, rec)
}

func parseCoord(raw string, bound float64) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v < -bound || v > bound {
		return 0, strconv.ErrRange
	}
	return v, nil
}
