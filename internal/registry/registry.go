// Package registry loads the beach registry CSV: the list of Blue Flag
// beaches with their coordinates. The registry is maintained outside
// this service; the loader requires only the three named columns and
// tolerates everything else.
package registry

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Greece bounding box, used as a sanity check on registry coordinates.
// Out-of-box beaches are still processed; the flag only feeds logging
// and external-geocoder rejection.
const (
	GreeceLatMin = 34.0
	GreeceLatMax = 42.0
	GreeceLonMin = 19.0
	GreeceLonMax = 29.0
)

// Beach is one registry row the engine cares about.
type Beach struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// InGreeceBounds reports whether the beach lies inside the expected
// bounding box.
func (b Beach) InGreeceBounds() bool {
	return b.Latitude >= GreeceLatMin && b.Latitude <= GreeceLatMax &&
		b.Longitude >= GreeceLonMin && b.Longitude <= GreeceLonMax
}

// Load reads the registry CSV at path. The header must contain name,
// latitude and longitude columns (case-insensitive); rows whose
// coordinates are missing or non-numeric are logged and skipped. A
// missing or unreadable file, or a header without the required
// columns, is fatal for the run.
func Load(path string, logger zerolog.Logger) ([]Beach, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening beach registry: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // descriptive columns vary per row

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading beach registry: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("beach registry %s is empty", path)
	}

	nameCol, latCol, lonCol, err := resolveColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("beach registry %s: %w", path, err)
	}

	beaches := make([]Beach, 0, len(rows)-1)
	skipped := 0
	for i, row := range rows[1:] {
		beach, ok := parseRow(row, nameCol, latCol, lonCol)
		if !ok {
			skipped++
			logger.Warn().
				Int("row", i+2).
				Str("name", field(row, nameCol)).
				Msg("registry row has missing or non-numeric coordinates, skipping")
			continue
		}
		if !beach.InGreeceBounds() {
			logger.Debug().
				Str("name", beach.Name).
				Float64("lat", beach.Latitude).
				Float64("lon", beach.Longitude).
				Msg("beach coordinates outside the Greece bounding box")
		}
		beaches = append(beaches, beach)
	}

	logger.Info().
		Int("beaches", len(beaches)).
		Int("skipped", skipped).
		Str("path", path).
		Msg("beach registry loaded")

	return beaches, nil
}

// UniqueLocations de-duplicates beaches sharing identical coordinates,
// preserving input order and the first name seen at each point. One
// fetch serves all beaches at the same coordinate.
func UniqueLocations(beaches []Beach) []Beach {
	seen := make(map[[2]float64]struct{}, len(beaches))
	unique := make([]Beach, 0, len(beaches))
	for _, b := range beaches {
		point := [2]float64{b.Latitude, b.Longitude}
		if _, ok := seen[point]; ok {
			continue
		}
		seen[point] = struct{}{}
		unique = append(unique, b)
	}
	return unique
}

func resolveColumns(header []string) (nameCol, latCol, lonCol int, err error) {
	nameCol, latCol, lonCol = -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "beach_name", "beach":
			if nameCol < 0 {
				nameCol = i
			}
		case "latitude", "lat":
			if latCol < 0 {
				latCol = i
			}
		case "longitude", "lon", "lng":
			if lonCol < 0 {
				lonCol = i
			}
		}
	}
	if nameCol < 0 || latCol < 0 || lonCol < 0 {
		return 0, 0, 0, fmt.Errorf("header must contain name, latitude and longitude columns")
	}
	return nameCol, latCol, lonCol, nil
}

func parseRow(row []string, nameCol, latCol, lonCol int) (Beach, bool) {
	name := strings.TrimSpace(field(row, nameCol))
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(field(row, latCol)), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(field(row, lonCol)), 64)
	if name == "" || errLat != nil || errLon != nil {
		return Beach{}, false
	}
	return Beach{Name: name, Latitude: lat, Longitude: lon}, true
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
