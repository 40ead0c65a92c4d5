// Package conditions holds the beach weather/sea-state domain model and
// the service that assembles records from the external providers.
package conditions

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// unavailable is the JSON sentinel for a metric no provider could
// supply. Every record field is always present; consumers never need
// key-existence checks.
const unavailable = "unavailable"

// Measurement is a numeric metric that may be unavailable. It marshals
// to a JSON number, or to the string "unavailable" when no provider
// supplied it.
type Measurement struct {
	value float64
	valid bool
}

// Available returns a Measurement holding v rounded to one decimal,
// the precision providers are normalized to.
func Available(v float64) Measurement {
	return Measurement{value: math.Round(v*10) / 10, valid: true}
}

// Unavailable returns the absent-value sentinel.
func Unavailable() Measurement {
	return Measurement{}
}

// FromPtr converts an optional provider value: nil maps to unavailable.
func FromPtr(v *float64) Measurement {
	if v == nil {
		return Unavailable()
	}
	return Available(*v)
}

// Value returns the numeric value and whether it is available.
func (m Measurement) Value() (float64, bool) {
	return m.value, m.valid
}

// IsAvailable reports whether the metric holds a value.
func (m Measurement) IsAvailable() bool {
	return m.valid
}

// MarshalJSON encodes the value as a number, or "unavailable".
func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.valid {
		return json.Marshal(unavailable)
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts a JSON number, the "unavailable" sentinel, the
// historical "N/A" sentinel, or null. Any other string is treated as
// unavailable rather than failing the whole cache load.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = Unavailable()
		return nil
	}

	if data[0] == '"' {
		// "unavailable", the historical "N/A", or junk: all map to the
		// absent value. There are no numeric strings in the wild.
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Unavailable()
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Measurement{value: v, valid: true}
	return nil
}

// Atmospheric holds the air-side metrics for one location, as returned
// by the atmospheric forecast endpoint.
type Atmospheric struct {
	AirTemp       Measurement
	WindSpeed     Measurement
	WindDirection Measurement
}

// Marine holds the sea-side metrics for one location. SeaTemp is only
// set when the marine endpoint reports it; the SST grid is the backup
// source.
type Marine struct {
	WaveHeight    Measurement
	WaveDirection Measurement
	WavePeriod    Measurement
	SeaTemp       Measurement
}

// timeLayouts are the accepted last_updated formats: RFC3339 from this
// implementation, plain ISO-8601 (with or without fractional seconds)
// from the historical producer.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// Record is one beach's weather and sea-state snapshot. Latitude and
// longitude are the precise source coordinates, not the rounded cache
// key.
type Record struct {
	BeachName     string      `json:"beach_name"`
	Latitude      float64     `json:"latitude"`
	Longitude     float64     `json:"longitude"`
	AirTemp       Measurement `json:"air_temp"`
	WindSpeed     Measurement `json:"wind_speed"`
	WindDirection Measurement `json:"wind_direction"`
	WaveHeight    Measurement `json:"wave_height"`
	WaveDirection Measurement `json:"wave_direction"`
	WavePeriod    Measurement `json:"wave_period"`
	SeaTemp       Measurement `json:"sea_temp"`
	LastUpdated   string      `json:"last_updated"`
}

// NewRecord returns a record for the given beach with every metric
// unavailable and last_updated stamped at now.
func NewRecord(beachName string, lat, lon float64, now time.Time) Record {
	return Record{
		BeachName:   beachName,
		Latitude:    lat,
		Longitude:   lon,
		LastUpdated: now.UTC().Format(time.RFC3339),
	}
}

// UpdatedAt parses the record's last_updated timestamp. Returns false
// when the timestamp does not parse under any accepted layout; callers
// treat such records as stale.
func (r Record) UpdatedAt() (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, r.LastUpdated); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
