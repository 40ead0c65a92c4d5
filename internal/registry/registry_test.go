package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueflaggreece/shorecast/internal/registry"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blueflag_greece.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, `Name,Region,Latitude,Longitude,Amenities
Voidokilia,Messinia,36.9605,21.6595,parking
Elafonisi,Chania,35.2716,23.5395,"lifeguard, snack bar"
Falasarna,Chania,35.4932,23.5784,
`)

	beaches, err := registry.Load(path, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, beaches, 3)

	assert.Equal(t, "Voidokilia", beaches[0].Name)
	assert.Equal(t, 36.9605, beaches[0].Latitude)
	assert.Equal(t, 21.6595, beaches[0].Longitude)
	assert.True(t, beaches[0].InGreeceBounds())
}

func TestLoad_SkipsBadRows(t *testing.T) {
	path := writeCSV(t, `Name,Latitude,Longitude
Good Beach,36.9605,21.6595
No Coordinates,,
Not Numeric,thirty-six,21.5
,36.5,21.5
Another Good,35.2716,23.5395
`)

	beaches, err := registry.Load(path, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, beaches, 2)
	assert.Equal(t, "Good Beach", beaches[0].Name)
	assert.Equal(t, "Another Good", beaches[1].Name)
}

func TestLoad_CaseInsensitiveHeader(t *testing.T) {
	path := writeCSV(t, `name,LAT,Lon
Beach A,36.9605,21.6595
`)

	beaches, err := registry.Load(path, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, beaches, 1)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := registry.Load(filepath.Join(t.TempDir(), "absent.csv"), zerolog.Nop())
	require.Error(t, err)
}

func TestLoad_MissingColumns(t *testing.T) {
	path := writeCSV(t, `Name,Region
Beach A,Chania
`)

	_, err := registry.Load(path, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
}

func TestUniqueLocations(t *testing.T) {
	beaches := []registry.Beach{
		{Name: "First", Latitude: 36.9605, Longitude: 21.6595},
		{Name: "Same Point", Latitude: 36.9605, Longitude: 21.6595},
		{Name: "Different", Latitude: 35.2716, Longitude: 23.5395},
	}

	unique := registry.UniqueLocations(beaches)
	require.Len(t, unique, 2)
	assert.Equal(t, "First", unique[0].Name, "first name at a shared point wins")
	assert.Equal(t, "Different", unique[1].Name)
}

func TestBeach_InGreeceBounds(t *testing.T) {
	assert.True(t, registry.Beach{Latitude: 37.5, Longitude: 23.0}.InGreeceBounds())
	assert.False(t, registry.Beach{Latitude: 52.37, Longitude: 4.89}.InGreeceBounds())
}
