package geo

import "math"

const earthRadiusKm = 6371.0

// EquirectangularKm approximates the distance between two points in
// kilometers. Accurate to well under a percent at the scale the matcher
// cares about (a few kilometers within the Greek coastline), and much
// cheaper than haversine for the nearest-neighbor scan.
func EquirectangularKm(lat1, lon1, lat2, lon2 float64) float64 {
	latRad1 := lat1 * math.Pi / 180
	latRad2 := lat2 * math.Pi / 180
	x := (lon2 - lon1) * math.Pi / 180 * math.Cos((latRad1+latRad2)/2)
	y := latRad2 - latRad1
	return math.Sqrt(x*x+y*y) * earthRadiusKm
}

// HaversineKm calculates the great-circle distance between two points
// in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
