package geo

import "math"

const earthRadiusM = 6371000

// HaversineM returns the great-circle distance in meters between two
// WGS84 coordinates.
func HaversineM(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// HaversineKm returns the same distance in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	return HaversineM(lat1, lng1, lat2, lng2) / 1000
}

// GradePercent returns the slope grade in percent for an elevation change
// over a horizontal distance. Zero horizontal distance yields zero grade.
func GradePercent(elevationDeltaM, horizontalM float64) float64 {
	if horizontalM <= 0 {
		return 0
	}
	return elevationDeltaM / horizontalM * 100
}
