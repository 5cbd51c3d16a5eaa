// Package geo provides coordinate rounding for cache key derivation and
// great-circle distance math for facility ranking.
//
// Cache cells are 0.1 degree squares (roughly 11km x 11km at Japanese
// latitudes), so nearby users share a cache entry.
package geo

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Round1 rounds a coordinate to one decimal place using decimal
// half-away-from-zero semantics.
//
// A plain math.Round(x*10)/10 mis-rounds values like 35.65, whose closest
// float64 is 35.6499999..., so the scaled value is first snapped back to its
// decimal representation before the final rounding step. Round1 is idempotent.
func Round1(x float64) float64 {
	scaled := x * 10
	// Snap away the binary representation error (e.g. 356.49999... -> 356.5).
	scaled = math.Round(scaled*1e8) / 1e8
	return math.Round(scaled) / 10
}

// Cell is a rounded-coordinate cache cell. Lat and Lon always carry at most
// one decimal place.
type Cell struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CellFor derives the cache cell containing the given raw coordinates.
func CellFor(lat, lon float64) Cell {
	return Cell{Lat: Round1(lat), Lon: Round1(lon)}
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// FormatDistance renders a distance in meters as a human string:
// "1.2km" at or above one kilometer, otherwise "340m".
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1fkm", meters/1000)
	}
	return fmt.Sprintf("%dm", int(math.Round(meters)))
}
