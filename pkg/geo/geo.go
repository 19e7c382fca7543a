// Package geo provides great-circle distance math used to rank NGOs by
// proximity to a pickup location.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DistanceKm returns the haversine distance between two points in kilometers.
func DistanceKm(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Ranked pairs an arbitrary id with its computed distance from an origin.
type Ranked struct {
	ID         string
	Point      Point
	DistanceKm float64
}

// NearestN ranks candidates by distance from origin, ascending, and returns
// at most n entries. Ties keep their input order.
func NearestN(origin Point, candidates []Ranked, n int) []Ranked {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	ranked := make([]Ranked, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].DistanceKm = DistanceKm(origin, ranked[i].Point)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
