package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// HaversineDistance calculates the great-circle distance between two points
// in meters
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// MetersToDegrees converts a distance in meters into latitude and longitude
// deltas at the given latitude. The longitude delta is scaled by cos(lat)
// to account for meridian convergence.
func MetersToDegrees(meters, lat float64) (dLat, dLng float64) {
	latRad := lat * math.Pi / 180.0
	metersPerDegreeLat := EarthRadiusMeters * math.Pi / 180.0
	metersPerDegreeLng := metersPerDegreeLat * math.Cos(latRad)

	dLat = meters / metersPerDegreeLat
	if metersPerDegreeLng <= 0 {
		// At the poles every longitude is the same point; any delta covers it.
		return dLat, 360.0
	}
	dLng = meters / metersPerDegreeLng
	return dLat, dLng
}
