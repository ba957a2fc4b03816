package spatial

import (
	"math"

	"github.com/paulmach/orb"
)

// PointToSegmentDistance returns the shortest distance in meters from point
// p to the line segment ab. Uses an equirectangular projection around a,
// accurate at street scale.
func PointToSegmentDistance(pLat, pLng, aLat, aLng, bLat, bLng float64) float64 {
	d, _ := projectOntoSegment(pLat, pLng, aLat, aLng, bLat, bLng)
	return d
}

// Projection is the closest location on a line string to a query point.
type Projection struct {
	DistanceMeters float64 // distance from the point to the geometry
	AlongMeters    float64 // distance along the geometry from its start
	SegmentIndex   int     // geometry sub-segment containing the projection
}

// ProjectOntoLineString finds the actual closest location along geom to the
// point, not just the nearest vertex, by testing every sub-segment, and
// returns the cumulative distance along the geometry to that location.
func ProjectOntoLineString(lat, lng float64, geom orb.LineString) (Projection, bool) {
	if len(geom) < 2 {
		return Projection{}, false
	}

	best := Projection{DistanceMeters: math.MaxFloat64}
	cumulative := 0.0

	for i := 0; i < len(geom)-1; i++ {
		a, b := geom[i], geom[i+1]
		segLen := HaversineDistance(a[1], a[0], b[1], b[0])

		dist, t := projectOntoSegment(lat, lng, a[1], a[0], b[1], b[0])
		if dist < best.DistanceMeters {
			best = Projection{
				DistanceMeters: dist,
				AlongMeters:    cumulative + t*segLen,
				SegmentIndex:   i,
			}
		}
		cumulative += segLen
	}

	return best, true
}

// LineStringLength returns the length of a line string in meters.
func LineStringLength(geom orb.LineString) float64 {
	total := 0.0
	for i := 1; i < len(geom); i++ {
		total += HaversineDistance(geom[i-1][1], geom[i-1][0], geom[i][1], geom[i][0])
	}
	return total
}

// projectOntoSegment projects (pLat,pLng) onto the segment a-b in a local
// equirectangular plane. Returns the distance in meters and the clamped
// parametric position t in [0,1] along the segment.
func projectOntoSegment(pLat, pLng, aLat, aLng, bLat, bLng float64) (float64, float64) {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180.0 }

	cosLat := math.Cos(toRad(aLat))
	ax := toRad(aLng) * cosLat * EarthRadiusMeters
	ay := toRad(aLat) * EarthRadiusMeters
	bx := toRad(bLng) * cosLat * EarthRadiusMeters
	by := toRad(bLat) * EarthRadiusMeters
	px := toRad(pLng) * cosLat * EarthRadiusMeters
	py := toRad(pLat) * EarthRadiusMeters

	dx := bx - ax
	dy := by - ay
	if dx == 0 && dy == 0 {
		return math.Hypot(px-ax, py-ay), 0
	}

	t := ((px-ax)*dx + (py-ay)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	projx := ax + t*dx
	projy := ay + t*dy
	return math.Hypot(px-projx, py-projy), t
}
