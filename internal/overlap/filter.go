package overlap

import (
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/spatial"
)

// maxSamplePoints bounds the diagnostics kept per overlapping area.
const maxSamplePoints = 5

// Filter decides which of a user's tracked areas a GPS trace could have
// touched. Phase 1 discards areas whose expanded bounding box misses the
// trace's box; phase 2 confirms survivors with great-circle distance,
// stopping at the first interior point.
type Filter struct{}

// NewFilter creates a new overlap filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Check tests every candidate area against the trace.
func (f *Filter) Check(points []models.GpsPoint, areas []models.Area) []models.OverlapResult {
	results := make([]models.OverlapResult, 0, len(areas))
	if len(points) == 0 {
		for _, a := range areas {
			results = append(results, models.OverlapResult{AreaID: a.ID, AreaName: a.Name})
		}
		return results
	}

	traceBox := spatial.BoundingBox(points)

	for _, a := range areas {
		result := models.OverlapResult{AreaID: a.ID, AreaName: a.Name}

		// Phase 1: the circle's bounding box always contains the circle, so
		// a box miss can never be a false negative.
		areaBox := spatial.CircleBBox(a.CenterLat, a.CenterLng, a.RadiusMeters)
		if !traceBox.Intersects(areaBox) {
			results = append(results, result)
			continue
		}

		// Phase 2: exact circular test, early exit on the first hit, then a
		// short scan for diagnostic sample points.
		for i, p := range points {
			if spatial.HaversineDistance(a.CenterLat, a.CenterLng, p.Lat, p.Lng) <= a.RadiusMeters {
				result.Overlaps = true
				result.SamplePoints = samplePoints(points[i:], a)
				break
			}
		}
		results = append(results, result)
	}

	return results
}

func samplePoints(points []models.GpsPoint, a models.Area) []models.GpsPoint {
	samples := make([]models.GpsPoint, 0, maxSamplePoints)
	for _, p := range points {
		if spatial.HaversineDistance(a.CenterLat, a.CenterLng, p.Lat, p.Lng) <= a.RadiusMeters {
			samples = append(samples, p)
			if len(samples) == maxSamplePoints {
				break
			}
		}
	}
	return samples
}
