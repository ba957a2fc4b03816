package matching

import (
	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/spatial"
)

// GeometricMatcher assigns each GPS point to the nearest street segment
// within a tolerance radius.
type GeometricMatcher struct {
	cfg config.MatchingConfig
}

// NewGeometricMatcher creates a new geometric matcher.
func NewGeometricMatcher(cfg config.MatchingConfig) *GeometricMatcher {
	return &GeometricMatcher{cfg: cfg}
}

// CandidateBox returns the region to fetch candidate segments for: the
// trace's bounding box expanded by the configured buffer.
func (m *GeometricMatcher) CandidateBox(points []models.GpsPoint) spatial.BBox {
	return spatial.BoundingBox(points).Expand(m.cfg.CandidateBufferMeters)
}

// MatchPoints assigns every point to its nearest candidate segment.
// The result maps original point index to segment ID; points farther than
// the tolerance from every candidate are left unassigned.
func (m *GeometricMatcher) MatchPoints(points []models.GpsPoint, segments []models.StreetSegment) map[int]int64 {
	assignments := make(map[int]int64)
	if len(points) == 0 || len(segments) == 0 {
		return assignments
	}

	for i, p := range points {
		bestDist := m.cfg.ToleranceMeters
		bestSeg := int64(-1)
		for _, seg := range segments {
			d := minDistanceToSegment(p, seg)
			if d < 0 {
				continue
			}
			// Strict nearest: an exact tie keeps the earlier candidate.
			if d < bestDist || (bestSeg < 0 && d == bestDist) {
				bestDist = d
				bestSeg = seg.ID
			}
		}
		if bestSeg >= 0 {
			assignments[i] = bestSeg
		}
	}

	return assignments
}

// Match runs the full geometric pipeline for one trace: point assignment,
// consecutive and geometry-projected distance, per-segment coverage.
func (m *GeometricMatcher) Match(points []models.GpsPoint, segments []models.StreetSegment) []models.MatchedSegment {
	assignments := m.MatchPoints(points, segments)
	if len(assignments) == 0 {
		return nil
	}

	byID := make(map[int64]models.StreetSegment, len(segments))
	for _, seg := range segments {
		byID[seg.ID] = seg
	}

	grouped := GroupBySegment(assignments)

	matched := make([]models.MatchedSegment, 0, len(grouped))
	for segID, indices := range grouped {
		seg := byID[segID]

		covered := ConsecutiveDistance(points, indices)
		geomCovered := GeometryDistance(points, indices, seg.Geometry)

		ratio := 0.0
		if seg.LengthMeters > 0 {
			ratio = geomCovered / seg.LengthMeters
		}
		status := models.StatusPartial
		if ratio >= m.cfg.FullThreshold {
			status = models.StatusFull
		}

		matched = append(matched, models.MatchedSegment{
			SegmentID:                     segID,
			SegmentName:                   seg.Name,
			RoadType:                      seg.RoadType,
			LengthMeters:                  seg.LengthMeters,
			MatchedPointIndices:           indices,
			DistanceCoveredMeters:         covered,
			GeometryDistanceCoveredMeters: geomCovered,
			CoverageRatio:                 ratio,
			Status:                        status,
		})
	}

	return matched
}

// minDistanceToSegment returns the shortest distance from a point to the
// segment's geometry, or -1 for degenerate geometry.
func minDistanceToSegment(p models.GpsPoint, seg models.StreetSegment) float64 {
	if len(seg.Geometry) < 2 {
		return -1
	}
	minDist := -1.0
	for i := 0; i < len(seg.Geometry)-1; i++ {
		a := seg.Geometry[i]
		b := seg.Geometry[i+1]
		d := spatial.PointToSegmentDistance(p.Lat, p.Lng, a[1], a[0], b[1], b[0])
		if minDist < 0 || d < minDist {
			minDist = d
		}
	}
	return minDist
}
