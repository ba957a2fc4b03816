package matching

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/spatial"
)

// eastWest builds a straight segment running east along the given latitude.
func eastWest(id int64, name string, lat, lngStart, lngEnd float64) models.StreetSegment {
	geom := orb.LineString{{lngStart, lat}, {lngEnd, lat}}
	return models.StreetSegment{
		ID:           id,
		Name:         name,
		RoadType:     "residential",
		LengthMeters: spatial.LineStringLength(geom),
		Geometry:     geom,
	}
}

func TestMatchPointsWithinTolerance(t *testing.T) {
	m := NewGeometricMatcher(testMatchingConfig())

	segments := []models.StreetSegment{
		eastWest(1, "Near Street", 51.5000, -0.100, -0.095),
		eastWest(2, "Far Street", 51.5100, -0.100, -0.095),
	}
	points := []models.GpsPoint{
		{Lat: 51.50005, Lng: -0.098}, // ~6m from segment 1
		{Lat: 51.50500, Lng: -0.098}, // ~550m from both: unassigned
	}

	got := m.MatchPoints(points, segments)
	if got[0] != 1 {
		t.Fatalf("point 0 assigned to %d, want segment 1", got[0])
	}
	if _, ok := got[1]; ok {
		t.Fatalf("point 1 beyond tolerance must stay unassigned")
	}
}

func TestMatchPointsNearestWins(t *testing.T) {
	m := NewGeometricMatcher(testMatchingConfig())

	// Two parallel streets ~22m apart; the point sits ~5m from one and
	// ~17m from the other, both within tolerance.
	segments := []models.StreetSegment{
		eastWest(1, "North Street", 51.50020, -0.100, -0.095),
		eastWest(2, "South Street", 51.50000, -0.100, -0.095),
	}
	points := []models.GpsPoint{{Lat: 51.50005, Lng: -0.098}}

	got := m.MatchPoints(points, segments)
	if got[0] != 2 {
		t.Fatalf("point assigned to %d, want nearest segment 2", got[0])
	}
}

func TestMatchPointsEmptyInputs(t *testing.T) {
	m := NewGeometricMatcher(testMatchingConfig())
	if got := m.MatchPoints(nil, []models.StreetSegment{eastWest(1, "S", 51.5, -0.1, -0.09)}); len(got) != 0 {
		t.Fatalf("no points must produce no assignments, got %v", got)
	}
	if got := m.MatchPoints([]models.GpsPoint{{Lat: 51.5, Lng: -0.1}}, nil); len(got) != 0 {
		t.Fatalf("no segments must produce no assignments, got %v", got)
	}
}

func TestMatchProducesMatchedSegments(t *testing.T) {
	m := NewGeometricMatcher(testMatchingConfig())

	segment := eastWest(1, "Full Street", 51.5, -0.100, -0.096)
	// Points tracing the segment end to end, slightly north of it.
	var points []models.GpsPoint
	for i := 0; i <= 8; i++ {
		points = append(points, models.GpsPoint{Lat: 51.50003, Lng: -0.100 + float64(i)*0.0005})
	}

	matched := m.Match(points, []models.StreetSegment{segment})
	if len(matched) != 1 {
		t.Fatalf("expected 1 matched segment, got %d", len(matched))
	}

	ms := matched[0]
	if ms.SegmentID != 1 {
		t.Fatalf("segment ID = %d", ms.SegmentID)
	}
	if len(ms.MatchedPointIndices) != len(points) {
		t.Fatalf("matched %d points, want %d", len(ms.MatchedPointIndices), len(points))
	}
	if ms.CoverageRatio < 0.9 {
		t.Fatalf("end-to-end trace should cover >=90%%, got %v", ms.CoverageRatio)
	}
	if ms.Status != models.StatusFull {
		t.Fatalf("status = %s, want FULL", ms.Status)
	}
	if ms.GeometryDistanceCoveredMeters <= 0 || ms.DistanceCoveredMeters <= 0 {
		t.Fatalf("both distance measurements must be populated: %v / %v",
			ms.DistanceCoveredMeters, ms.GeometryDistanceCoveredMeters)
	}
}

func TestMatchGapNotCounted(t *testing.T) {
	m := NewGeometricMatcher(testMatchingConfig())

	segment := eastWest(1, "Gap Street", 51.5, -0.100, -0.090)

	// Touch the start, wander off (unmatched), come back near the end.
	points := []models.GpsPoint{
		{Lat: 51.50003, Lng: -0.1000},
		{Lat: 51.50003, Lng: -0.0995},
		{Lat: 51.52, Lng: -0.0995}, // far away
		{Lat: 51.52, Lng: -0.0920},
		{Lat: 51.50003, Lng: -0.0910},
		{Lat: 51.50003, Lng: -0.0905},
	}

	matched := m.Match(points, []models.StreetSegment{segment})
	if len(matched) != 1 {
		t.Fatalf("expected 1 matched segment, got %d", len(matched))
	}

	// Two short runs of ~35m each; counting the gap would report ~600m.
	if matched[0].GeometryDistanceCoveredMeters > 200 {
		t.Fatalf("gap between runs was counted as coverage: %v m", matched[0].GeometryDistanceCoveredMeters)
	}
}

func TestCandidateBoxBuffersTrace(t *testing.T) {
	m := NewGeometricMatcher(testMatchingConfig())
	points := []models.GpsPoint{{Lat: 51.5, Lng: -0.1}, {Lat: 51.51, Lng: -0.09}}
	box := m.CandidateBox(points)
	inner := spatial.BoundingBox(points)
	if box.MinLat >= inner.MinLat || box.MaxLat <= inner.MaxLat ||
		box.MinLng >= inner.MinLng || box.MaxLng <= inner.MaxLng {
		t.Fatalf("candidate box must strictly contain the trace box")
	}
}
