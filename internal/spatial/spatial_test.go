package spatial

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/weylan/street-coverage-go/internal/models"
)

func TestHaversineDistance(t *testing.T) {
	// One degree of latitude is ~111.2 km everywhere.
	d := HaversineDistance(51.0, 0.0, 52.0, 0.0)
	if d < 110000 || d > 112500 {
		t.Fatalf("unexpected distance for 1 degree of latitude: %v", d)
	}

	if d := HaversineDistance(51.5, -0.1, 51.5, -0.1); d != 0 {
		t.Fatalf("distance to self should be 0, got %v", d)
	}
}

func TestMetersToDegreesLatitudeScaling(t *testing.T) {
	_, dLngEquator := MetersToDegrees(1000, 0)
	_, dLngNorth := MetersToDegrees(1000, 60)

	// At 60N a longitude degree is half as wide, so the delta must double.
	ratio := dLngNorth / dLngEquator
	if math.Abs(ratio-2.0) > 0.01 {
		t.Fatalf("expected ~2x longitude delta at 60N, got ratio %v", ratio)
	}
}

func TestPointToSegmentDistance(t *testing.T) {
	// Segment running east along latitude 51.5; point 0.001 deg north of its middle.
	d := PointToSegmentDistance(51.501, -0.0995, 51.5, -0.1, 51.5, -0.099)
	expected := HaversineDistance(51.501, -0.0995, 51.5, -0.0995)
	if math.Abs(d-expected) > 1.0 {
		t.Fatalf("perpendicular distance %v, expected ~%v", d, expected)
	}

	// Point beyond the end projects onto the endpoint.
	d = PointToSegmentDistance(51.5, -0.09, 51.5, -0.1, 51.5, -0.099)
	expected = HaversineDistance(51.5, -0.09, 51.5, -0.099)
	if math.Abs(d-expected) > 1.0 {
		t.Fatalf("endpoint distance %v, expected ~%v", d, expected)
	}
}

func TestProjectOntoLineString(t *testing.T) {
	geom := orb.LineString{
		{-0.100, 51.500},
		{-0.099, 51.500},
		{-0.098, 51.500},
	}

	// Point near the second sub-segment.
	proj, ok := ProjectOntoLineString(51.5001, -0.0985, geom)
	if !ok {
		t.Fatal("projection failed")
	}
	if proj.SegmentIndex != 1 {
		t.Fatalf("expected projection on sub-segment 1, got %d", proj.SegmentIndex)
	}

	segLen := HaversineDistance(51.5, -0.100, 51.5, -0.099)
	// Along-distance should be past the first sub-segment and inside the second.
	if proj.AlongMeters <= segLen || proj.AlongMeters >= 2*segLen {
		t.Fatalf("along-distance %v out of expected range (%v, %v)", proj.AlongMeters, segLen, 2*segLen)
	}

	if _, ok := ProjectOntoLineString(51.5, -0.1, orb.LineString{{-0.1, 51.5}}); ok {
		t.Fatal("single-point geometry must not project")
	}
}

func TestBoundingBoxExpandContainsCircle(t *testing.T) {
	// The expanded box of a circle must always contain the true circle.
	box := CircleBBox(51.5, -0.1, 500)
	for bearing := 0.0; bearing < 360; bearing += 30 {
		rad := bearing * math.Pi / 180
		dLat, dLng := MetersToDegrees(500, 51.5)
		lat := 51.5 + dLat*math.Cos(rad)
		lng := -0.1 + dLng*math.Sin(rad)
		if lat < box.MinLat || lat > box.MaxLat || lng < box.MinLng || lng > box.MaxLng {
			t.Fatalf("circle point at bearing %v outside bbox", bearing)
		}
	}
}

func TestBBoxIntersects(t *testing.T) {
	a := BBox{MinLat: 0, MinLng: 0, MaxLat: 1, MaxLng: 1}
	cases := []struct {
		name string
		b    BBox
		want bool
	}{
		{"overlapping", BBox{MinLat: 0.5, MinLng: 0.5, MaxLat: 2, MaxLng: 2}, true},
		{"touching edge", BBox{MinLat: 1, MinLng: 0, MaxLat: 2, MaxLng: 1}, true},
		{"disjoint", BBox{MinLat: 2, MinLng: 2, MaxLat: 3, MaxLng: 3}, false},
	}
	for _, tc := range cases {
		if got := a.Intersects(tc.b); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSegmentIndexSearch(t *testing.T) {
	idx := NewSegmentIndex()
	idx.Insert(1, orb.LineString{{-0.100, 51.500}, {-0.099, 51.500}})
	idx.Insert(2, orb.LineString{{-0.200, 51.600}, {-0.199, 51.600}})

	ids := idx.Search(BBox{MinLat: 51.49, MinLng: -0.11, MaxLat: 51.51, MaxLng: -0.09})
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected [1], got %v", ids)
	}
}

func TestNodeIndexQueryRadius(t *testing.T) {
	idx := NewNodeIndex()
	idx.Insert(10, 51.5000, -0.1000)
	idx.Insert(11, 51.5001, -0.1000) // ~11m north
	idx.Insert(12, 51.5100, -0.1000) // ~1.1km north

	hits := idx.QueryRadius(51.5, -0.1, 25)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits within 25m, got %v", hits)
	}
}

func TestTraceBoundingBox(t *testing.T) {
	points := []models.GpsPoint{
		{Lat: 51.5, Lng: -0.1},
		{Lat: 51.6, Lng: -0.2},
		{Lat: 51.4, Lng: -0.05},
	}
	b := BoundingBox(points)
	if b.MinLat != 51.4 || b.MaxLat != 51.6 || b.MinLng != -0.2 || b.MaxLng != -0.05 {
		t.Fatalf("unexpected bbox: %+v", b)
	}
}
