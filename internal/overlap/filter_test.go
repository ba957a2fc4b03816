package overlap

import (
	"testing"

	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/spatial"
)

func TestCheckDetectsOverlap(t *testing.T) {
	f := NewFilter()

	points := []models.GpsPoint{
		{Lat: 51.500, Lng: -0.100},
		{Lat: 51.501, Lng: -0.099},
		{Lat: 51.502, Lng: -0.098},
	}
	areas := []models.Area{
		{ID: "a", Name: "home", CenterLat: 51.5005, CenterLng: -0.0995, RadiusMeters: 200},
		{ID: "b", Name: "far", CenterLat: 52.0, CenterLng: -1.0, RadiusMeters: 200},
	}

	results := f.Check(points, areas)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Overlaps {
		t.Fatal("area a contains trace points and must overlap")
	}
	if len(results[0].SamplePoints) == 0 {
		t.Fatal("overlapping area should retain sample points")
	}
	if results[1].Overlaps {
		t.Fatal("area b is ~70km away and must not overlap")
	}
}

func TestCheckBoundaryOfCircle(t *testing.T) {
	f := NewFilter()

	// Point ~111m east of center; radius 150m catches it, 100m does not.
	points := []models.GpsPoint{{Lat: 51.5, Lng: -0.0984}}
	center := models.Area{ID: "c", CenterLat: 51.5, CenterLng: -0.1, RadiusMeters: 150}

	if got := f.Check(points, []models.Area{center}); !got[0].Overlaps {
		t.Fatal("point within radius must overlap")
	}
	center.RadiusMeters = 100
	if got := f.Check(points, []models.Area{center}); got[0].Overlaps {
		t.Fatal("point beyond radius must not overlap")
	}
}

func TestPhaseOneNeverFalseNegative(t *testing.T) {
	f := NewFilter()

	// Sweep an area circle around a fixed trace point; whenever the true
	// circle contains the point, the result must be an overlap. Phase 1
	// may only ever discard true misses.
	point := models.GpsPoint{Lat: 51.5, Lng: -0.1}
	for dLat := -0.004; dLat <= 0.004; dLat += 0.001 {
		for dLng := -0.004; dLng <= 0.004; dLng += 0.001 {
			area := models.Area{
				ID:           "sweep",
				CenterLat:    51.5 + dLat,
				CenterLng:    -0.1 + dLng,
				RadiusMeters: 400,
			}
			got := f.Check([]models.GpsPoint{point}, []models.Area{area})

			// Ground truth straight from the great-circle distance.
			inside := spatial.HaversineDistance(area.CenterLat, area.CenterLng, point.Lat, point.Lng) <= area.RadiusMeters
			if inside && !got[0].Overlaps {
				t.Fatalf("false negative at offset (%v, %v)", dLat, dLng)
			}
			if !inside && got[0].Overlaps {
				t.Fatalf("false positive at offset (%v, %v)", dLat, dLng)
			}
		}
	}
}

func TestCheckEmptyTrace(t *testing.T) {
	f := NewFilter()
	results := f.Check(nil, []models.Area{{ID: "a"}})
	if len(results) != 1 || results[0].Overlaps {
		t.Fatalf("empty trace overlaps nothing: %+v", results)
	}
}
