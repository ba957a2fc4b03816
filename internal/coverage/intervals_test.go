package coverage

import (
	"math"
	"testing"

	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
)

func testCoverageConfig() config.CoverageConfig {
	return config.CoverageConfig{
		AdjacencyTolerancePct: 1.0,
		GapTolerancePct:       5.0,
		CompleteSpanMinPct:    95.0,
	}
}

func iv(start, end float64) models.CoverageInterval {
	return models.CoverageInterval{StartPercent: start, EndPercent: end}
}

func intervalsEqual(a, b []models.CoverageInterval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i].StartPercent-b[i].StartPercent) > 1e-9 ||
			math.Abs(a[i].EndPercent-b[i].EndPercent) > 1e-9 {
			return false
		}
	}
	return true
}

func TestMergeIntervals(t *testing.T) {
	m := NewMerger(testCoverageConfig())

	cases := []struct {
		name     string
		existing []models.CoverageInterval
		incoming models.CoverageInterval
		want     []models.CoverageInterval
	}{
		{"overlap merges", []models.CoverageInterval{iv(0, 50)}, iv(40, 90), []models.CoverageInterval{iv(0, 90)}},
		{"adjacency merges", []models.CoverageInterval{iv(0, 50)}, iv(50, 100), []models.CoverageInterval{iv(0, 100)}},
		{"near adjacency merges", []models.CoverageInterval{iv(0, 50)}, iv(50.5, 100), []models.CoverageInterval{iv(0, 100)}},
		{"gap preserved", []models.CoverageInterval{iv(0, 30)}, iv(70, 100), []models.CoverageInterval{iv(0, 30), iv(70, 100)}},
		{"contained absorbed", []models.CoverageInterval{iv(0, 80)}, iv(20, 40), []models.CoverageInterval{iv(0, 80)}},
		{"into empty", nil, iv(10, 20), []models.CoverageInterval{iv(10, 20)}},
	}

	for _, tc := range cases {
		got := m.MergeIntervals(tc.existing, tc.incoming)
		if !intervalsEqual(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMergeIntervalsClampsInput(t *testing.T) {
	m := NewMerger(testCoverageConfig())
	got := m.MergeIntervals(nil, iv(-10, 120))
	if !intervalsEqual(got, []models.CoverageInterval{iv(0, 100)}) {
		t.Fatalf("got %v, want [[0,100]]", got)
	}

	// Empty-span garbage disappears.
	if got := m.MergeIntervals(nil, iv(50, 50), iv(60, 40)); got != nil {
		t.Fatalf("degenerate intervals must vanish, got %v", got)
	}
}

func TestTotalCoverageClamps(t *testing.T) {
	m := NewMerger(testCoverageConfig())

	// Overlapping raw input would sum to 110; the merged set is clamped.
	if got := m.TotalCoverage([]models.CoverageInterval{iv(0, 60), iv(50, 100)}); got != 100 {
		t.Fatalf("got %v, want 100", got)
	}
	if got := m.TotalCoverage([]models.CoverageInterval{iv(0, 30), iv(70, 100)}); got != 60 {
		t.Fatalf("got %v, want 60", got)
	}
	if got := m.TotalCoverage(nil); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestHasSignificantGap(t *testing.T) {
	m := NewMerger(testCoverageConfig())

	cases := []struct {
		name      string
		intervals []models.CoverageInterval
		want      bool
	}{
		{"single span above minimum", []models.CoverageInterval{iv(0, 96)}, false},
		{"small gap tolerated", []models.CoverageInterval{iv(0, 40), iv(42, 100)}, false},
		{"large gap detected", []models.CoverageInterval{iv(0, 50), iv(70, 100)}, true},
		{"late start", []models.CoverageInterval{iv(10, 100)}, true},
		{"early finish", []models.CoverageInterval{iv(0, 90)}, true},
		{"empty", nil, true},
		{"full", []models.CoverageInterval{iv(0, 100)}, false},
	}

	for _, tc := range cases {
		if got := m.HasSignificantGap(tc.intervals); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMergeIdempotence(t *testing.T) {
	m := NewMerger(testCoverageConfig())

	merged := m.MergeIntervals(nil, iv(0, 50), iv(60, 100))
	before := m.TotalCoverage(merged)

	// Re-applying an interval already fully contained changes nothing.
	again := m.MergeIntervals(merged, iv(10, 40))
	if got := m.TotalCoverage(again); got != before {
		t.Fatalf("idempotence violated: %v -> %v", before, got)
	}
	if !intervalsEqual(merged, again) {
		t.Fatalf("interval set changed: %v -> %v", merged, again)
	}
}

func TestIsComplete(t *testing.T) {
	m := NewMerger(testCoverageConfig())

	// 95% scattered in disconnected chunks is not complete.
	scattered := []models.CoverageInterval{iv(0, 35), iv(45, 75), iv(85, 100)}
	if m.IsComplete(scattered, 90) {
		t.Fatal("scattered coverage must not be complete")
	}

	// One continuous 96% span is.
	if !m.IsComplete([]models.CoverageInterval{iv(0, 96)}, 90) {
		t.Fatal("continuous spanning coverage must be complete")
	}
}
