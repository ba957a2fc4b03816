package matching

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/spatial"
)

// GroupBySegment inverts a point→segment assignment into sorted per-segment
// index lists, preserving original track indices.
func GroupBySegment(assignments map[int]int64) map[int64][]int {
	grouped := make(map[int64][]int)
	for idx, segID := range assignments {
		grouped[segID] = append(grouped[segID], idx)
	}
	for segID := range grouped {
		sort.Ints(grouped[segID])
	}
	return grouped
}

// ConsecutiveRuns splits sorted track indices into runs of consecutive
// indices. A jump in the index sequence means the runner left the segment
// and came back later; each return starts a new run.
func ConsecutiveRuns(indices []int) [][]int {
	if len(indices) == 0 {
		return nil
	}

	var runs [][]int
	start := 0
	for i := 1; i < len(indices); i++ {
		if indices[i] != indices[i-1]+1 {
			runs = append(runs, indices[start:i])
			start = i
		}
	}
	runs = append(runs, indices[start:])
	return runs
}

// ConsecutiveDistance sums straight-line distance within consecutive runs
// only. The gap between a run's end and the next run's start is never
// counted: leaving a street and returning to it covers nothing in between.
func ConsecutiveDistance(points []models.GpsPoint, indices []int) float64 {
	total := 0.0
	for _, run := range ConsecutiveRuns(indices) {
		for i := 1; i < len(run); i++ {
			a := points[run[i-1]]
			b := points[run[i]]
			total += spatial.HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng)
		}
	}
	return total
}

// CoveredSpans converts each consecutive run into the [start%, end%] span
// it covers along the segment's geometry. Spans from separate runs are not
// merged here; the interval merger owns that.
func CoveredSpans(points []models.GpsPoint, indices []int, geom orb.LineString) []models.CoverageInterval {
	length := spatial.LineStringLength(geom)
	if length <= 0 {
		return nil
	}

	var spans []models.CoverageInterval
	for _, run := range ConsecutiveRuns(indices) {
		first, okFirst := spatial.ProjectOntoLineString(points[run[0]].Lat, points[run[0]].Lng, geom)
		last, okLast := spatial.ProjectOntoLineString(points[run[len(run)-1]].Lat, points[run[len(run)-1]].Lng, geom)
		if !okFirst || !okLast {
			continue
		}
		lo, hi := first.AlongMeters, last.AlongMeters
		if lo > hi {
			lo, hi = hi, lo
		}
		if hi <= lo {
			continue
		}
		spans = append(spans, models.CoverageInterval{
			StartPercent: lo / length * 100,
			EndPercent:   hi / length * 100,
		})
	}
	return spans
}

// GeometryDistance measures covered distance along the segment's geometry
// instead of between raw GPS fixes. Every matched point is projected onto
// its closest location on the geometry; each consecutive run then covers
// the span between its first and last projected position. This compensates
// for device drift and is the measurement used for completion decisions.
func GeometryDistance(points []models.GpsPoint, indices []int, geom orb.LineString) float64 {
	if len(geom) < 2 {
		return 0
	}

	total := 0.0
	for _, run := range ConsecutiveRuns(indices) {
		first, okFirst := spatial.ProjectOntoLineString(points[run[0]].Lat, points[run[0]].Lng, geom)
		last, okLast := spatial.ProjectOntoLineString(points[run[len(run)-1]].Lat, points[run[len(run)-1]].Lng, geom)
		if !okFirst || !okLast {
			continue
		}
		total += math.Abs(last.AlongMeters - first.AlongMeters)
	}
	return total
}
