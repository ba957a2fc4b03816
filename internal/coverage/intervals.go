package coverage

import (
	"sort"

	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
)

// Merger combines per-run coverage intervals into cumulative state and
// decides whether a street's coverage is genuinely contiguous.
type Merger struct {
	cfg config.CoverageConfig
}

// NewMerger creates a new interval merger.
func NewMerger(cfg config.CoverageConfig) *Merger {
	return &Merger{cfg: cfg}
}

// MergeIntervals inserts newly covered spans into the existing merged set
// and re-merges. Intervals that overlap, or whose gap is within the
// adjacency tolerance, collapse into one. The result is sorted by start
// and non-overlapping.
func (m *Merger) MergeIntervals(existing []models.CoverageInterval, incoming ...models.CoverageInterval) []models.CoverageInterval {
	all := make([]models.CoverageInterval, 0, len(existing)+len(incoming))
	for _, iv := range existing {
		if iv = clampInterval(iv); iv.EndPercent > iv.StartPercent {
			all = append(all, iv)
		}
	}
	for _, iv := range incoming {
		if iv = clampInterval(iv); iv.EndPercent > iv.StartPercent {
			all = append(all, iv)
		}
	}
	if len(all) == 0 {
		return nil
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].StartPercent < all[j].StartPercent
	})

	merged := []models.CoverageInterval{all[0]}
	for _, iv := range all[1:] {
		prev := &merged[len(merged)-1]
		if iv.StartPercent <= prev.EndPercent+m.cfg.AdjacencyTolerancePct {
			if iv.EndPercent > prev.EndPercent {
				prev.EndPercent = iv.EndPercent
			}
		} else {
			merged = append(merged, iv)
		}
	}
	return merged
}

// TotalCoverage sums the merged interval spans, clamped to 100.
func (m *Merger) TotalCoverage(intervals []models.CoverageInterval) float64 {
	total := 0.0
	for _, iv := range intervals {
		total += iv.Span()
	}
	if total > 100 {
		return 100
	}
	return total
}

// HasSignificantGap reports whether the merged intervals leave a hole big
// enough to deny "complete" status: a late first start, a gap between
// adjacent intervals beyond the tolerance, or an early finish. A single
// span covering at least the complete-span minimum never gaps.
func (m *Merger) HasSignificantGap(intervals []models.CoverageInterval) bool {
	if len(intervals) == 0 {
		return true
	}

	if len(intervals) == 1 && intervals[0].Span() >= m.cfg.CompleteSpanMinPct {
		return false
	}

	if intervals[0].StartPercent > m.cfg.GapTolerancePct {
		return true
	}
	for i := 1; i < len(intervals); i++ {
		if intervals[i].StartPercent-intervals[i-1].EndPercent > m.cfg.GapTolerancePct {
			return true
		}
	}
	return intervals[len(intervals)-1].EndPercent < 100-m.cfg.GapTolerancePct
}

// IsComplete combines the coverage total and gap check: a street is done
// only when enough of it is covered and the coverage is contiguous.
func (m *Merger) IsComplete(intervals []models.CoverageInterval, threshold float64) bool {
	return m.TotalCoverage(intervals) >= threshold && !m.HasSignificantGap(intervals)
}

func clampInterval(iv models.CoverageInterval) models.CoverageInterval {
	if iv.StartPercent < 0 {
		iv.StartPercent = 0
	}
	if iv.EndPercent > 100 {
		iv.EndPercent = 100
	}
	return iv
}
