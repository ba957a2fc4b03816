package coverage

import "github.com/weylan/street-coverage-go/internal/models"

// ApplyRun folds one run's coverage summary into cumulative street
// progress. The merge is monotone: the percentage never decreases and
// EverCompleted never flips back, so replaying a run (or racing another
// run for the same user) cannot regress recorded progress.
func (m *Merger) ApplyRun(progress *models.StreetProgress, summary models.CoverageSummary, intervals []models.CoverageInterval, runDate int64) {
	merged := m.MergeIntervals(progress.Intervals, intervals...)
	progress.Intervals = merged

	pct := m.TotalCoverage(merged)
	if pct < summary.CoveredPercent() {
		// Interval data can lag the scalar percentage (edge-graph mode has
		// no per-street intervals); take whichever is larger.
		pct = summary.CoveredPercent()
	}
	if pct > 100 {
		pct = 100
	}
	if pct > progress.Percentage {
		progress.Percentage = pct
	}

	progress.RunCount++
	if summary.Complete() {
		progress.CompletionCount++
		progress.EverCompleted = true
	}

	if progress.FirstRunDate == 0 || runDate < progress.FirstRunDate {
		progress.FirstRunDate = runDate
	}
	if runDate > progress.LastRunDate {
		progress.LastRunDate = runDate
	}
}
