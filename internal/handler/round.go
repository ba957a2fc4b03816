package handler

import (
	"math"

	"github.com/weylan/street-coverage-go/internal/models"
)

// API output rounds distances to 2 decimals and ratios to 3; internal state
// keeps full precision so rounding never feeds back into merges.

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func roundRunResult(r *models.RunResult) {
	for i := range r.Streets {
		s := &r.Streets[i]
		s.TotalLengthMeters = round2(s.TotalLengthMeters)
		s.TotalDistanceCoveredMeters = round2(s.TotalDistanceCoveredMeters)
		s.TotalDistanceRunMeters = round2(s.TotalDistanceRunMeters)
		s.CoverageRatio = round3(s.CoverageRatio)
		s.RawCoverageRatio = round3(s.RawCoverageRatio)
	}
	for i := range r.UnnamedBuckets {
		b := &r.UnnamedBuckets[i]
		b.TotalLengthMeters = round2(b.TotalLengthMeters)
		b.TotalDistanceCoveredMeters = round2(b.TotalDistanceCoveredMeters)
		b.CoverageRatio = round3(b.CoverageRatio)
	}
	for i := range r.MatchedSegments {
		m := &r.MatchedSegments[i]
		m.LengthMeters = round2(m.LengthMeters)
		m.DistanceCoveredMeters = round2(m.DistanceCoveredMeters)
		m.GeometryDistanceCoveredMeters = round2(m.GeometryDistanceCoveredMeters)
		m.CoverageRatio = round3(m.CoverageRatio)
	}
	for i := range r.ValidatedEdges {
		r.ValidatedEdges[i].LengthMeters = round2(r.ValidatedEdges[i].LengthMeters)
	}
	for i := range r.WayCompletions {
		r.WayCompletions[i].Ratio = round3(r.WayCompletions[i].Ratio)
	}
	for i := range r.Progress {
		roundProgress(&r.Progress[i])
	}
}

func roundProgress(p *models.StreetProgress) {
	p.Percentage = round2(p.Percentage)
	for i := range p.Intervals {
		p.Intervals[i].StartPercent = round2(p.Intervals[i].StartPercent)
		p.Intervals[i].EndPercent = round2(p.Intervals[i].EndPercent)
	}
}
