package models

// MatchKind identifies which matching strategy produced a coverage result.
type MatchKind string

const (
	GeometricMatch     MatchKind = "geometric"
	EdgeMatch          MatchKind = "edgegraph"
	NodeProximityMatch MatchKind = "nodeprox"
)

// CoverageSummary is the common shape the interval merger and persistence
// consume, regardless of which matcher produced it.
type CoverageSummary interface {
	// Kind reports the strategy that produced this summary.
	Kind() MatchKind
	// StreetKey identifies the street or way the summary applies to.
	StreetKey() string
	// CoveredPercent is the per-run coverage percentage, 0-100.
	CoveredPercent() float64
	// Complete reports whether this run alone satisfied the completion
	// threshold for the street.
	Complete() bool
}

// StreetCoverage adapts a LogicalStreet to the CoverageSummary interface.
type StreetCoverage struct {
	Street LogicalStreet
}

func (s StreetCoverage) Kind() MatchKind { return GeometricMatch }

func (s StreetCoverage) StreetKey() string {
	return s.Street.NormalizedName + "|" + s.Street.RoadType
}

func (s StreetCoverage) CoveredPercent() float64 {
	return s.Street.CoverageRatio * 100
}

func (s StreetCoverage) Complete() bool {
	return s.Street.CompletionStatus == StatusFull
}

// WayCoverage adapts an edge-graph or node-proximity way completion to the
// CoverageSummary interface.
type WayCoverage struct {
	MatchKind MatchKind
	Way       WayCompletion
}

func (w WayCoverage) Kind() MatchKind { return w.MatchKind }

func (w WayCoverage) StreetKey() string {
	return w.Way.WayName + "|way"
}

func (w WayCoverage) CoveredPercent() float64 {
	return w.Way.Ratio * 100
}

func (w WayCoverage) Complete() bool { return w.Way.Complete }
