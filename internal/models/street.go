package models

import "github.com/paulmach/orb"

// StreetSegment is one atomic piece of road geometry from the road graph.
// A real street is usually split into several segments; the aggregator
// re-joins them by normalized name and road type.
type StreetSegment struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"` // empty for unnamed segments
	RoadType     string         `json:"roadType"`
	LengthMeters float64        `json:"lengthMeters"`
	Geometry     orb.LineString `json:"geometry"` // ordered lon/lat coordinates
}

// MatchedSegment is the per-run matching result for one segment.
// MatchedPointIndices keeps the original track indices, never renumbered,
// so consecutive-run detection works after matching.
type MatchedSegment struct {
	SegmentID                     int64   `json:"segmentId"`
	SegmentName                   string  `json:"segmentName"`
	RoadType                      string  `json:"roadType"`
	LengthMeters                  float64 `json:"lengthMeters"`
	MatchedPointIndices           []int   `json:"matchedPointIndices"`
	DistanceCoveredMeters         float64 `json:"distanceCoveredMeters"`
	GeometryDistanceCoveredMeters float64 `json:"geometryDistanceCoveredMeters"`
	CoverageRatio                 float64 `json:"coverageRatio"`
	Status                        string  `json:"status"`
}

// LogicalStreet is the aggregation of all segments sharing a normalized
// name and road type within one run.
type LogicalStreet struct {
	DisplayName                string  `json:"displayName"`
	NormalizedName             string  `json:"normalizedName"`
	RoadType                   string  `json:"roadType"`
	TotalLengthMeters          float64 `json:"totalLengthMeters"`
	TotalDistanceCoveredMeters float64 `json:"totalDistanceCoveredMeters"` // clamped to length
	TotalDistanceRunMeters     float64 `json:"totalDistanceRunMeters"`     // unclamped
	CoverageRatio              float64 `json:"coverageRatio"`              // clamped to 1.0
	RawCoverageRatio           float64 `json:"rawCoverageRatio"`           // may exceed 1.0 on drift
	CompletionStatus           string  `json:"completionStatus"`
	MemberSegmentIDs           []int64 `json:"memberSegmentIds"`
}

// UnnamedBucket groups unnamed segments of one road type.
type UnnamedBucket struct {
	RoadType                   string  `json:"roadType"`
	DisplayLabel               string  `json:"displayLabel"`
	TotalLengthMeters          float64 `json:"totalLengthMeters"`
	TotalDistanceCoveredMeters float64 `json:"totalDistanceCoveredMeters"`
	CoverageRatio              float64 `json:"coverageRatio"`
	FullCount                  int     `json:"fullCount"`
	PartialCount               int     `json:"partialCount"`
}

// Completion status constants
const (
	StatusFull    = "FULL"
	StatusPartial = "PARTIAL"
)
