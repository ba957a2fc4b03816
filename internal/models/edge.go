package models

// ResolvedEdge is a pair of adjacent road-network nodes attributed to the
// way that owns them. Node IDs are normalized so NodeA < NodeB; direction
// of travel never creates a second identity for the same edge.
type ResolvedEdge struct {
	NodeA        int64   `json:"nodeA"`
	NodeB        int64   `json:"nodeB"`
	WayID        int64   `json:"wayId"`
	WayName      string  `json:"wayName"` // empty for unnamed ways
	RoadType     string  `json:"roadType"`
	LengthMeters float64 `json:"lengthMeters"`
}

// ValidatedEdge is a ResolvedEdge after it has passed (or failed) the
// validation gates. The distinct set of valid edges ever recorded for a
// user on a way is the source of truth for that way's completion.
type ValidatedEdge struct {
	ResolvedEdge
	IsValid         bool   `json:"isValid"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// NormalizeEdge orders a node pair so the smaller ID comes first.
func NormalizeEdge(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Edge rejection reasons
const (
	RejectNotConsecutive   = "not_consecutive"
	RejectTooShort         = "too_short"
	RejectExcludedType     = "excluded_road_type"
	RejectCrossing         = "crossing"
	RejectImplausibleSpeed = "implausible_speed"
)

// WayStats carries the externally supplied completion denominators for a
// way: how many edges and nodes it has in total.
type WayStats struct {
	WayID        int64   `json:"wayId" db:"way_id"`
	WayName      string  `json:"wayName" db:"way_name"`
	RoadType     string  `json:"roadType" db:"road_type"`
	TotalEdges   int     `json:"totalEdges" db:"edge_count"`
	TotalNodes   int     `json:"totalNodes" db:"node_count"`
	LengthMeters float64 `json:"lengthMeters" db:"length_meters"`
}

// WayCompletion is the cumulative edge-graph completion state of one way.
type WayCompletion struct {
	WayID          int64   `json:"wayId"`
	WayName        string  `json:"wayName"`
	CompletedEdges int     `json:"completedEdges"`
	TotalEdges     int     `json:"totalEdges"`
	Ratio          float64 `json:"ratio"`
	Complete       bool    `json:"complete"`
}
