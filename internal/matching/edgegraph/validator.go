package edgegraph

import (
	"math"

	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
)

// Validator runs each resolved edge through ordered rejection gates,
// short-circuiting on the first failure. Every failure increments a
// per-reason counter for diagnostics.
type Validator struct {
	cfg      config.EdgeGraphConfig
	excluded map[string]bool
}

// NewValidator creates a validator.
func NewValidator(cfg config.EdgeGraphConfig) *Validator {
	excluded := make(map[string]bool, len(cfg.ExcludedRoadTypes))
	for _, t := range cfg.ExcludedRoadTypes {
		excluded[t] = true
	}
	return &Validator{cfg: cfg, excluded: excluded}
}

// ValidationResult is the outcome for one run's resolved edges.
type ValidationResult struct {
	Edges           []models.ValidatedEdge
	RejectionCounts map[string]int
}

// ValidEdges returns only the edges that passed every gate.
func (r ValidationResult) ValidEdges() []models.ValidatedEdge {
	var valid []models.ValidatedEdge
	for _, e := range r.Edges {
		if e.IsValid {
			valid = append(valid, e)
		}
	}
	return valid
}

// Validate checks every edge against the gates. matchedPath is the node
// sequence the matcher produced; nodeTimes optionally maps node IDs to
// Unix timestamps for the speed-sanity gate (absent entries skip it).
func (v *Validator) Validate(edges []models.ResolvedEdge, matchedPath []int64, nodeTimes map[int64]int64) ValidationResult {
	result := ValidationResult{RejectionCounts: make(map[string]int)}

	adjacency := pathAdjacency(matchedPath)
	edgesPerWay := make(map[int64]int, len(edges))
	for _, e := range edges {
		edgesPerWay[e.WayID]++
	}

	for _, e := range edges {
		reason := v.gate(e, adjacency, edgesPerWay, nodeTimes)
		ve := models.ValidatedEdge{ResolvedEdge: e, IsValid: reason == ""}
		if reason != "" {
			ve.RejectionReason = reason
			result.RejectionCounts[reason]++
		}
		result.Edges = append(result.Edges, ve)
	}
	return result
}

// gate returns the first failing gate's reason, or "" when the edge is valid.
func (v *Validator) gate(e models.ResolvedEdge, adjacency map[[2]int64]bool, edgesPerWay map[int64]int, nodeTimes map[int64]int64) string {
	// Gate 1: the two nodes must be adjacent in the matched path.
	if !adjacency[[2]int64{e.NodeA, e.NodeB}] {
		return models.RejectNotConsecutive
	}

	// Gate 2: minimum edge length.
	if e.LengthMeters < v.cfg.MinEdgeLengthMeters {
		return models.RejectTooShort
	}

	// Gate 3: excluded road types.
	if v.excluded[e.RoadType] {
		return models.RejectExcludedType
	}

	// Gate 4: anti-crossing. A short edge on a way with almost no other
	// matched edges means the street was crossed, not run.
	if e.LengthMeters < v.cfg.CrossingLengthMeters && edgesPerWay[e.WayID] < v.cfg.CrossingMinEdges {
		return models.RejectCrossing
	}

	// Gate 5: speed sanity, only when both endpoints carry timestamps.
	if tA, okA := nodeTimes[e.NodeA]; okA {
		if tB, okB := nodeTimes[e.NodeB]; okB && tA != tB {
			speed := e.LengthMeters / math.Abs(float64(tB-tA))
			if speed > v.cfg.MaxSpeedMps {
				return models.RejectImplausibleSpeed
			}
		}
	}

	return ""
}

// pathAdjacency builds the set of normalized consecutive node pairs in the
// matched path.
func pathAdjacency(path []int64) map[[2]int64]bool {
	adjacency := make(map[[2]int64]bool, len(path))
	for i := 1; i < len(path); i++ {
		a, b := models.NormalizeEdge(path[i-1], path[i])
		adjacency[[2]int64{a, b}] = true
	}
	return adjacency
}

// WayCompletion computes cumulative completion for a way from the distinct
// validated edge count and the externally supplied total. completedEdges
// exceeding the total indicates road-data drift; the ratio is clamped and
// the caller logs the discrepancy.
func WayCompletion(wayID int64, wayName string, completedEdges, totalEdges int, threshold float64) models.WayCompletion {
	ratio := 0.0
	if totalEdges > 0 {
		ratio = float64(completedEdges) / float64(totalEdges)
		if ratio > 1.0 {
			ratio = 1.0
		}
	}
	return models.WayCompletion{
		WayID:          wayID,
		WayName:        wayName,
		CompletedEdges: completedEdges,
		TotalEdges:     totalEdges,
		Ratio:          ratio,
		Complete:       totalEdges > 0 && ratio >= threshold,
	}
}
