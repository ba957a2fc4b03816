package roadgraph

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/spatial"
)

// SegmentSource fetches street segments with geometry for a region.
type SegmentSource interface {
	SegmentsInBox(ctx context.Context, box spatial.BBox) ([]models.StreetSegment, error)
}

// MatchedChunk is the external matcher's result for one trace chunk: an
// ordered node sequence with advisory confidence and snapped geometry.
type MatchedChunk struct {
	Nodes      []int64
	Geometry   orb.LineString
	Confidence float64
}

// WayMatcher snaps a point trace to the road network, returning the
// ordered sequence of network nodes the trace traversed.
type WayMatcher interface {
	MatchTrace(ctx context.Context, points []models.GpsPoint) (MatchedChunk, error)
	// MaxPointsPerRequest is the matcher's per-request coordinate limit.
	MaxPointsPerRequest() int
}

// WayRef describes one way a node belongs to, with the node order the way
// stores. Two nodes form an edge of the way only when they are consecutive
// in NodeOrder.
type WayRef struct {
	WayID        int64
	Name         string
	RoadType     string
	NodeOrder    []int64
	LengthMeters float64
}

// NodeWayLookup resolves node IDs to the ways that contain them.
type NodeWayLookup interface {
	WaysForNodes(ctx context.Context, nodeIDs []int64) (map[int64][]WayRef, error)
}

// NodeSource exposes road-network nodes for a region, used to build the
// node-proximity index.
type NodeSource interface {
	NodesInBox(ctx context.Context, box spatial.BBox) (map[int64]orb.Point, error)
}

// Services bundles the external collaborators one matching run needs.
// It is injected into each call; the core holds no ambient globals.
type Services struct {
	Segments SegmentSource
	Matcher  WayMatcher
	Ways     NodeWayLookup
	Nodes    NodeSource
}
