package nodeprox

import (
	"sort"

	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/spatial"
)

// Matcher marks every road-network node within the snap radius of any GPS
// point as hit. Unlike the edge-graph matcher, sequence is irrelevant:
// hits are a set union over the whole trace.
type Matcher struct {
	cfg config.NodeProxConfig
}

// NewMatcher creates a node-proximity matcher.
func NewMatcher(cfg config.NodeProxConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match returns the distinct node IDs hit by the trace, sorted for
// deterministic persistence.
func (m *Matcher) Match(points []models.GpsPoint, index *spatial.NodeIndex) []int64 {
	hitSet := make(map[int64]bool)
	for _, p := range points {
		for _, id := range index.QueryRadius(p.Lat, p.Lng, m.cfg.SnapRadiusMeters) {
			hitSet[id] = true
		}
	}

	hits := make([]int64, 0, len(hitSet))
	for id := range hitSet {
		hits = append(hits, id)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i] < hits[j] })
	return hits
}

// Completion decides a way's node-proximity completion. Short ways (at or
// below the node-count cutoff) require every node hit; longer ways use the
// standard threshold.
func (m *Matcher) Completion(wayID int64, wayName string, hitCount, totalNodes int) models.WayCompletion {
	ratio := 0.0
	if totalNodes > 0 {
		ratio = float64(hitCount) / float64(totalNodes)
		if ratio > 1.0 {
			ratio = 1.0
		}
	}

	threshold := m.cfg.CompletionThreshold
	if totalNodes > 0 && totalNodes <= m.cfg.ShortWayNodeCount {
		threshold = 1.0
	}

	return models.WayCompletion{
		WayID:          wayID,
		WayName:        wayName,
		CompletedEdges: hitCount,
		TotalEdges:     totalNodes,
		Ratio:          ratio,
		Complete:       totalNodes > 0 && ratio >= threshold,
	}
}
