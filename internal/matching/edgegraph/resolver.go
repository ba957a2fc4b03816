package edgegraph

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/roadgraph"
)

// Resolver attributes consecutive node pairs from a matched sequence to
// the ways that own them. Membership comes from the cache when possible;
// misses are looked up in batches through the external service.
type Resolver struct {
	cfg    config.EdgeGraphConfig
	lookup roadgraph.NodeWayLookup
	cache  NodeWayCache
	logger *logrus.Logger
}

// NewResolver creates a resolver over a lookup service and cache.
func NewResolver(cfg config.EdgeGraphConfig, lookup roadgraph.NodeWayLookup, cache NodeWayCache, logger *logrus.Logger) *Resolver {
	return &Resolver{cfg: cfg, lookup: lookup, cache: cache, logger: logger}
}

// ResolveSequence turns an ordered node sequence into resolved edges.
// A node pair resolves to a way only when the two nodes are consecutive
// within that way's stored node order; sharing one endpoint with an
// unrelated way must never attribute the edge to it. Batch lookup failure
// is terminal for the sequence and propagates.
func (r *Resolver) ResolveSequence(ctx context.Context, nodes []int64) ([]models.ResolvedEdge, error) {
	if len(nodes) < 2 {
		return nil, nil
	}

	membership, err := r.membership(ctx, uniqueNodes(nodes))
	if err != nil {
		return nil, err
	}

	var edges []models.ResolvedEdge
	for i := 1; i < len(nodes); i++ {
		a, b := nodes[i-1], nodes[i]
		if a == b {
			continue
		}
		ref, ok := owningWay(membership[a], a, b)
		if !ok {
			continue
		}
		nodeA, nodeB := models.NormalizeEdge(a, b)
		edges = append(edges, models.ResolvedEdge{
			NodeA:        nodeA,
			NodeB:        nodeB,
			WayID:        ref.WayID,
			WayName:      ref.Name,
			RoadType:     ref.RoadType,
			LengthMeters: edgeLength(ref, a, b),
		})
	}
	return edges, nil
}

// membership returns way membership for every node, consulting the cache
// first and fetching misses in bounded batches.
func (r *Resolver) membership(ctx context.Context, nodeIDs []int64) (map[int64][]roadgraph.WayRef, error) {
	hits, misses := r.cache.Get(nodeIDs)

	batchSize := r.cfg.LookupBatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	for start := 0; start < len(misses); start += batchSize {
		end := start + batchSize
		if end > len(misses) {
			end = len(misses)
		}
		batch := misses[start:end]

		resolved, err := r.lookup.WaysForNodes(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("way lookup failed for batch of %d nodes: %w", len(batch), err)
		}
		r.cache.Put(resolved)
		for id, refs := range resolved {
			hits[id] = refs
		}
	}

	return hits, nil
}

// WaysInSequence returns every way the sequence's nodes belong to, keyed
// by way ID. After ResolveSequence has run the membership is fully cached,
// so this costs no external calls.
func (r *Resolver) WaysInSequence(ctx context.Context, nodes []int64) (map[int64]roadgraph.WayRef, error) {
	ways := make(map[int64]roadgraph.WayRef)
	if len(nodes) == 0 {
		return ways, nil
	}

	membership, err := r.membership(ctx, uniqueNodes(nodes))
	if err != nil {
		return nil, err
	}
	for _, refs := range membership {
		for _, ref := range refs {
			ways[ref.WayID] = ref
		}
	}
	return ways, nil
}

// owningWay finds the way in which a and b are consecutive nodes.
func owningWay(refs []roadgraph.WayRef, a, b int64) (roadgraph.WayRef, bool) {
	for _, ref := range refs {
		for i := 1; i < len(ref.NodeOrder); i++ {
			p, q := ref.NodeOrder[i-1], ref.NodeOrder[i]
			if (p == a && q == b) || (p == b && q == a) {
				return ref, true
			}
		}
	}
	return roadgraph.WayRef{}, false
}

// edgeLength approximates one edge's share of its way: length divided
// evenly across the way's edges. Exact per-edge geometry is not available
// from the membership lookup.
func edgeLength(ref roadgraph.WayRef, a, b int64) float64 {
	edgeCount := len(ref.NodeOrder) - 1
	if edgeCount <= 0 {
		return 0
	}
	return ref.LengthMeters / float64(edgeCount)
}

func uniqueNodes(nodes []int64) []int64 {
	seen := make(map[int64]bool, len(nodes))
	out := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
