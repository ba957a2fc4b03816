package edgegraph

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/roadgraph"
)

// Matcher runs the edge-graph pipeline: chunk the trace, match chunks
// sequentially against the external matcher, merge the node sequences,
// resolve node pairs to ways and validate the resulting edges.
type Matcher struct {
	cfg       config.EdgeGraphConfig
	external  roadgraph.WayMatcher
	resolver  *Resolver
	validator *Validator
	sleep     roadgraph.SleepFunc
	logger    *logrus.Logger
}

// NewMatcher creates an edge-graph matcher.
func NewMatcher(cfg config.EdgeGraphConfig, external roadgraph.WayMatcher, resolver *Resolver, logger *logrus.Logger) *Matcher {
	return &Matcher{
		cfg:       cfg,
		external:  external,
		resolver:  resolver,
		validator: NewValidator(cfg),
		sleep:     roadgraph.RealSleep,
		logger:    logger,
	}
}

// WithSleep replaces the inter-chunk delay function, for tests.
func (m *Matcher) WithSleep(sleep roadgraph.SleepFunc) *Matcher {
	m.sleep = sleep
	return m
}

// Result is the edge-graph outcome for one trace.
type Result struct {
	Nodes      []int64
	Confidence float64
	Validation ValidationResult
	Ways       map[int64]roadgraph.WayRef
	Warnings   []string
}

// Match processes one trace end to end. Chunks are matched strictly in
// sequence with a fixed delay between calls, to respect the external
// service's rate limits. One chunk failing is recoverable: it contributes
// an empty result and a warning, and later chunks proceed. Way-resolution
// failure is terminal and propagates.
func (m *Matcher) Match(ctx context.Context, points []models.GpsPoint) (Result, error) {
	var result Result
	if len(points) < 2 {
		return result, nil
	}

	chunkSize := m.external.MaxPointsPerRequest()
	if m.cfg.ChunkSize > 0 && m.cfg.ChunkSize < chunkSize {
		chunkSize = m.cfg.ChunkSize
	}
	chunks := ChunkTrace(points, chunkSize, m.cfg.MinChunkPoints)

	matched := make([]roadgraph.MatchedChunk, 0, len(chunks))
	for i, chunk := range chunks {
		if i > 0 {
			if err := m.sleep(ctx, m.cfg.InterChunkDelay); err != nil {
				return result, err
			}
		}

		mc, err := m.external.MatchTrace(ctx, chunk)
		if err != nil {
			warning := fmt.Sprintf("chunk %d/%d failed to match: %v", i+1, len(chunks), err)
			m.logger.Warnf("[EdgeGraph] %s", warning)
			result.Warnings = append(result.Warnings, warning)
			mc = roadgraph.MatchedChunk{}
		}
		matched = append(matched, mc)
	}

	merged := mergeChunks(matched)
	result.Nodes = merged.Nodes
	result.Confidence = merged.Confidence

	edges, err := m.resolver.ResolveSequence(ctx, merged.Nodes)
	if err != nil {
		return result, fmt.Errorf("failed to resolve matched path: %w", err)
	}

	result.Validation = m.validator.Validate(edges, merged.Nodes, nodeTimestamps(points, merged.Nodes))

	result.Ways, err = m.resolver.WaysInSequence(ctx, merged.Nodes)
	if err != nil {
		return result, fmt.Errorf("failed to collect ways for matched path: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"chunks":     len(chunks),
		"nodes":      len(merged.Nodes),
		"edges":      len(result.Validation.Edges),
		"valid":      len(result.Validation.ValidEdges()),
		"confidence": merged.Confidence,
	}).Info("[EdgeGraph] trace matched")

	return result, nil
}

// mergeChunks concatenates chunk results, dropping the boundary node each
// chunk shares with its predecessor. Confidence is the arithmetic mean of
// non-empty chunks; it is advisory only and never blocks edge creation.
func mergeChunks(chunks []roadgraph.MatchedChunk) roadgraph.MatchedChunk {
	var merged roadgraph.MatchedChunk
	confSum := 0.0
	confCount := 0

	for _, c := range chunks {
		nodes := c.Nodes
		if n := len(merged.Nodes); n > 0 && len(nodes) > 0 && merged.Nodes[n-1] == nodes[0] {
			nodes = nodes[1:]
		}
		merged.Nodes = append(merged.Nodes, nodes...)

		geom := c.Geometry
		if n := len(merged.Geometry); n > 0 && len(geom) > 0 && merged.Geometry[n-1] == geom[0] {
			geom = geom[1:]
		}
		merged.Geometry = append(merged.Geometry, geom...)

		if len(c.Nodes) > 0 {
			confSum += c.Confidence
			confCount++
		}
	}

	if confCount > 0 {
		merged.Confidence = confSum / float64(confCount)
	}
	return merged
}

// nodeTimestamps maps matched nodes to point timestamps by distributing
// the trace's points proportionally along the node sequence. It is an
// approximation good enough for the speed-sanity gate; without timestamps
// the map stays empty and the gate is skipped.
func nodeTimestamps(points []models.GpsPoint, nodes []int64) map[int64]int64 {
	times := make(map[int64]int64)
	if len(nodes) < 2 || len(points) < 2 {
		return times
	}

	for i, node := range nodes {
		pointIdx := i * (len(points) - 1) / (len(nodes) - 1)
		p := points[pointIdx]
		if p.HasTimestamp() {
			times[node] = *p.Timestamp
		}
	}
	return times
}
