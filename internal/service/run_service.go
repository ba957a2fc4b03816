package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/coverage"
	"github.com/weylan/street-coverage-go/internal/matching"
	"github.com/weylan/street-coverage-go/internal/matching/edgegraph"
	"github.com/weylan/street-coverage-go/internal/matching/nodeprox"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/repository"
	"github.com/weylan/street-coverage-go/internal/roadgraph"
	"github.com/weylan/street-coverage-go/internal/spatial"
)

var (
	// ErrNoPoints rejects a run whose trace has no usable points.
	ErrNoPoints = errors.New("trace contains no points")
	// ErrNoRoadData rejects a run when the road source has nothing for the
	// trace's region.
	ErrNoRoadData = errors.New("no road data for trace region")
	// ErrUnknownMode rejects an unrecognized matching mode.
	ErrUnknownMode = errors.New("unknown matching mode")
)

// RunService orchestrates one GPS trace through a matching pipeline and
// folds the outcome into the user's cumulative progress.
type RunService struct {
	cfg      *config.Config
	logger   *logrus.Logger
	external roadgraph.Services

	geometric  *matching.GeometricMatcher
	aggregator *matching.Aggregator
	edgeGraph  *edgegraph.Matcher
	nodeProx   *nodeprox.Matcher
	merger     *coverage.Merger

	progressRepo *repository.StreetProgressRepository
	edgeRepo     *repository.ValidatedEdgeRepository
	nodeHitRepo  *repository.NodeHitRepository
	wayStatsRepo *repository.WayStatsRepository
}

// NewRunService creates a run service. The edge-graph matcher is built by
// the caller because its resolver carries external wiring of its own.
func NewRunService(
	cfg *config.Config,
	logger *logrus.Logger,
	external roadgraph.Services,
	edgeGraph *edgegraph.Matcher,
	progressRepo *repository.StreetProgressRepository,
	edgeRepo *repository.ValidatedEdgeRepository,
	nodeHitRepo *repository.NodeHitRepository,
	wayStatsRepo *repository.WayStatsRepository,
) *RunService {
	return &RunService{
		cfg:          cfg,
		logger:       logger,
		external:     external,
		geometric:    matching.NewGeometricMatcher(cfg.Matching),
		aggregator:   matching.NewAggregator(cfg.Matching),
		edgeGraph:    edgeGraph,
		nodeProx:     nodeprox.NewMatcher(cfg.NodeProx),
		merger:       coverage.NewMerger(cfg.Coverage),
		progressRepo: progressRepo,
		edgeRepo:     edgeRepo,
		nodeHitRepo:  nodeHitRepo,
		wayStatsRepo: wayStatsRepo,
	}
}

// ProcessRun matches one trace in the requested mode and persists the
// resulting progress. All progress writes are monotone, so a retried or
// racing run can only ever add coverage.
func (s *RunService) ProcessRun(ctx context.Context, userID string, points []models.GpsPoint, mode models.MatchKind) (*models.RunResult, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	result := &models.RunResult{
		RunID:   uuid.NewString(),
		Mode:    mode,
		RunDate: runDate(points),
	}

	var err error
	switch mode {
	case models.GeometricMatch:
		err = s.geometricRun(ctx, userID, points, result)
	case models.EdgeMatch:
		err = s.edgeGraphRun(ctx, userID, points, result)
	case models.NodeProximityMatch:
		err = s.nodeProxRun(ctx, userID, points, result)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":  result.RunID,
		"user_id": userID,
		"mode":    mode,
		"points":  len(points),
		"streets": len(result.Streets),
		"ways":    len(result.WayCompletions),
	}).Info("[Run] trace processed")

	return result, nil
}

func (s *RunService) geometricRun(ctx context.Context, userID string, points []models.GpsPoint, result *models.RunResult) error {
	box := s.geometric.CandidateBox(points)
	segments, err := s.external.Segments.SegmentsInBox(ctx, box)
	if err != nil {
		return fmt.Errorf("failed to fetch candidate segments: %w", err)
	}
	if len(segments) == 0 {
		return ErrNoRoadData
	}

	matched := s.geometric.Match(points, segments)
	streets, buckets := s.aggregator.Aggregate(matched)
	result.MatchedSegments = matched
	result.Streets = streets
	result.UnnamedBuckets = buckets

	segByID := make(map[int64]models.StreetSegment, len(segments))
	for _, seg := range segments {
		segByID[seg.ID] = seg
	}
	msByID := make(map[int64]models.MatchedSegment, len(matched))
	for _, ms := range matched {
		msByID[ms.SegmentID] = ms
	}

	for _, st := range streets {
		summary := models.StreetCoverage{Street: st}

		// Positional spans are only meaningful when the whole street is one
		// segment; fragmented streets fall back to the scalar percentage.
		var spans []models.CoverageInterval
		if len(st.MemberSegmentIDs) == 1 {
			id := st.MemberSegmentIDs[0]
			spans = matching.CoveredSpans(points, msByID[id].MatchedPointIndices, segByID[id].Geometry)
		}

		if err := s.applyProgress(userID, summary, spans, st.DisplayName, st.RoadType, result); err != nil {
			return err
		}
	}

	return nil
}

func (s *RunService) edgeGraphRun(ctx context.Context, userID string, points []models.GpsPoint, result *models.RunResult) error {
	er, err := s.edgeGraph.Match(ctx, points)
	if err != nil {
		return fmt.Errorf("edge-graph matching failed: %w", err)
	}
	result.Warnings = er.Warnings
	result.ValidatedEdges = er.Validation.Edges
	result.RejectionCounts = er.Validation.RejectionCounts

	if err := s.edgeRepo.UpsertEdges(userID, er.Validation.Edges); err != nil {
		return fmt.Errorf("failed to persist edges: %w", err)
	}

	touchedWays := make(map[int64]bool)
	for _, e := range er.Validation.ValidEdges() {
		touchedWays[e.WayID] = true
	}

	wayIDs := make([]int64, 0, len(touchedWays))
	for wayID := range touchedWays {
		wayIDs = append(wayIDs, wayID)
	}
	sort.Slice(wayIDs, func(i, j int) bool { return wayIDs[i] < wayIDs[j] })

	for _, wayID := range wayIDs {
		ref, ok := er.Ways[wayID]
		if !ok {
			continue
		}

		// Closed ways repeat their first node at the end; hit counting is
		// per distinct node, so the denominator must be too.
		nodes := distinctNodes(ref.NodeOrder)
		stats := models.WayStats{
			WayID:        wayID,
			WayName:      ref.Name,
			RoadType:     ref.RoadType,
			TotalNodes:   len(nodes),
			TotalEdges:   len(ref.NodeOrder) - 1,
			LengthMeters: ref.LengthMeters,
		}
		if err := s.wayStatsRepo.Upsert(stats, nodes); err != nil {
			return fmt.Errorf("failed to persist way stats: %w", err)
		}

		count, err := s.edgeRepo.CountForWay(userID, wayID)
		if err != nil {
			return err
		}
		if count > stats.TotalEdges {
			s.logger.Warnf("[Run] way %d has %d completed edges over total %d", wayID, count, stats.TotalEdges)
		}

		wc := edgegraph.WayCompletion(wayID, ref.Name, count, stats.TotalEdges, s.cfg.Matching.FullThreshold)
		result.WayCompletions = append(result.WayCompletions, wc)

		if ref.Name != "" {
			summary := models.WayCoverage{MatchKind: models.EdgeMatch, Way: wc}
			if err := s.applyProgress(userID, summary, nil, ref.Name, ref.RoadType, result); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *RunService) nodeProxRun(ctx context.Context, userID string, points []models.GpsPoint, result *models.RunResult) error {
	box := spatial.BoundingBox(points).Expand(s.cfg.Matching.CandidateBufferMeters)
	nodes, err := s.external.Nodes.NodesInBox(ctx, box)
	if err != nil {
		return fmt.Errorf("failed to fetch road nodes: %w", err)
	}
	if len(nodes) == 0 {
		return ErrNoRoadData
	}

	index := spatial.NewNodeIndex()
	for id, pt := range nodes {
		index.Insert(id, pt[1], pt[0])
	}

	hits := s.nodeProx.Match(points, index)
	result.NodeHits = len(hits)
	if err := s.nodeHitRepo.UpsertHits(userID, hits); err != nil {
		return fmt.Errorf("failed to persist node hits: %w", err)
	}

	wayIDs, err := s.wayStatsRepo.WaysContaining(hits)
	if err != nil {
		return err
	}
	for _, wayID := range wayIDs {
		stats, err := s.wayStatsRepo.Get(wayID)
		if err != nil {
			return err
		}
		if stats == nil {
			continue
		}

		count, err := s.nodeHitRepo.CountForWay(userID, wayID)
		if err != nil {
			return err
		}
		if count > stats.TotalNodes {
			s.logger.Warnf("[Run] way %d has %d hit nodes over total %d", wayID, count, stats.TotalNodes)
		}

		wc := s.nodeProx.Completion(wayID, stats.WayName, count, stats.TotalNodes)
		result.WayCompletions = append(result.WayCompletions, wc)

		if stats.WayName != "" {
			summary := models.WayCoverage{MatchKind: models.NodeProximityMatch, Way: wc}
			if err := s.applyProgress(userID, summary, nil, stats.WayName, stats.RoadType, result); err != nil {
				return err
			}
		}
	}

	return nil
}

// applyProgress folds one coverage summary into the user's stored progress
// for that street and records the updated row on the result.
func (s *RunService) applyProgress(userID string, summary models.CoverageSummary, spans []models.CoverageInterval, displayName, roadType string, result *models.RunResult) error {
	p, err := s.progressRepo.GetByKey(userID, summary.StreetKey())
	if err != nil {
		return err
	}
	if p == nil {
		p = &models.StreetProgress{
			UserID:      userID,
			StreetKey:   summary.StreetKey(),
			DisplayName: displayName,
			RoadType:    roadType,
		}
	}

	s.merger.ApplyRun(p, summary, spans, result.RunDate)

	if err := s.progressRepo.Upsert(*p, summary.Complete()); err != nil {
		return err
	}
	result.Progress = append(result.Progress, *p)
	return nil
}

// distinctNodes drops repeated node IDs, keeping first-occurrence order.
func distinctNodes(order []int64) []int64 {
	seen := make(map[int64]bool, len(order))
	out := make([]int64, 0, len(order))
	for _, n := range order {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// runDate is the trace's first timestamp, or now for untimestamped traces.
func runDate(points []models.GpsPoint) int64 {
	for _, p := range points {
		if p.HasTimestamp() {
			return *p.Timestamp
		}
	}
	return time.Now().Unix()
}
