package edgegraph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/roadgraph"
)

// fakeWayMatcher returns scripted chunk results in call order.
type fakeWayMatcher struct {
	results []roadgraph.MatchedChunk
	errs    []error
	calls   int
	limit   int
}

func (f *fakeWayMatcher) MatchTrace(ctx context.Context, points []models.GpsPoint) (roadgraph.MatchedChunk, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return roadgraph.MatchedChunk{}, f.errs[i]
	}
	if i < len(f.results) {
		return f.results[i], nil
	}
	return roadgraph.MatchedChunk{}, nil
}

func (f *fakeWayMatcher) MaxPointsPerRequest() int { return f.limit }

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func newTestMatcher(external *fakeWayMatcher, refs map[int64][]roadgraph.WayRef) *Matcher {
	cfg := testEdgeConfig()
	cfg.ChunkSize = external.limit
	resolver := NewResolver(cfg, &fakeLookup{refs: refs}, NewMemoryCache(), quietLogger())
	return NewMatcher(cfg, external, resolver, quietLogger()).WithSleep(noSleep)
}

func TestMatchMergesChunksDroppingBoundary(t *testing.T) {
	external := &fakeWayMatcher{
		limit: 5,
		results: []roadgraph.MatchedChunk{
			{Nodes: []int64{10, 11, 12}, Confidence: 0.8},
			{Nodes: []int64{12, 13}, Confidence: 0.6},
		},
	}
	m := newTestMatcher(external, wayFixture())

	result, err := m.Match(context.Background(), tracePoints(9))
	if err != nil {
		t.Fatalf("match: %v", err)
	}

	want := []int64{10, 11, 12, 13}
	if len(result.Nodes) != len(want) {
		t.Fatalf("merged nodes %v, want %v", result.Nodes, want)
	}
	for i := range want {
		if result.Nodes[i] != want[i] {
			t.Fatalf("merged nodes %v, want %v", result.Nodes, want)
		}
	}
	if diff := result.Confidence - 0.7; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("confidence = %v, want mean 0.7", result.Confidence)
	}
	if len(result.Validation.ValidEdges()) != 3 {
		t.Fatalf("expected 3 valid edges, got %d", len(result.Validation.ValidEdges()))
	}
}

func TestMatchChunkFailureIsRecoverable(t *testing.T) {
	external := &fakeWayMatcher{
		limit: 5,
		results: []roadgraph.MatchedChunk{
			{Nodes: []int64{10, 11}, Confidence: 0.9},
			{}, // replaced by error below
			{Nodes: []int64{12, 13}, Confidence: 0.9},
		},
		errs: []error{nil, errors.New("matcher 500"), nil},
	}
	m := newTestMatcher(external, wayFixture())

	result, err := m.Match(context.Background(), tracePoints(13))
	if err != nil {
		t.Fatalf("one failed chunk must not fail the run: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	// Both surviving chunks' nodes are present.
	if len(result.Nodes) != 4 {
		t.Fatalf("surviving chunks must merge, got nodes %v", result.Nodes)
	}
	if external.calls != 3 {
		t.Fatalf("later chunks must still be attempted, calls = %d", external.calls)
	}
}

func TestMatchSequentialWithDelay(t *testing.T) {
	external := &fakeWayMatcher{limit: 5}
	cfg := testEdgeConfig()
	cfg.ChunkSize = 5
	cfg.InterChunkDelay = 100 * time.Millisecond

	var delays []time.Duration
	resolver := NewResolver(cfg, &fakeLookup{refs: map[int64][]roadgraph.WayRef{}}, NewMemoryCache(), quietLogger())
	m := NewMatcher(cfg, external, resolver, quietLogger()).WithSleep(func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	})

	if _, err := m.Match(context.Background(), tracePoints(13)); err != nil {
		t.Fatalf("match: %v", err)
	}

	// 13 points at chunk size 5 (step 4) is 3 chunks: 2 inter-chunk delays.
	if len(delays) != 2 {
		t.Fatalf("expected 2 inter-chunk delays, got %d", len(delays))
	}
	for _, d := range delays {
		if d != 100*time.Millisecond {
			t.Fatalf("delay = %v, want 100ms", d)
		}
	}
}

func TestMatchShortTraceNoop(t *testing.T) {
	external := &fakeWayMatcher{limit: 5}
	m := newTestMatcher(external, nil)

	result, err := m.Match(context.Background(), tracePoints(1))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(result.Nodes) != 0 || external.calls != 0 {
		t.Fatalf("single-point trace must not call the matcher")
	}
}

func TestMatchResolutionFailureIsTerminal(t *testing.T) {
	external := &fakeWayMatcher{
		limit:   5,
		results: []roadgraph.MatchedChunk{{Nodes: []int64{10, 11}, Confidence: 1}},
	}
	cfg := testEdgeConfig()
	cfg.ChunkSize = 5
	resolver := NewResolver(cfg, &fakeLookup{err: errors.New("endpoints exhausted")}, NewMemoryCache(), quietLogger())
	m := NewMatcher(cfg, external, resolver, quietLogger()).WithSleep(noSleep)

	if _, err := m.Match(context.Background(), tracePoints(4)); err == nil {
		t.Fatal("way-resolution failure must propagate")
	}
}
