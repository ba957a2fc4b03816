package matching

import (
	"math"
	"testing"

	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
)

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		ToleranceMeters:        25,
		CandidateBufferMeters:  100,
		FullThreshold:          0.90,
		ShortStreetMeters:      200,
		ShortStreetThreshold:   1.0,
		BucketMinLengthMeters:  30,
		BucketMinCoveredMeters: 20,
	}
}

func seg(id int64, name, roadType string, length, covered float64, status string) models.MatchedSegment {
	return models.MatchedSegment{
		SegmentID:                     id,
		SegmentName:                   name,
		RoadType:                      roadType,
		LengthMeters:                  length,
		DistanceCoveredMeters:         covered,
		GeometryDistanceCoveredMeters: covered,
		Status:                        status,
	}
}

func TestAggregateSumsFragmentedSegments(t *testing.T) {
	agg := NewAggregator(testMatchingConfig())

	streets, _ := agg.Aggregate([]models.MatchedSegment{
		seg(1, "High Street", "residential", 100, 95, models.StatusFull),
		seg(2, "High Street", "residential", 150, 140, models.StatusFull),
		seg(3, "high  street", "residential", 120, 115, models.StatusFull),
	})

	if len(streets) != 1 {
		t.Fatalf("expected 1 logical street, got %d", len(streets))
	}
	s := streets[0]
	if s.TotalLengthMeters != 370 {
		t.Errorf("total length = %v, want 370", s.TotalLengthMeters)
	}
	if math.Abs(s.TotalDistanceCoveredMeters-350) > 1e-9 {
		t.Errorf("total covered = %v, want 350", s.TotalDistanceCoveredMeters)
	}
	if len(s.MemberSegmentIDs) != 3 {
		t.Errorf("member count = %d, want 3", len(s.MemberSegmentIDs))
	}
	if s.CompletionStatus != models.StatusFull {
		t.Errorf("status = %s, want FULL (350/370 = %.3f)", s.CompletionStatus, s.RawCoverageRatio)
	}
}

func TestAggregateSeparatesByRoadType(t *testing.T) {
	agg := NewAggregator(testMatchingConfig())
	streets, _ := agg.Aggregate([]models.MatchedSegment{
		seg(1, "Mill Lane", "residential", 300, 100, models.StatusPartial),
		seg(2, "Mill Lane", "footway", 300, 100, models.StatusPartial),
	})
	if len(streets) != 2 {
		t.Fatalf("same name, different road type must not merge: got %d streets", len(streets))
	}
}

func TestAggregateClampInvariant(t *testing.T) {
	agg := NewAggregator(testMatchingConfig())
	// Covered wildly exceeds length (drift + repeated passes).
	streets, _ := agg.Aggregate([]models.MatchedSegment{
		seg(1, "Loop Road", "residential", 300, 900, models.StatusFull),
	})
	s := streets[0]
	if s.CoverageRatio > 1.0 || s.CoverageRatio < 0 {
		t.Fatalf("clamped ratio out of [0,1]: %v", s.CoverageRatio)
	}
	if s.RawCoverageRatio <= 1.0 {
		t.Fatalf("raw ratio should be preserved unclamped, got %v", s.RawCoverageRatio)
	}
	if s.TotalDistanceCoveredMeters > s.TotalLengthMeters {
		t.Fatalf("covered %v exceeds length %v", s.TotalDistanceCoveredMeters, s.TotalLengthMeters)
	}
	if s.TotalDistanceRunMeters != 900 {
		t.Fatalf("unclamped run distance must survive, got %v", s.TotalDistanceRunMeters)
	}
}

func TestAggregateDemotesInflatedRatioWithPartialMember(t *testing.T) {
	agg := NewAggregator(testMatchingConfig())

	// Raw ratio 1.17, but one member is only PARTIAL: the overflow came from
	// noise on the other member, so the aggregate must not complete.
	streets, _ := agg.Aggregate([]models.MatchedSegment{
		seg(1, "Drift Avenue", "residential", 200, 300, models.StatusFull),
		seg(2, "Drift Avenue", "residential", 200, 170, models.StatusPartial),
	})
	if streets[0].CompletionStatus != models.StatusPartial {
		t.Fatalf("inflated aggregate with partial member must demote to PARTIAL")
	}

	// Same raw ratio, all members FULL: completion stands.
	streets, _ = agg.Aggregate([]models.MatchedSegment{
		seg(1, "Drift Avenue", "residential", 200, 300, models.StatusFull),
		seg(2, "Drift Avenue", "residential", 200, 190, models.StatusFull),
	})
	if streets[0].CompletionStatus != models.StatusFull {
		t.Fatalf("inflated aggregate with all-FULL members must stay FULL")
	}
}

func TestAggregateShortStreetThreshold(t *testing.T) {
	agg := NewAggregator(testMatchingConfig())

	// 95% of a short street is not complete; the same ratio on a long one is.
	streets, _ := agg.Aggregate([]models.MatchedSegment{
		seg(1, "Short Close", "residential", 100, 95, models.StatusFull),
	})
	if streets[0].CompletionStatus != models.StatusPartial {
		t.Fatalf("short street at 95%% must be PARTIAL")
	}

	streets, _ = agg.Aggregate([]models.MatchedSegment{
		seg(1, "Long Road", "residential", 1000, 950, models.StatusFull),
	})
	if streets[0].CompletionStatus != models.StatusFull {
		t.Fatalf("long street at 95%% must be FULL")
	}
}

func TestAggregateSortOrder(t *testing.T) {
	agg := NewAggregator(testMatchingConfig())
	streets, _ := agg.Aggregate([]models.MatchedSegment{
		seg(1, "Half Street", "residential", 400, 200, models.StatusPartial),
		seg(2, "Full Street", "residential", 300, 285, models.StatusFull),
		seg(3, "Long Half Street", "residential", 600, 300, models.StatusPartial),
	})
	if streets[0].DisplayName != "Full Street" {
		t.Fatalf("highest coverage first, got %s", streets[0].DisplayName)
	}
	// Equal ratios (0.5): longer street first.
	if streets[1].DisplayName != "Long Half Street" || streets[2].DisplayName != "Half Street" {
		t.Fatalf("ties broken by length descending, got %s then %s",
			streets[1].DisplayName, streets[2].DisplayName)
	}
}

func TestBucketUnnamedMinimums(t *testing.T) {
	agg := NewAggregator(testMatchingConfig())

	_, buckets := agg.Aggregate([]models.MatchedSegment{
		seg(1, "", "footway", 20, 10, models.StatusPartial), // below both minimums: dropped
		seg(2, "", "footway", 50, 25, models.StatusPartial), // included
	})

	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	b := buckets[0]
	if b.TotalLengthMeters != 50 {
		t.Fatalf("noise fragment leaked into bucket: length %v, want 50", b.TotalLengthMeters)
	}
	if b.DisplayLabel != "Footpaths (Unnamed)" {
		t.Fatalf("label = %q", b.DisplayLabel)
	}
}

func TestBucketLabelFallback(t *testing.T) {
	agg := NewAggregator(testMatchingConfig())
	_, buckets := agg.Aggregate([]models.MatchedSegment{
		seg(1, "unnamed", "bridleway", 100, 80, models.StatusPartial),
	})
	if len(buckets) != 1 || buckets[0].DisplayLabel != "Bridleway (Unnamed)" {
		t.Fatalf("fallback label wrong: %+v", buckets)
	}
}

func TestBucketCounts(t *testing.T) {
	agg := NewAggregator(testMatchingConfig())
	_, buckets := agg.Aggregate([]models.MatchedSegment{
		seg(1, "", "service", 100, 95, models.StatusFull),
		seg(2, "", "service", 100, 40, models.StatusPartial),
		seg(3, "n/a", "service", 100, 50, models.StatusPartial),
	})
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].FullCount != 1 || buckets[0].PartialCount != 2 {
		t.Fatalf("counts = %d full / %d partial, want 1/2", buckets[0].FullCount, buckets[0].PartialCount)
	}
}
