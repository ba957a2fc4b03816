package matching

import (
	"sort"
	"strings"

	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
)

// bucketLabels maps road types to display labels for unnamed segments.
var bucketLabels = map[string]string{
	"footway":     "Footpaths (Unnamed)",
	"path":        "Paths (Unnamed)",
	"residential": "Residential Roads (Unnamed)",
	"service":     "Service Roads (Unnamed)",
	"track":       "Tracks (Unnamed)",
	"cycleway":    "Cycleways (Unnamed)",
	"steps":       "Steps (Unnamed)",
}

// Aggregator merges fragmented map segments into logical streets and
// buckets unnamed segments by road type.
type Aggregator struct {
	cfg config.MatchingConfig
}

// NewAggregator creates a new street aggregator.
func NewAggregator(cfg config.MatchingConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate splits matched segments into logical streets (named) and
// unnamed buckets, in one pass.
func (a *Aggregator) Aggregate(matched []models.MatchedSegment) ([]models.LogicalStreet, []models.UnnamedBucket) {
	var named, unnamed []models.MatchedSegment
	for _, ms := range matched {
		if IsUnnamed(ms.SegmentName) {
			unnamed = append(unnamed, ms)
		} else {
			named = append(named, ms)
		}
	}
	return a.aggregateNamed(named), a.bucketUnnamed(unnamed)
}

type streetGroup struct {
	displayName string
	roadType    string
	members     []models.MatchedSegment
}

func (a *Aggregator) aggregateNamed(matched []models.MatchedSegment) []models.LogicalStreet {
	groups := make(map[string]*streetGroup)
	var order []string

	for _, ms := range matched {
		key := NormalizeName(ms.SegmentName) + "|" + ms.RoadType
		g, ok := groups[key]
		if !ok {
			g = &streetGroup{
				displayName: strings.TrimSpace(ms.SegmentName),
				roadType:    ms.RoadType,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, ms)
	}

	streets := make([]models.LogicalStreet, 0, len(groups))
	for _, key := range order {
		g := groups[key]

		var totalLength, totalCovered, totalRun float64
		allFull := true
		memberIDs := make([]int64, 0, len(g.members))
		for _, ms := range g.members {
			totalLength += ms.LengthMeters
			totalCovered += ms.GeometryDistanceCoveredMeters
			totalRun += ms.DistanceCoveredMeters
			memberIDs = append(memberIDs, ms.SegmentID)
			if ms.Status != models.StatusFull {
				allFull = false
			}
		}

		rawRatio := 0.0
		if totalLength > 0 {
			rawRatio = totalCovered / totalLength
		}
		ratio := rawRatio
		if ratio > 1.0 {
			ratio = 1.0
		}
		coveredClamped := totalCovered
		if coveredClamped > totalLength {
			coveredClamped = totalLength
		}

		status := models.StatusPartial
		if ratio >= a.completionThreshold(totalLength) {
			status = models.StatusFull
			// A raw ratio above 1.0 means drift or repeated passes inflated
			// the measurement; trust it only when every member is already
			// FULL on its own.
			if rawRatio > 1.0 && !allFull {
				status = models.StatusPartial
			}
		}

		streets = append(streets, models.LogicalStreet{
			DisplayName:                g.displayName,
			NormalizedName:             NormalizeName(g.displayName),
			RoadType:                   g.roadType,
			TotalLengthMeters:          totalLength,
			TotalDistanceCoveredMeters: coveredClamped,
			TotalDistanceRunMeters:     totalRun,
			CoverageRatio:              ratio,
			RawCoverageRatio:           rawRatio,
			CompletionStatus:           status,
			MemberSegmentIDs:           memberIDs,
		})
	}

	sort.SliceStable(streets, func(i, j int) bool {
		if streets[i].CoverageRatio != streets[j].CoverageRatio {
			return streets[i].CoverageRatio > streets[j].CoverageRatio
		}
		return streets[i].TotalLengthMeters > streets[j].TotalLengthMeters
	})

	return streets
}

// completionThreshold is stricter for short streets: a 50 m lane must be
// run end to end, while a long road completes at the base threshold.
func (a *Aggregator) completionThreshold(lengthMeters float64) float64 {
	if lengthMeters < a.cfg.ShortStreetMeters {
		return a.cfg.ShortStreetThreshold
	}
	return a.cfg.FullThreshold
}

func (a *Aggregator) bucketUnnamed(matched []models.MatchedSegment) []models.UnnamedBucket {
	type bucket struct {
		totalLength  float64
		totalCovered float64
		fullCount    int
		partialCount int
	}

	buckets := make(map[string]*bucket)
	for _, ms := range matched {
		// Tiny, barely-touched fragments are GPS noise, not coverage.
		if ms.LengthMeters < a.cfg.BucketMinLengthMeters && ms.GeometryDistanceCoveredMeters < a.cfg.BucketMinCoveredMeters {
			continue
		}
		b, ok := buckets[ms.RoadType]
		if !ok {
			b = &bucket{}
			buckets[ms.RoadType] = b
		}
		b.totalLength += ms.LengthMeters
		b.totalCovered += ms.GeometryDistanceCoveredMeters
		if ms.Status == models.StatusFull {
			b.fullCount++
		} else {
			b.partialCount++
		}
	}

	out := make([]models.UnnamedBucket, 0, len(buckets))
	for roadType, b := range buckets {
		ratio := 0.0
		if b.totalLength > 0 {
			ratio = b.totalCovered / b.totalLength
			if ratio > 1.0 {
				ratio = 1.0
			}
		}
		out = append(out, models.UnnamedBucket{
			RoadType:                   roadType,
			DisplayLabel:               bucketLabel(roadType),
			TotalLengthMeters:          b.totalLength,
			TotalDistanceCoveredMeters: b.totalCovered,
			CoverageRatio:              ratio,
			FullCount:                  b.fullCount,
			PartialCount:               b.partialCount,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RoadType < out[j].RoadType
	})
	return out
}

func bucketLabel(roadType string) string {
	if label, ok := bucketLabels[roadType]; ok {
		return label
	}
	if roadType == "" {
		return "Other (Unnamed)"
	}
	return strings.ToUpper(roadType[:1]) + roadType[1:] + " (Unnamed)"
}
