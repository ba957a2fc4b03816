package roadgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
)

// OSRMMatcher snaps traces to the road network through an OSRM-compatible
// match endpoint, returning the traversed node sequence.
type OSRMMatcher struct {
	baseURL    string
	maxPoints  int
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewOSRMMatcher creates a matcher client.
func NewOSRMMatcher(cfg config.OverpassConfig, edgeCfg config.EdgeGraphConfig, logger *logrus.Logger) *OSRMMatcher {
	return &OSRMMatcher{
		baseURL:    strings.TrimRight(cfg.MatcherURL, "/"),
		maxPoints:  edgeCfg.ChunkSize,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

// MaxPointsPerRequest is the matcher's per-request coordinate limit.
func (m *OSRMMatcher) MaxPointsPerRequest() int {
	return m.maxPoints
}

type osrmMatchResponse struct {
	Code      string `json:"code"`
	Matchings []struct {
		Confidence float64 `json:"confidence"`
		Geometry   struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Legs []struct {
			Annotation struct {
				Nodes []int64 `json:"nodes"`
			} `json:"annotation"`
		} `json:"legs"`
	} `json:"matchings"`
}

// MatchTrace matches one chunk of points against the road network.
func (m *OSRMMatcher) MatchTrace(ctx context.Context, points []models.GpsPoint) (MatchedChunk, error) {
	if len(points) == 0 {
		return MatchedChunk{}, nil
	}
	if len(points) > m.maxPoints {
		return MatchedChunk{}, fmt.Errorf("trace of %d points exceeds matcher limit %d", len(points), m.maxPoints)
	}

	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = fmt.Sprintf("%f,%f", p.Lng, p.Lat)
	}
	reqURL := fmt.Sprintf("%s/match/v1/foot/%s?annotations=nodes&geometries=geojson&overview=full",
		m.baseURL, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return MatchedChunk{}, fmt.Errorf("failed to build match request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return MatchedChunk{}, &RequestError{Endpoint: m.baseURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return MatchedChunk{}, &RequestError{Endpoint: m.baseURL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return MatchedChunk{}, &RequestError{
			Endpoint:   m.baseURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("match request failed"),
		}
	}

	var parsed osrmMatchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return MatchedChunk{}, fmt.Errorf("failed to parse match response: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Matchings) == 0 {
		return MatchedChunk{}, fmt.Errorf("matcher returned no matchings (code %q)", parsed.Code)
	}

	// Use the first matching; OSRM splits only on unmatchable gaps.
	matching := parsed.Matchings[0]
	chunk := MatchedChunk{Confidence: matching.Confidence}
	for _, leg := range matching.Legs {
		for _, node := range leg.Annotation.Nodes {
			// Legs share boundary nodes; skip the duplicate.
			if n := len(chunk.Nodes); n > 0 && chunk.Nodes[n-1] == node {
				continue
			}
			chunk.Nodes = append(chunk.Nodes, node)
		}
	}
	for _, c := range matching.Geometry.Coordinates {
		if len(c) == 2 {
			chunk.Geometry = append(chunk.Geometry, orb.Point{c[0], c[1]})
		}
	}

	m.logger.WithFields(logrus.Fields{
		"points":     len(points),
		"nodes":      len(chunk.Nodes),
		"confidence": chunk.Confidence,
	}).Debug("[Matcher] chunk matched")

	return chunk, nil
}
