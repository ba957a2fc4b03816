package roadgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/models"
	"github.com/weylan/street-coverage-go/internal/spatial"
)

// OverpassClient reads street segments, nodes and node→way membership from
// an Overpass-compatible road database. Requests go through the retry
// policy: bounded attempts per endpoint, then failover to the next one.
type OverpassClient struct {
	policy     RetryPolicy
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewOverpassClient creates a client over the configured endpoints.
func NewOverpassClient(cfg config.OverpassConfig, logger *logrus.Logger) *OverpassClient {
	return &OverpassClient{
		policy: RetryPolicy{
			Endpoints:      cfg.Endpoints,
			MaxAttempts:    cfg.MaxAttempts,
			InitialBackoff: cfg.InitialBackoff,
		},
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Nodes    []int64           `json:"nodes"`
	Tags     map[string]string `json:"tags"`
	Geometry []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"geometry"`
}

// SegmentsInBox fetches all highway ways intersecting the box, with
// geometry, name, road type and computed length.
func (c *OverpassClient) SegmentsInBox(ctx context.Context, box spatial.BBox) ([]models.StreetSegment, error) {
	query := fmt.Sprintf(`[out:json];way["highway"](%f,%f,%f,%f);out geom;`,
		box.MinLat, box.MinLng, box.MaxLat, box.MaxLng)

	resp, err := c.run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch segments: %w", err)
	}

	segments := make([]models.StreetSegment, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Type != "way" || len(el.Geometry) < 2 {
			continue
		}
		geom := make(orb.LineString, 0, len(el.Geometry))
		for _, g := range el.Geometry {
			geom = append(geom, orb.Point{g.Lon, g.Lat})
		}
		segments = append(segments, models.StreetSegment{
			ID:           el.ID,
			Name:         el.Tags["name"],
			RoadType:     el.Tags["highway"],
			LengthMeters: spatial.LineStringLength(geom),
			Geometry:     geom,
		})
	}

	c.logger.WithFields(logrus.Fields{
		"segments": len(segments),
	}).Debug("[Overpass] fetched segments for box")

	return segments, nil
}

// NodesInBox fetches the road-network nodes inside the box.
func (c *OverpassClient) NodesInBox(ctx context.Context, box spatial.BBox) (map[int64]orb.Point, error) {
	query := fmt.Sprintf(`[out:json];way["highway"](%f,%f,%f,%f);node(w);out;`,
		box.MinLat, box.MinLng, box.MaxLat, box.MaxLng)

	resp, err := c.run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nodes: %w", err)
	}

	nodes := make(map[int64]orb.Point, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Type == "node" {
			nodes[el.ID] = orb.Point{el.Lon, el.Lat}
		}
	}
	return nodes, nil
}

// WaysForNodes resolves a batch of node IDs to the highway ways containing
// them, including each way's stored node order.
func (c *OverpassClient) WaysForNodes(ctx context.Context, nodeIDs []int64) (map[int64][]WayRef, error) {
	if len(nodeIDs) == 0 {
		return map[int64][]WayRef{}, nil
	}

	ids := make([]string, len(nodeIDs))
	for i, id := range nodeIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	query := fmt.Sprintf(`[out:json];node(id:%s);way(bn)["highway"];out geom;`, strings.Join(ids, ","))

	resp, err := c.run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ways for %d nodes: %w", len(nodeIDs), err)
	}

	requested := make(map[int64]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		requested[id] = true
	}

	result := make(map[int64][]WayRef)
	for _, el := range resp.Elements {
		if el.Type != "way" {
			continue
		}
		geom := make(orb.LineString, 0, len(el.Geometry))
		for _, g := range el.Geometry {
			geom = append(geom, orb.Point{g.Lon, g.Lat})
		}
		ref := WayRef{
			WayID:        el.ID,
			Name:         el.Tags["name"],
			RoadType:     el.Tags["highway"],
			NodeOrder:    el.Nodes,
			LengthMeters: spatial.LineStringLength(geom),
		}
		for _, nodeID := range el.Nodes {
			if requested[nodeID] {
				result[nodeID] = append(result[nodeID], ref)
			}
		}
	}
	return result, nil
}

// run posts an Overpass QL query, failing over across endpoints.
func (c *OverpassClient) run(ctx context.Context, query string) (*overpassResponse, error) {
	var parsed *overpassResponse

	err := c.policy.Execute(ctx, func(ctx context.Context, endpoint string) error {
		form := url.Values{"data": {query}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &RequestError{Endpoint: endpoint, Err: err}
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &RequestError{Endpoint: endpoint, Err: err}
		}

		if resp.StatusCode != http.StatusOK {
			return &RequestError{
				Endpoint:   endpoint,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body[:min(len(body), 200)]))),
			}
		}

		var out overpassResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		parsed = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parsed, nil
}
