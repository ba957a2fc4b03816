package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all tunables for the coverage engine and its HTTP shell.
// Matching thresholds are empirically tuned values; change them in the
// environment, not here.
type Config struct {
	Port   string `mapstructure:"PORT"`
	DBPath string `mapstructure:"DB_PATH"`

	Matching  MatchingConfig
	EdgeGraph EdgeGraphConfig
	NodeProx  NodeProxConfig
	Coverage  CoverageConfig
	Overpass  OverpassConfig
}

// MatchingConfig controls the geometric matcher and street aggregation.
type MatchingConfig struct {
	ToleranceMeters        float64 `mapstructure:"MATCH_TOLERANCE_M"`
	CandidateBufferMeters  float64 `mapstructure:"MATCH_CANDIDATE_BUFFER_M"`
	FullThreshold          float64 `mapstructure:"MATCH_FULL_THRESHOLD"`
	ShortStreetMeters      float64 `mapstructure:"MATCH_SHORT_STREET_M"`
	ShortStreetThreshold   float64 `mapstructure:"MATCH_SHORT_STREET_THRESHOLD"`
	BucketMinLengthMeters  float64 `mapstructure:"BUCKET_MIN_LENGTH_M"`
	BucketMinCoveredMeters float64 `mapstructure:"BUCKET_MIN_COVERED_M"`
}

// EdgeGraphConfig controls trace chunking, way resolution and edge validation.
type EdgeGraphConfig struct {
	ChunkSize            int           `mapstructure:"EDGE_CHUNK_SIZE"`
	MinChunkPoints       int           `mapstructure:"EDGE_MIN_CHUNK_POINTS"`
	InterChunkDelay      time.Duration `mapstructure:"EDGE_INTER_CHUNK_DELAY"`
	MinEdgeLengthMeters  float64       `mapstructure:"EDGE_MIN_LENGTH_M"`
	ExcludedRoadTypes    []string      `mapstructure:"EDGE_EXCLUDED_ROAD_TYPES"`
	CrossingLengthMeters float64       `mapstructure:"EDGE_CROSSING_LENGTH_M"`
	CrossingMinEdges     int           `mapstructure:"EDGE_CROSSING_MIN_EDGES"`
	MaxSpeedMps          float64       `mapstructure:"EDGE_MAX_SPEED_MPS"`
	LookupBatchSize      int           `mapstructure:"EDGE_LOOKUP_BATCH_SIZE"`
}

// NodeProxConfig controls the order-independent node-proximity matcher.
type NodeProxConfig struct {
	SnapRadiusMeters    float64 `mapstructure:"NODE_SNAP_RADIUS_M"`
	ShortWayNodeCount   int     `mapstructure:"NODE_SHORT_WAY_COUNT"`
	CompletionThreshold float64 `mapstructure:"NODE_COMPLETION_THRESHOLD"`
}

// CoverageConfig controls interval merging and completion gap detection.
type CoverageConfig struct {
	AdjacencyTolerancePct float64 `mapstructure:"COVERAGE_ADJACENCY_TOLERANCE_PCT"`
	GapTolerancePct       float64 `mapstructure:"COVERAGE_GAP_TOLERANCE_PCT"`
	CompleteSpanMinPct    float64 `mapstructure:"COVERAGE_COMPLETE_SPAN_MIN_PCT"`
}

// OverpassConfig lists the road-graph endpoints and retry policy.
type OverpassConfig struct {
	Endpoints      []string      `mapstructure:"OVERPASS_ENDPOINTS"`
	MatcherURL     string        `mapstructure:"MATCHER_URL"`
	RequestTimeout time.Duration `mapstructure:"OVERPASS_TIMEOUT"`
	MaxAttempts    int           `mapstructure:"OVERPASS_MAX_ATTEMPTS"`
	InitialBackoff time.Duration `mapstructure:"OVERPASS_INITIAL_BACKOFF"`
}

// Load reads configuration from the environment with defaults suitable for
// local development.
func Load() *Config {
	viper.AutomaticEnv()

	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("DB_PATH", "./data/coverage.db")

	viper.SetDefault("MATCH_TOLERANCE_M", 25.0)
	viper.SetDefault("MATCH_CANDIDATE_BUFFER_M", 100.0)
	viper.SetDefault("MATCH_FULL_THRESHOLD", 0.90)
	viper.SetDefault("MATCH_SHORT_STREET_M", 200.0)
	viper.SetDefault("MATCH_SHORT_STREET_THRESHOLD", 1.0)
	viper.SetDefault("BUCKET_MIN_LENGTH_M", 30.0)
	viper.SetDefault("BUCKET_MIN_COVERED_M", 20.0)

	viper.SetDefault("EDGE_CHUNK_SIZE", 100)
	viper.SetDefault("EDGE_MIN_CHUNK_POINTS", 5)
	viper.SetDefault("EDGE_INTER_CHUNK_DELAY", 100*time.Millisecond)
	viper.SetDefault("EDGE_MIN_LENGTH_M", 5.0)
	viper.SetDefault("EDGE_EXCLUDED_ROAD_TYPES", "motorway,motorway_link,trunk,trunk_link")
	viper.SetDefault("EDGE_CROSSING_LENGTH_M", 20.0)
	viper.SetDefault("EDGE_CROSSING_MIN_EDGES", 2)
	viper.SetDefault("EDGE_MAX_SPEED_MPS", 12.0)
	viper.SetDefault("EDGE_LOOKUP_BATCH_SIZE", 50)

	viper.SetDefault("NODE_SNAP_RADIUS_M", 25.0)
	viper.SetDefault("NODE_SHORT_WAY_COUNT", 4)
	viper.SetDefault("NODE_COMPLETION_THRESHOLD", 0.90)

	viper.SetDefault("COVERAGE_ADJACENCY_TOLERANCE_PCT", 1.0)
	viper.SetDefault("COVERAGE_GAP_TOLERANCE_PCT", 5.0)
	viper.SetDefault("COVERAGE_COMPLETE_SPAN_MIN_PCT", 95.0)

	viper.SetDefault("OVERPASS_ENDPOINTS", "https://overpass-api.de/api/interpreter,https://overpass.kumi.systems/api/interpreter")
	viper.SetDefault("MATCHER_URL", "https://router.project-osrm.org")
	viper.SetDefault("OVERPASS_TIMEOUT", 30*time.Second)
	viper.SetDefault("OVERPASS_MAX_ATTEMPTS", 3)
	viper.SetDefault("OVERPASS_INITIAL_BACKOFF", 500*time.Millisecond)

	cfg := &Config{
		Port:   viper.GetString("PORT"),
		DBPath: viper.GetString("DB_PATH"),
		Matching: MatchingConfig{
			ToleranceMeters:        viper.GetFloat64("MATCH_TOLERANCE_M"),
			CandidateBufferMeters:  viper.GetFloat64("MATCH_CANDIDATE_BUFFER_M"),
			FullThreshold:          viper.GetFloat64("MATCH_FULL_THRESHOLD"),
			ShortStreetMeters:      viper.GetFloat64("MATCH_SHORT_STREET_M"),
			ShortStreetThreshold:   viper.GetFloat64("MATCH_SHORT_STREET_THRESHOLD"),
			BucketMinLengthMeters:  viper.GetFloat64("BUCKET_MIN_LENGTH_M"),
			BucketMinCoveredMeters: viper.GetFloat64("BUCKET_MIN_COVERED_M"),
		},
		EdgeGraph: EdgeGraphConfig{
			ChunkSize:            viper.GetInt("EDGE_CHUNK_SIZE"),
			MinChunkPoints:       viper.GetInt("EDGE_MIN_CHUNK_POINTS"),
			InterChunkDelay:      viper.GetDuration("EDGE_INTER_CHUNK_DELAY"),
			MinEdgeLengthMeters:  viper.GetFloat64("EDGE_MIN_LENGTH_M"),
			ExcludedRoadTypes:    splitList(viper.GetString("EDGE_EXCLUDED_ROAD_TYPES")),
			CrossingLengthMeters: viper.GetFloat64("EDGE_CROSSING_LENGTH_M"),
			CrossingMinEdges:     viper.GetInt("EDGE_CROSSING_MIN_EDGES"),
			MaxSpeedMps:          viper.GetFloat64("EDGE_MAX_SPEED_MPS"),
			LookupBatchSize:      viper.GetInt("EDGE_LOOKUP_BATCH_SIZE"),
		},
		NodeProx: NodeProxConfig{
			SnapRadiusMeters:    viper.GetFloat64("NODE_SNAP_RADIUS_M"),
			ShortWayNodeCount:   viper.GetInt("NODE_SHORT_WAY_COUNT"),
			CompletionThreshold: viper.GetFloat64("NODE_COMPLETION_THRESHOLD"),
		},
		Coverage: CoverageConfig{
			AdjacencyTolerancePct: viper.GetFloat64("COVERAGE_ADJACENCY_TOLERANCE_PCT"),
			GapTolerancePct:       viper.GetFloat64("COVERAGE_GAP_TOLERANCE_PCT"),
			CompleteSpanMinPct:    viper.GetFloat64("COVERAGE_COMPLETE_SPAN_MIN_PCT"),
		},
		Overpass: OverpassConfig{
			Endpoints:      splitList(viper.GetString("OVERPASS_ENDPOINTS")),
			MatcherURL:     viper.GetString("MATCHER_URL"),
			RequestTimeout: viper.GetDuration("OVERPASS_TIMEOUT"),
			MaxAttempts:    viper.GetInt("OVERPASS_MAX_ATTEMPTS"),
			InitialBackoff: viper.GetDuration("OVERPASS_INITIAL_BACKOFF"),
		},
	}

	return cfg
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
