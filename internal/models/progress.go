package models

// CoverageInterval is one contiguous covered span along a street,
// expressed as percentages of the street's length. A street's cumulative
// state is a set of merged, non-overlapping intervals kept sorted by start.
type CoverageInterval struct {
	StartPercent float64 `json:"startPercent"`
	EndPercent   float64 `json:"endPercent"`
}

// Span returns the width of the interval in percentage points.
func (ci CoverageInterval) Span() float64 {
	return ci.EndPercent - ci.StartPercent
}

// StreetProgress is the cumulative, per-user coverage state of one street.
// It is only ever updated through monotone merges: percentage never
// decreases and EverCompleted never flips back to false.
type StreetProgress struct {
	UserID          string  `json:"userId" db:"user_id"`
	StreetKey       string  `json:"streetKey" db:"street_key"` // normalizedName|roadType
	DisplayName     string  `json:"displayName" db:"display_name"`
	RoadType        string  `json:"roadType" db:"road_type"`
	Percentage      float64 `json:"percentage" db:"percentage"`
	EverCompleted   bool    `json:"everCompleted" db:"ever_completed"`
	RunCount        int     `json:"runCount" db:"run_count"`
	CompletionCount int     `json:"completionCount" db:"completion_count"`
	FirstRunDate    int64   `json:"firstRunDate" db:"first_run_date"` // Unix seconds
	LastRunDate     int64   `json:"lastRunDate" db:"last_run_date"`

	Intervals []CoverageInterval `json:"intervals,omitempty"`
}
