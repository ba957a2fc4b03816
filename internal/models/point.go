package models

// GpsPoint is one recorded position from an activity. Points arrive as an
// ordered sequence; the index of a point within its activity defines the
// adjacency used by all "consecutive" logic downstream.
type GpsPoint struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Elevation *float64 `json:"elevation,omitempty"`
	Timestamp *int64   `json:"timestamp,omitempty"` // Unix seconds
}

// HasTimestamp reports whether the point carries a usable timestamp.
func (p GpsPoint) HasTimestamp() bool {
	return p.Timestamp != nil && *p.Timestamp > 0
}
