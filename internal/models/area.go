package models

// Area is a user-defined tracked region: a circle around a center point.
type Area struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CenterLat    float64 `json:"centerLat"`
	CenterLng    float64 `json:"centerLng"`
	RadiusMeters float64 `json:"radiusMeters"`
}

// OverlapResult records whether a trace touched an area, with a small
// sample of the interior points for diagnostics.
type OverlapResult struct {
	AreaID       string     `json:"areaId"`
	AreaName     string     `json:"areaName"`
	Overlaps     bool       `json:"overlaps"`
	SamplePoints []GpsPoint `json:"samplePoints,omitempty"`
}
