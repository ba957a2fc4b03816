package spatial

import "github.com/weylan/street-coverage-go/internal/models"

// BBox is an axis-aligned bounding box in degrees.
type BBox struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// BoundingBox calculates the bounding box of a point sequence.
// Returns the zero box for an empty sequence.
func BoundingBox(points []models.GpsPoint) BBox {
	if len(points) == 0 {
		return BBox{}
	}

	b := BBox{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLng: points[0].Lng, MaxLng: points[0].Lng,
	}
	for _, p := range points[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lng < b.MinLng {
			b.MinLng = p.Lng
		}
		if p.Lng > b.MaxLng {
			b.MaxLng = p.Lng
		}
	}
	return b
}

// Expand grows the box by a buffer in meters on every side. The longitude
// expansion uses the box's center latitude.
func (b BBox) Expand(meters float64) BBox {
	centerLat := (b.MinLat + b.MaxLat) / 2
	dLat, dLng := MetersToDegrees(meters, centerLat)
	return BBox{
		MinLat: b.MinLat - dLat,
		MinLng: b.MinLng - dLng,
		MaxLat: b.MaxLat + dLat,
		MaxLng: b.MaxLng + dLng,
	}
}

// Intersects reports whether two boxes overlap.
func (b BBox) Intersects(o BBox) bool {
	return b.MinLat <= o.MaxLat && b.MaxLat >= o.MinLat &&
		b.MinLng <= o.MaxLng && b.MaxLng >= o.MinLng
}

// CircleBBox builds the bounding box of a circle given by center and radius.
// The box always contains the true circle, so a box miss is a guaranteed
// circle miss.
func CircleBBox(lat, lng, radiusMeters float64) BBox {
	dLat, dLng := MetersToDegrees(radiusMeters, lat)
	return BBox{
		MinLat: lat - dLat,
		MinLng: lng - dLng,
		MaxLat: lat + dLat,
		MaxLng: lng + dLng,
	}
}
