package spatial

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

type indexItem struct {
	ID int64
}

// SegmentIndex is an r-tree over street segment bounding boxes, used to
// narrow the candidate set before exact distance tests.
type SegmentIndex struct {
	tree rtree.RTreeG[indexItem]
}

// NewSegmentIndex creates an empty segment index.
func NewSegmentIndex() *SegmentIndex {
	return &SegmentIndex{}
}

// Insert adds a segment's geometry bounding box to the index.
func (idx *SegmentIndex) Insert(id int64, geom orb.LineString) {
	if len(geom) == 0 {
		return
	}
	bound := geom.Bound()
	idx.tree.Insert(
		[2]float64{bound.Min[0], bound.Min[1]},
		[2]float64{bound.Max[0], bound.Max[1]},
		indexItem{ID: id},
	)
}

// Search returns the IDs of all segments whose boxes intersect the query box.
func (idx *SegmentIndex) Search(b BBox) []int64 {
	result := make([]int64, 0)
	idx.tree.Search(
		[2]float64{b.MinLng, b.MinLat},
		[2]float64{b.MaxLng, b.MaxLat},
		func(min, max [2]float64, item indexItem) bool {
			result = append(result, item.ID)
			return true
		},
	)
	return result
}

// Size returns the number of indexed segments.
func (idx *SegmentIndex) Size() int {
	return idx.tree.Len()
}

// NodeIndex is an r-tree over road-network node points. It backs the
// node-proximity matcher's bounding-box queries.
type NodeIndex struct {
	tree   rtree.RTreeG[indexItem]
	coords map[int64]orb.Point
}

// NewNodeIndex creates an empty node index.
func NewNodeIndex() *NodeIndex {
	return &NodeIndex{coords: make(map[int64]orb.Point)}
}

// Insert adds a node to the index.
func (idx *NodeIndex) Insert(id int64, lat, lng float64) {
	pt := orb.Point{lng, lat}
	idx.coords[id] = pt
	idx.tree.Insert([2]float64{lng, lat}, [2]float64{lng, lat}, indexItem{ID: id})
}

// QueryRadius returns nodes within radiusMeters of the point, confirmed by
// great-circle distance after the bounding-box prefilter.
func (idx *NodeIndex) QueryRadius(lat, lng, radiusMeters float64) []int64 {
	box := CircleBBox(lat, lng, radiusMeters)

	hits := make([]int64, 0)
	idx.tree.Search(
		[2]float64{box.MinLng, box.MinLat},
		[2]float64{box.MaxLng, box.MaxLat},
		func(min, max [2]float64, item indexItem) bool {
			pt := idx.coords[item.ID]
			if HaversineDistance(lat, lng, pt[1], pt[0]) <= radiusMeters {
				hits = append(hits, item.ID)
			}
			return true
		},
	)
	return hits
}

// Coord returns a node's position.
func (idx *NodeIndex) Coord(id int64) (lat, lng float64, ok bool) {
	pt, ok := idx.coords[id]
	if !ok {
		return 0, 0, false
	}
	return pt[1], pt[0], true
}

// Size returns the number of indexed nodes.
func (idx *NodeIndex) Size() int {
	return idx.tree.Len()
}
