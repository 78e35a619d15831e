// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package spatial indexes market points for nearest-neighbour and
// bounding-box queries.
package spatial

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"github.com/pdiddy/markets-geojson/internal/feature"
)

// pointTolerance is the side length of the degenerate rectangle stored for
// each point. rtreego rejects zero-length sides.
const pointTolerance = 1e-9

// Hit is a feature returned by a query.
type Hit struct {
	Feature *geojson.Feature
	Point   orb.Point

	// Meters is the geodesic distance from the query point. Zero for
	// bounding-box queries.
	Meters float64
}

type entry struct {
	feature *geojson.Feature
	point   orb.Point
}

// Bounds implements rtreego.Spatial.
func (e *entry) Bounds() rtreego.Rect {
	return rtreego.Point{e.point.Lon(), e.point.Lat()}.ToRect(pointTolerance)
}

// Index is an R-tree over the point features of a collection.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex builds an index over fc. Features without a Point geometry are
// ignored.
func NewIndex(fc *geojson.FeatureCollection) *Index {
	idx := &Index{tree: rtreego.NewTree(2, 25, 50)}
	if fc == nil {
		return idx
	}
	for _, f := range fc.Features {
		p, ok := feature.Point(f)
		if !ok {
			continue
		}
		idx.tree.Insert(&entry{feature: f, point: p})
		idx.size++
	}
	return idx
}

// Len returns the number of indexed points.
func (idx *Index) Len() int {
	return idx.size
}

// Nearest returns up to k features closest to (lng, lat) by geodesic
// distance, nearest first.
//
// The k planar nearest neighbours bound the k-th geodesic distance from
// above, so every true result lies inside the bound of that radius around
// the query point. Searching that bound gives exact results however much
// degree-space distorts distances at the query latitude.
func (idx *Index) Nearest(lng, lat float64, k int) []Hit {
	if k <= 0 || idx.size == 0 {
		return nil
	}
	if k > idx.size {
		k = idx.size
	}

	origin := orb.Point{lng, lat}
	var radius float64
	for _, s := range idx.tree.NearestNeighbors(k, rtreego.Point{lng, lat}) {
		if s == nil {
			continue
		}
		radius = math.Max(radius, geo.Distance(origin, s.(*entry).point))
	}

	b := geo.NewBoundAroundPoint(origin, radius+1)
	if b.Min.Lon() > b.Max.Lon() {
		// Wrapped across the antimeridian.
		b.Min[0], b.Max[0] = -180, 180
	}

	var hits []Hit
	for _, e := range idx.search(b) {
		hits = append(hits, Hit{
			Feature: e.feature,
			Point:   e.point,
			Meters:  geo.Distance(origin, e.point),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Meters < hits[j].Meters })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Within returns the features inside b, ordered west to east.
func (idx *Index) Within(b orb.Bound) []Hit {
	if idx.size == 0 {
		return nil
	}

	var hits []Hit
	for _, e := range idx.search(b) {
		hits = append(hits, Hit{Feature: e.feature, Point: e.point})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Point.Lon() != hits[j].Point.Lon() {
			return hits[i].Point.Lon() < hits[j].Point.Lon()
		}
		return hits[i].Point.Lat() < hits[j].Point.Lat()
	})
	return hits
}

// search returns the entries whose point lies inside b.
func (idx *Index) search(b orb.Bound) []*entry {
	lengths := []float64{
		math.Max(b.Max.Lon()-b.Min.Lon(), pointTolerance),
		math.Max(b.Max.Lat()-b.Min.Lat(), pointTolerance),
	}
	query, err := rtreego.NewRect(rtreego.Point{b.Min.Lon(), b.Min.Lat()}, lengths)
	if err != nil {
		return nil
	}

	var out []*entry
	for _, s := range idx.tree.SearchIntersect(query) {
		e := s.(*entry)
		if b.Contains(e.point) {
			out = append(out, e)
		}
	}
	return out
}
