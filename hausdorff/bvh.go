// Package hausdorff computes the two-sided Hausdorff distance bound
// between a decimated mesh level and the original fine mesh (spec §4.7):
// forward distance (approx -> original, via a BVH over the original's
// triangles) and proxy distance (original -> approx, via a BVH over the
// approximation's triangles).
//
// Grounded on original_source/src/spatial/himesh_hausdorff.cpp, which
// builds exactly this pair of bounding-volume trees and walks
// per-face/per-impact-point nearest-facet queries; the BVH here is a
// plain median-split binary tree over triangle bounding-box centers, matching that
// file's own box-splitting strategy rather than reaching for an external
// spatial-index library (no R-tree/k-d tree package appears anywhere in
// the retrieved corpus — see DESIGN.md).
package hausdorff

import (
	"math"
	"sort"

	"github.com/tengdj/ppmc-go/geom"
)

// BVH is a median-split bounding volume hierarchy over a fixed set of
// triangles, supporting nearest-point queries.
type BVH struct {
	tris  []geom.Triangle
	boxes []geom.Box
	root  *bvhNode
}

type bvhNode struct {
	box         geom.Box
	left, right *bvhNode
	leafIdx     []int // valid only on leaves
}

// NewBVH builds a tree over tris. An empty slice yields a BVH that
// reports +Inf for every nearest-point query.
func NewBVH(tris []geom.Triangle) *BVH {
	b := &BVH{tris: tris}
	boxes := make([]geom.Box, len(tris))
	idx := make([]int, len(tris))
	for i, tr := range tris {
		box := geom.EmptyBox()
		for _, p := range tr {
			box = box.Extend(p)
		}
		boxes[i] = box
		idx[i] = i
	}
	b.boxes = boxes
	b.root = build(tris, boxes, idx)
	return b
}

const leafSize = 4

func build(tris []geom.Triangle, boxes []geom.Box, idx []int) *bvhNode {
	if len(idx) == 0 {
		return nil
	}
	box := geom.EmptyBox()
	for _, i := range idx {
		box = box.Union(boxes[i])
	}
	if len(idx) <= leafSize {
		return &bvhNode{box: box, leafIdx: idx}
	}
	axis := box.LongestAxis()
	sort.Slice(idx, func(a, c int) bool {
		ca := boxes[idx[a]].Center()
		cc := boxes[idx[c]].Center()
		return axisOf(ca, axis) < axisOf(cc, axis)
	})
	mid := len(idx) / 2
	left := build(tris, boxes, append([]int{}, idx[:mid]...))
	right := build(tris, boxes, append([]int{}, idx[mid:]...))
	return &bvhNode{box: box, left: left, right: right}
}

func axisOf(v geom.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// NearestPoint returns the closest point on any triangle in the BVH to
// p, and the squared distance to it.
func (b *BVH) NearestPoint(p geom.Vec3) (geom.Vec3, float64) {
	if b.root == nil {
		return p, math.Inf(1)
	}
	best := geom.Vec3{}
	bestD := math.Inf(1)
	b.search(b.root, p, &best, &bestD)
	return best, bestD
}

func (b *BVH) search(n *bvhNode, p geom.Vec3, best *geom.Vec3, bestD *float64) {
	if n == nil {
		return
	}
	if n.box.SquaredDistance(p) >= *bestD {
		return
	}
	if n.leafIdx != nil {
		for _, i := range n.leafIdx {
			cp := b.tris[i].ClosestPoint(p)
			d := cp.Sub(p).LengthSquared()
			if d < *bestD {
				*bestD = d
				*best = cp
			}
		}
		return
	}
	b.search(n.left, p, best, bestD)
	b.search(n.right, p, best, bestD)
}
