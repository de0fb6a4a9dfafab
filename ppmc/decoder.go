package ppmc

import (
	"bytes"
	"math"

	"github.com/pkg/errors"
	"github.com/tengdj/ppmc-go/conquest"
	"github.com/tengdj/ppmc-go/geom"
	"github.com/tengdj/ppmc-go/hausdorff"
	"github.com/tengdj/ppmc-go/internal/quant"
	"github.com/tengdj/ppmc-go/mesh"
)

// Decoder holds one in-progress progressive decode (spec §6): a mesh
// that starts at the coarsest (base) LOD and can be advanced towards the
// finest LOD one batch at a time.
type Decoder struct {
	mesh     *mesh.Mesh
	quant    *quant.Quantizer
	batches  []batchRecord
	applied  int
	adaptive bool
}

// Open parses blob's header and base mesh, returning a Decoder positioned
// at the coarsest LOD (0% refined). It does not apply any batch; call
// AdvanceTo to refine.
func Open(blob []byte) (*Decoder, error) {
	r := bytes.NewReader(blob)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	m, err := readMesh(r)
	if err != nil {
		return nil, err
	}
	batches := make([]batchRecord, 0, h.NumBatches)
	for i := uint32(0); i < h.NumBatches; i++ {
		b, err := readBatch(r)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}

	bbox := geom.Box{
		Min: geom.Vec3{X: h.BBoxMin[0], Y: h.BBoxMin[1], Z: h.BBoxMin[2]},
		Max: geom.Vec3{X: h.BBoxMax[0], Y: h.BBoxMax[1], Z: h.BBoxMax[2]},
	}
	q := quant.New(bbox, uint32(h.QuantBits))

	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidMesh, err.Error())
	}

	return &Decoder{mesh: m, quant: q, batches: batches, adaptive: h.AdaptiveQuant != 0}, nil
}

// AdvanceTo refines the decoded mesh until floor(pct/100 * len(batches))
// batches have been applied, clamped to [0,100]. Calling it repeatedly
// with non-decreasing percentages only ever applies the delta (L2: it is
// never necessary, nor possible, to go backward).
func (d *Decoder) AdvanceTo(pct int) error {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	target := (len(d.batches) * pct) / 100
	for d.applied < target {
		rec := d.batches[d.applied]
		consume := newBatchConsumer(rec.blob, d.adaptive)
		stats := conquest.UndecimationConquest(d.mesh, d.quant, consume)
		conquest.InsertedEdgeDecoding(d.mesh, stats.SplitBoundaries, consume)
		if consume.err != nil {
			return errors.Wrap(ErrCorruptedStream, consume.err.Error())
		}
		d.mesh.ResetPassFlags()
		if err := d.mesh.Validate(); err != nil {
			return errors.Wrap(ErrPredicateFailure, err.Error())
		}
		d.applied++
	}
	return nil
}

// Vertices returns the positions of every currently-live vertex, in
// arena order.
func (d *Decoder) Vertices() []geom.Vec3 {
	out := make([]geom.Vec3, 0, d.mesh.NumVertices())
	for i := range d.mesh.Vertices {
		if d.mesh.Vertices[i].Alive {
			out = append(out, d.mesh.Vertices[i].Position)
		}
	}
	return out
}

// Faces returns the vertex-index loops of every currently-live face, with
// vertex indices dense-remapped to [0, NumVertices).
func (d *Decoder) Faces() [][]int {
	remap := make(map[mesh.VertexID]int, d.mesh.NumVertices())
	n := 0
	for i := range d.mesh.Vertices {
		if d.mesh.Vertices[i].Alive {
			remap[mesh.VertexID(i)] = n
			n++
		}
	}
	var out [][]int
	for f := range d.mesh.Faces {
		if !d.mesh.Faces[f].Alive {
			continue
		}
		verts := d.mesh.FaceVertices(mesh.FaceID(f))
		row := make([]int, len(verts))
		for i, v := range verts {
			row[i] = remap[v]
		}
		out = append(out, row)
	}
	return out
}

// Hausdorff returns the forward Hausdorff distance bound (approx ->
// original) recorded for the current LOD, i.e. for the next batch not yet
// applied, or 0 at full detail.
func (d *Decoder) Hausdorff() float64 {
	if d.applied >= len(d.batches) {
		return 0
	}
	return d.batches[d.applied].forward
}

// ProxyHausdorff returns the proxy Hausdorff distance bound (original ->
// approx) recorded for the current LOD, i.e. for the next batch not yet
// applied, or 0 at full detail.
func (d *Decoder) ProxyHausdorff() float64 {
	if d.applied >= len(d.batches) {
		return 0
	}
	return d.batches[d.applied].proxy
}

// MaxCut resolves spec §9's Open Question on max_cut/prev_max_cut
// accounting: the maximum forward Hausdorff bound across the current LOD
// and every finer LOD not yet applied, i.e. the worst-case error a
// consumer could still see if it does not advance further (see
// DESIGN.md).
func (d *Decoder) MaxCut() float64 {
	max := 0.0
	for i := d.applied; i < len(d.batches); i++ {
		if d.batches[i].forward > max {
			max = d.batches[i].forward
		}
	}
	return max
}

// BoundingBox returns the mesh's original bounding box (fixed at encode
// time, unaffected by refinement level).
func (d *Decoder) BoundingBox() geom.Box {
	return d.quant.BBox
}

// DistanceRange implements spec §6's query-engine primitive: `max` is the
// actual distance between a's and b's current-LOD approximations, and
// `min` backs it off by both decoders' worst-case remaining error
// (a.MaxCut() + b.MaxCut(), per P4 bound soundness), floored at 0. This
// lets a spatial query engine prune/accept against the true distance
// between the two original surfaces without fully refining either side.
func DistanceRange(a, b *Decoder) (min, max float64) {
	max = currentLODDistance(a, b)
	min = max - a.MaxCut() - b.MaxCut()
	if min < 0 {
		min = 0
	}
	return min, max
}

// currentLODDistance measures the closest-point distance between a's
// live vertices and a BVH over b's current (fan-triangulated) faces,
// using the same triangle/BVH primitives the hausdorff package builds
// the forward/proxy bounds from (spec §6: "AABB-tree with
// closest_point_and_primitive and squared_distance").
func currentLODDistance(a, b *Decoder) float64 {
	bTris := fanTriangulate(b)
	if len(bTris) == 0 {
		return 0
	}
	bvh := hausdorff.NewBVH(bTris)
	best := math.MaxFloat64
	for _, p := range a.Vertices() {
		_, d := bvh.NearestPoint(p)
		if d < best {
			best = d
		}
	}
	if best == math.MaxFloat64 {
		return 0
	}
	return math.Sqrt(best)
}

// fanTriangulate turns d's current face loops into a flat triangle list
// by fanning each polygon from its first vertex, matching the
// hausdorff package's own per-face fan convention.
func fanTriangulate(d *Decoder) []geom.Triangle {
	verts := d.Vertices()
	var tris []geom.Triangle
	for _, face := range d.Faces() {
		for i := 1; i+1 < len(face); i++ {
			tris = append(tris, geom.Triangle{verts[face[0]], verts[face[i]], verts[face[i+1]]})
		}
	}
	return tris
}
