// Package conquest implements the decimation and undecimation conquest
// passes of spec §4.4, §4.5, §4.6: a breadth-first walk over the mesh's
// half-edges, driven by an explicit FIFO gate queue (never a hash set,
// for cross-platform determinism, per DESIGN NOTES §9), that removes or
// reinserts one independent set of vertices per batch.
//
// Grounded on the decimationStep/undecimationStep/RemovedVertexCodingStep
// state machine declared in original_source/src/PPMC/mymesh.h. The
// symbol-level details (exactly which bits/residuals get coded) are
// pushed through the Emitter/Consumer interfaces so this package stays
// free of any range-coder or byte-layout dependency; the ppmc root
// package supplies the concrete implementations backed by
// internal/rangecoder.
package conquest

import (
	"github.com/tengdj/ppmc-go/geom"
	"github.com/tengdj/ppmc-go/internal/quant"
	"github.com/tengdj/ppmc-go/mesh"
)

// Emitter receives the symbol stream produced by DecimationConquest and
// InsertedEdgeCoding, in traversal order. The ppmc package's encoder
// backs this with one rangecoder.Model per symbol class (spec §4.1's
// "prevent cross-contamination" guidance).
type Emitter interface {
	FaceBit(splittable bool)
	EdgeBit(original bool)
	Residual(r [3]int64, quantCellID uint32)
}

// Consumer is the decode-side mirror of Emitter.
type Consumer interface {
	FaceBit() bool
	EdgeBit() bool
	Residual(quantCellID uint32) [3]int64
}

// quantCellContext derives the small context tag spec §3/§6's
// AdaptiveQuant option feeds into the residual model (the predicted
// position's lattice cell parity along the X and Y axes, packed into 2
// bits).
// Both DecimationConquest and UndecimationConquest compute it from the
// predicted position alone, so encoder and decoder always agree without
// needing to transmit it.
func quantCellContext(q *quant.Quantizer, predicted geom.Vec3) uint32 {
	cell := q.Encode(predicted)
	return uint32(cell[0]&1)<<1 | uint32(cell[1]&1)
}

// Stats summarizes one decimation or undecimation pass: how many vertices
// it removed (or reinserted) and the merged-face boundaries that
// inserted-edge coding walks afterwards.
type Stats struct {
	RemovedVertices int
	// SplitBoundaries holds, per removed vertex (in conquest order), the
	// ordered half-edges bounding the resulting merged face — exactly the
	// edges inserted-edge coding (§4.5) walks. DecimationConquest records
	// the merged face's boundary as returned by mesh.VertexCut;
	// UndecimationConquest records the same k edges as returned by
	// mesh.InsertVertexInFace, so both sides iterate identical half-edge
	// sequences in identical order regardless of how many triangular
	// faces the decode side has since fanned that polygon into.
	SplitBoundaries [][]mesh.HalfedgeID
}

// DecimationConquest performs one independent-set vertex removal pass
// over m (spec §4.4). It seeds the gate queue from the first live
// half-edge (a fixed, deterministic seed, not best-first scored) and
// walks faces, not vertices: each popped gate's incident face is decided
// exactly once (mirroring UndecimationConquest's per-face dedup), so
// exactly one face bit is emitted per traversed face, as §4.4's
// "Termination" clause requires. A face is decided by looking at its
// gate's target vertex v: if v is already Conquered the face is
// Unsplittable outright; otherwise v's removability is tested via this
// gate, and on success the vertex cut reuses this face's slot as the
// merged polygon. Geometry residuals (actual minus predicted quantized
// position, predicted as the barycenter of the vertex's former 1-ring)
// are quantized through q and emitted inline with the face bit that
// announces a cut, per spec §4.4's requirement that "the residual for
// the removed vertex is coded immediately after its face bit".
func DecimationConquest(m *mesh.Mesh, q *quant.Quantizer, emit Emitter) Stats {
	stats := Stats{}
	if m.NumHalfedges() == 0 {
		return stats
	}

	var seed mesh.HalfedgeID = -1
	for i := range m.Halfedges {
		if m.Halfedges[i].Alive {
			seed = mesh.HalfedgeID(i)
			break
		}
	}
	if seed == -1 {
		return stats
	}

	queue := []mesh.HalfedgeID{seed}
	m.H(seed).QueueState = mesh.InQueue

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		he := m.H(h)
		if !he.Alive {
			continue
		}
		he.QueueState = mesh.NoLongerInQueue
		f := he.Face
		if m.F(f).SplitState != mesh.Unknown {
			continue
		}
		v := he.Vertex

		if m.V(v).State == mesh.Conquered {
			emit.FaceBit(false)
			m.F(f).SplitState = mesh.Unsplittable
			pushUnqueuedBoundary(m, &queue, m.FaceBoundary(f))
			continue
		}

		if !removable(m, q, h) {
			m.V(v).State = mesh.Conquered
			emit.FaceBit(false)
			m.F(f).SplitState = mesh.Unsplittable
			pushUnqueuedBoundary(m, &queue, m.FaceBoundary(f))
			continue
		}

		predicted := predictPosition(m, v)
		actual := m.V(v).Position

		newFace, boundary, err := m.VertexCut(h)
		if err != nil {
			m.V(v).State = mesh.Conquered
			emit.FaceBit(false)
			m.F(f).SplitState = mesh.Unsplittable
			pushUnqueuedBoundary(m, &queue, m.FaceBoundary(f))
			continue
		}

		m.V(v).State = mesh.Conquered
		emit.FaceBit(true)
		residual := q.EncodeResidual(actual, predicted)
		cellID := quantCellContext(q, predicted)
		m.V(v).QuantCellID = cellID
		emit.Residual(residual, cellID)
		m.F(newFace).Residual = residual

		stats.RemovedVertices++
		stats.SplitBoundaries = append(stats.SplitBoundaries, boundary)

		pushUnqueuedBoundary(m, &queue, boundary)
	}
	return stats
}

// predictPosition computes the barycenter of v's 1-ring, the predictor
// spec §4.4 calls for ("predicted position: barycenter of the 1-ring
// before removal").
func predictPosition(m *mesh.Mesh, v mesh.VertexID) geom.Vec3 {
	seed := m.V(v).Halfedge
	if seed == mesh.NilHalfedge {
		return m.V(v).Position
	}
	ring := m.IncomingHalfedges(seed)
	sum := geom.Vec3{}
	for _, h := range ring {
		src := m.Source(h)
		sum = sum.Add(m.V(src).Position)
	}
	if len(ring) == 0 {
		return m.V(v).Position
	}
	return sum.Scale(1.0 / float64(len(ring)))
}

// removable implements the §4.4 removability predicate: v =
// h.Vertex() may be cut iff it has degree in [3,12], none of its
// neighbors are already Conquered (independent-set constraint), every
// neighbor has degree above 3 (so none drops below degree 3 after the
// cut, which would leave a non-manifold merge), and the 1-ring is planar
// within the quantizer's Epsilon. Simplicity and convexity of the merged
// polygon are not tested.
func removable(m *mesh.Mesh, q *quant.Quantizer, gate mesh.HalfedgeID) bool {
	v := m.H(gate).Vertex
	deg := m.VertexDegree(v)
	if deg < 3 || deg > 12 {
		return false
	}
	ring := m.IncomingHalfedges(gate)
	for _, h := range ring {
		src := m.Source(h)
		if m.V(src).State == mesh.Conquered {
			return false
		}
		if m.VertexDegree(src) <= 3 {
			return false
		}
	}
	// Planarity guard (spec §9 design notes: reject a cut whose hole is
	// too non-planar, to keep the coarser mesh's fan triangulation
	// well-behaved and its Hausdorff bound tractable).
	poly := make([]geom.Vec3, 0, len(ring))
	for _, h := range ring {
		poly = append(poly, m.V(m.Source(h)).Position)
	}
	if !geom.IsPlanar(poly, q.Epsilon()) {
		return false
	}
	return true
}

func pushUnqueuedBoundary(m *mesh.Mesh, queue *[]mesh.HalfedgeID, boundary []mesh.HalfedgeID) {
	for _, h := range boundary {
		if m.H(h).QueueState == mesh.NotYetInQueue {
			m.H(h).QueueState = mesh.InQueue
			*queue = append(*queue, h)
			m.H(h).Origin = mesh.Added
		}
	}
}
