package conquest

import (
	"github.com/tengdj/ppmc-go/geom"
	"github.com/tengdj/ppmc-go/internal/quant"
	"github.com/tengdj/ppmc-go/mesh"
)

// UndecimationConquest is the decode-side mirror of DecimationConquest
// (spec §4.6): it walks the gate queue in lockstep with the encoder,
// reading one face bit per gate. A true bit means the adjacent face is
// Splittable; the decoder predicts the reinserted vertex's position the
// same way the encoder did (barycenter of the surviving 1-ring), reads
// its quantized residual, and fans a new vertex into the face via
// mesh.InsertVertexInFace.
func UndecimationConquest(m *mesh.Mesh, q *quant.Quantizer, consume Consumer) Stats {
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

		splittable := consume.FaceBit()
		if !splittable {
			m.F(f).SplitState = mesh.Unsplittable
			pushUnqueuedBoundary(m, &queue, m.FaceBoundary(f))
			continue
		}
		m.F(f).SplitState = mesh.Splittable

		predicted := predictFacePrediction(m, f)
		cellID := quantCellContext(q, predicted)
		residual := consume.Residual(cellID)
		pos := q.DecodeResidual(predicted, residual)

		v, _, boundary, err := m.InsertVertexInFace(h, pos)
		if err != nil {
			m.F(f).SplitState = mesh.Unsplittable
			continue
		}
		m.V(v).QuantCellID = cellID
		stats.RemovedVertices++
		stats.SplitBoundaries = append(stats.SplitBoundaries, boundary)

		// The fan's faces were one merged face on the encoder side, which
		// decided it once; mark them decided and continue from the same
		// boundary the encoder pushed.
		for _, b := range boundary {
			m.F(m.FaceOf(b)).SplitState = mesh.Splittable
		}
		pushUnqueuedBoundary(m, &queue, boundary)
	}
	return stats
}

// predictFacePrediction recomputes the same barycenter predictor
// DecimationConquest used, but from the decoder's vantage point: the
// reinserted vertex is not yet in the mesh, so the predictor is the
// barycenter of the face's current boundary ring (which, before
// insertion, is exactly that vertex's former 1-ring, per VertexCut's
// construction).
func predictFacePrediction(m *mesh.Mesh, f mesh.FaceID) geom.Vec3 {
	verts := m.FaceVertices(f)
	sum := geom.Vec3{}
	for _, v := range verts {
		sum = sum.Add(m.V(v).Position)
	}
	if len(verts) == 0 {
		return sum
	}
	return sum.Scale(1.0 / float64(len(verts)))
}
