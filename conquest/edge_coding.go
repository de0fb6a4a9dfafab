package conquest

import "github.com/tengdj/ppmc-go/mesh"

// InsertedEdgeCoding implements spec §4.5: a second pass over the
// boundary of every face this batch's decimation conquest merged,
// emitting one connectivity bit per boundary half-edge. A half-edge is
// coded Added when its opposite also borders a merged face from the same
// batch — meaning the shared edge separates two independent vertex
// removals that left no unremoved vertex between their merged regions —
// and Original otherwise.
//
// This distinction exists because, unlike a simple triangle mesh, the
// pre-batch mesh may already hold polygonal faces whose vertices are not
// pairwise adjacent; two independently-removable vertices can then sit on
// adjacent faces without violating the independent-set constraint, and
// undecimation needs a marker for the edge where their two merged regions
// meet, so it can be re-fused into the single polygon the encoder saw at
// this batch. No defining body for encodeInsertedEdges survived in
// original_source (only its declaration in mymesh.h), so this is this
// repository's own resolution — see DESIGN.md.
func InsertedEdgeCoding(m *mesh.Mesh, splits [][]mesh.HalfedgeID, emit Emitter) {
	splitFace := make(map[mesh.FaceID]bool, len(splits))
	for _, bd := range splits {
		if len(bd) > 0 {
			splitFace[m.FaceOf(bd[0])] = true
		}
	}
	for _, bd := range splits {
		for _, h := range bd {
			if m.H(h).Processed {
				continue
			}
			m.H(h).Processed = true
			opp := m.Opposite(h)
			m.H(opp).Processed = true
			added := splitFace[m.FaceOf(opp)]
			if added {
				m.H(h).Origin = mesh.Added
				m.H(opp).Origin = mesh.Added
			} else {
				m.H(h).Origin = mesh.Original
			}
			emit.EdgeBit(!added)
		}
	}
}

// InsertedEdgeDecoding mirrors InsertedEdgeCoding on the decode side: it
// consumes one connectivity bit per boundary half-edge recorded in
// splits (the same half-edges, in the same order, that InsertedEdgeCoding
// walked, regardless of how many triangles UndecimationConquest has since
// fanned each split face into). Per spec §4.6, every half-edge the stream
// marks Added is then structurally removed: mesh.MergeAcrossEdge fuses
// the two triangular faces on either side back into the single merged
// polygon the encoder held at this batch, before that polygon can itself
// be further undone by an earlier (coarser) batch.
func InsertedEdgeDecoding(m *mesh.Mesh, splits [][]mesh.HalfedgeID, consume Consumer) {
	var added []mesh.HalfedgeID
	for _, bd := range splits {
		for _, h := range bd {
			if m.H(h).Processed {
				continue
			}
			m.H(h).Processed = true
			opp := m.Opposite(h)
			m.H(opp).Processed = true
			original := consume.EdgeBit()
			if original {
				m.H(h).Origin = mesh.Original
			} else {
				m.H(h).Origin = mesh.Added
				m.H(opp).Origin = mesh.Added
				added = append(added, h)
			}
		}
	}
	for _, h := range added {
		if !m.H(h).Alive {
			continue
		}
		m.MergeAcrossEdge(h)
	}
}
