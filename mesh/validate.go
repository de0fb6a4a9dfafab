package mesh

import "github.com/pkg/errors"

// ErrPredicateFailure is returned when a decimation/undecimation
// operation is attempted against a mesh element that does not satisfy
// its precondition (spec error taxonomy "PredicateFailure": e.g. removing
// a vertex of degree < 3, or splitting a non-Splittable face).
var ErrPredicateFailure = errors.New("mesh: predicate failure")

// Validate checks the P1 invariant: the mesh is a closed, 2-manifold,
// single-component polyhedron. It is callable at any point, not just
// after Builder.Finish, since VertexCut/InsertVertexInFace must preserve
// the same invariant on every mutation.
func (m *Mesh) Validate() error {
	if m.NumVertices() == 0 || m.NumFaces() == 0 {
		return errors.Wrapf(ErrInvalidMesh, "empty mesh")
	}

	for h := range m.Halfedges {
		he := &m.Halfedges[h]
		if !he.Alive {
			continue
		}
		if he.Opposite == NilHalfedge {
			return errors.Wrapf(ErrInvalidMesh, "half-edge %d has no opposite: mesh is not closed", h)
		}
		if m.Halfedges[he.Opposite].Opposite != HalfedgeID(h) {
			return errors.Wrapf(ErrInvalidMesh, "half-edge %d and its opposite %d do not pair symmetrically", h, he.Opposite)
		}
		if he.Next == NilHalfedge || he.Prev == NilHalfedge {
			return errors.Wrapf(ErrInvalidMesh, "half-edge %d missing next/prev", h)
		}
		if m.Halfedges[he.Next].Prev != HalfedgeID(h) {
			return errors.Wrapf(ErrInvalidMesh, "half-edge %d's next does not point back via prev", h)
		}
		if he.Face == NilFace || !m.Faces[he.Face].Alive {
			return errors.Wrapf(ErrInvalidMesh, "half-edge %d has no live face", h)
		}
	}

	for f := range m.Faces {
		if !m.Faces[f].Alive {
			continue
		}
		if m.Degree(FaceID(f)) < 3 {
			return errors.Wrapf(ErrInvalidMesh, "face %d has fewer than 3 sides", f)
		}
	}

	for v := range m.Vertices {
		if !m.Vertices[v].Alive {
			continue
		}
		if m.Vertices[v].Halfedge == NilHalfedge {
			return errors.Wrapf(ErrInvalidMesh, "vertex %d has no incident half-edge", v)
		}
		if m.VertexDegree(VertexID(v)) < 3 {
			return errors.Wrapf(ErrInvalidMesh, "vertex %d has degree < 3", v)
		}
	}

	if !m.singleComponent() {
		return errors.Wrapf(ErrInvalidMesh, "mesh has more than one connected component")
	}
	return nil
}

// singleComponent runs a BFS over the face-adjacency graph (faces sharing
// a half-edge/opposite pair are adjacent) and checks every live face is
// reached.
func (m *Mesh) singleComponent() bool {
	var start FaceID = NilFace
	total := 0
	for f := range m.Faces {
		if m.Faces[f].Alive {
			total++
			if start == NilFace {
				start = FaceID(f)
			}
		}
	}
	if start == NilFace {
		return false
	}
	seen := make(map[FaceID]bool, total)
	queue := []FaceID{start}
	seen[start] = true
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, h := range m.FaceBoundary(f) {
			nf := m.Halfedges[m.Halfedges[h].Opposite].Face
			if !seen[nf] {
				seen[nf] = true
				queue = append(queue, nf)
			}
		}
	}
	return len(seen) == total
}
