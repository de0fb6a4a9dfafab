package mesh

// Next/Prev/Opposite/FaceOf/Target are thin accessors kept separate from
// the arena so call sites read like CGAL's half-edge navigation
// (h.Next().Opposite()...), matching the traversal idiom used throughout
// original_source/src/PPMC/mymesh.h.

func (m *Mesh) Next(h HalfedgeID) HalfedgeID     { return m.Halfedges[h].Next }
func (m *Mesh) Prev(h HalfedgeID) HalfedgeID     { return m.Halfedges[h].Prev }
func (m *Mesh) Opposite(h HalfedgeID) HalfedgeID { return m.Halfedges[h].Opposite }
func (m *Mesh) FaceOf(h HalfedgeID) FaceID       { return m.Halfedges[h].Face }
func (m *Mesh) Target(h HalfedgeID) VertexID { return m.Halfedges[h].Vertex }

// Source returns the vertex a half-edge points away from: the target of
// its predecessor around the same face.
func (m *Mesh) Source(h HalfedgeID) VertexID {
	return m.Halfedges[m.Halfedges[h].Prev].Vertex
}

// Degree returns the number of vertices bounding face f, by walking its
// boundary cycle once.
func (m *Mesh) Degree(f FaceID) int {
	start := m.Faces[f].Halfedge
	n := 0
	h := start
	for {
		n++
		h = m.Halfedges[h].Next
		if h == start {
			break
		}
	}
	return n
}

// FaceBoundary returns the ordered list of half-edges bounding face f,
// starting at f's canonical reference half-edge.
func (m *Mesh) FaceBoundary(f FaceID) []HalfedgeID {
	start := m.Faces[f].Halfedge
	var out []HalfedgeID
	h := start
	for {
		out = append(out, h)
		h = m.Halfedges[h].Next
		if h == start {
			break
		}
	}
	return out
}

// FaceVertices returns the ordered vertex ring bounding face f (the
// target vertex of each boundary half-edge).
func (m *Mesh) FaceVertices(f FaceID) []VertexID {
	bd := m.FaceBoundary(f)
	out := make([]VertexID, len(bd))
	for i, h := range bd {
		out[i] = m.Halfedges[h].Vertex
	}
	return out
}

// IncomingHalfedges returns, in CCW order starting at seed, every
// half-edge whose target is v. seed must itself target v.
func (m *Mesh) IncomingHalfedges(seed HalfedgeID) []HalfedgeID {
	v := m.Halfedges[seed].Vertex
	var out []HalfedgeID
	h := seed
	for {
		out = append(out, h)
		h = m.Halfedges[m.Halfedges[h].Next].Opposite
		if h == seed {
			break
		}
		if m.Halfedges[h].Vertex != v {
			// Non-manifold fan; stop rather than loop forever.
			break
		}
	}
	return out
}

// VertexDegree counts the incoming half-edges around v (equivalently its
// incident-face count).
func (m *Mesh) VertexDegree(v VertexID) int {
	seed := m.Vertices[v].Halfedge
	if seed == NilHalfedge {
		return 0
	}
	return len(m.IncomingHalfedges(seed))
}
