package mesh

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tengdj/ppmc-go/geom"
)

// ErrInvalidMesh is returned by Builder.Finish and Validate when the
// input does not describe a closed, 2-manifold, single-component
// polyhedron (spec P1, error taxonomy "InvalidMesh").
var ErrInvalidMesh = errors.New("mesh: invalid mesh")

type edgeKey struct {
	from, to VertexID
}

// Builder assembles a Mesh from a vertex list and a sequence of facets
// (CCW vertex-index loops), mirroring CGAL's Polyhedron_incremental_builder
// used by the facet-sequence ingestion path described in spec §4.3/§6.
// Built the same way other half-edge mesh constructors in the wild do:
// collect vertices, then for each facet walk consecutive index pairs
// creating or pairing half-edges.
type Builder struct {
	mesh  *Mesh
	edges map[edgeKey]HalfedgeID
	err   error
}

// NewBuilder begins assembling a mesh with the given vertex positions
// already placed.
func NewBuilder(vertices []geom.Vec3) *Builder {
	m := newMesh()
	for _, p := range vertices {
		m.addVertex(p)
	}
	return &Builder{mesh: m, edges: make(map[edgeKey]HalfedgeID)}
}

// AddFacet appends one face bounded by the given CCW vertex indices (each
// an index into the vertex slice passed to NewBuilder). Degenerate facets
// (fewer than 3 distinct vertices) are rejected.
func (b *Builder) AddFacet(idx []int) {
	if b.err != nil {
		return
	}
	if len(idx) < 3 {
		b.err = errors.Wrapf(ErrInvalidMesh, "facet has %d vertices, need >= 3", len(idx))
		return
	}
	distinct := make(map[int]bool, len(idx))
	for _, i := range idx {
		distinct[i] = true
	}
	if len(distinct) < 3 {
		b.err = errors.Wrapf(ErrInvalidMesh, "facet has %d distinct vertices, need >= 3", len(distinct))
		return
	}
	f := b.mesh.addFace()
	n := len(idx)
	hs := make([]HalfedgeID, n)
	for i := range idx {
		hs[i] = b.mesh.addHalfedge()
	}
	for i := 0; i < n; i++ {
		from := VertexID(idx[i])
		to := VertexID(idx[(i+1)%n])
		if int(from) >= len(b.mesh.Vertices) || int(to) >= len(b.mesh.Vertices) || from < 0 || to < 0 {
			b.err = errors.Wrapf(ErrInvalidMesh, "facet references out-of-range vertex index")
			return
		}
		h := hs[i]
		he := &b.mesh.Halfedges[h]
		he.Vertex = to
		he.Face = f
		he.Next = hs[(i+1)%n]
		he.Prev = hs[(i-1+n)%n]
		b.mesh.Vertices[to].Halfedge = h

		key := edgeKey{from: from, to: to}
		if _, dup := b.edges[key]; dup {
			b.err = errors.Wrapf(ErrInvalidMesh, "duplicate directed edge %d->%d: non-manifold or inconsistent orientation", from, to)
			return
		}
		b.edges[key] = h

		opKey := edgeKey{from: to, to: from}
		if opID, ok := b.edges[opKey]; ok {
			he.Opposite = opID
			b.mesh.Halfedges[opID].Opposite = h
		}
	}
	b.mesh.Faces[f].Halfedge = hs[n-1]
}

// Finish validates full opposite-pairing (every half-edge has a twin,
// i.e. the surface is closed) and manifold connectivity, returning the
// assembled Mesh.
func (b *Builder) Finish() (*Mesh, error) {
	if b.err != nil {
		return nil, b.err
	}
	for i := range b.mesh.Halfedges {
		if b.mesh.Halfedges[i].Opposite == NilHalfedge {
			return nil, errors.Wrapf(ErrInvalidMesh, "half-edge %d has no opposite: mesh is not closed", i)
		}
	}
	if err := b.mesh.Validate(); err != nil {
		return nil, err
	}
	return b.mesh, nil
}

func (e edgeKey) String() string { return fmt.Sprintf("%d->%d", e.from, e.to) }
