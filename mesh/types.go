// Package mesh implements the half-edge polyhedron arena of spec §3/§4.3:
// three dense companion arrays (vertices, half-edges, faces) indexed by
// integer handles, with per-element flag bytes reset at batch boundaries.
//
// Grounded on original_source/src/PPMC/mymesh.h for the attribute layout
// (MyVertex's Conquered flag and quant-cell id, MyHalfedge's queue state),
// adapted from its object-pointer half-edge representation to an arena of
// integer handles instead, per DESIGN NOTES §9: "the half-edge container
// is inherently cyclic... use an arena".
package mesh

import "github.com/tengdj/ppmc-go/geom"

// VertexID, HalfedgeID and FaceID are indices into a Mesh's companion
// arrays. NilVertex/NilHalfedge/NilFace mark the absence of a reference.
type (
	VertexID   int32
	HalfedgeID int32
	FaceID     int32
)

const (
	NilVertex   VertexID   = -1
	NilHalfedge HalfedgeID = -1
	NilFace     FaceID     = -1
)

// VertexState is the per-pass conquered/unconquered tag of spec §3.
type VertexState uint8

const (
	Unconquered VertexState = iota
	Conquered
)

// QueueState is the per-halfedge gate-queue membership tag of spec §3.
type QueueState uint8

const (
	NotYetInQueue QueueState = iota
	InQueue
	InProblematicQueue
	NoLongerInQueue
)

// HalfedgeOrigin distinguishes, per spec §3, whether a half-edge existed
// before the current batch (Original), was exposed by a hole-stitch and
// was present pre-batch (Added), or was freshly synthesized by
// undecimation and was not present pre-batch (New).
type HalfedgeOrigin uint8

const (
	Original HalfedgeOrigin = iota
	Added
	New
)

// SplitState is the per-face undecimation tag of spec §3.
type SplitState uint8

const (
	Unknown SplitState = iota
	Splittable
	Unsplittable
)

// Vertex holds the per-vertex attributes of spec §3.
type Vertex struct {
	Position    geom.Vec3
	QuantCellID uint32
	State       VertexState
	Halfedge    HalfedgeID // one half-edge whose target is this vertex
	Alive       bool
}

// Halfedge holds the per-half-edge attributes of spec §3.
type Halfedge struct {
	Vertex     VertexID // the vertex this half-edge points to (its target)
	Next       HalfedgeID
	Prev       HalfedgeID
	Opposite   HalfedgeID
	Face       FaceID
	QueueState QueueState
	Origin     HalfedgeOrigin
	Processed  bool
	Alive      bool
}

// Face holds the per-face attributes of spec §3.
type Face struct {
	Halfedge       HalfedgeID // one half-edge bounding this face
	SplitState     SplitState
	Residual       [3]int64
	Hausdorff      float64
	ProxyHausdorff float64
	ImpactPoints   []geom.Vec3
	Alive          bool
}

// Mesh is the half-edge arena: three dense companion slices indexed by
// VertexID/HalfedgeID/FaceID.
type Mesh struct {
	Vertices  []Vertex
	Halfedges []Halfedge
	Faces     []Face
}

// newMesh returns an empty mesh.
func newMesh() *Mesh {
	return &Mesh{}
}

// V, H, F return pointers to the companion-array entries for the given
// handles, for convenient field access (m.V(id).Position = ...).
func (m *Mesh) V(id VertexID) *Vertex     { return &m.Vertices[id] }
func (m *Mesh) H(id HalfedgeID) *Halfedge { return &m.Halfedges[id] }
func (m *Mesh) F(id FaceID) *Face         { return &m.Faces[id] }

// NumVertices, NumHalfedges, NumFaces count only the *alive* entries; the
// arena never compacts mid-lifecycle (spec §5: "auxiliary per-pass sets...
// released at batch boundaries", not the whole arena).
func (m *Mesh) NumVertices() int {
	n := 0
	for i := range m.Vertices {
		if m.Vertices[i].Alive {
			n++
		}
	}
	return n
}

func (m *Mesh) NumHalfedges() int {
	n := 0
	for i := range m.Halfedges {
		if m.Halfedges[i].Alive {
			n++
		}
	}
	return n
}

func (m *Mesh) NumFaces() int {
	n := 0
	for i := range m.Faces {
		if m.Faces[i].Alive {
			n++
		}
	}
	return n
}

func (m *Mesh) addVertex(p geom.Vec3) VertexID {
	id := VertexID(len(m.Vertices))
	m.Vertices = append(m.Vertices, Vertex{
		Position: p,
		Halfedge: NilHalfedge,
		Alive:    true,
	})
	return id
}

func (m *Mesh) addHalfedge() HalfedgeID {
	id := HalfedgeID(len(m.Halfedges))
	m.Halfedges = append(m.Halfedges, Halfedge{
		Vertex:   NilVertex,
		Next:     NilHalfedge,
		Prev:     NilHalfedge,
		Opposite: NilHalfedge,
		Face:     NilFace,
		Alive:    true,
	})
	return id
}

func (m *Mesh) addFace() FaceID {
	id := FaceID(len(m.Faces))
	m.Faces = append(m.Faces, Face{Halfedge: NilHalfedge, Alive: true})
	return id
}

// ResetPassFlags clears the transient per-pass flags of spec §3
// ("Flags on vertices/half-edges/faces are transient per pass and must
// be reset at batch boundaries"). It does not touch Position, Residual,
// or other persistent geometric state.
func (m *Mesh) ResetPassFlags() {
	for i := range m.Vertices {
		if m.Vertices[i].Alive {
			m.Vertices[i].State = Unconquered
		}
	}
	for i := range m.Halfedges {
		if m.Halfedges[i].Alive {
			m.Halfedges[i].QueueState = NotYetInQueue
			m.Halfedges[i].Origin = Original
			m.Halfedges[i].Processed = false
		}
	}
	for i := range m.Faces {
		if m.Faces[i].Alive {
			m.Faces[i].SplitState = Unknown
		}
	}
}

// ClearImpactAndTriangles drops the per-LOD Hausdorff scratch state of
// spec §3 ("impact_points and triangles may be cleared once Hausdorff for
// the current LOD is finalized"). Triangulation itself is never cached on
// a Face (see hausdorff.triangulate); only the impact-point set lives here.
func (m *Mesh) ClearImpactAndTriangles() {
	for i := range m.Faces {
		m.Faces[i].ImpactPoints = nil
	}
}

// Clone returns a deep copy of the mesh, used by the batch driver to
// keep the caller's input mesh untouched across repeated decimation
// passes (spec §5: "Encode must not mutate the caller's mesh").
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices:  append([]Vertex(nil), m.Vertices...),
		Halfedges: append([]Halfedge(nil), m.Halfedges...),
		Faces:     make([]Face, len(m.Faces)),
	}
	for i, f := range m.Faces {
		out.Faces[i] = f
		out.Faces[i].ImpactPoints = append([]geom.Vec3(nil), f.ImpactPoints...)
	}
	return out
}

// BoundingBox returns the box spanned by all live vertices.
func (m *Mesh) BoundingBox() geom.Box {
	box := geom.EmptyBox()
	for i := range m.Vertices {
		if m.Vertices[i].Alive {
			box = box.Extend(m.Vertices[i].Position)
		}
	}
	return box
}
