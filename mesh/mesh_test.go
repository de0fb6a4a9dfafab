package mesh_test

import (
	"strings"
	"testing"

	"github.com/tengdj/ppmc-go/geom"
	"github.com/tengdj/ppmc-go/mesh"
)

func tetrahedronOFF() string {
	return `OFF
4 4 0
0 0 0
1 0 0
0 1 0
0 0 1
3 0 2 1
3 0 1 3
3 0 3 2
3 1 2 3
`
}

func cubeOFF() string {
	// Axis-aligned unit cube, outward-facing CCW triangulated faces.
	return `OFF
8 12 0
0 0 0
1 0 0
1 1 0
0 1 0
0 0 1
1 0 1
1 1 1
0 1 1
3 0 3 2
3 0 2 1
3 4 5 6
3 4 6 7
3 0 1 5
3 0 5 4
3 1 2 6
3 1 6 5
3 2 3 7
3 2 7 6
3 3 0 4
3 3 4 7
`
}

func TestReadOFFTetrahedron(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(tetrahedronOFF()))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	if m.NumVertices() != 4 {
		t.Errorf("NumVertices() = %d, want 4", m.NumVertices())
	}
	if m.NumFaces() != 4 {
		t.Errorf("NumFaces() = %d, want 4", m.NumFaces())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate(): %v", err)
	}
}

func TestReadOFFCubeRoundTrip(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(cubeOFF()))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate(): %v", err)
	}

	var buf strings.Builder
	if err := m.WriteOFF(&buf); err != nil {
		t.Fatalf("WriteOFF: %v", err)
	}

	m2, err := mesh.ReadOFF(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadOFF(WriteOFF output): %v", err)
	}
	if err := m2.Validate(); err != nil {
		t.Errorf("Validate() after round trip: %v", err)
	}
	if m2.NumVertices() != m.NumVertices() || m2.NumFaces() != m.NumFaces() {
		t.Errorf("round trip changed counts: verts %d->%d, faces %d->%d",
			m.NumVertices(), m2.NumVertices(), m.NumFaces(), m2.NumFaces())
	}
}

func TestReadOFFTwoDisjointCubesRejected(t *testing.T) {
	// Two disjoint unit cubes concatenated: a single connected-component
	// violation (P1), exercised as one of the required test scenarios.
	off := `OFF
16 24 0
0 0 0
1 0 0
1 1 0
0 1 0
0 0 1
1 0 1
1 1 1
0 1 1
10 0 0
11 0 0
11 1 0
10 1 0
10 0 1
11 0 1
11 1 1
10 1 1
3 0 3 2
3 0 2 1
3 4 5 6
3 4 6 7
3 0 1 5
3 0 5 4
3 1 2 6
3 1 6 5
3 2 3 7
3 2 7 6
3 3 0 4
3 3 4 7
3 8 11 10
3 8 10 9
3 12 13 14
3 12 14 15
3 8 9 13
3 8 13 12
3 9 10 14
3 9 14 13
3 10 11 15
3 10 15 14
3 11 8 12
3 11 12 15
`
	_, err := mesh.ReadOFF(strings.NewReader(off))
	if err == nil {
		t.Fatal("expected error for two disjoint components, got nil")
	}
}

func TestReadOFFMissingFaceRejected(t *testing.T) {
	// Cube with one face dropped: a boundary half-edge has no opposite.
	off := `OFF
8 11 0
0 0 0
1 0 0
1 1 0
0 1 0
0 0 1
1 0 1
1 1 1
0 1 1
3 0 3 2
3 0 2 1
3 4 5 6
3 4 6 7
3 0 1 5
3 0 5 4
3 1 2 6
3 1 6 5
3 2 3 7
3 2 7 6
3 3 0 4
`
	_, err := mesh.ReadOFF(strings.NewReader(off))
	if err == nil {
		t.Fatal("expected error for a non-closed mesh, got nil")
	}
}

func TestVertexCutAndInsertRoundTrip(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(cubeOFF()))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}

	// Pick a vertex of degree 4 (the triangulated cube's corners have
	// degree 4 or 5) and cut it.
	var target mesh.VertexID = -1
	for v := 0; v < len(m.Vertices); v++ {
		if m.Vertices[v].Alive && m.VertexDegree(mesh.VertexID(v)) == 4 {
			target = mesh.VertexID(v)
			break
		}
	}
	if target == -1 {
		t.Fatal("no degree-4 vertex found in test cube")
	}
	gate := m.Vertices[target].Halfedge
	removedPos := m.Vertices[target].Position

	newFace, boundary, err := m.VertexCut(gate)
	if err != nil {
		t.Fatalf("VertexCut: %v", err)
	}
	if len(boundary) != 4 {
		t.Errorf("merged boundary length = %d, want 4 for a degree-4 corner", len(boundary))
	}
	if m.Vertices[target].Alive {
		t.Error("removed vertex still marked alive")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() after VertexCut: %v", err)
	}
	if m.Faces[newFace].SplitState != mesh.Splittable {
		t.Error("merged face not marked Splittable")
	}

	v2, spokes, insertBoundary, err := m.InsertVertexInFace(boundary[0], removedPos)
	if err != nil {
		t.Fatalf("InsertVertexInFace: %v", err)
	}
	if len(spokes) != 8 {
		t.Errorf("spoke count = %d, want 8 (2*4 for a degree-4 fan)", len(spokes))
	}
	if len(insertBoundary) != 4 {
		t.Errorf("returned boundary length = %d, want 4", len(insertBoundary))
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() after InsertVertexInFace: %v", err)
	}
	if m.VertexDegree(v2) != 4 {
		t.Errorf("reinserted vertex degree = %d, want 4", m.VertexDegree(v2))
	}
	if got := m.Vertices[v2].Position; got != removedPos {
		t.Errorf("reinserted vertex position = %+v, want %+v", got, removedPos)
	}
}

func TestResetPassFlags(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(tetrahedronOFF()))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	m.Vertices[0].State = mesh.Conquered
	m.Halfedges[0].QueueState = mesh.InQueue
	m.Faces[0].SplitState = mesh.Splittable

	m.ResetPassFlags()

	if m.Vertices[0].State != mesh.Unconquered {
		t.Error("vertex state not reset")
	}
	if m.Halfedges[0].QueueState != mesh.NotYetInQueue {
		t.Error("halfedge queue state not reset")
	}
	if m.Faces[0].SplitState != mesh.Unknown {
		t.Error("face split state not reset")
	}
}

func TestBoundingBox(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(cubeOFF()))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	box := m.BoundingBox()
	want := geom.Box{Min: geom.Vec3{X: 0, Y: 0, Z: 0}, Max: geom.Vec3{X: 1, Y: 1, Z: 1}}
	if box.Min != want.Min || box.Max != want.Max {
		t.Errorf("BoundingBox() = %+v, want %+v", box, want)
	}
}
