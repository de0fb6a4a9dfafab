package ppmc_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/tengdj/ppmc-go/geom"
	"github.com/tengdj/ppmc-go/hausdorff"
	"github.com/tengdj/ppmc-go/internal/quant"
	"github.com/tengdj/ppmc-go/mesh"
	"github.com/tengdj/ppmc-go/ppmc"
)

// rebuildMesh reconstructs a mesh from a Decoder's dense vertex/face
// snapshot, the same way ppmc's own wire decoder does.
func rebuildMesh(t *testing.T, verts []geom.Vec3, faces [][]int) *mesh.Mesh {
	t.Helper()
	b := mesh.NewBuilder(verts)
	for _, f := range faces {
		b.AddFacet(f)
	}
	out, err := b.Finish()
	if err != nil {
		t.Fatalf("rebuilding mesh: %v", err)
	}
	return out
}

const tetrahedronOFF = `OFF
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

const icosahedronOFF = `OFF
12 20 0
-1 1.618034 0
1 1.618034 0
-1 -1.618034 0
1 -1.618034 0
0 -1 1.618034
0 1 1.618034
0 -1 -1.618034
0 1 -1.618034
1.618034 0 -1
1.618034 0 1
-1.618034 0 -1
-1.618034 0 1
3 0 11 5
3 0 5 1
3 0 1 7
3 0 7 10
3 0 10 11
3 1 5 9
3 5 11 4
3 11 10 2
3 10 7 6
3 7 1 8
3 3 9 4
3 3 4 2
3 3 2 6
3 3 6 8
3 3 8 9
3 4 9 5
3 2 4 11
3 6 2 10
3 8 6 7
3 9 8 1
`

func TestEncodeDecodeTetrahedronNoDecimation(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(tetrahedronOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	cfg := ppmc.DefaultConfig()
	blob, err := ppmc.Encode(m, cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec, err := ppmc.Open(blob)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(dec.Vertices()) != 4 {
		t.Errorf("base LOD vertex count = %d, want 4 (a tetrahedron has no removable vertex)", len(dec.Vertices()))
	}
	if err := dec.AdvanceTo(100); err != nil {
		t.Fatalf("AdvanceTo(100): %v", err)
	}
	if len(dec.Vertices()) != 4 {
		t.Errorf("fully advanced vertex count = %d, want 4", len(dec.Vertices()))
	}
}

func TestEncodeDecodeIcosahedronFullRoundTrip(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(icosahedronOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	cfg := ppmc.DefaultConfig()
	blob, err := ppmc.Encode(m, cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec, err := ppmc.Open(blob)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	base := len(dec.Vertices())
	if base >= 12 {
		t.Fatalf("expected the base LOD to have fewer than 12 vertices, got %d", base)
	}

	if err := dec.AdvanceTo(100); err != nil {
		t.Fatalf("AdvanceTo(100): %v", err)
	}
	if got := len(dec.Vertices()); got != 12 {
		t.Errorf("fully advanced vertex count = %d, want 12", got)
	}
	if got := len(dec.Faces()); got != 20 {
		t.Errorf("fully advanced face count = %d, want 20", got)
	}
}

func TestAdvanceToIsMonotoneAndIdempotent(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(icosahedronOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	blob, err := ppmc.Encode(m, ppmc.DefaultConfig())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decA, _ := ppmc.Open(blob)
	if err := decA.AdvanceTo(50); err != nil {
		t.Fatalf("AdvanceTo(50): %v", err)
	}
	midCount := len(decA.Vertices())
	if err := decA.AdvanceTo(100); err != nil {
		t.Fatalf("AdvanceTo(100): %v", err)
	}
	fullCount := len(decA.Vertices())
	if fullCount < midCount {
		t.Errorf("vertex count decreased after advancing further: %d -> %d", midCount, fullCount)
	}

	decB, _ := ppmc.Open(blob)
	if err := decB.AdvanceTo(100); err != nil {
		t.Fatalf("AdvanceTo(100) from scratch: %v", err)
	}
	if len(decB.Vertices()) != fullCount {
		t.Errorf("advance_to(100) from scratch gave %d vertices, want %d (L2)", len(decB.Vertices()), fullCount)
	}
}

// TestFullRoundTripMatchesQuantizedOriginal exercises L1:
// decode(encode(m)) at full LOD must equal quantize(m), vertex by vertex,
// up to the coder's own float rounding.
func TestFullRoundTripMatchesQuantizedOriginal(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(icosahedronOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	cfg := ppmc.DefaultConfig()
	blob, err := ppmc.Encode(m, cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec, err := ppmc.Open(blob)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := dec.AdvanceTo(100); err != nil {
		t.Fatalf("AdvanceTo(100): %v", err)
	}

	q := quant.New(m.BoundingBox(), cfg.QuantBits)
	want := make(map[[3]int64]bool, len(m.Vertices))
	for i := range m.Vertices {
		if m.Vertices[i].Alive {
			cell := q.Encode(m.Vertices[i].Position)
			want[cell] = true
		}
	}

	got := dec.Vertices()
	if len(got) != len(want) {
		t.Fatalf("decoded vertex count = %d, want %d", len(got), len(want))
	}
	for _, p := range got {
		cell := q.Encode(p)
		if !want[cell] {
			t.Errorf("decoded vertex %+v does not match any quantized cell of the original mesh", p)
		}
	}
}

// TestReEncodeIsByteIdentical exercises L3: re-encoding a fully-decoded
// mesh at the same config reproduces the exact same blob.
func TestReEncodeIsByteIdentical(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(icosahedronOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	cfg := ppmc.DefaultConfig()
	blob, err := ppmc.Encode(m, cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec, err := ppmc.Open(blob)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := dec.AdvanceTo(100); err != nil {
		t.Fatalf("AdvanceTo(100): %v", err)
	}

	decoded := rebuildMesh(t, dec.Vertices(), dec.Faces())

	// The decoded mesh's own extents sit half a lattice step inside the
	// original bbox (its corner vertices are quantized cell centers, not
	// the original corners), so re-deriving the bbox from decoded would
	// shift the lattice and break byte-identity. Pin it to the original.
	cfg2 := cfg
	cfg2.BBox = dec.BoundingBox()
	blob2, err := ppmc.Encode(decoded, cfg2)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if !bytes.Equal(blob, blob2) {
		t.Errorf("re-encoding a decoded mesh produced a different blob (L3 violated): %d bytes vs %d bytes", len(blob), len(blob2))
	}
}

// TestPartialDecompressHausdorffMatchesIndependentRecomputation exercises
// scenario 5: advancing a decoder partway through its batches yields a
// closed 2-manifold mesh whose reported forward Hausdorff distance matches
// an independent BVH recomputation against the original mesh.
func TestPartialDecompressHausdorffMatchesIndependentRecomputation(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(icosahedronOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	cfg := ppmc.DefaultConfig()
	q := quant.New(m.BoundingBox(), cfg.QuantBits)
	blob, err := ppmc.Encode(m, cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec, err := ppmc.Open(blob)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := dec.AdvanceTo(30); err != nil {
		t.Fatalf("AdvanceTo(30): %v", err)
	}

	approx := rebuildMesh(t, dec.Vertices(), dec.Faces())
	if err := approx.Validate(); err != nil {
		t.Fatalf("partially-decoded mesh is not closed/2-manifold: %v", err)
	}

	independent := hausdorff.NewEngine().ComputeBatch(approx, m).Forward
	reported := dec.Hausdorff()
	if reported == 0 && independent == 0 {
		// Already at full detail at this cap (a small icosahedron may have
		// too few batches to stop short of it); nothing to compare.
		return
	}
	// A generous tolerance rather than the usual 1e-5: Encode
	// quantizes the base mesh's surviving vertices only after every batch's
	// Hausdorff measurement has already run (see DESIGN.md open question 4),
	// so recomputing independently from the decoder's (quantized) snapshot
	// can differ from the recorded value; the tolerance is q.Epsilon(), half
	// a quantization step, the per-axis bound on that quantization offset.
	tol := q.Epsilon() + 1e-6
	if diff := math.Abs(reported - independent); diff > tol {
		t.Errorf("reported Hausdorff %v vs independently recomputed %v: difference %v exceeds tolerance %v", reported, independent, diff, tol)
	}
}

func TestOpenRejectsCorruptedBlob(t *testing.T) {
	m, err := mesh.ReadOFF(strings.NewReader(tetrahedronOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	blob, err := ppmc.Encode(m, ppmc.DefaultConfig())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(blob) == 0 {
		t.Fatal("empty blob")
	}
	corrupted := append([]byte(nil), blob...)
	corrupted[0] ^= 0xFF // flip magic
	if _, err := ppmc.Open(corrupted); err == nil {
		t.Fatal("expected Open to reject a blob with a flipped magic byte")
	}
}

func TestReadOFFRejectsOpenMesh(t *testing.T) {
	// A cube with one facet dropped is not closed.
	const off = `OFF
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
	if _, err := mesh.ReadOFF(strings.NewReader(off)); err == nil {
		t.Fatal("expected ReadOFF itself to reject a non-closed mesh")
	}
}
