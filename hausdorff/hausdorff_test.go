package hausdorff_test

import (
	"context"
	"strings"
	"testing"

	"github.com/tengdj/ppmc-go/hausdorff"
	"github.com/tengdj/ppmc-go/mesh"
)

const cubeOFF = `OFF
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

func TestComputeBatchIdenticalMeshesIsZero(t *testing.T) {
	m1, err := mesh.ReadOFF(strings.NewReader(cubeOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	m2, err := mesh.ReadOFF(strings.NewReader(cubeOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}

	e := hausdorff.NewEngine()
	res := e.ComputeBatch(m1, m2)
	if res.Forward > 1e-9 || res.Proxy > 1e-9 {
		t.Errorf("identical meshes should have ~0 Hausdorff distance, got %+v", res)
	}
}

func TestComputeBatchDetectsDisplacement(t *testing.T) {
	m1, err := mesh.ReadOFF(strings.NewReader(cubeOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	m2, err := mesh.ReadOFF(strings.NewReader(cubeOFF))
	if err != nil {
		t.Fatalf("ReadOFF: %v", err)
	}
	// Displace one vertex of m1 far from its m2 counterpart.
	m1.Vertices[6].Position.X += 5

	e := hausdorff.NewEngine()
	res := e.ComputeBatch(m1, m2)
	if res.Forward < 1 {
		t.Errorf("expected a large forward Hausdorff distance after displacement, got %v", res.Forward)
	}
}

func TestComputeManyRunsConcurrently(t *testing.T) {
	m1, _ := mesh.ReadOFF(strings.NewReader(cubeOFF))
	m2, _ := mesh.ReadOFF(strings.NewReader(cubeOFF))
	m3, _ := mesh.ReadOFF(strings.NewReader(cubeOFF))
	m4, _ := mesh.ReadOFF(strings.NewReader(cubeOFF))

	e := hausdorff.NewEngine()
	pairs := [][2]*mesh.Mesh{{m1, m2}, {m3, m4}}
	results, err := e.ComputeMany(context.Background(), pairs, 2)
	if err != nil {
		t.Fatalf("ComputeMany: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for i, r := range results {
		if r.Forward > 1e-9 {
			t.Errorf("pair %d: expected ~0 forward distance, got %v", i, r.Forward)
		}
	}
}
