package geom_test

import (
	"math"
	"testing"

	"github.com/tengdj/ppmc-go/geom"
)

func TestTriangleAreaAndNormal(t *testing.T) {
	tri := geom.Triangle{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	if got, want := tri.Area(), 0.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("Area() = %v, want %v", got, want)
	}
	n := tri.UnitNormal()
	if math.Abs(n.Z-1) > 1e-12 || math.Abs(n.X) > 1e-12 || math.Abs(n.Y) > 1e-12 {
		t.Errorf("UnitNormal() = %+v, want (0,0,1)", n)
	}
}

func TestPointTriangleDistanceVertexRegion(t *testing.T) {
	tri := geom.Triangle{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	p := geom.Vec3{X: -1, Y: -1, Z: 0}
	got := geom.PointTriangleDistance(p, tri)
	want := p.Distance(tri[0])
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("distance = %v, want %v (nearest vertex)", got, want)
	}
}

func TestPointTriangleDistanceAbovePlane(t *testing.T) {
	tri := geom.Triangle{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 0, Z: 0},
		{X: 0, Y: 2, Z: 0},
	}
	p := geom.Vec3{X: 0.2, Y: 0.2, Z: 3}
	got := geom.PointTriangleDistance(p, tri)
	if math.Abs(got-3) > 1e-9 {
		t.Errorf("distance = %v, want 3", got)
	}
}

func TestIsPlanarAndConvex(t *testing.T) {
	square := []geom.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	if !geom.IsPlanar(square, 1e-9) {
		t.Error("square should be planar")
	}
	if !geom.IsConvex(square) {
		t.Error("square should be convex")
	}

	nonPlanar := []geom.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 5},
		{X: 0, Y: 1, Z: 0},
	}
	if geom.IsPlanar(nonPlanar, 1e-6) {
		t.Error("perturbed quad should not be planar within a tight epsilon")
	}

	dart := []geom.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 1, Z: 0},
		{X: 0, Y: 2, Z: 0},
		{X: 0.5, Y: 1, Z: 0},
	}
	if geom.IsConvex(dart) {
		t.Error("dart-shaped quad should not be convex")
	}
}

func TestBoxSquaredDistance(t *testing.T) {
	b := geom.Box{Min: geom.Vec3{X: 0, Y: 0, Z: 0}, Max: geom.Vec3{X: 1, Y: 1, Z: 1}}
	if d := b.SquaredDistance(geom.Vec3{X: 0.5, Y: 0.5, Z: 0.5}); d != 0 {
		t.Errorf("inside point distance = %v, want 0", d)
	}
	if d := b.SquaredDistance(geom.Vec3{X: 2, Y: 0, Z: 0}); math.Abs(d-1) > 1e-12 {
		t.Errorf("outside point distance = %v, want 1", d)
	}
}
