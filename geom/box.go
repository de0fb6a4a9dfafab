package geom

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec3
}

// EmptyBox returns a box with inverted bounds, ready to be grown with Extend.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// Extend grows b to include p, returning the updated box.
func (b Box) Extend(p Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	return Box{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Extent returns Max-Min per axis.
func (b Box) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// MaxExtent returns the largest of the box's three axis extents.
func (b Box) MaxExtent() float64 {
	e := b.Extent()
	return math.Max(e.X, math.Max(e.Y, e.Z))
}

// LongestAxis returns 0, 1, or 2 for X, Y, Z according to which has the
// largest extent.
func (b Box) LongestAxis() int {
	e := b.Extent()
	if e.X >= e.Y && e.X >= e.Z {
		return 0
	}
	if e.Y >= e.Z {
		return 1
	}
	return 2
}

// SquaredDistance returns the squared distance from p to the closest
// point on (or in) the box.
func (b Box) SquaredDistance(p Vec3) float64 {
	d := 0.0
	for _, axis := range []struct{ v, lo, hi float64 }{
		{p.X, b.Min.X, b.Max.X},
		{p.Y, b.Min.Y, b.Max.Y},
		{p.Z, b.Min.Z, b.Max.Z},
	} {
		if axis.v < axis.lo {
			d += (axis.lo - axis.v) * (axis.lo - axis.v)
		} else if axis.v > axis.hi {
			d += (axis.v - axis.hi) * (axis.v - axis.hi)
		}
	}
	return d
}

// Intersects reports whether b and o overlap (touching counts as overlap).
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}
