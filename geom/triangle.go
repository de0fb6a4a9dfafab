package geom

import "math"

// Triangle is three points in consistent winding order.
type Triangle [3]Vec3

// Normal returns the (non-unit) normal of the triangle, following the
// right-hand rule over A->B, A->C.
func (t Triangle) Normal() Vec3 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
}

// UnitNormal returns the unit normal; degenerate (zero-area) triangles
// return the zero vector.
func (t Triangle) UnitNormal() Vec3 {
	return t.Normal().Normalize()
}

// Area returns the triangle's area.
func (t Triangle) Area() float64 {
	return 0.5 * t.Normal().Length()
}

// Barycenter returns the unweighted centroid of the triangle's vertices.
func (t Triangle) Barycenter() Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3.0)
}

// ClosestPoint returns the point on the (solid) triangle closest to p,
// using the Voronoi-region decomposition from Ericson, Real-Time Collision
// Detection §5.1.5.
func (t Triangle) ClosestPoint(p Vec3) Vec3 {
	a, b, c := t[0], t[1], t[2]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Scale(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Scale(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Scale(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Scale(v)).Add(ac.Scale(w))
}

// PointTriangleDistance returns the Euclidean distance from p to the
// closest point on the triangle.
func PointTriangleDistance(p Vec3, t Triangle) float64 {
	return p.Distance(t.ClosestPoint(p))
}

// IsPlanar reports whether the given polygon (as an ordered ring of
// points) deviates from its best-fit plane by no more than eps, measured
// as the max absolute distance of any vertex from the plane through the
// centroid with normal equal to the Newell-method polygon normal.
func IsPlanar(poly []Vec3, eps float64) bool {
	if len(poly) < 3 {
		return true
	}
	n := newellNormal(poly)
	if n.LengthSquared() == 0 {
		return true
	}
	n = n.Normalize()
	centroid := Vec3{}
	for _, p := range poly {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1 / float64(len(poly)))
	for _, p := range poly {
		d := math.Abs(p.Sub(centroid).Dot(n))
		if d > eps {
			return false
		}
	}
	return true
}

// newellNormal computes a polygon normal robust to mild non-planarity,
// following Newell's method.
func newellNormal(poly []Vec3) Vec3 {
	n := Vec3{}
	count := len(poly)
	for i := 0; i < count; i++ {
		cur := poly[i]
		next := poly[(i+1)%count]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// IsConvex reports whether the ordered polygon ring, projected onto the
// plane orthogonal to its normal, turns consistently in one direction at
// every vertex (a necessary condition for the 1-ring of a removable
// vertex to re-triangulate without self-intersection).
func IsConvex(poly []Vec3) bool {
	count := len(poly)
	if count < 3 {
		return true
	}
	n := newellNormal(poly)
	if n.LengthSquared() == 0 {
		return false
	}
	sawPositive := false
	sawNegative := false
	for i := 0; i < count; i++ {
		prev := poly[(i-1+count)%count]
		cur := poly[i]
		next := poly[(i+1)%count]
		e1 := cur.Sub(prev)
		e2 := next.Sub(cur)
		cross := e1.Cross(e2)
		turn := cross.Dot(n)
		if turn > 0 {
			sawPositive = true
		} else if turn < 0 {
			sawNegative = true
		}
		if sawPositive && sawNegative {
			return false
		}
	}
	return true
}
