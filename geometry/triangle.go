package geometry

import "github.com/go-gl/mathgl/mgl64"

// boundaryEpsilon widens the barycentric bounds so that points travelling exactly along a shared edge or
// through a vertex still register against at least one face.
const boundaryEpsilon = 1e-9

// Triangle is one bounded plane of a shape's boundary. Vertices are wound counter-clockwise when seen from
// outside, so the normal points out of the shape.
type Triangle struct {
	A, B, C mgl64.Vec3
}

// Normal returns the outward unit normal of the triangle.
func (t Triangle) Normal() mgl64.Vec3 {
	n := t.B.Sub(t.A).Cross(t.C.Sub(t.A))
	if l := n.Len(); l > 0 {
		return n.Mul(1 / l)
	}
	return mgl64.Vec3{}
}

// Transform returns the triangle placed by tr.
func (t Triangle) Transform(tr Transform) Triangle {
	return Triangle{A: tr.Apply(t.A), B: tr.Apply(t.B), C: tr.Apply(t.C)}
}

// Intersect tests the segment against the triangle's bounded plane. Only segments entering through the
// front face are reported. It returns the fraction along the segment at which the plane is crossed.
func (t Triangle) Intersect(s Segment) (float64, bool) {
	edge1 := t.B.Sub(t.A)
	edge2 := t.C.Sub(t.A)
	normal := edge1.Cross(edge2)
	dir := s.Delta()

	denom := normal.Dot(dir)
	if !(denom < 0) {
		// Parallel to the plane, or leaving through the back of the face.
		return 0, false
	}

	toi := normal.Dot(t.A.Sub(s.Start)) / denom
	if !(toi >= 0 && toi <= 1) {
		return 0, false
	}

	// Barycentric coordinates of the crossing point.
	p := s.Start.Add(dir.Mul(toi)).Sub(t.A)
	d00 := edge1.Dot(edge1)
	d01 := edge1.Dot(edge2)
	d11 := edge2.Dot(edge2)
	d20 := p.Dot(edge1)
	d21 := p.Dot(edge2)
	det := d00*d11 - d01*d01
	if det == 0 {
		return 0, false
	}
	v := (d11*d20 - d01*d21) / det
	w := (d00*d21 - d01*d20) / det
	if !(v >= -boundaryEpsilon && w >= -boundaryEpsilon && v+w <= 1+boundaryEpsilon) {
		return 0, false
	}
	return toi, true
}
