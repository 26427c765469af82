package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is the local-space collision geometry of an entity: a closed boundary made of triangles and the
// set of hit points that are swept against other shapes.
type Shape struct {
	Key       string
	Points    []mgl64.Vec3
	Triangles []Triangle

	radius float64
}

// NewShape creates a shape from its hit points and boundary. The bounding radius covers every hit point and
// triangle vertex.
func NewShape(key string, points []mgl64.Vec3, triangles []Triangle) *Shape {
	s := &Shape{Key: key, Points: points, Triangles: triangles}
	for _, p := range points {
		s.radius = math.Max(s.radius, p.Len())
	}
	for _, tri := range triangles {
		s.radius = math.Max(s.radius, math.Max(tri.A.Len(), math.Max(tri.B.Len(), tri.C.Len())))
	}
	return s
}

// Radius returns the radius of the bounding sphere around the shape's local origin.
func (s *Shape) Radius() float64 {
	return s.radius
}

// Boundary returns the triangles of the shape placed by t.
func (s *Shape) Boundary(t Transform) []Triangle {
	out := make([]Triangle, len(s.Triangles))
	for i, tri := range s.Triangles {
		out[i] = tri.Transform(t)
	}
	return out
}

// HitPoints returns the hit points of the shape placed by t.
func (s *Shape) HitPoints(t Transform) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(s.Points))
	for i, p := range s.Points {
		out[i] = t.Apply(p)
	}
	return out
}

// Sweep returns the path of every hit point from one transform to another.
func (s *Shape) Sweep(from, to Transform) []Segment {
	out := make([]Segment, len(s.Points))
	for i, p := range s.Points {
		out[i] = Segment{Start: from.Apply(p), End: to.Apply(p)}
	}
	return out
}

// Box returns an axis-aligned box with the given half extents. Its hit points are the eight corners and
// the six face centres.
func Box(key string, hx, hy, hz float64) *Shape {
	c := [8]mgl64.Vec3{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
	}
	quad := func(a, b, cc, d int) []Triangle {
		return []Triangle{{c[a], c[b], c[cc]}, {c[a], c[cc], c[d]}}
	}
	var tris []Triangle
	tris = append(tris, quad(0, 3, 2, 1)...) // -Z
	tris = append(tris, quad(4, 5, 6, 7)...) // +Z
	tris = append(tris, quad(0, 4, 7, 3)...) // -X
	tris = append(tris, quad(1, 2, 6, 5)...) // +X
	tris = append(tris, quad(0, 1, 5, 4)...) // -Y
	tris = append(tris, quad(3, 7, 6, 2)...) // +Y

	points := append([]mgl64.Vec3{}, c[:]...)
	points = append(points,
		mgl64.Vec3{hx, 0, 0}, mgl64.Vec3{-hx, 0, 0},
		mgl64.Vec3{0, hy, 0}, mgl64.Vec3{0, -hy, 0},
		mgl64.Vec3{0, 0, hz}, mgl64.Vec3{0, 0, -hz},
	)
	return NewShape(key, points, tris)
}

// Cube returns a box whose corners lie exactly on a sphere of the given radius.
func Cube(key string, radius float64) *Shape {
	h := radius / math.Sqrt(3)
	return Box(key, h, h, h)
}

// Quad returns a one-sided square in the XZ plane facing +Y, typically used for static ground.
func Quad(key string, halfSize float64) *Shape {
	a := mgl64.Vec3{-halfSize, 0, -halfSize}
	b := mgl64.Vec3{halfSize, 0, -halfSize}
	c := mgl64.Vec3{halfSize, 0, halfSize}
	d := mgl64.Vec3{-halfSize, 0, halfSize}
	return NewShape(key, []mgl64.Vec3{a, b, c, d}, []Triangle{{a, d, c}, {a, c, b}})
}
