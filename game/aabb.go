package game

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// SphereBox returns the float32 bounding box around a sphere. The box is grown slightly to absorb the
// precision lost converting to float32.
func SphereBox(center mgl64.Vec3, radius float64) cube.BBox {
	c := Vec64To32(center)
	r := float32(radius)
	bb := cube.Box(c.X()-r, c.Y()-r, c.Z()-r, c.X()+r, c.Y()+r, c.Z()+r)
	return bb.Grow(boxSlack(c, r))
}

// boxSlack returns the growth needed to keep a float32 box conservative at the magnitude of its coordinates.
func boxSlack(c mgl32.Vec3, r float32) float32 {
	m := math32.Max(math32.Abs(c.X()), math32.Max(math32.Abs(c.Y()), math32.Abs(c.Z()))) + r
	return math32.Max(1e-3, m*1e-5)
}

// SegmentMayHitBox returns false only if the segment from start to end certainly misses the box.
func SegmentMayHitBox(bb cube.BBox, start, end mgl64.Vec3) bool {
	s, e := Vec64To32(start), Vec64To32(end)
	if bb.Vec3Within(s) || bb.Vec3Within(e) {
		return true
	}
	_, ok := trace.BBoxIntercept(bb, s, e)
	return ok
}
