package geometry

import "github.com/go-gl/mathgl/mgl64"

// Transform places a local-space shape in the world.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Identity returns a transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// Apply transforms a local-space point into world space.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(p).Add(t.Position)
}

// ApplyDirection rotates a local-space direction into world space.
func (t Transform) ApplyDirection(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(d)
}

// Segment is the straight path a single point travels during one tick.
type Segment struct {
	Start, End mgl64.Vec3
}

// Delta returns the displacement along the segment.
func (s Segment) Delta() mgl64.Vec3 {
	return s.End.Sub(s.Start)
}

// At returns the point at fraction t along the segment.
func (s Segment) At(t float64) mgl64.Vec3 {
	return s.Start.Add(s.Delta().Mul(t))
}
