package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Respond applies an elastic response to the predicted velocities of the contact's entities and pushes them
// apart with the given separating energy. It returns false if nothing was changed: when either side is
// spectral or both are immovable. An immovable entity never has its velocity changed.
func Respond(c Contact, energy float64) bool {
	if c.Spectral() {
		return false
	}
	a, b := c.A, c.B
	ma, mb := a.Mass(), b.Mass()
	va, vb := a.Predicted().Velocity, b.Predicted().Velocity
	n := c.Normal
	energy = math.Max(energy, 0)

	switch {
	case ma.Infinite() && mb.Infinite():
		return false
	case mb.Infinite():
		a.SetPredictedVelocity(reflect(va, vb, n, ma.Float(), energy))
	case ma.Infinite():
		b.SetPredictedVelocity(reflect(vb, va, n.Mul(-1), mb.Float(), energy))
	default:
		m1, m2 := ma.Float(), mb.Float()
		total := m1 + m2
		if vn := va.Sub(vb).Dot(n); vn < 0 {
			va = va.Sub(n.Mul(2 * m2 / total * vn))
			vb = vb.Add(n.Mul(2 * m1 / total * vn))
		}
		if energy > 0 {
			// Relative speed carrying the energy, split so that momentum is conserved.
			reduced := m1 * m2 / total
			du := math.Sqrt(2 * energy / reduced)
			va = va.Add(n.Mul(du * m2 / total))
			vb = vb.Sub(n.Mul(du * m1 / total))
		}
		a.SetPredictedVelocity(va)
		b.SetPredictedVelocity(vb)
	}
	return true
}

// reflect returns the velocity v of a finite body of mass m after hitting an immovable body moving at wall
// velocity. n points from the immovable body toward the finite one.
func reflect(v, wall, n mgl64.Vec3, m, energy float64) mgl64.Vec3 {
	rel := v.Sub(wall)
	if vn := rel.Dot(n); vn < 0 {
		rel = rel.Sub(n.Mul(2 * vn))
	}
	if energy > 0 {
		rel = rel.Add(n.Mul(math.Sqrt(2 * energy / m)))
	}
	return wall.Add(rel)
}
