package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/control"
	"github.com/oomph-ac/dogfight/game"
	"github.com/oomph-ac/dogfight/geometry"
)

// Tick is the per-tick input to Predict.
type Tick struct {
	Now     float64
	Delta   float64
	Gravity mgl64.Vec3
}

// Predict integrates the authoritative state over one tick into the predicted state. The controller is
// polled exactly once and the input used is returned. Authoritative state is never modified.
func (e *Entity) Predict(t Tick) control.Input {
	e.pred = e.auth
	if e.Static() {
		e.refreshHits()
		return control.Input{}
	}

	in := e.controller.Input().Clamped()
	env := Environment{Gravity: t.Gravity}
	if !e.mass.Infinite() {
		env.Mass = e.mass.Float()
	}
	if e.target != nil && !e.target.Dead() {
		env.Target, env.HasTarget = e.target.Position(), true
	}
	c := e.behavior.Contribute(e.auth, in, env)

	force := c.Force
	for _, f := range e.forces {
		if f.Expires > t.Now {
			force = force.Add(f.Force)
		}
	}

	s := &e.pred
	if c.Hold {
		s.Velocity = mgl64.Vec3{}
		s.Angular = c.Spin
	} else {
		if !e.mass.Infinite() {
			s.Velocity = s.Velocity.Add(force.Mul(t.Delta / e.mass.Float()))
		}
		if c.MaxSpeed > 0 {
			s.Velocity = game.ClampMagnitude(s.Velocity, c.MaxSpeed)
		}
		s.Angular = s.Angular.Add(c.AngularAccel.Mul(t.Delta))
		if c.AngularPreserve >= 0 && c.AngularPreserve < 1 {
			s.Angular = s.Angular.Mul(math.Pow(c.AngularPreserve, t.Delta))
		}
	}
	s.Position = s.Position.Add(s.Velocity.Mul(t.Delta))
	s.Rotation = game.IntegrateRotation(s.Rotation, s.Angular, t.Delta)

	e.refreshHits()
	return in
}

// Repredict moves the predicted position along the current predicted velocity, starting again from the
// authoritative position. It is used after a collision changed the predicted velocity.
func (e *Entity) Repredict(dt float64) {
	if e.Static() {
		return
	}
	if e.behavior.Kind == KindShield {
		e.pred.Velocity = mgl64.Vec3{}
	}
	e.pred.Position = e.auth.Position.Add(e.pred.Velocity.Mul(dt))
	e.refreshHits()
}

// Discard resets the predicted state to the authoritative state.
func (e *Entity) Discard() {
	e.pred = e.auth
	e.hitsValid = false
}

// HitSegments returns the swept hit-point segments from the authoritative to the predicted transform.
func (e *Entity) HitSegments() []geometry.Segment {
	if !e.hitsValid {
		e.refreshHits()
	}
	return e.hits
}

// Boundary returns the boundary triangles of the entity at its predicted transform.
func (e *Entity) Boundary() []geometry.Triangle {
	if !e.hitsValid {
		e.refreshHits()
	}
	return e.boundary
}

// refreshHits rebuilds the hit-point cache. It must only be called from the simulation goroutine outside
// of any parallel phase.
func (e *Entity) refreshHits() {
	from, to := e.auth.Transform(), e.pred.Transform()
	e.hits = e.shape.Sweep(from, to)
	e.boundary = e.shape.Boundary(to)
	e.hitsValid = true
}
