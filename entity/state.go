package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/game"
	"github.com/oomph-ac/dogfight/geometry"
)

// State is the kinematic state of an entity. Every entity holds two: the authoritative state that the rest
// of the world agrees on, and the predicted state computed during the current tick.
type State struct {
	Position mgl64.Vec3
	// Rotation is a unit quaternion.
	Rotation mgl64.Quat
	Velocity mgl64.Vec3
	// Angular holds the pitch, yaw and roll rates in radians per second, in the body frame.
	Angular mgl64.Vec3
}

// Valid returns true if every component of the state is finite.
func (s State) Valid() bool {
	return game.FiniteVec3(s.Position) &&
		game.FiniteVec3(s.Velocity) &&
		game.FiniteVec3(s.Angular) &&
		game.FiniteQuat(s.Rotation)
}

// Transform returns the transform that places the entity's shape at this state.
func (s State) Transform() geometry.Transform {
	return geometry.Transform{Position: s.Position, Rotation: s.Rotation}
}

// Forward returns the direction the nose of the entity points in.
func (s State) Forward() mgl64.Vec3 {
	return s.Transform().ApplyDirection(mgl64.Vec3{0, 0, 1})
}

// Mass is the mass of an entity. Immovable bodies have an infinite mass.
type Mass float64

// NewMass returns the mass for m. Anything that is not a finite positive number is treated as infinite.
func NewMass(m float64) Mass {
	if !(m > 0) || math.IsInf(m, 1) {
		return Mass(math.Inf(1))
	}
	return Mass(m)
}

// Infinite returns true if the body is immovable.
func (m Mass) Infinite() bool {
	return math.IsInf(float64(m), 1)
}

// Float returns the mass as a float64.
func (m Mass) Float() float64 {
	return float64(m)
}

// TransientForce is a force that acts on an entity until Expires.
type TransientForce struct {
	Force   mgl64.Vec3
	Expires float64
}
