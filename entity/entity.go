package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/control"
	"github.com/oomph-ac/dogfight/game"
	"github.com/oomph-ac/dogfight/geometry"
	"github.com/oomph-ac/dogfight/utils"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/atomic"
)

// NoID is the zero entity id. It never names a live entity.
const NoID uint32 = 0

// Entity is a moving, collidable body. Predicted state and the hit-point cache are owned by the simulation
// goroutine; authoritative state and the sample buffers may be read from any goroutine.
type Entity struct {
	id       uint32
	mass     Mass
	shape    *geometry.Shape
	behavior Behavior

	spectral bool
	inert    bool
	dead     atomic.Bool
	// expires is the simulation time at which the entity becomes overdue. Zero means never.
	expires float64

	source *Entity
	target *Entity

	controller control.Controller
	lastFire   float64

	// mu protects auth, positions and rotations.
	mu        deadlock.RWMutex
	auth      State
	positions *utils.CircularQueue[PositionSample]
	rotations *utils.CircularQueue[RotationSample]

	pred   State
	forces []TransientForce

	hits      []geometry.Segment
	boundary  []geometry.Triangle
	hitsValid bool

	maxExtrapolation float64
}

// Config holds everything needed to create an entity directly. Most callers use a Factory instead.
type Config struct {
	Shape    *geometry.Shape
	Behavior Behavior
	// Mass of the entity. Non-positive values make it immovable.
	Mass float64

	Position mgl64.Vec3
	// Rotation of the entity. The zero quaternion is treated as the identity.
	Rotation mgl64.Quat
	Velocity mgl64.Vec3
	Angular  mgl64.Vec3

	Spectral   bool
	Controller control.Controller
	// Expires is the simulation time at which the entity becomes overdue. Zero means never.
	Expires float64

	// Source is the entity that created this one. The two never collide.
	Source *Entity
	Target *Entity

	// Time is the simulation time of the first interpolation sample.
	Time             float64
	SampleCapacity   int
	MaxExtrapolation float64
}

// New creates an entity with the given id. Its predicted state starts out equal to its authoritative
// state.
func New(id uint32, conf Config) *Entity {
	if conf.Rotation == (mgl64.Quat{}) {
		conf.Rotation = mgl64.QuatIdent()
	}
	if conf.SampleCapacity < 2 {
		conf.SampleCapacity = game.DefaultSampleCapacity
	}
	if conf.MaxExtrapolation <= 0 {
		conf.MaxExtrapolation = game.DefaultMaxExtrapolation
	}
	if conf.Controller == nil {
		conf.Controller = control.Nop{}
	}
	if conf.Shape == nil {
		conf.Shape = geometry.NewShape("", nil, nil)
	}

	e := &Entity{
		id:               id,
		mass:             NewMass(conf.Mass),
		shape:            conf.Shape,
		behavior:         conf.Behavior,
		spectral:         conf.Spectral,
		expires:          conf.Expires,
		source:           conf.Source,
		target:           conf.Target,
		controller:       conf.Controller,
		lastFire:         math.Inf(-1),
		positions:        utils.NewCircularQueue[PositionSample](conf.SampleCapacity, nil),
		rotations:        utils.NewCircularQueue[RotationSample](conf.SampleCapacity, nil),
		maxExtrapolation: conf.MaxExtrapolation,
	}
	if e.behavior.Kind == KindStatic {
		conf.Velocity, conf.Angular = mgl64.Vec3{}, mgl64.Vec3{}
	}
	e.auth = State{
		Position: conf.Position,
		Rotation: conf.Rotation.Normalize(),
		Velocity: conf.Velocity,
		Angular:  conf.Angular,
	}
	e.pred = e.auth
	e.appendSamples(conf.Time)
	return e
}

// ID returns the unique id of the entity.
func (e *Entity) ID() uint32 {
	return e.id
}

// Mass returns the mass of the entity.
func (e *Entity) Mass() Mass {
	return e.mass
}

// Shape returns the collision geometry of the entity.
func (e *Entity) Shape() *geometry.Shape {
	return e.shape
}

// Range returns the radius of the entity's bounding sphere.
func (e *Entity) Range() float64 {
	return e.shape.Radius()
}

// Behavior returns the behaviour the entity was constructed with.
func (e *Entity) Behavior() Behavior {
	return e.behavior
}

// Kind ...
func (e *Entity) Kind() Kind {
	return e.behavior.Kind
}

// Static returns true if the entity never moves.
func (e *Entity) Static() bool {
	return e.behavior.Kind == KindStatic
}

// Spectral returns true if collisions involving the entity are reported but never responded to.
func (e *Entity) Spectral() bool {
	return e.spectral
}

// Inert returns true if the entity was built without one of its references and only exists as a
// placeholder.
func (e *Entity) Inert() bool {
	return e.inert
}

// Source returns the entity that created this one, if any.
func (e *Entity) Source() *Entity {
	return e.source
}

// FiredBy returns true if other is the entity that created e. Sources are compared by identity, so an
// entity that later reuses the source's id is not exempt.
func (e *Entity) FiredBy(other *Entity) bool {
	return e.source != nil && e.source == other
}

// Target returns the entity this one homes on, if any.
func (e *Entity) Target() *Entity {
	return e.target
}

// Kill marks the entity dead. It is removed from the world on the next index rebuild.
func (e *Entity) Kill() {
	e.dead.Store(true)
}

// Dead returns true if the entity has been killed.
func (e *Entity) Dead() bool {
	return e.dead.Load()
}

// Overdue returns true if the entity has an expiry time and now is past it.
func (e *Entity) Overdue(now float64) bool {
	return e.expires > 0 && now >= e.expires
}

// SetController replaces the controller polled during prediction.
func (e *Entity) SetController(c control.Controller) {
	if c == nil {
		c = control.Nop{}
	}
	e.controller = c
}

// AddForce applies force until the simulation time reaches expires.
func (e *Entity) AddForce(force mgl64.Vec3, expires float64) {
	e.forces = append(e.forces, TransientForce{Force: force, Expires: expires})
}

// Forces returns the transient forces currently attached to the entity.
func (e *Entity) Forces() []TransientForce {
	return e.forces
}

// State returns a copy of the authoritative state.
func (e *Entity) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.auth
}

// Position returns the authoritative position of the entity.
func (e *Entity) Position() mgl64.Vec3 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.auth.Position
}

// Rotation returns the authoritative rotation of the entity.
func (e *Entity) Rotation() mgl64.Quat {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.auth.Rotation
}

// Velocity returns the authoritative velocity of the entity.
func (e *Entity) Velocity() mgl64.Vec3 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.auth.Velocity
}

// AngularSpeed returns the authoritative pitch, yaw and roll rates of the entity.
func (e *Entity) AngularSpeed() mgl64.Vec3 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.auth.Angular
}

// Predicted returns the predicted state. Only meaningful on the simulation goroutine between Predict and
// Commit.
func (e *Entity) Predicted() State {
	return e.pred
}

// SetPredictedVelocity overwrites the predicted velocity. Call Repredict afterwards to move the predicted
// position along.
func (e *Entity) SetPredictedVelocity(v mgl64.Vec3) {
	e.pred.Velocity = v
}

// Bounds returns the sphere enclosing everything the entity sweeps through between its authoritative and
// predicted positions. A non-finite prediction is left to be rejected at commit, so only the authoritative
// sphere is covered.
func (e *Entity) Bounds() (mgl64.Vec3, float64) {
	delta := e.pred.Position.Sub(e.auth.Position)
	if !game.FiniteVec3(delta) {
		return e.auth.Position, e.Range()
	}
	return e.auth.Position.Add(delta.Mul(0.5)), e.Range() + delta.Len()*0.5
}
