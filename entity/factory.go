package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/control"
	"github.com/oomph-ac/dogfight/geometry"
	"github.com/oomph-ac/dogfight/oerror"
)

// Request describes an entity to construct.
type Request struct {
	Shape    string
	Behavior Behavior
	// Mass of the entity. Non-positive values make it immovable.
	Mass float64

	Position mgl64.Vec3
	Rotation mgl64.Quat
	Velocity mgl64.Vec3
	Angular  mgl64.Vec3

	Spectral   bool
	Controller control.Controller
	// Lifetime in seconds after which the entity expires. Zero means it lives until killed.
	Lifetime float64

	// Source and Target reference other entities by id. NoID means no reference.
	Source uint32
	Target uint32
	// AllowInert builds an inert entity instead of failing when Source or Target no longer exist.
	AllowInert bool
}

// Resolver looks up live entities by id.
type Resolver interface {
	Entity(id uint32) (*Entity, bool)
}

// Factory builds entities from requests.
type Factory struct {
	Shapes   geometry.Provider
	Entities Resolver

	SampleCapacity   int
	MaxExtrapolation float64
	// InertLifetime is the lifetime given to inert entities that were requested without one.
	InertLifetime float64
}

// Build constructs the entity described by req with the given id at simulation time now.
func (f Factory) Build(id uint32, req Request, now float64) (*Entity, error) {
	if id == NoID {
		return nil, fmt.Errorf("build: id %d is reserved: %w", id, oerror.ErrInvalidRequest)
	}
	if f.Shapes == nil {
		return nil, fmt.Errorf("build %d: no shape provider: %w", id, oerror.ErrInvalidRequest)
	}
	shape, err := f.Shapes.Shape(req.Shape)
	if err != nil {
		return nil, fmt.Errorf("build %d: %w", id, err)
	}
	if !validRequest(req) {
		return nil, fmt.Errorf("build %d: non-finite initial state: %w", id, oerror.ErrInvalidRequest)
	}

	var (
		source, target *Entity
		missing        bool
	)
	if req.Source != NoID {
		src, ok := f.lookup(req.Source)
		if !ok || src.Dead() {
			missing = true
		} else {
			source = src
		}
	}
	if req.Target != NoID {
		t, ok := f.lookup(req.Target)
		if !ok || t.Dead() {
			missing = true
		} else {
			target = t
		}
	}
	if missing && !req.AllowInert {
		return nil, fmt.Errorf("build %d: source %d or target %d: %w", id, req.Source, req.Target, oerror.ErrMissingReference)
	}

	conf := Config{
		Shape:            shape,
		Behavior:         req.Behavior,
		Mass:             req.Mass,
		Position:         req.Position,
		Rotation:         req.Rotation,
		Velocity:         req.Velocity,
		Angular:          req.Angular,
		Spectral:         req.Spectral,
		Controller:       req.Controller,
		Source:           source,
		Target:           target,
		Time:             now,
		SampleCapacity:   f.SampleCapacity,
		MaxExtrapolation: f.MaxExtrapolation,
	}
	lifetime := req.Lifetime
	if missing {
		// Inert entities keep flying but never collide, never home and eventually expire.
		conf.Spectral = true
		conf.Target = nil
		if conf.Behavior.Kind == KindBallistic {
			conf.Behavior.Ballistic.Homing = 0
		}
		if lifetime <= 0 {
			lifetime = f.InertLifetime
		}
	}
	if lifetime > 0 {
		conf.Expires = now + lifetime
	}

	e := New(id, conf)
	e.inert = missing
	return e, nil
}

func (f Factory) lookup(id uint32) (*Entity, bool) {
	if f.Entities == nil {
		return nil, false
	}
	return f.Entities.Entity(id)
}

func validRequest(req Request) bool {
	s := State{Position: req.Position, Velocity: req.Velocity, Angular: req.Angular, Rotation: req.Rotation}
	if s.Rotation == (mgl64.Quat{}) {
		s.Rotation = mgl64.QuatIdent()
	}
	return s.Valid()
}

// ReadyToFire returns true if the entity carries a weapon whose cooldown has elapsed at now.
func (e *Entity) ReadyToFire(now float64) bool {
	if e.behavior.Kind != KindThruster || e.behavior.Thruster.Weapon == nil || e.Dead() {
		return false
	}
	return now-e.lastFire >= e.behavior.Thruster.Weapon.Cooldown
}

// Fire returns the construction request for a projectile fired by the entity at now and restarts the
// weapon cooldown. The projectile leaves the muzzle along the nose of the entity's authoritative state.
// The boolean is false if the weapon is not ready.
func (e *Entity) Fire(now float64) (Request, bool) {
	if !e.ReadyToFire(now) {
		return Request{}, false
	}
	e.lastFire = now

	w := e.behavior.Thruster.Weapon
	s := e.State()
	req := Request{
		Shape:    w.Projectile.Shape,
		Behavior: Behavior{Kind: KindBallistic, Ballistic: w.Projectile.Ballistic},
		Mass:     w.Projectile.Mass,
		Position: s.Transform().Apply(w.Offset),
		Rotation: s.Rotation,
		Velocity: s.Velocity.Add(s.Forward().Mul(w.MuzzleSpeed)),
		Spectral: w.Projectile.Spectral,
		Lifetime: w.Projectile.Lifetime,
		Source:   e.id,
		// Projectiles outlive their shooter.
		AllowInert: true,
	}
	if w.Projectile.Guided && e.target != nil && !e.target.Dead() {
		req.Target = e.target.id
	}
	return req, true
}
