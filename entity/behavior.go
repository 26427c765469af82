package entity

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/control"
)

// Kind selects how an entity contributes to its own motion during prediction.
type Kind uint8

const (
	// KindThruster entities are flown by a controller: throttle along the nose, turn rates on each axis.
	KindThruster Kind = iota
	// KindBallistic entities coast under drag and gravity, optionally homing on a target.
	KindBallistic
	// KindShield entities hold their position and spin in place.
	KindShield
	// KindStatic entities never move. They are kept out of the broad-phase axis arrays.
	KindStatic
)

// String ...
func (k Kind) String() string {
	switch k {
	case KindThruster:
		return "thruster"
	case KindBallistic:
		return "ballistic"
	case KindShield:
		return "shield"
	case KindStatic:
		return "static"
	}
	return "unknown"
}

// Thruster holds the parameters of a controller-driven entity.
type Thruster struct {
	MaxThrust float64
	// Drag is the linear drag coefficient: the drag force is -Drag * velocity.
	Drag float64
	// TurnAccel is the angular acceleration (pitch, yaw, roll) at full input.
	TurnAccel mgl64.Vec3
	// AngularPreserve is the fraction of angular speed kept after one second.
	AngularPreserve float64
	GravityScale    float64
	// MaxSpeed caps the predicted speed. Zero disables the cap.
	MaxSpeed float64

	Weapon *Weapon
}

// Ballistic holds the parameters of a coasting entity.
type Ballistic struct {
	Drag            float64
	GravityScale    float64
	AngularPreserve float64
	// Homing is the magnitude of the steering force applied toward a live target.
	Homing float64
}

// Shield holds the parameters of a stationary shield.
type Shield struct {
	Spin mgl64.Vec3
}

// Weapon describes the projectile a thruster fires when its controller sets the fire flag.
type Weapon struct {
	Cooldown    float64
	MuzzleSpeed float64
	// Offset is the muzzle position relative to the shooter, in its body frame.
	Offset     mgl64.Vec3
	Projectile ProjectileSpec
}

// ProjectileSpec is the template for fired projectiles.
type ProjectileSpec struct {
	Shape     string
	Mass      float64
	Lifetime  float64
	Spectral  bool
	Ballistic Ballistic
	// Guided projectiles home on the shooter's current target.
	Guided bool
}

// Behavior is the per-kind physics of an entity. Only the parameters matching Kind are used.
type Behavior struct {
	Kind      Kind
	Thruster  Thruster
	Ballistic Ballistic
	Shield    Shield
}

// Environment is everything outside the entity that its behaviour may react to.
type Environment struct {
	Gravity mgl64.Vec3
	// Mass is the entity's mass, or zero if it is immovable.
	Mass float64

	Target    mgl64.Vec3
	HasTarget bool
}

// Contribution is a behaviour's share of the predicted motion for one tick.
type Contribution struct {
	Force        mgl64.Vec3
	AngularAccel mgl64.Vec3
	// AngularPreserve is the fraction of angular speed kept after one second.
	AngularPreserve float64
	// MaxSpeed caps the predicted speed. Zero disables the cap.
	MaxSpeed float64
	// Hold pins the predicted velocity to zero and replaces the angular speed with Spin.
	Hold bool
	Spin mgl64.Vec3
}

// Contribute computes the behaviour's contribution for state s. It is a pure function.
func (b Behavior) Contribute(s State, in control.Input, env Environment) Contribution {
	switch b.Kind {
	case KindThruster:
		return thrusterContribution(b.Thruster, s, in, env)
	case KindBallistic:
		return ballisticContribution(b.Ballistic, s, env)
	case KindShield:
		return Contribution{Hold: true, Spin: b.Shield.Spin, AngularPreserve: 1}
	}
	return Contribution{AngularPreserve: 1}
}

func thrusterContribution(p Thruster, s State, in control.Input, env Environment) Contribution {
	force := s.Forward().Mul(in.Throttle * p.MaxThrust)
	force = force.Sub(s.Velocity.Mul(p.Drag))
	force = force.Add(env.Gravity.Mul(env.Mass * p.GravityScale))
	return Contribution{
		Force: force,
		AngularAccel: mgl64.Vec3{
			in.Pitch * p.TurnAccel.X(),
			in.Yaw * p.TurnAccel.Y(),
			in.Roll * p.TurnAccel.Z(),
		},
		AngularPreserve: p.AngularPreserve,
		MaxSpeed:        p.MaxSpeed,
	}
}

func ballisticContribution(p Ballistic, s State, env Environment) Contribution {
	force := s.Velocity.Mul(-p.Drag)
	force = force.Add(env.Gravity.Mul(env.Mass * p.GravityScale))
	if env.HasTarget && p.Homing > 0 {
		if dir := env.Target.Sub(s.Position); dir.LenSqr() > 1e-12 {
			force = force.Add(dir.Normalize().Mul(p.Homing))
		}
	}
	return Contribution{Force: force, AngularPreserve: p.AngularPreserve}
}

// DefaultThruster returns a Behavior for a small, agile aircraft.
func DefaultThruster() Behavior {
	return Behavior{Kind: KindThruster, Thruster: Thruster{
		MaxThrust:       40,
		Drag:            0.4,
		TurnAccel:       mgl64.Vec3{6, 4, 8},
		AngularPreserve: 0.05,
		GravityScale:    0,
		MaxSpeed:        120,
	}}
}

// DefaultBallistic returns a Behavior for unguided debris.
func DefaultBallistic() Behavior {
	return Behavior{Kind: KindBallistic, Ballistic: Ballistic{Drag: 0.05, GravityScale: 1, AngularPreserve: 0.8}}
}
