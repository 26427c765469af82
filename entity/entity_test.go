package entity

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/control"
	"github.com/oomph-ac/dogfight/geometry"
	"github.com/oomph-ac/dogfight/oerror"
)

const testDelta = 1.0 / 60

type mockResolver map[uint32]*Entity

func (m mockResolver) Entity(id uint32) (*Entity, bool) {
	e, ok := m[id]
	return e, ok
}

func newTestEntity(id uint32, b Behavior, mass float64, pos, vel mgl64.Vec3) *Entity {
	return New(id, Config{
		Shape:    geometry.Cube("cube", 1),
		Behavior: b,
		Mass:     mass,
		Position: pos,
		Velocity: vel,
	})
}

func TestNonPositiveMassIsInfinite(t *testing.T) {
	for _, m := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if !NewMass(m).Infinite() {
			t.Fatalf("expected mass %v to be infinite", m)
		}
	}
	if NewMass(2).Infinite() || NewMass(2).Float() != 2 {
		t.Fatalf("expected mass 2 to be kept as is")
	}
}

func TestPredictSemiImplicitEuler(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindBallistic, Ballistic: Ballistic{GravityScale: 1}}, 2, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	e.Predict(Tick{Now: 0, Delta: 0.5, Gravity: mgl64.Vec3{0, -10, 0}})

	p := e.Predicted()
	if !p.Velocity.ApproxEqual(mgl64.Vec3{1, -5, 0}) {
		t.Fatalf("unexpected predicted velocity %v", p.Velocity)
	}
	// The position uses the updated velocity.
	if !p.Position.ApproxEqual(mgl64.Vec3{0.5, -2.5, 0}) {
		t.Fatalf("unexpected predicted position %v", p.Position)
	}
	if e.Position() != (mgl64.Vec3{}) {
		t.Fatalf("predict modified the authoritative position: %v", e.Position())
	}
}

func TestPredictDoesNotTouchAuthoritativeState(t *testing.T) {
	e := newTestEntity(1, DefaultThruster(), 1, mgl64.Vec3{3, 4, 5}, mgl64.Vec3{0, 0, 10})
	e.SetController(control.Func(func() control.Input { return control.Input{Throttle: 1, Yaw: 1} }))
	before := e.State()
	for range 10 {
		e.Predict(Tick{Delta: testDelta})
	}
	if e.State() != before {
		t.Fatalf("authoritative state changed without a commit: %v != %v", e.State(), before)
	}
}

func TestInfiniteMassKeepsVelocity(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindBallistic, Ballistic: Ballistic{Drag: 1, GravityScale: 1}}, 0, mgl64.Vec3{}, mgl64.Vec3{2, 0, 0})
	e.AddForce(mgl64.Vec3{100, 0, 0}, 10)
	e.Predict(Tick{Delta: testDelta, Gravity: mgl64.Vec3{0, -9.81, 0}})
	if e.Predicted().Velocity != (mgl64.Vec3{2, 0, 0}) {
		t.Fatalf("expected immovable body to keep its velocity, got %v", e.Predicted().Velocity)
	}
}

func TestCommitPromotesPrediction(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindBallistic}, 1, mgl64.Vec3{}, mgl64.Vec3{6, 0, 0})
	e.Predict(Tick{Delta: 0.5})
	if err := e.Commit(0.5); err != nil {
		t.Fatalf("unexpected commit error: %v", err)
	}
	if !e.Position().ApproxEqual(mgl64.Vec3{3, 0, 0}) {
		t.Fatalf("expected position (3,0,0), got %v", e.Position())
	}
	if e.SampleCount() != 2 {
		t.Fatalf("expected 2 samples after one commit, got %d", e.SampleCount())
	}
}

func TestCommitRejectsInvalidState(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindBallistic}, 1, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	e.Predict(Tick{Delta: testDelta})
	e.SetPredictedVelocity(mgl64.Vec3{math.NaN(), 0, 0})
	e.Repredict(testDelta)

	before := e.State()
	err := e.Commit(testDelta)
	if !errors.Is(err, oerror.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if e.State() != before {
		t.Fatalf("invalid commit changed the authoritative state")
	}
	if e.Predicted() != before {
		t.Fatalf("expected predicted state to be reset after an invalid commit")
	}
	if e.SampleCount() != 1 {
		t.Fatalf("invalid commit must not record samples, got %d", e.SampleCount())
	}
}

func TestTransientForceExpires(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindBallistic}, 1, mgl64.Vec3{}, mgl64.Vec3{})
	e.AddForce(mgl64.Vec3{60, 0, 0}, 0.01)
	e.Predict(Tick{Now: 0, Delta: testDelta})
	if e.Predicted().Velocity.X() <= 0 {
		t.Fatalf("expected force to accelerate the entity")
	}
	if err := e.Commit(testDelta); err != nil {
		t.Fatalf("unexpected commit error: %v", err)
	}
	if len(e.Forces()) != 0 {
		t.Fatalf("expected expired force to be dropped, got %d", len(e.Forces()))
	}
}

func TestShieldHoldsPosition(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindShield, Shield: Shield{Spin: mgl64.Vec3{0, 1, 0}}}, 5, mgl64.Vec3{2, 2, 2}, mgl64.Vec3{})
	e.AddForce(mgl64.Vec3{0, 100, 0}, 10)
	e.Predict(Tick{Delta: testDelta, Gravity: mgl64.Vec3{0, -9.81, 0}})
	if e.Predicted().Position != (mgl64.Vec3{2, 2, 2}) {
		t.Fatalf("expected shield to hold position, got %v", e.Predicted().Position)
	}
	if e.Predicted().Angular != (mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("expected shield to spin, got %v", e.Predicted().Angular)
	}
}

func TestStaticNeverMoves(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindStatic}, 0, mgl64.Vec3{}, mgl64.Vec3{5, 0, 0})
	e.Predict(Tick{Delta: testDelta, Gravity: mgl64.Vec3{0, -9.81, 0}})
	if e.Predicted() != e.State() {
		t.Fatalf("expected static prediction to equal authoritative state")
	}
	if e.Velocity() != (mgl64.Vec3{}) {
		t.Fatalf("expected static velocity to be zeroed, got %v", e.Velocity())
	}
}

func TestAngularDamping(t *testing.T) {
	b := Behavior{Kind: KindBallistic, Ballistic: Ballistic{AngularPreserve: 0.25}}
	e := New(1, Config{Shape: geometry.Cube("cube", 1), Behavior: b, Mass: 1, Angular: mgl64.Vec3{0, 4, 0}})
	e.Predict(Tick{Delta: 1})
	if got := e.Predicted().Angular.Y(); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected angular speed 1 after one second, got %v", got)
	}
}

func TestBoundsCoverSweep(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindBallistic}, 1, mgl64.Vec3{}, mgl64.Vec3{60, 0, 0})
	e.Predict(Tick{Delta: testDelta})
	center, radius := e.Bounds()
	if !center.ApproxEqual(mgl64.Vec3{0.5, 0, 0}) {
		t.Fatalf("unexpected bounds centre %v", center)
	}
	if math.Abs(radius-(e.Range()+0.5)) > 1e-9 {
		t.Fatalf("unexpected bounds radius %v", radius)
	}
	for _, seg := range e.HitSegments() {
		for _, p := range []mgl64.Vec3{seg.Start, seg.End} {
			if p.Sub(center).Len() > radius+1e-9 {
				t.Fatalf("hit point %v escapes bounds", p)
			}
		}
	}
}

func TestSampleAtRenderTime(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindBallistic}, 1, mgl64.Vec3{}, mgl64.Vec3{6, 0, 0})
	now := 0.0
	for range 3 {
		e.Predict(Tick{Now: now, Delta: 0.5})
		now += 0.5
		if err := e.Commit(now); err != nil {
			t.Fatalf("unexpected commit error: %v", err)
		}
	}

	if s := e.SampleAtRenderTime(-1); s.Position != (mgl64.Vec3{}) {
		t.Fatalf("expected oldest sample before history, got %v", s.Position)
	}
	if s := e.SampleAtRenderTime(0.75); !s.Position.ApproxEqual(mgl64.Vec3{4.5, 0, 0}) {
		t.Fatalf("expected interpolated position (4.5,0,0), got %v", s.Position)
	}
	// Extrapolation is capped at the entity's limit past the newest sample.
	s := e.SampleAtRenderTime(now + 10)
	want := mgl64.Vec3{9 + 6*e.maxExtrapolation, 0, 0}
	if !s.Position.ApproxEqual(want) {
		t.Fatalf("expected extrapolated position %v, got %v", want, s.Position)
	}
}

func TestSampleRotationShortestArc(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindBallistic}, 1, mgl64.Vec3{}, mgl64.Vec3{})
	e.Predict(Tick{Delta: 1})
	e.pred.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}).Scale(-1)
	if err := e.Commit(1); err != nil {
		t.Fatalf("unexpected commit error: %v", err)
	}
	q := e.SampleAtRenderTime(0.5).Rotation
	want := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})
	if math.Abs(math.Abs(q.Dot(want))-1) > 1e-9 {
		t.Fatalf("expected a quarter-turn halfway rotation, got %v", q)
	}
}

func TestSampleBufferBounded(t *testing.T) {
	e := New(1, Config{Shape: geometry.Cube("cube", 1), Behavior: Behavior{Kind: KindBallistic}, Mass: 1, SampleCapacity: 4})
	for i := range 10 {
		e.Predict(Tick{Delta: testDelta})
		if err := e.Commit(float64(i+1) * testDelta); err != nil {
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	if e.SampleCount() != 4 {
		t.Fatalf("expected sample buffer to hold 4 samples, got %d", e.SampleCount())
	}
}

func TestFactoryMissingReference(t *testing.T) {
	f := Factory{Shapes: geometry.NewLibrary(geometry.Cube("cube", 1)), Entities: mockResolver{}, InertLifetime: 2}
	_, err := f.Build(5, Request{Shape: "cube", Behavior: DefaultBallistic(), Mass: 1, Target: 9}, 0)
	if !errors.Is(err, oerror.ErrMissingReference) {
		t.Fatalf("expected ErrMissingReference, got %v", err)
	}

	e, err := f.Build(5, Request{Shape: "cube", Behavior: DefaultBallistic(), Mass: 1, Target: 9, AllowInert: true}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.Inert() || !e.Spectral() || e.Target() != nil {
		t.Fatalf("expected an inert spectral entity without target")
	}
	if e.Overdue(2.5) || !e.Overdue(3) {
		t.Fatalf("expected inert entity to expire after its lifetime")
	}
}

func TestFactoryUnknownShape(t *testing.T) {
	f := Factory{Shapes: geometry.NewLibrary()}
	if _, err := f.Build(1, Request{Shape: "missing"}, 0); !errors.Is(err, oerror.ErrUnknownShape) {
		t.Fatalf("expected ErrUnknownShape, got %v", err)
	}
}

func TestWeaponCooldown(t *testing.T) {
	b := DefaultThruster()
	b.Thruster.Weapon = &Weapon{
		Cooldown:    0.5,
		MuzzleSpeed: 100,
		Offset:      mgl64.Vec3{0, 0, 2},
		Projectile:  ProjectileSpec{Shape: "bullet", Mass: 0.1, Lifetime: 3},
	}
	e := newTestEntity(3, b, 1, mgl64.Vec3{}, mgl64.Vec3{0, 0, 10})

	req, ok := e.Fire(1)
	if !ok {
		t.Fatalf("expected weapon to be ready")
	}
	if req.Source != 3 || !req.Velocity.ApproxEqual(mgl64.Vec3{0, 0, 110}) || !req.Position.ApproxEqual(mgl64.Vec3{0, 0, 2}) {
		t.Fatalf("unexpected projectile request %+v", req)
	}
	if _, ok := e.Fire(1.25); ok {
		t.Fatalf("expected weapon to be cooling down")
	}
	if _, ok := e.Fire(1.5); !ok {
		t.Fatalf("expected weapon to be ready after its cooldown")
	}
}

func TestFactoryResolvesSourceByIdentity(t *testing.T) {
	shooter := newTestEntity(3, DefaultThruster(), 1, mgl64.Vec3{}, mgl64.Vec3{})
	f := Factory{Shapes: geometry.NewLibrary(geometry.Cube("cube", 1)), Entities: mockResolver{3: shooter}}
	e, err := f.Build(4, Request{Shape: "cube", Behavior: DefaultBallistic(), Mass: 1, Source: 3}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Source() != shooter || !e.FiredBy(shooter) {
		t.Fatalf("expected entity to be fired by %d", shooter.ID())
	}
	if e.FiredBy(newTestEntity(3, DefaultThruster(), 1, mgl64.Vec3{}, mgl64.Vec3{})) {
		t.Fatalf("an entity reusing the source's id must not count as the source")
	}
}

func TestBoundsIgnoreNonFinitePrediction(t *testing.T) {
	e := newTestEntity(1, Behavior{Kind: KindBallistic}, 1, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{})
	e.AddForce(mgl64.Vec3{math.Inf(1), 0, 0}, 100)
	e.Predict(Tick{Delta: testDelta})
	if e.Predicted().Valid() {
		t.Fatalf("expected an invalid prediction")
	}
	center, radius := e.Bounds()
	if center != (mgl64.Vec3{2, 0, 0}) || radius != e.Range() {
		t.Fatalf("expected the authoritative sphere, got %v %v", center, radius)
	}
}
