package entity

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/dogfight/game"
)

// PositionSample is a position of an entity recorded at a certain simulation time.
type PositionSample struct {
	Time     float64
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

// RotationSample is a rotation of an entity recorded at a certain simulation time.
type RotationSample struct {
	Time     float64
	Rotation mgl64.Quat
}

// RenderSample is the interpolated placement of an entity at a render time.
type RenderSample struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Matrix returns the model matrix of the sample for the renderer.
func (s RenderSample) Matrix() mgl32.Mat4 {
	m := mgl64.Translate3D(s.Position.X(), s.Position.Y(), s.Position.Z()).Mul4(s.Rotation.Mat4())
	return game.Mat4To32(m)
}

// appendSamples records the current authoritative state at time t.
func (e *Entity) appendSamples(t float64) {
	e.mu.Lock()
	e.appendSamplesLocked(t)
	e.mu.Unlock()
}

func (e *Entity) appendSamplesLocked(t float64) {
	// Both queues have a non-zero capacity, so Append cannot fail.
	_ = e.positions.Append(PositionSample{Time: t, Position: e.auth.Position, Velocity: e.auth.Velocity})
	_ = e.rotations.Append(RotationSample{Time: t, Rotation: e.auth.Rotation})
}

// SampleCount returns the number of position samples held by the entity.
func (e *Entity) SampleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.positions.Len()
}

// SampleAtRenderTime returns the placement of the entity at render time t, interpolated between the two
// recorded samples that bracket it. Before the oldest sample the oldest is returned. Past the newest,
// the position is extrapolated along the newest velocity for at most the entity's extrapolation limit.
// It is safe to call from any goroutine.
func (e *Entity) SampleAtRenderTime(t float64) RenderSample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return RenderSample{Position: e.samplePosition(t), Rotation: e.sampleRotation(t)}
}

func (e *Entity) samplePosition(t float64) mgl64.Vec3 {
	var prev PositionSample
	first := true
	for s := range e.positions.Iter() {
		if first {
			if t <= s.Time {
				return s.Position
			}
			prev, first = s, false
			continue
		}
		if t <= s.Time {
			return game.LerpVec3(prev.Position, s.Position, factor(prev.Time, s.Time, t))
		}
		prev = s
	}
	if first {
		return e.auth.Position
	}
	ahead := game.ClampFloat(t-prev.Time, 0, e.maxExtrapolation)
	return prev.Position.Add(prev.Velocity.Mul(ahead))
}

func (e *Entity) sampleRotation(t float64) mgl64.Quat {
	var prev RotationSample
	first := true
	for s := range e.rotations.Iter() {
		if first {
			if t <= s.Time {
				return s.Rotation
			}
			prev, first = s, false
			continue
		}
		if t <= s.Time {
			return game.SlerpShortest(prev.Rotation, s.Rotation, factor(prev.Time, s.Time, t))
		}
		prev = s
	}
	if first {
		return e.auth.Rotation
	}
	return prev.Rotation
}

// factor returns the interpolation factor of t between a and b, clamped to [0, 1].
func factor(a, b, t float64) float64 {
	if b <= a {
		return 1
	}
	return game.ClampFloat((t-a)/(b-a), 0, 1)
}
