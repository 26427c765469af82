package game

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Finite returns true if the value is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FiniteVec3 returns true if every component of the vector is finite.
func FiniteVec3(v mgl64.Vec3) bool {
	return Finite(v[0]) && Finite(v[1]) && Finite(v[2])
}

// FiniteQuat returns true if every component of the quaternion is finite and it is not degenerate.
func FiniteQuat(q mgl64.Quat) bool {
	return Finite(q.W) && FiniteVec3(q.V) && q.Len() > 1e-9
}

// Round64 will round a float64 to a given precision.
func Round64(val float64, precision int) float64 {
	pwr := math.Pow(10, float64(precision))
	return math.Round(val*pwr) / pwr
}

// RoundVec64 will round a 64-bit vector to a given precision.
func RoundVec64(v mgl64.Vec3, p int) mgl64.Vec3 {
	return mgl64.Vec3{Round64(v.X(), p), Round64(v.Y(), p), Round64(v.Z(), p)}
}

// Float32ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// ClampFloat clamps the given value to the given range.
func ClampFloat(num, min, max float64) float64 {
	if num < min {
		return min
	}
	return math.Min(num, max)
}

// Vec64To32 converts a 64-bit vector to a 32-bit one.
func Vec64To32(vec3 mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(vec3[0]), float32(vec3[1]), float32(vec3[2])}
}

// Mat4To32 converts a 64-bit matrix to a 32-bit one.
func Mat4To32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

// LerpVec3 linearly interpolates between a and b. t is not clamped.
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SlerpShortest spherically interpolates between two unit quaternions along the shortest arc.
func SlerpShortest(from, to mgl64.Quat, t float64) mgl64.Quat {
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	return mgl64.QuatSlerp(from, to, t).Normalize()
}

// ClampMagnitude scales the vector down so that its length does not exceed limit. A non-positive limit
// disables the clamp.
func ClampMagnitude(v mgl64.Vec3, limit float64) mgl64.Vec3 {
	if !(limit > 0) {
		return v
	}
	lenSqr := v.LenSqr()
	if lenSqr == 0 || lenSqr <= limit*limit {
		return v
	}
	return v.Mul(limit / math.Sqrt(lenSqr))
}

// IntegrateRotation advances a rotation by body-frame angular speeds (pitch, yaw, roll in radians per second)
// over dt seconds.
func IntegrateRotation(q mgl64.Quat, angular mgl64.Vec3, dt float64) mgl64.Quat {
	step := angular.Mul(dt)
	angle := step.Len()
	if angle < 1e-12 {
		return q
	}
	return q.Mul(mgl64.QuatRotate(angle, step.Mul(1/angle))).Normalize()
}
