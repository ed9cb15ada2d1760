package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// epsilon is the single-precision machine epsilon; axis values below it count as zero.
const epsilon float32 = 1.1920929e-07

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v
// has no length. It never divides by zero.
func NormalizeOrZero(v mgl32.Vec2) mgl32.Vec2 {
	lenSq := v.Dot(v)
	if lenSq <= epsilon*epsilon {
		return mgl32.Vec2{}
	}
	l := sqrt32(lenSq)
	return mgl32.Vec2{v[0] / l, v[1] / l}
}

// Planar drops the unused z component.
func Planar(v mgl32.Vec3) mgl32.Vec2 { return v.Vec2() }

// ClampSpeed rescales v to maxSpeed when its magnitude exceeds it. The
// squared comparison keeps the common under-limit case free of a square root.
func ClampSpeed(v mgl32.Vec3, maxSpeed float32) mgl32.Vec3 {
	lenSq := v.Dot(v)
	if lenSq <= maxSpeed*maxSpeed {
		return v
	}
	return v.Mul(maxSpeed / sqrt32(lenSq))
}

// Interpolate blends between the previous and current tick positions.
// alpha is the fraction of a fixed tick elapsed at render time and is
// clamped to [0, 1].
func Interpolate(previous, current mgl32.Vec3, alpha float32) mgl32.Vec3 {
	alpha = mgl32.Clamp(alpha, 0, 1)
	return previous.Add(current.Sub(previous).Mul(alpha))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// signum follows the usual float convention where +0 maps to +1.
func signum(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }
