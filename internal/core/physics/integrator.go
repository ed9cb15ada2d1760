package physics

import "github.com/zeusync/rigidsim/internal/core/config"

// Integrate advances one dynamic body by a fixed tick of dt seconds.
//
// The result depends only on the body state, its accumulated input, dt and
// cfg. Input is consumed: the accumulator is reset before returning.
func Integrate(b *Body, cfg config.Physics, dt float32) {
	// Normalizing averages the accumulated samples so diagonal input is not faster.
	accel := NormalizeOrZero(b.Input.Direction).Mul(cfg.Acceleration)
	b.Acceleration = accel.Vec3(0)

	dragStep := cfg.Drag * dt
	if abs32(accel.X()) < epsilon {
		b.Velocity[0] = applyDrag(b.Velocity[0], dragStep)
	}
	if abs32(accel.Y()) < epsilon {
		b.Velocity[1] = applyDrag(b.Velocity[1], dragStep)
	}

	b.Velocity = ClampSpeed(b.Velocity.Add(b.Acceleration.Mul(dt)), cfg.MaxSpeed)

	b.PreviousPosition = b.Position
	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	b.Input.Reset()
}

// applyDrag moves v toward zero by at most step and never past it.
func applyDrag(v, step float32) float32 {
	switch {
	case v > 0:
		return v - min(v, step)
	case v < 0:
		return v + min(-v, step)
	default:
		return v
	}
}
