package steering

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/rigidsim/internal/core/config"
	"github.com/zeusync/rigidsim/internal/core/physics"
)

// Source is the random stream used by Wander. *rand.Rand from math/rand/v2
// satisfies it; the simulation owns and seeds the instance.
type Source interface {
	Float32() float32
}

// Agent is the steering view of one governed body.
type Agent struct {
	Handle   physics.Handle
	Position mgl32.Vec2
	Radius   float32
}

// Neighbor is an Avoidable body visible to AvoidNeighbors.
type Neighbor struct {
	Handle   physics.Handle
	Position mgl32.Vec2
	Radius   float32
}

// Context carries the per-tick inputs shared by every agent.
type Context struct {
	Target    mgl32.Vec2
	HasTarget bool
	Neighbors []Neighbor
	Weights   config.Steering
	Rand      Source
	DT        float32
}

// Steer sums the contributions of every enabled behavior into one steering
// vector. Wander state is advanced in place. The result is not normalized;
// the integrator does that when it turns input into acceleration.
func Steer(agent Agent, b *Behaviors, ctx *Context) mgl32.Vec2 {
	var steering mgl32.Vec2
	if b == nil {
		return steering
	}
	w := ctx.Weights

	if ctx.HasTarget {
		if b.Seek != nil {
			steering = steering.Add(SeekForce(agent.Position, ctx.Target, b.Seek.Radius).Mul(w.SeekWeight))
		}
		if b.Flee != nil {
			steering = steering.Add(FleeForce(agent.Position, ctx.Target, b.Flee.Radius).Mul(w.FleeWeight))
		}
	}

	if b.Wander != nil {
		steering = steering.Add(b.Wander.Step(ctx.Rand, ctx.DT).Mul(w.WanderWeight))
	}

	if ctx.HasTarget && b.MaintainRange != nil {
		f := RangeForce(agent.Position, ctx.Target, b.MaintainRange.Distance, w.RangeTolerance)
		steering = steering.Add(f.Mul(w.RangeWeight))
	}

	if b.Avoid != nil {
		steering = steering.Add(AvoidForce(agent, ctx.Neighbors, b.Avoid.Radius).Mul(w.AvoidWeight))
	}

	return steering
}

// SeekForce is the unit vector toward target when it is within radius.
func SeekForce(pos, target mgl32.Vec2, radius float32) mgl32.Vec2 {
	to := target.Sub(pos)
	if to.Dot(to) >= radius*radius {
		return mgl32.Vec2{}
	}
	return physics.NormalizeOrZero(to)
}

// FleeForce is the unit vector away from target when it is within radius.
func FleeForce(pos, target mgl32.Vec2, radius float32) mgl32.Vec2 {
	away := pos.Sub(target)
	if away.Dot(away) >= radius*radius {
		return mgl32.Vec2{}
	}
	return physics.NormalizeOrZero(away)
}

// RangeForce seeks beyond desired+tolerance, flees inside desired-tolerance
// and is zero within the band.
func RangeForce(pos, target mgl32.Vec2, desired, tolerance float32) mgl32.Vec2 {
	to := target.Sub(pos)
	dist := to.Len()
	switch {
	case dist > desired+tolerance:
		return physics.NormalizeOrZero(to)
	case dist < desired-tolerance:
		return physics.NormalizeOrZero(to).Mul(-1)
	default:
		return mgl32.Vec2{}
	}
}

// AvoidForce pushes the agent away from every neighbor whose clearance lies
// in (0, radius), scaled by (radius - clearance) / radius. Overlapping
// neighbors are left to collision resolution.
func AvoidForce(agent Agent, neighbors []Neighbor, radius float32) mgl32.Vec2 {
	var push mgl32.Vec2
	if radius <= 0 {
		return push
	}
	for _, n := range neighbors {
		if n.Handle == agent.Handle {
			continue
		}
		offset := agent.Position.Sub(n.Position)
		dist := offset.Len()
		clearance := dist - n.Radius - agent.Radius
		if clearance <= 0 || clearance >= radius {
			continue
		}
		strength := (radius - clearance) / radius
		push = push.Add(offset.Mul(strength / dist))
	}
	return push
}

// Step turns the heading by a random angle scaled by dt and returns the new
// heading. With zero variation the heading is returned untouched and no
// random number is drawn.
func (w *Wander) Step(rng Source, dt float32) mgl32.Vec2 {
	if w.Variation == 0 || rng == nil {
		return w.Heading
	}
	angle := w.Variation * (rng.Float32()*2 - 1) * dt
	w.Heading = physics.NormalizeOrZero(mgl32.Rotate2D(angle).Mul2x1(w.Heading))
	return w.Heading
}
