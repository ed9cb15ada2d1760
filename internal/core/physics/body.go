package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMass is used for bodies spawned without an explicit mass.
const DefaultMass float32 = 1

// Handle is the stable identity of a simulation body.
type Handle uint64

// Input accumulates direction samples from producers (raw input or steering)
// between two ticks. The integrator consumes and resets it every tick.
type Input struct {
	Direction mgl32.Vec2
	Samples   uint32
}

// Add folds one more direction sample into the accumulator.
func (in *Input) Add(dir mgl32.Vec2) {
	in.Direction = in.Direction.Add(dir)
	in.Samples++
}

// Set replaces the accumulated direction with a single sample.
func (in *Input) Set(dir mgl32.Vec2) {
	in.Direction = dir
	in.Samples = 1
}

func (in *Input) Reset() { *in = Input{} }

// Body is one rigid body record. Vectors are three component for uniformity
// with render transforms; z is never written by the simulation.
type Body struct {
	Handle Handle
	Shape  Shape

	Position         mgl32.Vec3
	PreviousPosition mgl32.Vec3
	Velocity         mgl32.Vec3
	Acceleration     mgl32.Vec3

	Input Input
	Mass  float32

	// Dynamic bodies integrate and collide as movers. Static bodies (walls)
	// only ever appear as the second party of a wall contact.
	Dynamic bool
}

// Validate checks construction preconditions.
func (b *Body) Validate() error {
	if err := b.Shape.Validate(); err != nil {
		return err
	}
	if !(b.Mass > 0) || math.IsInf(float64(b.Mass), 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidMass, b.Mass)
	}
	return nil
}

// Center returns the planar position.
func (b *Body) Center() mgl32.Vec2 { return b.Position.Vec2() }
