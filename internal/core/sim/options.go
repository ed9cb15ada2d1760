package sim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/rigidsim/internal/core/events/bus"
	"github.com/zeusync/rigidsim/internal/core/observability/log"
	"github.com/zeusync/rigidsim/internal/core/physics"
	"github.com/zeusync/rigidsim/internal/core/steering"
)

// Option configures a Simulation at construction.
type Option func(*Simulation)

// WithLogger replaces the default no-op logger.
func WithLogger(l log.Log) Option {
	return func(s *Simulation) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBus publishes every collision event on b after each tick.
func WithBus(b bus.EventBus) Option {
	return func(s *Simulation) { s.bus = b }
}

// BodyOption configures one body at spawn.
type BodyOption func(*spawnSpec)

type spawnSpec struct {
	velocity  mgl32.Vec2
	mass      float32
	avoidable bool
	behaviors *steering.Behaviors
	target    physics.Handle
	name      string
}

// WithVelocity sets the initial velocity of a circle.
func WithVelocity(v mgl32.Vec2) BodyOption {
	return func(s *spawnSpec) { s.velocity = v }
}

// WithMass overrides DefaultMass. Zero and negative values fail validation.
func WithMass(m float32) BodyOption {
	return func(s *spawnSpec) { s.mass = m }
}

// Avoidable makes the body visible to AvoidNeighbors of other agents.
func Avoidable() BodyOption {
	return func(s *spawnSpec) { s.avoidable = true }
}

// WithBehaviors attaches steering to a circle. The set is cloned.
func WithBehaviors(b *steering.Behaviors) BodyOption {
	return func(s *spawnSpec) { s.behaviors = b.Clone() }
}

// WithTarget steers this body relative to h instead of the simulation target.
func WithTarget(h physics.Handle) BodyOption {
	return func(s *spawnSpec) { s.target = h }
}

// WithName labels the body in logs and frames.
func WithName(name string) BodyOption {
	return func(s *spawnSpec) { s.name = name }
}
