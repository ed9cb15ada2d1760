package sim

import (
	"cmp"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/rigidsim/internal/core/physics"
)

// BodyState is the presentation copy of one body at the end of a tick.
type BodyState struct {
	Handle   physics.Handle `json:"handle"`
	Name     string         `json:"name,omitempty"`
	Shape    physics.Shape  `json:"shape"`
	Previous mgl32.Vec3     `json:"previous"`
	Position mgl32.Vec3     `json:"position"`
	Velocity mgl32.Vec3     `json:"velocity"`
	Dynamic  bool           `json:"dynamic"`
}

// Frame is an immutable snapshot published after every tick. Bodies are
// sorted by handle.
type Frame struct {
	Tick   uint64                   `json:"tick"`
	Bodies []BodyState              `json:"bodies"`
	Events []physics.CollisionEvent `json:"events,omitempty"`
}

// Lookup finds the state of h in the snapshot.
func (f *Frame) Lookup(h physics.Handle) (BodyState, bool) {
	i, ok := slices.BinarySearchFunc(f.Bodies, h, func(b BodyState, h physics.Handle) int {
		return cmp.Compare(b.Handle, h)
	})
	if !ok {
		return BodyState{}, false
	}
	return f.Bodies[i], true
}

// Interpolate returns the render position of h at fraction alpha of the way
// from the previous tick to this one.
func (f *Frame) Interpolate(h physics.Handle, alpha float32) (mgl32.Vec3, bool) {
	b, ok := f.Lookup(h)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return physics.Interpolate(b.Previous, b.Position, alpha), true
}

func (s *Simulation) publishFrame() {
	f := &Frame{
		Tick:   s.tick,
		Bodies: make([]BodyState, len(s.bodies)),
	}
	for i, e := range s.bodies {
		f.Bodies[i] = BodyState{
			Handle:   e.body.Handle,
			Name:     e.name,
			Shape:    e.body.Shape,
			Previous: e.body.PreviousPosition,
			Position: e.body.Position,
			Velocity: e.body.Velocity,
			Dynamic:  e.body.Dynamic,
		}
	}
	if len(s.events) > 0 {
		f.Events = slices.Clone(s.events)
	}
	s.frame.Store(f)
}
