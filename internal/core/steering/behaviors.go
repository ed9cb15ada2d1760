package steering

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Seek steers toward the target while it is closer than Radius.
type Seek struct {
	Radius float32 `json:"radius" yaml:"radius"`
}

// Flee steers away from the target while it is closer than Radius.
type Flee struct {
	Radius float32 `json:"radius" yaml:"radius"`
}

// Wander drifts along a persistent heading. Every tick the heading turns by
// a random angle in [-Variation, +Variation] * dt radians.
type Wander struct {
	Heading   mgl32.Vec2 `json:"heading" yaml:"heading"`
	Variation float32    `json:"variation" yaml:"variation"`
}

// NewWander starts a wander with a random heading.
func NewWander(rng Source, variation float32) *Wander {
	angle := rng.Float32() * 2 * math.Pi
	return &Wander{Heading: mgl32.Vec2{cos32(angle), sin32(angle)}, Variation: variation}
}

// MaintainRange keeps the agent at Distance from the target, within the
// configured tolerance band.
type MaintainRange struct {
	Distance float32 `json:"distance" yaml:"distance"`
}

// AvoidNeighbors pushes away from Avoidable bodies whose clearance (gap
// between the two circles) is below Radius.
type AvoidNeighbors struct {
	Radius float32 `json:"radius" yaml:"radius"`
}

// Behaviors is the closed set of optional behaviors of one agent. A nil
// member is disabled.
type Behaviors struct {
	Seek          *Seek           `json:"seek,omitempty" yaml:"seek,omitempty"`
	Flee          *Flee           `json:"flee,omitempty" yaml:"flee,omitempty"`
	Wander        *Wander         `json:"wander,omitempty" yaml:"wander,omitempty"`
	MaintainRange *MaintainRange  `json:"maintain_range,omitempty" yaml:"maintain_range,omitempty"`
	Avoid         *AvoidNeighbors `json:"avoid,omitempty" yaml:"avoid,omitempty"`
}

// Empty reports whether no behavior is enabled.
func (b *Behaviors) Empty() bool {
	return b == nil || b.Seek == nil && b.Flee == nil && b.Wander == nil && b.MaintainRange == nil && b.Avoid == nil
}

// NeedsTarget reports whether any enabled behavior reads the target position.
func (b *Behaviors) NeedsTarget() bool {
	return b != nil && (b.Seek != nil || b.Flee != nil || b.MaintainRange != nil)
}

// Clone deep-copies the behavior set so wander state is not shared.
func (b *Behaviors) Clone() *Behaviors {
	if b == nil {
		return nil
	}
	out := &Behaviors{}
	if b.Seek != nil {
		v := *b.Seek
		out.Seek = &v
	}
	if b.Flee != nil {
		v := *b.Flee
		out.Flee = &v
	}
	if b.Wander != nil {
		v := *b.Wander
		out.Wander = &v
	}
	if b.MaintainRange != nil {
		v := *b.MaintainRange
		out.MaintainRange = &v
	}
	if b.Avoid != nil {
		v := *b.Avoid
		out.Avoid = &v
	}
	return out
}

// Validate rejects negative radii and distances.
func (b *Behaviors) Validate() error {
	if b == nil {
		return nil
	}
	switch {
	case b.Seek != nil && b.Seek.Radius < 0:
		return errorf("seek radius %v", b.Seek.Radius)
	case b.Flee != nil && b.Flee.Radius < 0:
		return errorf("flee radius %v", b.Flee.Radius)
	case b.Wander != nil && b.Wander.Variation < 0:
		return errorf("wander variation %v", b.Wander.Variation)
	case b.MaintainRange != nil && b.MaintainRange.Distance < 0:
		return errorf("maintain range distance %v", b.MaintainRange.Distance)
	case b.Avoid != nil && !(b.Avoid.Radius > 0):
		return errorf("avoid radius %v", b.Avoid.Radius)
	}
	return nil
}

func cos32(a float32) float32 { return float32(math.Cos(float64(a))) }
func sin32(a float32) float32 { return float32(math.Sin(float64(a))) }
