package physics

import "fmt"

// Event types published on the bus.
const (
	EventContactStarted = "collision.started"
	EventContactStopped = "collision.stopped"
)

type EventKind uint8

const (
	ContactStarted EventKind = iota + 1
	ContactStopped
)

func (k EventKind) String() string {
	switch k {
	case ContactStarted:
		return "started"
	case ContactStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// CollisionEvent is an edge-triggered contact transition. A and B follow the
// canonical ContactKey order. Impulse and normal speeds are only set on
// Started events.
type CollisionEvent struct {
	Kind EventKind `json:"kind"`
	Tick uint64    `json:"tick"`
	A    Handle    `json:"a"`
	B    Handle    `json:"b"`

	Impulse      float32 `json:"impulse,omitempty"`
	NormalSpeedA float32 `json:"normal_speed_a,omitempty"`
	NormalSpeedB float32 `json:"normal_speed_b,omitempty"`
}

// Type implements the event bus routing key.
func (e CollisionEvent) Type() string {
	if e.Kind == ContactStopped {
		return EventContactStopped
	}
	return EventContactStarted
}

// Key returns the contact edge the event belongs to.
func (e CollisionEvent) Key() ContactKey { return ContactKey{A: e.A, B: e.B} }

// Involves reports whether h is one of the two parties.
func (e CollisionEvent) Involves(h Handle) bool { return e.A == h || e.B == h }

// NormalSpeedOf returns h's velocity along the A-to-B contact normal, if h
// is a party.
func (e CollisionEvent) NormalSpeedOf(h Handle) (float32, bool) {
	switch h {
	case e.A:
		return e.NormalSpeedA, true
	case e.B:
		return e.NormalSpeedB, true
	default:
		return 0, false
	}
}

// ApproachSpeedOf returns how fast h was moving toward the other party.
// Negative means h was moving away.
func (e CollisionEvent) ApproachSpeedOf(h Handle) (float32, bool) {
	switch h {
	case e.A:
		return e.NormalSpeedA, true
	case e.B:
		return negate(e.NormalSpeedB), true
	default:
		return 0, false
	}
}

func (e CollisionEvent) String() string {
	if e.Kind == ContactStopped {
		return fmt.Sprintf("tick %d: contact %d-%d stopped", e.Tick, e.A, e.B)
	}
	return fmt.Sprintf("tick %d: contact %d-%d started (impulse %.3f)", e.Tick, e.A, e.B, e.Impulse)
}
