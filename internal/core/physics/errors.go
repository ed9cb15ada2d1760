package physics

import "errors"

// Construction-time precondition failures. The simulation never produces these mid-tick.
var (
	ErrInvalidShape = errors.New("invalid collider shape")
	ErrInvalidMass  = errors.New("mass must be positive")
)
