package clock

import "time"

// Fixed converts variable wall-clock frame time into whole fixed ticks.
// Leftover time carries over to the next frame and is exposed as the
// overstep fraction used for render interpolation.
type Fixed struct {
	step     time.Duration
	maxSteps int

	accumulated time.Duration
	dropped     uint64
}

// NewFixed returns a clock ticking every step. A frame never yields more than
// maxSteps ticks; the backlog beyond that is discarded so a stalled host
// does not spiral.
func NewFixed(step time.Duration, maxSteps int) *Fixed {
	if step <= 0 {
		panic("clock: step must be positive")
	}
	if maxSteps < 1 {
		maxSteps = 1
	}
	return &Fixed{step: step, maxSteps: maxSteps}
}

// Advance adds elapsed frame time and returns how many ticks to run now.
// Negative durations are ignored.
func (c *Fixed) Advance(elapsed time.Duration) int {
	if elapsed > 0 {
		c.accumulated += elapsed
	}

	steps := int(c.accumulated / c.step)
	c.accumulated -= time.Duration(steps) * c.step

	if steps > c.maxSteps {
		c.dropped += uint64(steps - c.maxSteps)
		steps = c.maxSteps
	}
	return steps
}

// Overstep is the fraction of a tick accumulated but not yet simulated, in [0, 1).
func (c *Fixed) Overstep() float32 {
	return float32(float64(c.accumulated) / float64(c.step))
}

func (c *Fixed) Step() time.Duration { return c.step }

// Dropped counts ticks discarded by the per-frame cap.
func (c *Fixed) Dropped() uint64 { return c.dropped }
