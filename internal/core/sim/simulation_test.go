package sim

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/rigidsim/internal/core/config"
	"github.com/zeusync/rigidsim/internal/core/events/bus"
	"github.com/zeusync/rigidsim/internal/core/physics"
	"github.com/zeusync/rigidsim/internal/core/steering"
)

func newSim(t testing.TB, mutate func(*config.Config), opts ...Option) *Simulation {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func spawn(t testing.TB, s *Simulation, shape physics.Shape, pos mgl32.Vec2, opts ...BodyOption) physics.Handle {
	t.Helper()
	h, err := s.Spawn(shape, pos, opts...)
	require.NoError(t, err)
	return h
}

func TestWallBounceEndToEnd(t *testing.T) {
	s := newSim(t, func(c *config.Config) { c.Physics.Drag = 0 })

	wall := spawn(t, s, physics.Rect(250, 100), mgl32.Vec2{0, -600})
	ball := spawn(t, s, physics.Circle(50), mgl32.Vec2{0, -450}, WithVelocity(mgl32.Vec2{0, -100}))

	events := s.Step()

	b, ok := s.Body(ball)
	require.True(t, ok)
	assert.InDelta(t, 50, b.Velocity.Y(), 1e-4)
	assert.InDelta(t, 0, b.Velocity.X(), 1e-6)
	assert.GreaterOrEqual(t, b.Position.Y()-50, float32(-500-1e-3), "circle still sinks into the wall")

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, physics.ContactStarted, ev.Kind)
	assert.Equal(t, uint64(1), ev.Tick)
	assert.Equal(t, wall, ev.A)
	assert.Equal(t, ball, ev.B)
	assert.Greater(t, ev.Impulse, float32(0))
	assert.InDelta(t, 150, ev.Impulse, 1e-3)

	// the normal runs from the wall (A) to the ball (B)
	speed, ok := ev.NormalSpeedOf(ball)
	require.True(t, ok)
	assert.InDelta(t, -100, speed, 1e-4)
	speed, _ = ev.ApproachSpeedOf(ball)
	assert.InDelta(t, 100, speed, 1e-4)
	speed, _ = ev.NormalSpeedOf(wall)
	assert.Zero(t, speed)

	events = s.Step()
	require.Len(t, events, 1)
	assert.Equal(t, physics.ContactStopped, events[0].Kind)
	assert.Equal(t, physics.ContactKey{A: wall, B: ball}, events[0].Key())

	for range 10 {
		assert.Empty(t, s.Step())
	}
}

func TestSustainedContactFiresOnce(t *testing.T) {
	s := newSim(t, func(c *config.Config) { c.Physics.Restitution = 0 })

	wall := spawn(t, s, physics.Rect(250, 100), mgl32.Vec2{0, -600})
	ball := spawn(t, s, physics.Circle(50), mgl32.Vec2{0, -450})

	var started, stopped int
	count := func(events []physics.CollisionEvent) {
		for _, ev := range events {
			switch ev.Kind {
			case physics.ContactStarted:
				started++
			case physics.ContactStopped:
				stopped++
			}
		}
	}

	for range 5 {
		require.NoError(t, s.AddInput(ball, mgl32.Vec2{0, -1}))
		count(s.Step())
		assert.True(t, s.Touching(wall, ball))
	}
	assert.Equal(t, 1, started)
	assert.Zero(t, stopped)

	require.NoError(t, s.AddInput(ball, mgl32.Vec2{0, 1}))
	count(s.Step())
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, stopped)
	assert.False(t, s.Touching(wall, ball))
}

func TestDespawnStopsContact(t *testing.T) {
	s := newSim(t, func(c *config.Config) { c.Physics.Restitution = 0 })

	wall := spawn(t, s, physics.Rect(250, 100), mgl32.Vec2{0, -600})
	ball := spawn(t, s, physics.Circle(50), mgl32.Vec2{0, -450})

	require.NoError(t, s.AddInput(ball, mgl32.Vec2{0, -1}))
	require.Len(t, s.Step(), 1)

	require.NoError(t, s.Despawn(ball))
	_, ok := s.Body(ball)
	assert.False(t, ok)

	events := s.Step()
	require.Len(t, events, 1)
	assert.Equal(t, physics.ContactStopped, events[0].Kind)
	assert.Equal(t, physics.ContactKey{A: wall, B: ball}, events[0].Key())

	assert.ErrorIs(t, s.Despawn(ball), ErrUnknownBody)
	assert.ErrorIs(t, s.AddInput(ball, mgl32.Vec2{1, 0}), ErrUnknownBody)
}

func TestCirclePairEventsUseCanonicalOrder(t *testing.T) {
	s := newSim(t, func(c *config.Config) {
		c.Physics.Drag = 0
		c.Physics.Restitution = 1
	})

	left := spawn(t, s, physics.Circle(10), mgl32.Vec2{-10.5, 0}, WithVelocity(mgl32.Vec2{60, 0}))
	right := spawn(t, s, physics.Circle(10), mgl32.Vec2{10.5, 0}, WithVelocity(mgl32.Vec2{-60, 0}))

	events := s.Step()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, left, ev.A)
	assert.Equal(t, right, ev.B)
	assert.InDelta(t, 60, ev.NormalSpeedA, 1e-3)
	assert.InDelta(t, -60, ev.NormalSpeedB, 1e-3)
	speed, _ := ev.ApproachSpeedOf(right)
	assert.InDelta(t, 60, speed, 1e-3)
	assert.InDelta(t, 120, ev.Impulse, 1e-3)

	l, _ := s.Body(left)
	r, _ := s.Body(right)
	assert.InDelta(t, -60, l.Velocity.X(), 1e-3)
	assert.InDelta(t, 60, r.Velocity.X(), 1e-3)
}

func TestSpawnValidation(t *testing.T) {
	s := newSim(t, nil)

	_, err := s.Spawn(physics.Circle(0), mgl32.Vec2{})
	assert.ErrorIs(t, err, ErrInvalidBody)
	assert.ErrorIs(t, err, physics.ErrInvalidShape)

	_, err = s.Spawn(physics.Rect(10, -1), mgl32.Vec2{})
	assert.ErrorIs(t, err, physics.ErrInvalidShape)

	_, err = s.Spawn(physics.Circle(1), mgl32.Vec2{}, WithMass(0))
	assert.ErrorIs(t, err, physics.ErrInvalidMass)

	_, err = s.Spawn(physics.Circle(1), mgl32.Vec2{float32(math.NaN()), 0})
	assert.ErrorIs(t, err, ErrInvalidBody)

	_, err = s.Spawn(physics.Rect(1, 1), mgl32.Vec2{}, WithVelocity(mgl32.Vec2{1, 0}))
	assert.ErrorIs(t, err, ErrInvalidBody)

	_, err = s.Spawn(physics.Circle(1), mgl32.Vec2{}, WithTarget(42))
	assert.ErrorIs(t, err, ErrUnknownBody)

	_, err = s.Spawn(physics.Circle(1), mgl32.Vec2{}, WithBehaviors(&steering.Behaviors{Seek: &steering.Seek{Radius: -1}}))
	assert.ErrorIs(t, err, steering.ErrInvalidBehavior)

	assert.Zero(t, s.Len())

	h := spawn(t, s, physics.Circle(1), mgl32.Vec2{})
	b, _ := s.Body(h)
	assert.Equal(t, physics.DefaultMass, b.Mass)
	assert.True(t, b.Dynamic)

	wall := spawn(t, s, physics.Rect(1, 1), mgl32.Vec2{5, 5})
	assert.Greater(t, wall, h)
	assert.ErrorIs(t, s.AddInput(wall, mgl32.Vec2{1, 0}), ErrInvalidBody)
	assert.ErrorIs(t, s.SetTarget(99), ErrUnknownBody)
}

func TestSeekTowardTarget(t *testing.T) {
	s := newSim(t, nil)

	player := spawn(t, s, physics.Circle(50), mgl32.Vec2{0, 0})
	enemy := spawn(t, s, physics.Circle(50), mgl32.Vec2{300, 0},
		WithBehaviors(&steering.Behaviors{Seek: &steering.Seek{Radius: 1000}}))

	s.Step()
	e, _ := s.Body(enemy)
	assert.Zero(t, e.Velocity.X(), "no target yet")

	require.NoError(t, s.SetTarget(player))
	s.Step()
	e, _ = s.Body(enemy)
	assert.Less(t, e.Velocity.X(), float32(0))
	assert.Zero(t, e.Velocity.Y())

	require.NoError(t, s.Despawn(player))
	assert.Zero(t, s.Target())
}

func TestFrameInterpolation(t *testing.T) {
	s := newSim(t, func(c *config.Config) { c.Physics.Drag = 0 })
	assert.Equal(t, uint64(0), s.Frame().Tick)

	ball := spawn(t, s, physics.Circle(5), mgl32.Vec2{0, 0}, WithVelocity(mgl32.Vec2{60, 0}), WithName("ball"))
	s.Step()

	f := s.Frame()
	assert.Equal(t, uint64(1), f.Tick)
	state, ok := f.Lookup(ball)
	require.True(t, ok)
	assert.Equal(t, "ball", state.Name)

	p0, _ := f.Interpolate(ball, 0)
	p1, _ := f.Interpolate(ball, 1)
	mid, _ := f.Interpolate(ball, 0.5)
	assert.Equal(t, mgl32.Vec3{}, p0)
	assert.InDelta(t, 1, p1.X(), 1e-5)
	assert.InDelta(t, 0.5, mid.X(), 1e-5)

	_, ok = f.Interpolate(99, 0.5)
	assert.False(t, ok)

	s.Step()
	assert.Equal(t, uint64(1), f.Tick, "published frames are immutable")
	assert.Equal(t, uint64(2), s.Frame().Tick)
}

func TestEventsPublishedOnBus(t *testing.T) {
	b := bus.New()
	var got []physics.CollisionEvent
	for _, kind := range []string{physics.EventContactStarted, physics.EventContactStopped} {
		_, err := b.Subscribe(kind, func(e bus.Event) error {
			got = append(got, e.(physics.CollisionEvent))
			return nil
		})
		require.NoError(t, err)
	}

	s := newSim(t, func(c *config.Config) { c.Physics.Drag = 0 }, WithBus(b))
	spawn(t, s, physics.Rect(250, 100), mgl32.Vec2{0, -600})
	spawn(t, s, physics.Circle(50), mgl32.Vec2{0, -450}, WithVelocity(mgl32.Vec2{0, -100}))

	first := s.Step()
	second := s.Step()
	assert.Equal(t, append(first, second...), got)
}

// crowd spawns a walled arena with wandering, seeking and avoiding agents.
func crowd(t testing.TB, workers int) *Simulation {
	s := newSim(t, func(c *config.Config) {
		c.DetectWorkers = workers
		c.Seed = 7
	})

	spawn(t, s, physics.Rect(500, 100), mgl32.Vec2{0, -600})
	spawn(t, s, physics.Rect(500, 100), mgl32.Vec2{0, 600})
	spawn(t, s, physics.Rect(100, 500), mgl32.Vec2{-600, 0})
	spawn(t, s, physics.Rect(100, 500), mgl32.Vec2{600, 0})

	player := spawn(t, s, physics.Circle(30), mgl32.Vec2{}, Avoidable())
	require.NoError(t, s.SetTarget(player))

	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 40 {
		pos := mgl32.Vec2{rng.Float32()*900 - 450, rng.Float32()*900 - 450}
		b := &steering.Behaviors{
			Wander: &steering.Wander{Variation: 3},
			Avoid:  &steering.AvoidNeighbors{Radius: 40},
		}
		if i%2 == 0 {
			b.Seek = &steering.Seek{Radius: 400}
		} else {
			b.MaintainRange = &steering.MaintainRange{Distance: 200}
		}
		spawn(t, s, physics.Circle(10+float32(i%3)*5), pos,
			WithBehaviors(b), Avoidable(), WithMass(1+float32(i%4)))
	}
	return s
}

func TestDeterministicReplay(t *testing.T) {
	a, b := crowd(t, 1), crowd(t, 1)
	for range 300 {
		require.Equal(t, a.Step(), b.Step())
		require.Equal(t, a.Checksum(), b.Checksum())
	}
}

func TestParallelDetectionMatchesSerial(t *testing.T) {
	serial, parallel := crowd(t, 1), crowd(t, 4)
	for tick := range 300 {
		require.Equal(t, serial.Step(), parallel.Step(), "tick %d", tick+1)
		require.Equal(t, serial.Checksum(), parallel.Checksum(), "tick %d", tick+1)
	}
}

func TestChecksumTracksState(t *testing.T) {
	s := newSim(t, nil)
	before := s.Checksum()
	spawn(t, s, physics.Circle(1), mgl32.Vec2{}, WithVelocity(mgl32.Vec2{1, 0}))
	afterSpawn := s.Checksum()
	assert.NotEqual(t, before, afterSpawn)
	s.Step()
	assert.NotEqual(t, afterSpawn, s.Checksum())
}

func TestSetTunablesValidates(t *testing.T) {
	s := newSim(t, nil)
	p, w := s.Config().Physics, s.Config().Steering
	p.Restitution = 2
	assert.ErrorIs(t, s.SetTunables(p, w), config.ErrInvalidConfig)

	p.Restitution = 1
	require.NoError(t, s.SetTunables(p, w))
	assert.Equal(t, float32(1), s.Config().Physics.Restitution)
}

func TestSetTunablesIsAllOrNothing(t *testing.T) {
	s := newSim(t, nil)
	before := s.Config()

	p, w := before.Physics, before.Steering
	p.Drag = 20
	w.RangeTolerance = -1
	assert.ErrorIs(t, s.SetTunables(p, w), config.ErrInvalidConfig)
	assert.Equal(t, before, s.Config())
}

func TestContactsCountsLiveContacts(t *testing.T) {
	s := newSim(t, func(c *config.Config) { c.Physics.Drag = 0 })
	spawn(t, s, physics.Rect(250, 100), mgl32.Vec2{0, -600})
	spawn(t, s, physics.Circle(50), mgl32.Vec2{0, -450}, WithVelocity(mgl32.Vec2{0, -100}))

	assert.Zero(t, s.Contacts())
	s.Step()
	assert.Equal(t, 1, s.Contacts())
	s.Step()
	assert.Zero(t, s.Contacts())
}
