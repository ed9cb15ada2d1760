package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/rigidsim/internal/core/config"
	"github.com/zeusync/rigidsim/internal/core/events/bus"
	"github.com/zeusync/rigidsim/internal/core/observability/log"
	"github.com/zeusync/rigidsim/internal/core/physics"
	"github.com/zeusync/rigidsim/internal/core/steering"
	"github.com/zeusync/rigidsim/pkg/concurrent"
)

type entity struct {
	body      physics.Body
	name      string
	behaviors *steering.Behaviors
	avoidable bool
	target    physics.Handle
}

// Simulation owns every body and runs the fixed-tick pipeline:
// steering, integration, detection, resolution and contact tracking.
//
// Mutating methods (Spawn, Despawn, AddInput, SetTarget, Step) must be called
// from one goroutine. Frame is safe to call from anywhere.
type Simulation struct {
	cfg     config.Config
	physics config.Physics
	dt      float32

	log log.Log
	bus bus.EventBus
	rng *rand.Rand

	tick     uint64
	next     physics.Handle
	bodies   []*entity
	byHandle map[physics.Handle]*entity
	target   physics.Handle

	contacts *physics.ContactTracker

	// per-tick scratch
	movers     []*physics.Body
	statics    []*physics.Body
	neighbors  []steering.Neighbor
	collisions []physics.Collision
	wallChunks [][]physics.Collision
	pairChunks [][]physics.Collision
	events     []physics.CollisionEvent
	published  []bus.Event

	frame atomic.Pointer[Frame]
}

// New validates cfg and returns an empty simulation at tick 0.
func New(cfg config.Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:      cfg,
		physics:  cfg.Physics,
		dt:       cfg.FixedDelta(),
		log:      log.NewNop(),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		next:     1,
		byHandle: make(map[physics.Handle]*entity),
		contacts: physics.NewContactTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(log.String("component", "sim"))
	s.frame.Store(&Frame{})

	return s, nil
}

// Spawn adds a body and returns its handle. Circles are dynamic movers;
// rects are static walls. Handles are never reused.
func (s *Simulation) Spawn(shape physics.Shape, pos mgl32.Vec2, opts ...BodyOption) (physics.Handle, error) {
	spec := spawnSpec{mass: physics.DefaultMass}
	for _, opt := range opts {
		opt(&spec)
	}

	if !finite2(pos) {
		return 0, fmt.Errorf("%w: position %v", ErrInvalidBody, pos)
	}
	if !finite2(spec.velocity) {
		return 0, fmt.Errorf("%w: velocity %v", ErrInvalidBody, spec.velocity)
	}

	dynamic := shape.Kind == physics.ShapeCircle
	e := &entity{
		body: physics.Body{
			Handle:           s.next,
			Shape:            shape,
			Position:         pos.Vec3(0),
			PreviousPosition: pos.Vec3(0),
			Velocity:         spec.velocity.Vec3(0),
			Mass:             spec.mass,
			Dynamic:          dynamic,
		},
		name:      spec.name,
		behaviors: spec.behaviors,
		avoidable: spec.avoidable,
		target:    spec.target,
	}

	if err := e.body.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if !dynamic && (spec.velocity != (mgl32.Vec2{}) || spec.behaviors != nil || spec.avoidable) {
		return 0, fmt.Errorf("%w: %s bodies are static", ErrInvalidBody, shape.Kind)
	}
	if err := spec.behaviors.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if spec.target != 0 {
		if _, ok := s.byHandle[spec.target]; !ok {
			return 0, fmt.Errorf("%w: target %d", ErrUnknownBody, spec.target)
		}
	}

	if w := e.behaviors; w != nil && w.Wander != nil && w.Wander.Heading == (mgl32.Vec2{}) {
		w.Wander.Heading = steering.NewWander(s.rng, w.Wander.Variation).Heading
	}

	s.bodies = append(s.bodies, e)
	s.byHandle[e.body.Handle] = e
	s.next++

	s.log.Debug("body spawned",
		log.Uint64("handle", uint64(e.body.Handle)),
		log.String("shape", shape.Kind.String()),
		log.String("name", e.name),
	)

	return e.body.Handle, nil
}

// Despawn removes a body. Contacts it was part of end on the next Step,
// which reports them as Stopped.
func (s *Simulation) Despawn(h physics.Handle) error {
	if _, ok := s.byHandle[h]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBody, h)
	}
	delete(s.byHandle, h)
	s.bodies = slices.DeleteFunc(s.bodies, func(e *entity) bool { return e.body.Handle == h })
	if s.target == h {
		s.target = 0
	}

	s.log.Debug("body despawned", log.Uint64("handle", uint64(h)))
	return nil
}

// AddInput folds a raw direction sample into the body's accumulator. It is
// consumed by the next Step. Steering overwrites it for governed bodies.
func (s *Simulation) AddInput(h physics.Handle, dir mgl32.Vec2) error {
	e, ok := s.byHandle[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBody, h)
	}
	if !e.body.Dynamic {
		return fmt.Errorf("%w: %d is static", ErrInvalidBody, h)
	}
	if !finite2(dir) {
		return fmt.Errorf("%w: input %v", ErrInvalidBody, dir)
	}
	e.body.Input.Add(dir)
	return nil
}

// SetTarget selects the body that Seek, Flee and MaintainRange steer
// relative to. Zero clears the target.
func (s *Simulation) SetTarget(h physics.Handle) error {
	if h != 0 {
		if _, ok := s.byHandle[h]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownBody, h)
		}
	}
	s.target = h
	return nil
}

// Target returns the current steering target, zero when unset.
func (s *Simulation) Target() physics.Handle { return s.target }

// SetTunables swaps the physics constants and behavior weights used from the
// next tick on. Both are validated together; on error neither is applied.
func (s *Simulation) SetTunables(p config.Physics, w config.Steering) error {
	cfg := s.cfg
	cfg.Physics, cfg.Steering = p, w
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg, s.physics = cfg, p
	return nil
}

func (s *Simulation) Config() config.Config { return s.cfg }

// Tick is the number of completed steps.
func (s *Simulation) Tick() uint64 { return s.tick }

// Len is the number of live bodies.
func (s *Simulation) Len() int { return len(s.bodies) }

// Body returns a copy of the body record.
func (s *Simulation) Body(h physics.Handle) (physics.Body, bool) {
	e, ok := s.byHandle[h]
	if !ok {
		return physics.Body{}, false
	}
	return e.body, true
}

// Bodies returns copies of every body in handle order.
func (s *Simulation) Bodies() []physics.Body {
	out := make([]physics.Body, len(s.bodies))
	for i, e := range s.bodies {
		out[i] = e.body
	}
	return out
}

// Contacts is the number of contacts alive after the last Step.
func (s *Simulation) Contacts() int { return s.contacts.Active() }

// Touching reports whether a and b were in contact after the last Step.
func (s *Simulation) Touching(a, b physics.Handle) bool { return s.contacts.Touching(a, b) }

// Contact returns the last contact summary for the pair in (a, b) order.
func (s *Simulation) Contact(a, b physics.Handle) (physics.ContactRecord, bool) {
	return s.contacts.Lookup(a, b)
}

// Frame returns the snapshot published by the last Step.
func (s *Simulation) Frame() *Frame { return s.frame.Load() }

// Step advances the simulation by one fixed tick and returns the contact
// transitions it produced: Started events first, then Stopped, each in
// ascending pair order.
func (s *Simulation) Step() []physics.CollisionEvent {
	s.tick++

	s.partition()
	s.steer()
	for _, b := range s.movers {
		physics.Integrate(b, s.physics, s.dt)
	}
	s.detect()
	for _, c := range s.collisions {
		rec := physics.Resolve(c, s.physics.Restitution)
		s.contacts.Record(c.A.Handle, c.B.Handle, rec)
	}
	s.events = s.contacts.Flush(s.tick, s.events[:0])

	s.publishFrame()
	s.publishEvents()

	return slices.Clone(s.events)
}

func (s *Simulation) partition() {
	s.movers = s.movers[:0]
	s.statics = s.statics[:0]
	for _, e := range s.bodies {
		if e.body.Dynamic {
			s.movers = append(s.movers, &e.body)
		} else {
			s.statics = append(s.statics, &e.body)
		}
	}
}

func (s *Simulation) steer() {
	s.neighbors = s.neighbors[:0]
	for _, e := range s.bodies {
		if e.avoidable {
			s.neighbors = append(s.neighbors, steering.Neighbor{
				Handle:   e.body.Handle,
				Position: e.body.Center(),
				Radius:   e.body.Shape.Radius,
			})
		}
	}

	ctx := steering.Context{
		Neighbors: s.neighbors,
		Weights:   s.cfg.Steering,
		Rand:      s.rng,
		DT:        s.dt,
	}
	for _, e := range s.bodies {
		if e.behaviors.Empty() {
			continue
		}
		ctx.Target, ctx.HasTarget = mgl32.Vec2{}, false
		if e.behaviors.NeedsTarget() {
			ctx.Target, ctx.HasTarget = s.targetOf(e)
		}
		agent := steering.Agent{Handle: e.body.Handle, Position: e.body.Center(), Radius: e.body.Shape.Radius}
		e.body.Input.Set(steering.Steer(agent, e.behaviors, &ctx))
	}
}

func (s *Simulation) targetOf(e *entity) (mgl32.Vec2, bool) {
	h := e.target
	if h == 0 {
		h = s.target
	}
	if h == 0 || h == e.body.Handle {
		return mgl32.Vec2{}, false
	}
	t, ok := s.byHandle[h]
	if !ok {
		return mgl32.Vec2{}, false
	}
	return t.body.Center(), true
}

// detect fills s.collisions with wall contacts in mover order followed by
// pair contacts in row-major order. The parallel path produces the same
// sequence as the serial one.
func (s *Simulation) detect() {
	s.collisions = s.collisions[:0]

	n, workers := len(s.movers), s.cfg.DetectWorkers
	if workers <= 1 || n < 2 {
		s.collisions = physics.DetectWalls(s.movers, s.statics, s.collisions)
		s.collisions = physics.DetectPairs(s.movers, s.collisions)
		return
	}

	chunks := min(workers, n)
	for len(s.wallChunks) < chunks {
		s.wallChunks = append(s.wallChunks, nil)
		s.pairChunks = append(s.pairChunks, nil)
	}

	// Detection only reads bodies, and each chunk writes its own buffers.
	err := concurrent.Chunked(context.Background(), n, workers, func(_ context.Context, chunk, lo, hi int) error {
		walls, pairs := s.wallChunks[chunk][:0], s.pairChunks[chunk][:0]
		for i := lo; i < hi; i++ {
			walls = physics.DetectWallsRow(s.movers, s.statics, i, walls)
			pairs = physics.DetectPairsRow(s.movers, i, pairs)
		}
		s.wallChunks[chunk], s.pairChunks[chunk] = walls, pairs
		return nil
	})
	if err != nil {
		s.log.Error("parallel detection failed, rescanning serially", log.Uint64("tick", s.tick), log.Error(err))
		s.collisions = physics.DetectWalls(s.movers, s.statics, s.collisions)
		s.collisions = physics.DetectPairs(s.movers, s.collisions)
		return
	}

	for _, walls := range s.wallChunks[:chunks] {
		s.collisions = append(s.collisions, walls...)
	}
	for _, pairs := range s.pairChunks[:chunks] {
		s.collisions = append(s.collisions, pairs...)
	}
}

func (s *Simulation) publishEvents() {
	if len(s.events) == 0 {
		return
	}

	if s.log.GetLevel() == log.LevelDebug {
		for _, ev := range s.events {
			s.log.Debug("contact "+ev.Kind.String(),
				log.Uint64("tick", ev.Tick),
				log.Uint64("a", uint64(ev.A)),
				log.Uint64("b", uint64(ev.B)),
				log.Float32("impulse", ev.Impulse),
			)
		}
	}

	if s.bus == nil {
		return
	}
	s.published = s.published[:0]
	for _, ev := range s.events {
		s.published = append(s.published, ev)
	}
	if err := s.bus.PublishBatch(s.published...); err != nil {
		s.log.Error("collision handlers failed", log.Uint64("tick", s.tick), log.Error(err))
	}
	clear(s.published)
}

func finite2(v mgl32.Vec2) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
