package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/rigidsim/internal/core/clock"
	"github.com/zeusync/rigidsim/internal/core/combat"
	"github.com/zeusync/rigidsim/internal/core/config"
	"github.com/zeusync/rigidsim/internal/core/events/bus"
	"github.com/zeusync/rigidsim/internal/core/observability/log"
	"github.com/zeusync/rigidsim/internal/core/sim"
	"github.com/zeusync/rigidsim/internal/scene"
	"github.com/zeusync/rigidsim/internal/server"
)

// DefaultEnemies is the size of the enemy row in the stock arena.
const DefaultEnemies = 5

// statusEvery is how often, in ticks, the loop logs a status line.
const statusEvery = 600

// App drives a simulation in real time: a fixed-step loop fed by the wall
// clock, combat bookkeeping between ticks and an optional observer stream.
type App struct {
	cfg      config.Config
	logger   log.Log
	bus      bus.EventBus
	stats    *eventStats
	sim      *sim.Simulation
	combat   *combat.System
	observer *server.Server
	clock    *clock.Fixed
	built    *scene.Built
	runID    string

	maxTicks  uint64
	watchPath string
	retune    chan config.Config
}

// New builds the configured scene into s and wires combat and the observer
// to b. observer may be nil.
func New(
	cfg config.Config,
	logger log.Log,
	b bus.EventBus,
	s *sim.Simulation,
	c *combat.System,
	observer *server.Server,
) (*App, error) {
	sc := scene.Arena(DefaultEnemies)
	if cfg.Scene != "" {
		loaded, err := scene.LoadFile(cfg.Scene)
		if err != nil {
			return nil, err
		}
		sc = loaded
	}

	built, err := sc.Build(s, c)
	if err != nil {
		return nil, fmt.Errorf("build scene %q: %w", sc.Name, err)
	}

	if err := c.Attach(b); err != nil {
		return nil, err
	}
	if observer != nil {
		if err := observer.Attach(b); err != nil {
			return nil, err
		}
	}

	a := &App{
		cfg:      cfg,
		bus:      b,
		stats:    newEventStats(),
		sim:      s,
		combat:   c,
		observer: observer,
		clock:    clock.NewFixed(cfg.TickInterval(), cfg.MaxStepsPerFrame),
		built:    built,
		runID:    uuid.NewString(),
		retune:   make(chan config.Config, 1),
	}
	a.logger = logger.With(log.String("run_id", a.runID))
	b.AddObserver(a.stats)

	a.logger.Info("Scene ready",
		log.String("scene", sc.Name),
		log.Int("walls", len(built.Walls)),
		log.Int("bodies", len(built.Bodies)),
		log.Uint64("seed", cfg.Seed))

	return a, nil
}

// SetMaxTicks stops Run after n ticks; zero runs until the context ends.
func (a *App) SetMaxTicks(n uint64) { a.maxTicks = n }

// WatchConfig makes Run reload physics and steering tunables whenever the
// config file at path changes. Other settings need a restart.
func (a *App) WatchConfig(path string) { a.watchPath = path }

func (a *App) Simulation() *sim.Simulation { return a.sim }

func (a *App) Scene() *scene.Built { return a.built }

// Run blocks until ctx is cancelled, the tick limit is reached or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.bus.RemoveObserver(a.stats)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		return a.loop(groupCtx)
	})
	if a.observer != nil {
		group.Go(func() error { return a.observer.Run(groupCtx) })
	}
	if a.watchPath != "" {
		group.Go(func() error { return a.watch(groupCtx) })
	}

	err := group.Wait()
	if a.observer != nil {
		if cerr := a.observer.Close(); cerr != nil && !errors.Is(cerr, server.ErrServerClosed) {
			err = errors.Join(err, cerr)
		}
	}

	a.logger.Info("Simulation stopped",
		log.Uint64("tick", a.sim.Tick()),
		log.Uint64("checksum", a.sim.Checksum()),
		log.Uint64("dropped_ticks", a.clock.Dropped()))
	return err
}

func (a *App) loop(ctx context.Context) error {
	ticker := time.NewTicker(a.clock.Step())
	defer ticker.Stop()

	a.logger.Info("Simulation started",
		log.Float64("tick_rate", a.cfg.TickRate),
		log.Int("detect_workers", a.cfg.DetectWorkers))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-a.retune:
			a.Retune(cfg)
		case now := <-ticker.C:
			steps := a.clock.Advance(now.Sub(last))
			last = now
			for range steps {
				a.Tick()
				if a.maxTicks > 0 && a.sim.Tick() >= a.maxTicks {
					return nil
				}
			}
		}
	}
}

func (a *App) watch(ctx context.Context) error {
	updates, err := config.Watch(ctx, a.watchPath, func(err error) {
		a.logger.Warn("Ignoring config change", log.String("path", a.watchPath), log.Error(err))
	})
	if err != nil {
		return err
	}
	for cfg := range updates {
		select {
		case a.retune <- cfg:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

// Retune applies the physics and steering sections of cfg, both or neither.
// It must run on the goroutine that calls Tick.
func (a *App) Retune(cfg config.Config) {
	if err := a.sim.SetTunables(cfg.Physics, cfg.Steering); err != nil {
		a.logger.Warn("Rejected tunables", log.Error(err))
		return
	}
	a.logger.Info("Tunables reloaded",
		log.Float32("max_speed", cfg.Physics.MaxSpeed),
		log.Float32("acceleration", cfg.Physics.Acceleration),
		log.Float32("drag", cfg.Physics.Drag),
		log.Float32("restitution", cfg.Physics.Restitution))
}

// Tick runs one fixed step and the bookkeeping that follows it: despawning
// dead combatants and streaming the frame.
func (a *App) Tick() {
	a.sim.Step()

	for _, h := range a.combat.Drain() {
		if err := a.sim.Despawn(h); err != nil {
			a.logger.Error("Failed to despawn", log.Uint64("handle", uint64(h)), log.Error(err))
		}
		a.combat.Forget(h)
	}

	if a.observer != nil {
		a.observer.PublishFrame(a.sim.Frame())
	}

	if tick := a.sim.Tick(); tick%statusEvery == 0 {
		a.logStatus(tick)
	}
}

func (a *App) logStatus(tick uint64) {
	m := a.bus.GetMetrics()
	st := a.stats.snapshot()
	a.logger.Info("Simulation status",
		log.Uint64("tick", tick),
		log.Int("bodies", a.sim.Len()),
		log.Int("contacts", a.sim.Contacts()),
		log.Uint64("contacts_started", st.contactsStarted),
		log.Uint64("contacts_stopped", st.contactsStopped),
		log.Uint64("damage_events", st.damage),
		log.Uint64("events_published", m.Published),
		log.Uint64("handler_errors", m.Errors),
		log.Float32("overstep", a.clock.Overstep()),
		log.Uint64("checksum", a.sim.Checksum()))
}
