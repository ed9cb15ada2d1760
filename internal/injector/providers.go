package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/rigidsim/internal/app"
	"github.com/zeusync/rigidsim/internal/core/combat"
	"github.com/zeusync/rigidsim/internal/core/config"
	"github.com/zeusync/rigidsim/internal/core/events/bus"
	"github.com/zeusync/rigidsim/internal/core/observability/log"
	"github.com/zeusync/rigidsim/internal/core/sim"
	"github.com/zeusync/rigidsim/internal/server"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideBus,
	ProvideSimulation,
	ProvideCombat,
	ProvideObserver,
	app.New,
)

func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return logger, logger.Sync, nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideSimulation(cfg config.Config, logger log.Log, b bus.EventBus) (*sim.Simulation, error) {
	return sim.New(cfg, sim.WithLogger(logger), sim.WithBus(b))
}

func ProvideCombat(cfg config.Config, logger log.Log) *combat.System {
	return combat.New(cfg.Combat, cfg.Physics.MaxSpeed, logger)
}

// ProvideObserver returns nil when the observer stream is disabled.
func ProvideObserver(cfg config.Config, logger log.Log) *server.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	return server.New(cfg.Server, logger)
}
