package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/rigidsim/internal/core/config"
	"github.com/zeusync/rigidsim/internal/injector"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		scenePath  = flag.String("scene", "", "scene file overriding the config (YAML or JSON)")
		ticks      = flag.Uint64("ticks", 0, "stop after this many ticks (0 runs until interrupted)")
		observe    = flag.String("observe", "", "serve the websocket observer stream on this address")
		watch      = flag.Bool("watch", false, "reload physics and steering tunables when the config file changes")
	)
	flag.Parse()

	if err := run(*configPath, *scenePath, *ticks, *observe, *watch); err != nil {
		fmt.Fprintln(os.Stderr, "rigidsim:", err)
		os.Exit(1)
	}
}

func run(configPath, scenePath string, ticks uint64, observe string, watch bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if scenePath != "" {
		cfg.Scene = scenePath
	}
	if observe != "" {
		cfg.Server.Enabled = true
		cfg.Server.Addr = observe
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	app.SetMaxTicks(ticks)
	if watch {
		if configPath == "" {
			return errors.New("-watch needs -config")
		}
		app.WatchConfig(configPath)
	}

	return app.Run(ctx)
}
