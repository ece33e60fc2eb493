package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"code.trustnet.io/repmarket/api"
	"code.trustnet.io/repmarket/broker"
	"code.trustnet.io/repmarket/config"
	"code.trustnet.io/repmarket/escrow"
	"code.trustnet.io/repmarket/identity"
	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/market"
	"code.trustnet.io/repmarket/metrics"
	"code.trustnet.io/repmarket/subscribers"
)

const checkpointFileName = "checkpoint.json"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reputation market node",
	RunE:  runNode,
}

// nodeCheckpoint bundles the state of every stateful component into the one
// file written at shutdown.
type nodeCheckpoint struct {
	Registry identity.State  `json:"registry"`
	Engine   json.RawMessage `json:"engine"`
}

func runNode(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := config.NewWatcher(ctx, logging.NewLoggerFromEnv("dev"), homePath)
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}
	cfg := watcher.Get()

	log := logging.NewLoggerFromEnv(cfg.Logging.Environment)
	defer log.AtExit()

	bkr := broker.New(ctx, log, cfg.Broker)
	registry := identity.NewRegistry(log)
	gate := identity.NewGate(cfg.Identity)
	esc := escrow.New(log)

	engine, err := market.New(log, cfg.Market, registry, gate, bkr, esc)
	if err != nil {
		return errors.Wrap(err, "unable to start market engine")
	}

	if err := restoreCheckpoint(log, engine, registry); err != nil {
		return err
	}

	activity := subscribers.NewMarketActivity(ctx, log, cfg.API.ActivityRetain, true)
	bkr.Subscribe(activity)

	metrics.Start(log, cfg.Metrics)

	watcher.OnConfigUpdate(func(cfg config.Config) {
		engine.ReloadConf(cfg.Market)
	})

	srv := api.NewServer(log, cfg.API, engine, activity)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("api server failed", logging.Error(err))
		}
	}
	cancel()

	return saveCheckpoint(log, engine, registry)
}

func restoreCheckpoint(log *logging.Logger, engine *market.Engine, registry *identity.Registry) error {
	path := filepath.Join(homePath, checkpointFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "unable to read checkpoint")
	}
	cp := nodeCheckpoint{}
	if err := json.Unmarshal(buf, &cp); err != nil {
		return errors.Wrap(err, "unable to parse checkpoint")
	}
	registry.Load(cp.Registry)
	if err := engine.Load(cp.Engine); err != nil {
		return errors.Wrap(err, "unable to restore engine state")
	}
	log.Info("state restored from checkpoint", logging.String("path", path))
	return nil
}

func saveCheckpoint(log *logging.Logger, engine *market.Engine, registry *identity.Registry) error {
	state, err := engine.Checkpoint()
	if err != nil {
		return errors.Wrap(err, "unable to capture engine state")
	}
	cp := nodeCheckpoint{
		Registry: registry.Checkpoint(),
		Engine:   state,
	}
	buf, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to serialise checkpoint")
	}
	path := filepath.Join(homePath, checkpointFileName)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.Wrap(err, "unable to write checkpoint")
	}
	log.Info("state checkpointed", logging.String("path", path))
	return nil
}
