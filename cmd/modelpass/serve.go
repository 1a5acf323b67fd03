package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vocdoni/modelpass/config"
	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/service"
	"github.com/vocdoni/modelpass/workspace"
)

// runServe starts the registry daemon with the HTTP API.
func runServe(args []string) int {
	fs := newFlagSet("serve")
	fs.String("api.host", config.DefaultAPIHost, "API bind host")
	fs.IntP("api.port", "p", config.DefaultAPIPort, "API bind port")

	cfg, err := loadConfig(fs, args)
	if err != nil {
		return fail(err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.Infow("starting modelpass daemon", "version", Version)
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Workspaces survive crashed runs, reclaim the stale ones on boot.
	if removed, err := workspace.Sweep(workspaceMaxAge); err != nil {
		log.Warnw("could not sweep stale workspaces", "error", err.Error())
	} else if removed > 0 {
		log.Infow("removed stale toolkit workspaces", "count", removed)
	}

	log.Infow("initializing registry", "datadir", cfg.Datadir, "type", cfg.DB.Type)
	store, err := openRegistry(cfg)
	if err != nil {
		log.Fatalf("failed to initialize registry: %v", err)
	}
	defer store.Close()

	// A missing toolkit binary only disables the verification endpoint,
	// the registry endpoints keep working.
	pipeline, err := newPipeline(cfg)
	if err != nil {
		log.Warnw("proving toolkit unavailable, verification endpoint disabled",
			"bin", cfg.Toolkit.Bin, "error", err.Error())
		pipeline = nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infow("starting API service", "host", cfg.API.Host, "port", cfg.API.Port)
	apiService := service.NewAPI(store, pipeline, cfg.API.Host, cfg.API.Port, false)
	if err := apiService.Start(ctx); err != nil {
		log.Fatalf("failed to start API service: %v", err)
	}
	defer apiService.Stop()

	log.Info("modelpass daemon is running, ready to verify attributions!")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Infow("received signal, shutting down", "signal", sig.String())
	return exitOK
}
