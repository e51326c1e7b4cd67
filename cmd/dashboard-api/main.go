package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/edvin/opsdash/internal/agent"
	"github.com/edvin/opsdash/internal/api"
	"github.com/edvin/opsdash/internal/audit"
	"github.com/edvin/opsdash/internal/compose"
	"github.com/edvin/opsdash/internal/config"
	"github.com/edvin/opsdash/internal/core"
	"github.com/edvin/opsdash/internal/deployer"
	"github.com/edvin/opsdash/internal/gitops"
	"github.com/edvin/opsdash/internal/logging"
	"github.com/edvin/opsdash/internal/scheduler"
	"github.com/edvin/opsdash/internal/storage"
	"github.com/edvin/opsdash/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create data dir")
	}

	db, err := store.Open(filepath.Join(cfg.DataDir, "opsdash.db"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open catalog database")
	}

	catalog := store.NewCatalog(db)
	schedules := store.NewScheduleStore(db)
	settings := store.NewSettingsStore(filepath.Join(cfg.DataDir, "backup_settings.json"))
	sink := audit.NewFileSink(filepath.Join(cfg.DataDir, "audit.log"), logger)

	inventory := compose.NewInventory(cfg.ComposeFile(), cfg.BaseDir)
	dbm := agent.NewDatabaseManager(logger)
	fsm := agent.NewFilestoreManager(logger)
	docker := deployer.NewDockerController(logger)
	flights := core.NewFlights()

	timeout := time.Duration(cfg.SubprocessTimeoutMin) * time.Minute
	backups := core.NewBackupService(cfg.DataDir, timeout, inventory, dbm, fsm, catalog, settings, sink, flights, storage.New, logger)
	copies := core.NewCopyService(cfg.DataDir, timeout, inventory, dbm, fsm, docker, sink, flights, logger)
	retention := core.NewRetentionService(catalog, settings, sink, flights, logger)
	repos := gitops.NewService(filepath.Join(cfg.DataDir, "repos.json"), filepath.Join(cfg.BaseDir, "repos"), logger)

	engine := scheduler.NewEngine(schedules, core.NewScheduledRunner(backups), retention, logger)
	engine.Start()
	defer engine.Stop()

	srv := api.NewServer(logger, api.Deps{
		Inventory:  inventory,
		Deployer:   docker,
		Backups:    backups,
		Copies:     copies,
		Retention:  retention,
		Schedules:  schedules,
		Engine:     engine,
		Settings:   settings,
		NewBackend: storage.New,
		Audit:      sink,
		Repos:      repos,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Minute, // backups and copies run synchronously
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting dashboard API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
