package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/open-atom-club/deadlines/internal/config"
	"github.com/open-atom-club/deadlines/internal/database"
	"github.com/open-atom-club/deadlines/internal/dataset"
	"github.com/open-atom-club/deadlines/internal/logger"
	"github.com/open-atom-club/deadlines/internal/server"
)

func main() {
	log := logger.New("deadlines")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.SetLevel(cfg.LogLevel)

	// CLI flags override the environment for the common knobs.
	listen := flag.String("listen", "", "HTTP listen address (overrides DL_LISTEN)")
	dataDir := flag.String("data", "", "data directory (overrides DL_DATA_DIR)")
	flag.Parse()
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	var db database.Store
	switch cfg.DBDriver {
	case "postgres":
		db, err = database.NewPostgres(cfg.PostgresDSN)
	default:
		db, err = database.New(cfg.SQLitePath)
	}
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open store")
	}
	defer db.Close()
	log.Info().Str("backend", db.DatabaseType()).Msg("store ready")

	loader := dataset.NewLoader(cfg.DataDir, log)
	if err := loader.Load(); err != nil {
		// Serve an empty collection until a reload succeeds.
		log.Error().Err(err).Msg("initial data load failed")
	}

	reloader := dataset.NewReloader(loader, time.Duration(cfg.ReloadIntervalMinutes)*time.Minute, log)
	reloader.Start()
	defer reloader.Stop()

	srv, err := server.New(loader, db, cfg.DefaultTimezone, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Listen) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server stopped")
	}
}
