package main

import (
	"context"
	_ "embed"
	"flag"
	"os"
	"strings"
	"time"

	"mtlsdemo/pkg/config"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/server/backend"
	"mtlsdemo/pkg/store"
)

const connectTimeout = 30 * time.Second

//go:embed VERSION
var Version string

func main() {
	// Initialize logger first
	_ = log.Logger

	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load configuration")
	}

	log.Configure("backend", cfg.Logging.Format)
	if *debug || cfg.Logging.Debug {
		log.SetDebugMode()
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	db, err := store.Open(ctx, cfg.Database, store.Identity{
		SPIFFEID:     cfg.Backend.SPIFFEID,
		PeerSPIFFEID: cfg.Backend.DatabaseSPIFFEID,
	})
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open database")
	}

	server := backend.NewServer(cfg.Backend, strings.TrimSpace(Version), db)
	startErr := server.Start(":" + cfg.Backend.Port)

	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close database")
	}

	if startErr != nil {
		log.Fatal().Err(startErr).Msg("Server failed to start")
	}

	os.Exit(0)
}
