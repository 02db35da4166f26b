package main

import (
	_ "embed"
	"flag"
	"os"
	"strings"

	"mtlsdemo/pkg/config"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/server/frontend"
)

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

	log.Configure("frontend", cfg.Logging.Format)
	if *debug || cfg.Logging.Debug {
		log.SetDebugMode()
	}

	server := frontend.NewServer(cfg.Frontend, strings.TrimSpace(Version))
	if err := server.Start(":" + cfg.Frontend.Port); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	os.Exit(0)
}
