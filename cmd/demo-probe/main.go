package main

import (
	"context"
	"flag"
	"os"
	"time"

	"mtlsdemo/pkg/log"
)

const defaultTimeout = 15 * time.Second

func main() {
	// Initialize logger
	_ = log.Logger

	var urls string
	flag.StringVar(&urls, "url", "http://127.0.0.1:8080", "Comma-separated list of frontend or backend base URLs to probe")
	timeout := flag.Duration("timeout", defaultTimeout, "Timeout for each probe")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log.Configure("demo-probe", os.Getenv("LOG_FORMAT"))
	if *debug {
		log.SetDebugMode()
		log.Debug().Msg("Debug mode enabled")
	}

	targets, err := parseTargets(urls)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -url flag")
	}

	results := probeAll(context.Background(), targets, *timeout)
	writeSummaries(os.Stdout, results)

	for _, r := range results {
		if r.Err != nil {
			os.Exit(1)
		}
	}

	os.Exit(0)
}
