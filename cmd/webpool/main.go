// Command webpool runs a minimal HTTP listener backed by a fixed-size
// worker pool. It exists to show how a bounded pool keeps a slow request
// from blocking the rest of the traffic.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/safranklin/webpool/internal/config"
	"github.com/safranklin/webpool/internal/handler"
	"github.com/safranklin/webpool/internal/server"
)

// Fallback bodies used when no asset file is configured.
var (
	defaultSuccessBody  = []byte("<html><body><h1>Hello!</h1></body></html>\n")
	defaultNotFoundBody = []byte("<html><body><h1>404 Not Found</h1></body></html>\n")
)

func main() {
	configPath := flag.String("config", "config/webpool.json", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log := logrus.New()
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	successBody, err := loadAsset(cfg.SuccessAsset, defaultSuccessBody)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading success asset: %v\n", err)
		os.Exit(1)
	}
	notFoundBody, err := loadAsset(cfg.NotFoundAsset, defaultNotFoundBody)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading not-found asset: %v\n", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg, handler.New(successBody, notFoundBody, cfg.SlowDelay()), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// loadAsset reads a response body from disk at startup, so a missing
// file fails the process here instead of failing every request later.
func loadAsset(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
