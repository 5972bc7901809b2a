// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huffpack/huffpack/lib/config"
	"github.com/huffpack/huffpack/lib/process"
	"github.com/huffpack/huffpack/lib/service"
	"github.com/huffpack/huffpack/lib/store"
	"github.com/huffpack/huffpack/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		listen      string
		dataDir     string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "path to huffpack.yaml (defaults to HUFFPACK_CONFIG)")
	flag.StringVar(&listen, "listen", "", "listen address override")
	flag.StringVar(&dataDir, "data-dir", "", "data directory override")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		version.Print("huffpack-server")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Flag overrides beat the file. Clearing store/staging when the
	// data root moves lets Normalize re-derive them under it.
	if listen != "" {
		cfg.Listen = listen
	}
	if dataDir != "" {
		cfg.Paths.Data = dataDir
		cfg.Paths.Store = ""
		cfg.Paths.Staging = ""
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	logger := service.NewLogger()

	archiveStore, err := store.New(cfg.Paths.Store)
	if err != nil {
		return fmt.Errorf("opening archive store: %w", err)
	}

	compressor := NewCompressorService(cfg, archiveStore, logger)

	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address:         cfg.Listen,
		Handler:         compressor.Handler(),
		ShutdownTimeout: cfg.ShutdownGrace(),
		Logger:          logger,
	})

	logger.Info("huffpack server starting",
		"listen", cfg.Listen,
		"store", cfg.Paths.Store,
		"staging", cfg.Paths.Staging,
	)

	return httpServer.Serve(ctx)
}

// loadConfig resolves configuration: an explicit --config path first,
// then HUFFPACK_CONFIG, then built-in defaults. The defaults keep the
// server runnable on a development machine with no file at all.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("HUFFPACK_CONFIG") != "" {
		return config.Load()
	}
	cfg := config.Default()
	cfg.Normalize()
	return cfg, nil
}
