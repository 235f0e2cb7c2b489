// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// stagehand-engine runs the host editor with the bridge server against
// a project directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/stagehand-foundation/stagehand/bridge"
	"github.com/stagehand-foundation/stagehand/lib/assets"
	"github.com/stagehand-foundation/stagehand/lib/audit"
	"github.com/stagehand-foundation/stagehand/lib/config"
	"github.com/stagehand-foundation/stagehand/lib/editor"
	"github.com/stagehand-foundation/stagehand/lib/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		projectDir  string
		scenePath   string
		logLevel    string
		showVersion bool
	)
	pflag.StringVar(&projectDir, "project", ".", "project directory")
	pflag.StringVar(&scenePath, "scene", "", "scene file to open at startup (project-relative)")
	pflag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pflag.BoolVar(&showVersion, "version", false, "print version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("stagehand-engine %s\n", version.Info())
		return 0
	}

	// Optional .env next to the project, for the bridge token during
	// development. Missing file is fine.
	godotenv.Load(filepath.Join(projectDir, ".env"))

	logger := newLogger(logLevel)

	cfg, err := config.Load(projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if cfg.Token == "" {
		logger.Warn("no bridge token configured; every session will be rejected",
			"env", config.EnvToken, "sidecar", config.SidecarPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ed := editor.New(projectDir, logger)
	if scenePath != "" {
		if _, err := ed.OpenScene(scenePath); err != nil {
			fmt.Fprintf(os.Stderr, "error: opening scene: %v\n", err)
			return 1
		}
	} else {
		if _, err := ed.NewScene("untitled.yaml", "Node", "Main"); err != nil {
			fmt.Fprintf(os.Stderr, "error: creating scene: %v\n", err)
			return 1
		}
	}

	scanner, err := assets.New(projectDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := scanner.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	ed.Assets = scanner

	options := bridge.Options{Logger: logger}
	if cfg.AuditLog != "" {
		log, err := audit.Open(filepath.Join(projectDir, cfg.AuditLog), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		defer log.Close()
		options.Audit = log
	}

	server := bridge.New(ed, *cfg, options)
	if err := server.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	<-server.Done()
	<-scanner.Done()
	logger.Info("engine stopped")
	return 0
}

func newLogger(level string) *slog.Logger {
	var leveler slog.Level
	switch level {
	case "debug":
		leveler = slog.LevelDebug
	case "warn":
		leveler = slog.LevelWarn
	case "error":
		leveler = slog.LevelError
	default:
		leveler = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: leveler}))
}
