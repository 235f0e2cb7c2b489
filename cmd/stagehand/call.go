// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/stagehand-foundation/stagehand/client"
	"github.com/stagehand-foundation/stagehand/dispatch"
	"github.com/stagehand-foundation/stagehand/lib/config"
)

func runCall(args []string) int {
	flags := pflag.NewFlagSet("call", pflag.ContinueOnError)
	projectDir := flags.String("project", ".", "project directory")
	params := flags.String("params", "{}", "method parameters as a JSON object")
	timeout := flags.Duration("timeout", 10*time.Second, "per-call timeout")
	offline := flags.Bool("offline-fallback", true, "fall back to stagehand-oneshot when no engine is reachable")
	verbose := flags.Bool("verbose", false, "log connection details")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: stagehand call [flags] <method>\n")
		return 2
	}
	method := flags.Arg(0)

	godotenv.Load(filepath.Join(*projectDir, ".env"))

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	options := dispatch.Options{Logger: logger}
	if *offline {
		options.OfflineCommand = []string{"stagehand-oneshot", "--project", *projectDir}
	}
	dispatcher := dispatch.New(options)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// A live connection is preferred but optional; the dispatcher
	// decides per call.
	if c, err := client.Connect(ctx, cfg.Address(), cfg.Token, logger); err == nil {
		defer c.Close()
		dispatcher.Attach(c)
		logger.Debug("connected", "address", cfg.Address(),
			"methods", len(c.Capabilities().Methods))
	} else {
		logger.Debug("no live connection", "error", err)
	}

	result, err := dispatcher.Call(ctx, method, json.RawMessage(*params))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: encoding result: %v\n", err)
		return 1
	}
	fmt.Println(string(encoded))
	return 0
}
