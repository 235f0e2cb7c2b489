// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// stagehand-oneshot applies one operation against a project's scene
// file without a running engine: it loads the scene, dispatches the
// operation through the same method registry the bridge uses, saves
// the scene if anything committed, and prints a single JSON result
// line on stdout. The hybrid dispatcher shells out to this binary when
// no live bridge connection exists.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/stagehand-foundation/stagehand/lib/config"
	"github.com/stagehand-foundation/stagehand/lib/editor"
	"github.com/stagehand-foundation/stagehand/lib/version"
	"github.com/stagehand-foundation/stagehand/methods"
	"github.com/stagehand-foundation/stagehand/wire"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		projectDir  string
		scenePath   string
		showVersion bool
	)
	pflag.StringVar(&projectDir, "project", ".", "project directory")
	pflag.StringVar(&scenePath, "scene", "main.yaml", "scene file to operate on (project-relative)")
	pflag.BoolVar(&showVersion, "version", false, "print version and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("stagehand-oneshot %s\n", version.Info())
		return 0
	}

	args := pflag.Args()
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintf(os.Stderr, "usage: stagehand-oneshot [flags] <operation> [params-json]\n")
		return 2
	}
	operation := args[0]
	params := json.RawMessage("{}")
	if len(args) == 2 {
		params = json.RawMessage(args[1])
	}

	godotenv.Load(filepath.Join(projectDir, ".env"))

	// stdout carries exactly one JSON line; logging goes to stderr and
	// stays quiet unless something is wrong.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load(projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ed := editor.New(projectDir, logger)
	if _, err := ed.OpenScene(scenePath); err != nil {
		// Operations that need no scene (ping, inspect_class, singleton
		// reflection) still work; scene-bound ones report their own
		// conflict error.
		logger.Warn("scene not loaded", "path", scenePath, "error", err)
	}

	mutated := false
	registry := methods.New(ed, methods.Options{
		AllowDangerous: cfg.AllowDangerous,
		Logger:         logger,
		OnCommit: func(_ string, _ []string, executed bool) {
			if executed {
				mutated = true
			}
		},
	})

	result, werr := registry.Dispatch(operation, params)
	if werr != nil {
		printResponse(wire.Response{OK: false, Error: werr})
		return 1
	}

	if mutated {
		if _, err := ed.SaveScene(""); err != nil {
			printResponse(wire.Response{OK: false,
				Error: wire.NewError(wire.CodeInternal, "saving scene: "+err.Error(), nil)})
			return 1
		}
	}

	printResponse(wire.Response{OK: true, Result: result})
	return 0
}

func printResponse(response wire.Response) {
	encoded, err := json.Marshal(response)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: encoding result: %v\n", err)
		return
	}
	fmt.Println(string(encoded))
}
