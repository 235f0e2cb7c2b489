// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/stagehand-foundation/stagehand/client"
	"github.com/stagehand-foundation/stagehand/lib/audit"
	"github.com/stagehand-foundation/stagehand/lib/config"
	"github.com/stagehand-foundation/stagehand/wire"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func runDoctor(args []string) int {
	flags := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
	projectDir := flags.String("project", ".", "project directory")
	timeout := flags.Duration("timeout", 5*time.Second, "bridge probe timeout")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	godotenv.Load(filepath.Join(*projectDir, ".env"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	fmt.Println(titleStyle.Render("stagehand doctor"))
	fmt.Println()

	healthy := true

	// Configuration.
	cfg, err := config.Load(*projectDir)
	if err != nil {
		report(false, "configuration", err.Error())
		return 1
	}
	report(true, "configuration", fmt.Sprintf("bridge %s", cfg.Address()))
	if cfg.Token == "" {
		report(false, "token", "no bridge token configured ("+config.EnvToken+" or "+config.SidecarPath+")")
		healthy = false
	} else {
		report(true, "token", "configured")
	}
	if cfg.AllowDangerous {
		fmt.Printf("  %s %s\n", warnStyle.Render("!"),
			"dangerous operations are enabled ("+config.EnvAllowDangerous+")")
	}

	// Bridge reachability.
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	started := time.Now()
	if c, err := client.Connect(ctx, cfg.Address(), cfg.Token, logger); err == nil {
		latency := time.Since(started)
		if _, err := c.Request(ctx, wire.OpPing, nil); err != nil {
			report(false, "bridge", "connected but ping failed: "+err.Error())
			healthy = false
		} else {
			report(true, "bridge", fmt.Sprintf("reachable, %d methods, %s round trip",
				len(c.Capabilities().Methods), latency.Round(time.Millisecond)))
		}
		c.Close()
	} else {
		report(false, "bridge", "unreachable: "+err.Error())
		fmt.Printf("  %s\n", dimStyle.Render("start the engine with: stagehand-engine --project "+*projectDir))
		healthy = false
	}

	// Audit log chain.
	if cfg.AuditLog == "" {
		fmt.Printf("  %s %s\n", dimStyle.Render("-"), "audit: not configured")
	} else {
		healthy = verifyAudit(filepath.Join(*projectDir, cfg.AuditLog)) && healthy
	}

	fmt.Println()
	if !healthy {
		fmt.Println(failStyle.Render("problems found"))
		return 1
	}
	fmt.Println(okStyle.Render("all checks passed"))
	return 0
}

// verifyAudit replays the active audit segment and every rotated
// segment next to it.
func verifyAudit(path string) bool {
	segments := []string{}
	if matches, err := filepath.Glob(path + ".*.zst"); err == nil {
		sort.Strings(matches)
		segments = append(segments, matches...)
	}
	if _, err := os.Stat(path); err == nil {
		segments = append(segments, path)
	}
	if len(segments) == 0 {
		fmt.Printf("  %s %s\n", dimStyle.Render("-"), "audit: no entries yet")
		return true
	}

	healthy := true
	total := 0
	for _, segment := range segments {
		count, err := audit.VerifyFile(segment)
		if err != nil {
			report(false, "audit", fmt.Sprintf("%s: %v", filepath.Base(segment), err))
			healthy = false
			continue
		}
		total += count
	}
	if healthy {
		report(true, "audit", fmt.Sprintf("%d entries across %d segment%s verified",
			total, len(segments), plural(len(segments))))
	}
	return healthy
}

func report(ok bool, check, detail string) {
	mark := okStyle.Render("✓")
	if !ok {
		mark = failStyle.Render("✗")
	}
	fmt.Printf("  %s %s: %s\n", mark, check, detail)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
