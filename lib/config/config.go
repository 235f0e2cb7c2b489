// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the bridge configuration: bind host and port,
// the shared-secret token, and the dangerous-operations flag.
//
// Each value is sourced from a process environment variable first,
// falling back to the per-project side-car file
// <project>/.stagehand/bridge.jsonc (JSON extended with comments and
// trailing commas). Environment wins so an operator can override a
// checked-in side-car without editing it.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/jsonc"
)

// Environment variable names.
const (
	EnvToken          = "STAGEHAND_BRIDGE_TOKEN"
	EnvHost           = "STAGEHAND_BRIDGE_HOST"
	EnvPort           = "STAGEHAND_BRIDGE_PORT"
	EnvAllowDangerous = "STAGEHAND_ALLOW_DANGEROUS"
)

// Defaults. The bind host is loopback — never a wildcard unless the
// operator configures one explicitly.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8765
)

// SidecarPath is the project-relative side-car file location.
const SidecarPath = ".stagehand/bridge.jsonc"

// Config is the bridge configuration consumed by the engine and the
// caller-side CLI.
type Config struct {
	// Host is the TCP bind (engine) or dial (caller) host.
	Host string `json:"host"`

	// Port is the TCP port.
	Port int `json:"port"`

	// Token is the shared secret for the hello handshake. Empty means
	// unconfigured; the engine refuses to authenticate any session.
	Token string `json:"token"`

	// AllowDangerous unlocks the reflective operations' deny-listed
	// singletons (process, filesystem, global-settings access).
	AllowDangerous bool `json:"allow_dangerous"`

	// AuditLog is the path of the transaction audit log, relative to
	// the project directory. Empty disables auditing.
	AuditLog string `json:"audit_log"`
}

// Address returns the host:port dial/bind address.
func (c *Config) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Load assembles the configuration for a project directory: defaults,
// then the side-car file if present, then environment overrides.
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		Host: DefaultHost,
		Port: DefaultPort,
	}

	sidecar := filepath.Join(projectDir, filepath.FromSlash(SidecarPath))
	data, err := os.ReadFile(sidecar)
	switch {
	case err == nil:
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", sidecar, err)
		}
	case os.IsNotExist(err):
		// No side-car; environment and defaults carry the config.
	default:
		return nil, fmt.Errorf("config: reading %s: %w", sidecar, err)
	}

	if host := os.Getenv(EnvHost); host != "" {
		cfg.Host = host
	}
	if portText := os.Getenv(EnvPort); portText != "" {
		port, err := strconv.Atoi(portText)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("config: invalid %s value %q", EnvPort, portText)
		}
		cfg.Port = port
	}
	if token := os.Getenv(EnvToken); token != "" {
		cfg.Token = token
	}
	if allow := os.Getenv(EnvAllowDangerous); allow != "" {
		cfg.AllowDangerous = allow == "1" || allow == "true"
	}

	return cfg, nil
}
