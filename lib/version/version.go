// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package version exposes the build's version string.
package version

// Version is the semantic version, overridden at build time with
// -ldflags "-X .../lib/version.Version=v1.2.3".
var Version = "v0.0.0-dev"

// Info returns the version string for logs and health responses.
func Info() string {
	return Version
}
