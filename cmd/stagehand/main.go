// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// stagehand is the caller-side CLI: it routes operations to a running
// engine over the bridge (falling back to the offline one-shot binary
// when no engine is reachable) and produces a diagnostic report.
package main

import (
	"fmt"
	"os"

	"github.com/stagehand-foundation/stagehand/lib/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return 2
	}
	switch os.Args[1] {
	case "call":
		return runCall(os.Args[2:])
	case "doctor":
		return runDoctor(os.Args[2:])
	case "version", "--version":
		fmt.Printf("stagehand %s\n", version.Info())
		return 0
	case "help", "--help", "-h":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", os.Args[1])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: stagehand <command> [flags]

commands:
  call <method>   invoke a bridge method (live connection or offline fallback)
  doctor          check bridge reachability, configuration, and the audit log
  version         print version

run "stagehand <command> --help" for command flags
`)
}
