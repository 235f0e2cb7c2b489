// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch routes caller tool invocations either through a
// live bridge connection or an offline one-shot invocation of the
// engine, deciding once per call.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/stagehand-foundation/stagehand/client"
	"github.com/stagehand-foundation/stagehand/wire"
)

// noOffline lists operations with no offline equivalent: transaction
// control and selection are session state, and the filesystem methods
// need the live asset pipeline. Without a connection these fail with
// E_NOT_CONNECTED instead of running a fallback that cannot honor
// their semantics.
var noOffline = map[string]bool{
	wire.OpBeginAction:    true,
	wire.OpCommitAction:   true,
	wire.OpAbortAction:    true,
	wire.OpSelectNode:     true,
	wire.OpSelectionClear: true,
	wire.OpFilesystemScan: true,
	wire.OpReimportFiles:  true,
}

// Options configure a Dispatcher.
type Options struct {
	// OfflineCommand is the argv prefix of the one-shot fallback
	// process; the operation name and a JSON parameter object are
	// appended as the final two arguments. Empty disables the offline
	// path entirely.
	OfflineCommand []string

	Logger *slog.Logger
}

// Dispatcher is the caller-side routing policy. The decision is made
// fresh on every call and never falls back mid-call: a live request
// that fails is reported as-is.
type Dispatcher struct {
	logger  *slog.Logger
	offline []string

	mu     sync.Mutex
	client *client.Client
}

// New creates a dispatcher with no live connection attached.
func New(options Options) *Dispatcher {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger, offline: options.OfflineCommand}
}

// Attach installs a live client. Subsequent calls route through it
// until it closes or Detach is called.
func (d *Dispatcher) Attach(c *client.Client) {
	d.mu.Lock()
	d.client = c
	d.mu.Unlock()
}

// Detach drops the live client without closing it.
func (d *Dispatcher) Detach() {
	d.mu.Lock()
	d.client = nil
	d.mu.Unlock()
}

// live returns the attached client if it is still usable.
func (d *Dispatcher) live() *client.Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client == nil {
		return nil
	}
	select {
	case <-d.client.Done():
		d.client = nil
		return nil
	default:
		return d.client
	}
}

// Call routes one operation. Live connection first; offline fallback
// when configured and the operation has an offline equivalent;
// E_NOT_CONNECTED naming the recovery action otherwise.
func (d *Dispatcher) Call(ctx context.Context, method string, params any) (any, error) {
	if c := d.live(); c != nil {
		return c.Request(ctx, method, params)
	}

	if len(d.offline) > 0 && !noOffline[method] {
		return d.callOffline(ctx, method, params)
	}

	return nil, wire.NewError(wire.CodeNotConnected,
		fmt.Sprintf("no live bridge connection and %q has no offline fallback; connect to the engine bridge and retry", method),
		map[string]any{"method": method})
}

// callOffline runs the one-shot process: argv prefix + operation name
// + JSON parameters, one JSON result line on stdout.
func (d *Dispatcher) callOffline(ctx context.Context, method string, params any) (any, error) {
	encoded := []byte("{}")
	if params != nil {
		var err error
		encoded, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("dispatch: encoding params: %w", err)
		}
	}

	argv := append(append([]string{}, d.offline...), method, string(encoded))
	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	d.logger.Debug("offline fallback", "method", method, "command", argv[0])
	runErr := command.Run()

	// The one-shot process exits nonzero on method failures but still
	// prints the structured response; prefer that over the exit status.
	line := strings.TrimSpace(stdout.String())
	var response wire.Response
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		if runErr != nil {
			detail := strings.TrimSpace(stderr.String())
			if detail != "" {
				return nil, fmt.Errorf("dispatch: offline fallback failed: %w: %s", runErr, detail)
			}
			return nil, fmt.Errorf("dispatch: offline fallback failed: %w", runErr)
		}
		return nil, fmt.Errorf("dispatch: malformed offline result: %w", err)
	}
	if !response.OK {
		if response.Error == nil {
			return nil, fmt.Errorf("dispatch: offline fallback failed without an error payload")
		}
		return nil, response.Error
	}
	return response.Result, nil
}
