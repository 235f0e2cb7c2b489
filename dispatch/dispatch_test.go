// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stagehand-foundation/stagehand/wire"
)

func TestCallWithoutConnectionOrFallback(t *testing.T) {
	d := New(Options{})
	_, err := d.Call(context.Background(), wire.OpAddNode, nil)
	var werr *wire.Error
	if !errors.As(err, &werr) || werr.Code() != wire.CodeNotConnected {
		t.Fatalf("got %v, want E_NOT_CONNECTED", err)
	}
	if werr.Details["method"] != wire.OpAddNode {
		t.Errorf("details: %v", werr.Details)
	}
}

func TestSessionStateMethodsNeverFallBack(t *testing.T) {
	// A fallback command exists, but session-state operations must not
	// use it.
	d := New(Options{OfflineCommand: []string{"true"}})
	for _, method := range []string{
		wire.OpBeginAction, wire.OpCommitAction, wire.OpAbortAction,
		wire.OpSelectNode, wire.OpSelectionClear,
		wire.OpFilesystemScan, wire.OpReimportFiles,
	} {
		_, err := d.Call(context.Background(), method, nil)
		var werr *wire.Error
		if !errors.As(err, &werr) || werr.Code() != wire.CodeNotConnected {
			t.Errorf("%s: got %v, want E_NOT_CONNECTED", method, err)
		}
	}
}

func TestOfflineFallbackParsesResultLine(t *testing.T) {
	// The stub prints its own argv back as the response result, so the
	// test observes exactly what the dispatcher appended.
	d := New(Options{OfflineCommand: []string{
		"sh", "-c", `printf '{"id": 1, "ok": true, "result": {"method": "%s", "params": %s}}\n' "$1" "$2"`, "stub",
	}})

	result, err := d.Call(context.Background(), wire.OpGetProperty,
		map[string]any{"node_path": "root"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	m := result.(map[string]any)
	if m["method"] != wire.OpGetProperty {
		t.Errorf("method argument: %v", m["method"])
	}
	params := m["params"].(map[string]any)
	if params["node_path"] != "root" {
		t.Errorf("params argument: %v", m["params"])
	}
}

func TestOfflineFallbackErrorResponse(t *testing.T) {
	d := New(Options{OfflineCommand: []string{
		"sh", "-c", `echo '{"id": 1, "ok": false, "error": {"message": "E_NOT_FOUND: node missing"}}'`,
	}})
	_, err := d.Call(context.Background(), wire.OpGetProperty, nil)
	var werr *wire.Error
	if !errors.As(err, &werr) || werr.Code() != wire.CodeNotFound {
		t.Fatalf("got %v, want E_NOT_FOUND", err)
	}
}

func TestOfflineFallbackErrorResponseWithNonzeroExit(t *testing.T) {
	// The one-shot binary exits 1 on method errors; the structured
	// response on stdout still wins over the exit status.
	d := New(Options{OfflineCommand: []string{
		"sh", "-c", `echo '{"id": 1, "ok": false, "error": {"message": "E_NOT_FOUND: node missing"}}'; exit 1`,
	}})
	_, err := d.Call(context.Background(), wire.OpGetProperty, nil)
	var werr *wire.Error
	if !errors.As(err, &werr) || werr.Code() != wire.CodeNotFound {
		t.Fatalf("got %v, want E_NOT_FOUND", err)
	}
}

func TestOfflineFallbackProcessFailure(t *testing.T) {
	d := New(Options{OfflineCommand: []string{
		"sh", "-c", `echo "engine exploded" >&2; exit 3`,
	}})
	_, err := d.Call(context.Background(), wire.OpGetProperty, nil)
	if err == nil || !strings.Contains(err.Error(), "engine exploded") {
		t.Errorf("got %v, want stderr detail", err)
	}
}

func TestOfflineFallbackMalformedOutput(t *testing.T) {
	d := New(Options{OfflineCommand: []string{"sh", "-c", `echo not-json`}})
	_, err := d.Call(context.Background(), wire.OpGetProperty, nil)
	if err == nil || !strings.Contains(err.Error(), "malformed offline result") {
		t.Errorf("got %v, want malformed-result error", err)
	}
}
