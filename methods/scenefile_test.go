// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stagehand-foundation/stagehand/wire"
)

func TestSaveAndOpenScene(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node2D", "name": "Player"}`)

	result := dispatch(t, r, wire.OpSaveScene, `{}`)
	if result["path"] != "main.yaml" {
		t.Errorf("save result: %v", result)
	}
	if _, err := os.Stat(filepath.Join(ed.ProjectDir, "main.yaml")); err != nil {
		t.Fatalf("saved file: %v", err)
	}

	// Re-opening the already-open scene keeps the in-memory tree.
	result = dispatch(t, r, wire.OpOpenScene, `{"path": "res://main.yaml"}`)
	if result["path"] != "main.yaml" || result["root_class"] != "Node" || result["node_count"] != 2 {
		t.Errorf("open result: %v", result)
	}

	dispatchError(t, r, wire.OpOpenScene, `{"path": "res://missing.yaml"}`, wire.CodeNotFound)
	dispatchError(t, r, wire.OpSaveScene, `{"path": "never-opened.yaml"}`, wire.CodeNotFound)
}

func TestGetCurrentSceneAndList(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	if _, err := ed.NewScene("second.yaml", "Node2D", "Other"); err != nil {
		t.Fatalf("NewScene: %v", err)
	}

	result := dispatch(t, r, wire.OpGetCurrentScene, `{}`)
	if result["path"] != "second.yaml" || result["root_class"] != "Node2D" {
		t.Errorf("current scene: %v", result)
	}

	result = dispatch(t, r, wire.OpListOpenScenes, `{}`)
	scenes, _ := result["scenes"].([]string)
	if len(scenes) != 2 || scenes[0] != "main.yaml" || scenes[1] != "second.yaml" {
		t.Errorf("open scenes: %v", result["scenes"])
	}
	if result["current"] != "second.yaml" {
		t.Errorf("current: %v", result["current"])
	}
}
