// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"testing"

	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/wire"
)

func TestSelectNode(t *testing.T) {
	r, _ := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "A"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "B"}`)

	result := dispatch(t, r, wire.OpSelectNode, `{"node_path": "root/A"}`)
	selected, _ := result["selected"].([]string)
	if len(selected) != 1 || selected[0] != "root/A" {
		t.Errorf("selection: %v", result["selected"])
	}

	result = dispatch(t, r, wire.OpSelectNode, `{"node_path": "root/B", "additive": true}`)
	if selected, _ = result["selected"].([]string); len(selected) != 2 {
		t.Errorf("additive selection: %v", result["selected"])
	}

	// Non-additive select replaces.
	result = dispatch(t, r, wire.OpSelectNode, `{"node_path": "root/B"}`)
	if selected, _ = result["selected"].([]string); len(selected) != 1 || selected[0] != "root/B" {
		t.Errorf("replaced selection: %v", result["selected"])
	}

	result = dispatch(t, r, wire.OpSelectionClear, `{}`)
	if selected, _ = result["selected"].([]string); len(selected) != 0 {
		t.Errorf("cleared selection: %v", result["selected"])
	}

	dispatchError(t, r, wire.OpSelectNode, `{"node_path": "root/Missing"}`, wire.CodeNotFound)
}

func TestSceneTreeQuery(t *testing.T) {
	r, _ := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node2D", "name": "World"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root/World", "type": "Sprite2D", "name": "Hero"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root/World", "type": "Sprite2D", "name": "Villain"}`)

	result := dispatch(t, r, wire.OpSceneTreeQuery, `{"filter": "class == \"Sprite2D\""}`)
	if result["count"] != 2 {
		t.Errorf("count: %v", result["count"])
	}
	nodes, _ := result["nodes"].([]scene.QueryResult)
	if len(nodes) != 2 || nodes[0].Name != "Hero" {
		t.Errorf("nodes: %v", result["nodes"])
	}

	result = dispatch(t, r, wire.OpSceneTreeQuery, `{"root": "root/World", "limit": 1}`)
	if result["count"] != 1 {
		t.Errorf("limited count: %v", result["count"])
	}

	dispatchError(t, r, wire.OpSceneTreeQuery, `{"filter": "name =="}`, wire.CodeInvalidParam)
	dispatchError(t, r, wire.OpSceneTreeQuery, `{"root": "root/Missing"}`, wire.CodeNotFound)
}

func TestFilesystemMethodsWithoutScanner(t *testing.T) {
	r, _ := newTestRegistry(t, Options{})
	dispatchError(t, r, wire.OpFilesystemScan, `{}`, wire.CodeInternal)
	dispatchError(t, r, wire.OpReimportFiles, `{"paths": ["a.png"]}`, wire.CodeInternal)
}
