// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"fmt"
	"testing"

	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/lib/variant"
	"github.com/stagehand-foundation/stagehand/wire"
)

func TestAddNodeConflictsAndValidation(t *testing.T) {
	r, _ := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "A"}`)

	// Sibling name collision.
	dispatchError(t, r, wire.OpAddNode,
		`{"parent": "root", "type": "Node", "name": "A"}`, wire.CodeConflict)
	// Unknown class.
	dispatchError(t, r, wire.OpAddNode,
		`{"parent": "root", "type": "NoSuchClass", "name": "B"}`, wire.CodeInvalidParam)
	// Unknown parent.
	dispatchError(t, r, wire.OpAddNode,
		`{"parent": "root/Missing", "type": "Node", "name": "B"}`, wire.CodeNotFound)
}

func TestAddNodeAtIndex(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "A"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "B"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "Mid", "index": 1}`)

	tree, _, _ := ed.CurrentScene()
	names := childNames(tree.Root().Children())
	if fmt.Sprint(names) != "[A Mid B]" {
		t.Errorf("child order: %v", names)
	}
}

func TestRemoveRootRejected(t *testing.T) {
	r, _ := newTestRegistry(t, Options{})
	dispatchError(t, r, wire.OpRemoveNode, `{"node_path": "root"}`, wire.CodeConflict)
	dispatchError(t, r, wire.OpDuplicateNode, `{"node_path": "root"}`, wire.CodeConflict)
	dispatchError(t, r, wire.OpReparentNode,
		`{"node_path": "root", "new_parent": "root"}`, wire.CodeConflict)
}

func TestDuplicateNodeDeduplicatesName(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node2D", "name": "Enemy"}`)
	dispatch(t, r, wire.OpSetProperty,
		`{"node_path": "root/Enemy", "property": "position", "value": {"$type": "Vector2", "x": 7, "y": 0}}`)

	result := dispatch(t, r, wire.OpDuplicateNode, `{"node_path": "root/Enemy"}`)
	if result["path"] != "root/Enemy_2" || result["name"] != "Enemy_2" {
		t.Errorf("first duplicate: %v", result)
	}
	result = dispatch(t, r, wire.OpDuplicateNode, `{"node_path": "root/Enemy"}`)
	if result["name"] != "Enemy_3" {
		t.Errorf("second duplicate: %v", result)
	}

	tree, _, _ := ed.CurrentScene()
	copied := tree.Resolve("root/Enemy_2")
	if copied == nil {
		t.Fatal("duplicate not attached")
	}
	value, _ := copied.Get("position")
	if value != (variant.Vector2{X: 7, Y: 0}) {
		t.Errorf("copied property: %#v", value)
	}
}

func TestDuplicateNodeExplicitName(t *testing.T) {
	r, _ := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "A"}`)
	result := dispatch(t, r, wire.OpDuplicateNode,
		`{"node_path": "root/A", "new_name": "Copy"}`)
	if result["name"] != "Copy" {
		t.Errorf("explicit name: %v", result)
	}
}

func TestReparentNode(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node2D", "name": "A"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root/A", "type": "Sprite2D", "name": "B"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node2D", "name": "C"}`)

	result := dispatch(t, r, wire.OpReparentNode,
		`{"node_path": "root/A/B", "new_parent": "root/C"}`)
	if result["path"] != "root/C/B" {
		t.Errorf("reparent result: %v", result)
	}

	// Cycle rejected before anything queues.
	dispatchError(t, r, wire.OpReparentNode,
		`{"node_path": "root/C", "new_parent": "root/C/B"}`, wire.CodeConflict)

	// Undo restores the original parent and name.
	ed.History.Undo()
	tree, _, _ := ed.CurrentScene()
	if tree.Resolve("root/A/B") == nil {
		t.Error("undo did not restore the original parent")
	}
}

func TestInstanceScene(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})

	// Build and save a prefab scene, then switch back.
	prefab, err := ed.NewScene("prefab.yaml", "Node2D", "Bullet")
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	spark, _ := scene.NewNode("Sprite2D", "Spark")
	prefab.AddChild(prefab.Root(), spark, -1)
	if _, err := ed.SaveScene("prefab.yaml"); err != nil {
		t.Fatalf("SaveScene: %v", err)
	}
	if _, err := ed.OpenScene("main.yaml"); err != nil {
		t.Fatalf("OpenScene: %v", err)
	}

	result := dispatch(t, r, wire.OpInstanceScene,
		`{"scene_path": "res://prefab.yaml", "parent": "root"}`)
	if result["path"] != "root/Bullet" || result["class"] != "Node2D" {
		t.Errorf("instance result: %v", result)
	}
	tree, _, _ := ed.CurrentScene()
	if tree.Resolve("root/Bullet/Spark") == nil {
		t.Error("instanced subtree incomplete")
	}

	// A second instance deduplicates its name.
	result = dispatch(t, r, wire.OpInstanceScene,
		`{"scene_path": "res://prefab.yaml", "parent": "root"}`)
	if result["name"] != "Bullet_2" {
		t.Errorf("second instance: %v", result)
	}

	dispatchError(t, r, wire.OpInstanceScene,
		`{"scene_path": "res://missing.yaml", "parent": "root"}`, wire.CodeNotFound)
}
