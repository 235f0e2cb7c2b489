// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"testing"

	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/lib/variant"
	"github.com/stagehand-foundation/stagehand/wire"
)

func TestImplicitActionCommitsImmediately(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})

	result := dispatch(t, r, wire.OpAddNode,
		`{"parent": "root", "type": "Node2D", "name": "Player"}`)
	if result["path"] != "root/Player" {
		t.Errorf("path: %v", result["path"])
	}

	tree, _, _ := ed.CurrentScene()
	if tree.Resolve("root/Player") == nil {
		t.Fatal("node not attached after implicit commit")
	}
	if ed.History.UndoDepth() != 1 {
		t.Errorf("undo depth: %d", ed.History.UndoDepth())
	}

	// One undo reverses the lone call.
	if _, err := ed.History.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if tree.Resolve("root/Player") != nil {
		t.Error("node survived undo")
	}
}

func TestBeginTwiceKeepsFirstActionOpen(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpBeginAction, `{"label": "first batch"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "A"}`)

	werr := dispatchError(t, r, wire.OpBeginAction, `{"label": "second"}`, wire.CodeConflict)
	if werr.Details["open_label"] != "first batch" {
		t.Errorf("open_label: %v", werr.Details)
	}

	// The first action and its queued operation survive the failure.
	result := dispatch(t, r, wire.OpCommitAction, `{"execute": true}`)
	if result["label"] != "first batch" || result["operations"] != 1 {
		t.Errorf("commit result: %v", result)
	}
	tree, _, _ := ed.CurrentScene()
	if tree.Resolve("root/A") == nil {
		t.Error("queued node lost")
	}
}

func TestAbortDiscardsQueuedOperations(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	tree, _, _ := ed.CurrentScene()

	dispatch(t, r, wire.OpBeginAction, `{"label": "doomed"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node2D", "name": "Ghost"}`)
	if tree.Resolve("root/Ghost") != nil {
		t.Fatal("queued add executed before commit")
	}

	result := dispatch(t, r, wire.OpAbortAction, `{}`)
	if result["aborted"] != true || result["label"] != "doomed" {
		t.Errorf("abort result: %v", result)
	}
	if tree.Resolve("root/Ghost") != nil {
		t.Error("aborted node attached")
	}
	if ed.History.UndoDepth() != 0 {
		t.Errorf("aborted action reached the undo stack: depth %d", ed.History.UndoDepth())
	}

	dispatchError(t, r, wire.OpAbortAction, `{}`, wire.CodeConflict)
	dispatchError(t, r, wire.OpCommitAction, `{}`, wire.CodeConflict)
}

func TestCommitWithoutExecuteDiscards(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpBeginAction, `{"label": "dry run"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "X"}`)

	result := dispatch(t, r, wire.OpCommitAction, `{"execute": false}`)
	if result["executed"] != false {
		t.Errorf("commit result: %v", result)
	}
	tree, _, _ := ed.CurrentScene()
	if tree.Resolve("root/X") != nil {
		t.Error("discarded node attached")
	}
	if ed.History.UndoDepth() != 0 {
		t.Errorf("discarded action on the undo stack: depth %d", ed.History.UndoDepth())
	}
}

// A batch can address a node whose creation is still queued, and one
// undo reverses the whole batch.
func TestBatchAddressesPendingNodes(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	tree, _, _ := ed.CurrentScene()

	dispatch(t, r, wire.OpBeginAction, `{"label": "build player"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node2D", "name": "Player"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root/Player", "type": "Sprite2D", "name": "Skin"}`)
	dispatch(t, r, wire.OpSetProperty,
		`{"node_path": "root/Player", "property": "position", "value": {"$type": "Vector2", "x": 100, "y": 50}}`)

	// Nothing has run yet.
	if tree.Resolve("root/Player") != nil {
		t.Fatal("batch executed early")
	}

	result := dispatch(t, r, wire.OpCommitAction, `{"execute": true}`)
	if result["operations"] != 3 {
		t.Errorf("operations: %v", result["operations"])
	}

	player := tree.Resolve("root/Player")
	if player == nil {
		t.Fatal("Player not attached after commit")
	}
	if tree.Resolve("root/Player/Skin") == nil {
		t.Fatal("pending-parent child not attached")
	}
	value, _ := player.Get("position")
	if value != (variant.Vector2{X: 100, Y: 50}) {
		t.Errorf("position: %#v", value)
	}

	if _, err := ed.History.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if tree.Resolve("root/Player") != nil {
		t.Error("undo left the batch applied")
	}
	if ed.History.RedoDepth() != 1 {
		t.Errorf("redo depth: %d", ed.History.RedoDepth())
	}
}

// Removing an attached node inside a batch captures its position at
// execution time, so undo puts it back exactly where it was.
func TestBatchRemoveRestoresPosition(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "A"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "B"}`)
	tree, _, _ := ed.CurrentScene()

	dispatch(t, r, wire.OpBeginAction, `{"label": "drop A"}`)
	dispatch(t, r, wire.OpRemoveNode, `{"node_path": "root/A"}`)
	dispatch(t, r, wire.OpCommitAction, `{"execute": true}`)
	if tree.Resolve("root/A") != nil {
		t.Fatal("A survived the remove")
	}

	ed.History.Undo()
	children := tree.Root().Children()
	if len(children) != 2 || children[0].Name() != "A" {
		t.Errorf("undo order: %v", childNames(children))
	}
}

// A validation failure mid-batch queues nothing and leaves the action
// open with its earlier operations intact.
func TestBatchSurvivesFailedCall(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	dispatch(t, r, wire.OpBeginAction, `{"label": "partial"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "Keep"}`)
	dispatchError(t, r, wire.OpSetProperty,
		`{"node_path": "root/Keep", "property": "no_such", "value": 1}`, wire.CodeNotFound)

	result := dispatch(t, r, wire.OpCommitAction, `{"execute": true}`)
	if result["operations"] != 1 {
		t.Errorf("operations: %v", result["operations"])
	}
	tree, _, _ := ed.CurrentScene()
	if tree.Resolve("root/Keep") == nil {
		t.Error("surviving operation lost")
	}
}

func TestOnCommitObservesEveryClose(t *testing.T) {
	type closed struct {
		label    string
		methods  []string
		executed bool
	}
	var observed []closed
	r, _ := newTestRegistry(t, Options{
		OnCommit: func(label string, methods []string, executed bool) {
			observed = append(observed, closed{label, methods, executed})
		},
	})

	// Implicit single-call action.
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "A"}`)
	// Explicit batch.
	dispatch(t, r, wire.OpBeginAction, `{"label": "batch"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "B"}`)
	dispatch(t, r, wire.OpCommitAction, `{}`)
	// Abort.
	dispatch(t, r, wire.OpBeginAction, `{"label": "dropped"}`)
	dispatch(t, r, wire.OpAbortAction, `{}`)

	if len(observed) != 3 {
		t.Fatalf("observed %d closes, want 3", len(observed))
	}
	if !observed[0].executed || len(observed[0].methods) != 1 || observed[0].methods[0] != wire.OpAddNode {
		t.Errorf("implicit close: %+v", observed[0])
	}
	if observed[1].label != "batch" || !observed[1].executed {
		t.Errorf("batch close: %+v", observed[1])
	}
	if observed[2].label != "dropped" || observed[2].executed {
		t.Errorf("abort close: %+v", observed[2])
	}
}

func TestAbortOpen(t *testing.T) {
	r, ed := newTestRegistry(t, Options{})
	if r.AbortOpen() {
		t.Error("AbortOpen with nothing open reported true")
	}
	dispatch(t, r, wire.OpBeginAction, `{"label": "session died"}`)
	dispatch(t, r, wire.OpAddNode, `{"parent": "root", "type": "Node", "name": "X"}`)
	if !r.AbortOpen() {
		t.Error("AbortOpen with an open action reported false")
	}
	if ed.History.Open() {
		t.Error("action still open")
	}
	tree, _, _ := ed.CurrentScene()
	if tree.Resolve("root/X") != nil {
		t.Error("abandoned node attached")
	}
}

func childNames(children []*scene.Node) []string {
	names := make([]string, len(children))
	for i, child := range children {
		names[i] = child.Name()
	}
	return names
}
