// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"errors"
	"testing"

	"github.com/stagehand-foundation/stagehand/lib/variant"
)

func TestNewNodeValidation(t *testing.T) {
	if _, err := NewNode("NoSuchClass", "a"); err == nil {
		t.Error("unknown class: want error")
	}
	if _, err := NewNode("Node", ""); err == nil {
		t.Error("empty name: want error")
	}
	if _, err := NewNode("Node", "a/b"); err == nil {
		t.Error("slash in name: want error")
	}
	if _, err := NewNode("Node", "%a"); err == nil {
		t.Error("percent in name: want error")
	}
}

func TestPropertyDefaultsAndOverrides(t *testing.T) {
	node, err := NewNode("Node2D", "sprite")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	value, err := node.Get("position")
	if err != nil {
		t.Fatalf("Get default: %v", err)
	}
	if value != (variant.Vector2{}) {
		t.Errorf("default position: got %#v", value)
	}

	want := variant.Vector2{X: 3, Y: 4}
	if err := node.Set("position", want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err = node.Get("position")
	if err != nil {
		t.Fatalf("Get override: %v", err)
	}
	if value != want {
		t.Errorf("position: got %#v, want %#v", value, want)
	}

	// Inherited property from the Node base class.
	if _, err := node.Get("process_mode"); err != nil {
		t.Errorf("inherited property: %v", err)
	}
}

func TestSetRejectsWrongKind(t *testing.T) {
	node, err := NewNode("Node2D", "sprite")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	err = node.Set("position", "not a vector")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("got %v, want ErrTypeMismatch", err)
	}
	err = node.Set("no_such", 1)
	if !errors.Is(err, ErrNoProperty) {
		t.Errorf("got %v, want ErrNoProperty", err)
	}

	// Numeric kinds interconvert.
	if err := node.Set("rotation", 1); err != nil {
		t.Errorf("int into float property: %v", err)
	}
	if err := node.Set("z_index", 2.0); err != nil {
		t.Errorf("float into int property: %v", err)
	}
}

func TestConnectIdempotent(t *testing.T) {
	node, err := NewNode("Timer", "timer")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	already, err := node.Connect("timeout", "root/Target", "on_timeout")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if already {
		t.Error("first Connect: already=true")
	}

	already, err = node.Connect("timeout", "root/Target", "on_timeout")
	if err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if !already {
		t.Error("second Connect: already=false")
	}
	if len(node.Connections()) != 1 {
		t.Errorf("connections: got %d, want 1", len(node.Connections()))
	}

	if _, err := node.Connect("no_such_signal", "root/Target", "m"); !errors.Is(err, ErrNoSignal) {
		t.Errorf("unknown signal: got %v, want ErrNoSignal", err)
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	node, err := NewNode("Timer", "timer")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	node.Connect("timeout", "root/Target", "on_timeout")

	already, err := node.Disconnect("timeout", "root/Target", "on_timeout")
	if err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if already {
		t.Error("first Disconnect: already=true")
	}

	already, err = node.Disconnect("timeout", "root/Target", "on_timeout")
	if err != nil {
		t.Fatalf("second Disconnect: %v", err)
	}
	if !already {
		t.Error("second Disconnect: already=false")
	}
}

func TestRestoreConnectionKeepsOrder(t *testing.T) {
	node, err := NewNode("Timer", "timer")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	node.Connect("timeout", "root/A", "first")
	node.Connect("timeout", "root/B", "second")
	node.Connect("timeout", "root/C", "third")

	index := node.ConnectionIndex("timeout", "root/B", "second")
	if index != 1 {
		t.Fatalf("index: got %d, want 1", index)
	}
	node.Disconnect("timeout", "root/B", "second")
	node.RestoreConnection(index, Connection{Signal: "timeout", TargetPath: "root/B", Method: "second"})

	connections := node.Connections()
	if len(connections) != 3 || connections[1].TargetPath != "root/B" {
		t.Errorf("restored order: got %+v", connections)
	}
}

func TestDuplicateDeepCopies(t *testing.T) {
	parent, err := NewNode("Node2D", "parent")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	parent.Set("position", variant.Vector2{X: 1, Y: 2})
	parent.SetUniqueInOwner(true)
	parent.Connect("renamed", "root/Other", "on_renamed")

	tree := NewTreeWithRoot(parent)
	child, err := NewNode("Sprite2D", "child")
	if err != nil {
		t.Fatalf("NewNode child: %v", err)
	}
	if err := tree.AddChild(parent, child, -1); err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	copied := parent.Duplicate()
	if copied.Parent() != nil {
		t.Error("copy is attached")
	}
	value, err := copied.Get("position")
	if err != nil || value != (variant.Vector2{X: 1, Y: 2}) {
		t.Errorf("copied property: %v, %v", value, err)
	}
	if !copied.UniqueInOwner() {
		t.Error("unique flag not copied")
	}
	if len(copied.Connections()) != 1 {
		t.Error("connections not copied")
	}
	if len(copied.Children()) != 1 || copied.Children()[0].Name() != "child" {
		t.Error("subtree not copied")
	}

	// Mutating the copy must not touch the original.
	copied.Set("position", variant.Vector2{X: 9, Y: 9})
	value, _ = parent.Get("position")
	if value != (variant.Vector2{X: 1, Y: 2}) {
		t.Errorf("original mutated: %#v", value)
	}
}

func TestTimerMethodsUseInternalState(t *testing.T) {
	node, err := NewNode("Timer", "timer")
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	stopped, err := node.CallMethod("is_stopped", nil)
	if err != nil {
		t.Fatalf("is_stopped: %v", err)
	}
	if stopped != true {
		t.Errorf("fresh timer: is_stopped=%v, want true", stopped)
	}
	if _, err := node.CallMethod("start", nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	stopped, _ = node.CallMethod("is_stopped", nil)
	if stopped != false {
		t.Errorf("started timer: is_stopped=%v, want false", stopped)
	}
	if _, err := node.CallMethod("no_such", nil); !errors.Is(err, ErrNoMethod) {
		t.Errorf("unknown method: got %v, want ErrNoMethod", err)
	}
}
