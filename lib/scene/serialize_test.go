// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stagehand-foundation/stagehand/lib/variant"
)

func TestSceneFileRoundTrip(t *testing.T) {
	tree, err := NewTree("Node", "Main")
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	player := mustNode(t, "Node2D", "Player")
	player.SetUniqueInOwner(true)
	if err := player.Set("position", variant.Vector2{X: 10, Y: 20}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := player.Set("modulate", variant.Color{R: 1, G: 0.5, B: 0, A: 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	sprite := mustNode(t, "Sprite2D", "Sprite")
	sprite.Set("texture", "res://player.png")
	timer := mustNode(t, "Timer", "Respawn")
	timer.Connect("timeout", "root/Player", "on_respawn")

	tree.AddChild(tree.Root(), player, -1)
	tree.AddChild(player, sprite, -1)
	tree.AddChild(tree.Root(), timer, -1)

	path := filepath.Join(t.TempDir(), "main.yaml")
	if err := SaveFile(tree, path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	node := loaded.Resolve("root/Player")
	if node == nil {
		t.Fatal("Player missing after reload")
	}
	value, err := node.Get("position")
	if err != nil || value != (variant.Vector2{X: 10, Y: 20}) {
		t.Errorf("position after reload: %v, %v", value, err)
	}
	if !node.UniqueInOwner() {
		t.Error("unique flag lost")
	}
	if loaded.Resolve("%Player") != node {
		t.Error("unique index not rebuilt on load")
	}
	if loaded.Resolve("root/Player/Sprite") == nil {
		t.Error("Sprite missing after reload")
	}

	reloadedTimer := loaded.Resolve("root/Respawn")
	if reloadedTimer == nil {
		t.Fatal("Respawn missing after reload")
	}
	connections := reloadedTimer.Connections()
	if len(connections) != 1 || connections[0].Method != "on_respawn" {
		t.Errorf("connections after reload: %+v", connections)
	}
}

func TestUnmarshalRejectsBadFormat(t *testing.T) {
	_, err := Unmarshal([]byte("format: 99\nroot:\n  name: Main\n  class: Node\n"))
	if err == nil || !strings.Contains(err.Error(), "format") {
		t.Errorf("got %v, want format error", err)
	}
}

func TestUnmarshalRejectsDuplicateSiblings(t *testing.T) {
	data := []byte(`format: 1
root:
  name: Main
  class: Node
  children:
    - {name: A, class: Node}
    - {name: A, class: Node}
`)
	if _, err := Unmarshal(data); err == nil {
		t.Error("duplicate siblings accepted")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want not-exist", err)
	}
}
