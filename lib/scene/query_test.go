// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"testing"

	"github.com/stagehand-foundation/stagehand/lib/variant"
)

func queryPaths(t *testing.T, tree *Tree, options QueryOptions) []string {
	t.Helper()
	results, err := tree.Query(options)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	paths := make([]string, len(results))
	for i, result := range results {
		paths[i] = result.Path
	}
	return paths
}

func TestQueryNoFilterReturnsAll(t *testing.T) {
	tree, _, _, _ := buildTree(t)
	paths := queryPaths(t, tree, QueryOptions{})
	want := []string{"root", "root/A", "root/A/B", "root/C"}
	if len(paths) != len(want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestQueryFilterByClass(t *testing.T) {
	tree, _, _, _ := buildTree(t)
	paths := queryPaths(t, tree, QueryOptions{Filter: `class == "Sprite2D"`})
	if len(paths) != 1 || paths[0] != "root/A/B" {
		t.Errorf("got %v, want [root/A/B]", paths)
	}
}

func TestQueryFilterByDepth(t *testing.T) {
	tree, _, _, _ := buildTree(t)
	paths := queryPaths(t, tree, QueryOptions{Filter: "depth == 1"})
	if len(paths) != 2 {
		t.Errorf("got %v, want the two direct children", paths)
	}
}

func TestQueryFilterByProperty(t *testing.T) {
	tree, a, _, _ := buildTree(t)
	if err := a.Set("position", variant.Vector2{X: 5, Y: 0}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	paths := queryPaths(t, tree, QueryOptions{Filter: `prop("position") != nil && prop("position")["x"] == 5.0`})
	if len(paths) != 1 || paths[0] != "root/A" {
		t.Errorf("got %v, want [root/A]", paths)
	}
}

func TestQuerySubtreeRootAndLimit(t *testing.T) {
	tree, a, _, _ := buildTree(t)
	paths := queryPaths(t, tree, QueryOptions{Root: a})
	if len(paths) != 2 || paths[0] != "root/A" {
		t.Errorf("subtree: got %v", paths)
	}

	paths = queryPaths(t, tree, QueryOptions{Limit: 2})
	if len(paths) != 2 {
		t.Errorf("limit: got %v", paths)
	}
}

func TestQueryBadFilter(t *testing.T) {
	tree, _, _, _ := buildTree(t)
	if _, err := tree.Query(QueryOptions{Filter: "name =="}); err == nil {
		t.Error("syntax error accepted")
	}
	if _, err := tree.Query(QueryOptions{Filter: `name + "x"`}); err == nil {
		t.Error("non-boolean filter accepted")
	}
}
