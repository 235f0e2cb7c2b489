// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"errors"
	"fmt"
	"strconv"
)

// Structural errors returned by tree mutations.
var (
	ErrRootImmutable = errors.New("scene: the root node cannot be removed, duplicated, or reparented")
	ErrNotInTree     = errors.New("scene: node is not part of this tree")
	ErrCycle         = errors.New("scene: reparenting a node under its own descendant")
	ErrNameTaken     = errors.New("scene: sibling name already taken")
)

// Tree is one open scene: a root node plus the unique-name index that
// backs %Name addressing.
type Tree struct {
	root *Node

	// uniqueIndex is the fast-path %Name lookup. It indexes the first
	// attached node flagged unique for each name; the resolver falls
	// back to a full depth-first scan when the index misses.
	uniqueIndex map[string]*Node
}

// NewTree creates a tree with a fresh root node of the given class.
func NewTree(rootClass, rootName string) (*Tree, error) {
	root, err := NewNode(rootClass, rootName)
	if err != nil {
		return nil, err
	}
	return NewTreeWithRoot(root), nil
}

// NewTreeWithRoot wraps an existing detached node as a tree root.
// The node's subtree is indexed for unique-name lookup.
func NewTreeWithRoot(root *Node) *Tree {
	tree := &Tree{
		root:        root,
		uniqueIndex: make(map[string]*Node),
	}
	tree.indexSubtree(root)
	return tree
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node { return t.root }

// Contains reports whether the node is attached to this tree.
func (t *Tree) Contains(node *Node) bool {
	for current := node; current != nil; current = current.parent {
		if current == t.root {
			return true
		}
	}
	return false
}

// AddChild attaches a detached node under parent at the given index
// (-1 appends). Fails if a sibling already carries the node's name.
func (t *Tree) AddChild(parent, node *Node, index int) error {
	if !t.Contains(parent) {
		return ErrNotInTree
	}
	if node.parent != nil {
		return fmt.Errorf("scene: node %q is already attached", node.name)
	}
	for _, sibling := range parent.children {
		if sibling.name == node.name {
			return fmt.Errorf("%w: %q under %s", ErrNameTaken, node.name, parent.Path())
		}
	}
	if index < 0 || index > len(parent.children) {
		index = len(parent.children)
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[index+1:], parent.children[index:])
	parent.children[index] = node
	node.parent = parent
	t.indexSubtree(node)
	return nil
}

// Remove detaches a node from its parent, keeping its subtree intact
// on the detached node. Returns the child index the node occupied so
// an undo can reinsert it in place. The root cannot be removed.
func (t *Tree) Remove(node *Node) (index int, err error) {
	if node == t.root {
		return 0, ErrRootImmutable
	}
	if !t.Contains(node) {
		return 0, ErrNotInTree
	}
	parent := node.parent
	for i, child := range parent.children {
		if child == node {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			node.parent = nil
			t.unindexSubtree(node)
			return i, nil
		}
	}
	return 0, ErrNotInTree
}

// Reparent moves a node (with its subtree) under a new parent. The
// root cannot be reparented, and a node cannot be moved under its own
// descendant. On a sibling name collision the node is renamed with a
// numeric suffix.
func (t *Tree) Reparent(node, newParent *Node) error {
	if node == t.root {
		return ErrRootImmutable
	}
	if !t.Contains(node) || !t.Contains(newParent) {
		return ErrNotInTree
	}
	for current := newParent; current != nil; current = current.parent {
		if current == node {
			return ErrCycle
		}
	}
	if _, err := t.Remove(node); err != nil {
		return err
	}
	node.name = t.UniqueChildName(newParent, node.name)
	return t.AddChild(newParent, node, -1)
}

// UniqueChildName returns want if no child of parent carries it, else
// the first free "want_2", "want_3", … variant. Mirrors the host
// editor's collision policy for duplicated and instanced nodes.
func (t *Tree) UniqueChildName(parent *Node, want string) string {
	taken := make(map[string]bool, len(parent.children))
	for _, child := range parent.children {
		taken[child.name] = true
	}
	if !taken[want] {
		return want
	}
	for suffix := 2; ; suffix++ {
		candidate := want + "_" + strconv.Itoa(suffix)
		if !taken[candidate] {
			return candidate
		}
	}
}

// indexSubtree registers unique-flagged nodes in the fast-path index.
// First registration wins; later duplicates stay reachable through
// the scan fallback.
func (t *Tree) indexSubtree(node *Node) {
	if node.uniqueInOwner {
		if _, exists := t.uniqueIndex[node.name]; !exists {
			t.uniqueIndex[node.name] = node
		}
	}
	for _, child := range node.children {
		t.indexSubtree(child)
	}
}

// unindexSubtree drops index entries owned by the detached subtree.
func (t *Tree) unindexSubtree(node *Node) {
	if indexed, exists := t.uniqueIndex[node.name]; exists && indexed == node {
		delete(t.uniqueIndex, node.name)
	}
	for _, child := range node.children {
		t.unindexSubtree(child)
	}
}

// ReindexUnique rebuilds the unique-name index from scratch. Called
// after bulk operations (scene load) or when a node's unique flag is
// toggled in place.
func (t *Tree) ReindexUnique() {
	t.uniqueIndex = make(map[string]*Node)
	t.indexSubtree(t.root)
}
