// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import "strings"

// Resolve maps a string address to a live node, or nil when nothing
// matches. Addresses are resolved at call time and never cached, so a
// stale address after a mutation fails to resolve rather than
// silently pointing at the wrong node.
//
// Accepted forms:
//
//	""            the root
//	"root"        the root
//	"/root"       the root
//	"root/A/B"    root-relative path (leading "/" or "root/" stripped)
//	"%Name"       unique-name lookup
//	"%Name/A"     path continuing below a unique-name anchor
//
// Resolve never returns an error; callers translate nil into their
// own not-found failure.
func (t *Tree) Resolve(address string) *Node {
	address = strings.TrimPrefix(address, "/")
	if address == "" || address == "root" {
		return t.root
	}
	address = strings.TrimPrefix(address, "root/")

	if strings.HasPrefix(address, "%") {
		anchorName, rest, _ := strings.Cut(address[1:], "/")
		anchor := t.FindUnique(anchorName)
		if anchor == nil {
			return nil
		}
		if rest == "" {
			return anchor
		}
		return anchor.Child(rest)
	}

	return t.root.Child(address)
}

// FindUnique resolves a %Name reference: the fast-path index first,
// then a full depth-first scan comparing each node's unique flag and
// name. A node named Name but not flagged unique is never returned.
func (t *Tree) FindUnique(name string) *Node {
	if node, exists := t.uniqueIndex[name]; exists && node.uniqueInOwner && node.name == name {
		return node
	}
	return findUniqueScan(t.root, name)
}

func findUniqueScan(node *Node, name string) *Node {
	if node.uniqueInOwner && node.name == name {
		return node
	}
	for _, child := range node.children {
		if found := findUniqueScan(child, name); found != nil {
			return found
		}
	}
	return nil
}
