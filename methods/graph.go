// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"fmt"
	"strings"

	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/wire"
)

func (r *Registry) registerGraph() {
	r.register(wire.OpAddNode, `{
		"type": "object",
		"required": ["parent", "type", "name"],
		"properties": {
			"parent": {"type": "string"},
			"type":   {"type": "string", "minLength": 1},
			"name":   {"type": "string", "minLength": 1},
			"index":  {"type": "integer"}
		}
	}`, r.addNode)

	r.register(wire.OpRemoveNode, `{
		"type": "object",
		"required": ["node_path"],
		"properties": {"node_path": {"type": "string", "minLength": 1}}
	}`, r.removeNode)

	r.register(wire.OpDuplicateNode, `{
		"type": "object",
		"required": ["node_path"],
		"properties": {
			"node_path": {"type": "string", "minLength": 1},
			"new_name":  {"type": "string"}
		}
	}`, r.duplicateNode)

	r.register(wire.OpReparentNode, `{
		"type": "object",
		"required": ["node_path", "new_parent"],
		"properties": {
			"node_path":  {"type": "string", "minLength": 1},
			"new_parent": {"type": "string", "minLength": 1}
		}
	}`, r.reparentNode)

	r.register(wire.OpInstanceScene, `{
		"type": "object",
		"required": ["scene_path", "parent"],
		"properties": {
			"scene_path": {"type": "string", "minLength": 1},
			"parent":     {"type": "string", "minLength": 1},
			"name":       {"type": "string"}
		}
	}`, r.instanceScene)
}

func (r *Registry) addNode(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	parentAddress := stringParam(params, "parent")
	className := stringParam(params, "type")
	name := stringParam(params, "name")
	index := intParam(params, "index", -1)

	parent, parentPath, found := r.resolveNode(tree, parentAddress)
	if !found {
		return nil, notFound("node", parentAddress)
	}
	if r.siblingTaken(parent, parentPath, name) {
		return nil, wire.NewError(wire.CodeConflict,
			fmt.Sprintf("node %q already exists under %s", name, parentPath),
			map[string]any{"parent": parentPath, "name": name})
	}
	node, err := scene.NewNode(className, name)
	if err != nil {
		return nil, wire.NewError(wire.CodeInvalidParam, err.Error(),
			map[string]any{"type": className})
	}

	path := parentPath + "/" + name
	_, werr = r.inAction(wire.OpAddNode, "Add "+className, func() *wire.Error {
		r.pending.nodes[path] = node
		r.editor.History.AddDo(func() { tree.AddChild(parent, node, index) })
		r.editor.History.AddUndo(func() { tree.Remove(node) })
		return nil
	})
	if werr != nil {
		return nil, werr
	}
	return map[string]any{"path": path, "name": name, "class": className}, nil
}

func (r *Registry) removeNode(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	address := stringParam(params, "node_path")
	node, path, found := r.resolveNode(tree, address)
	if !found {
		return nil, notFound("node", address)
	}
	if node == tree.Root() {
		return nil, wire.NewError(wire.CodeConflict,
			"the root node cannot be removed", nil)
	}

	_, werr = r.inAction(wire.OpRemoveNode, "Remove "+node.Name(), func() *wire.Error {
		delete(r.pending.nodes, path)
		// Parent and index are captured at execution time so queued
		// operations earlier in the action see their effects applied.
		var parent *scene.Node
		var index int
		r.editor.History.AddDo(func() {
			parent = node.Parent()
			index, _ = tree.Remove(node)
		})
		r.editor.History.AddUndo(func() { tree.AddChild(parent, node, index) })
		return nil
	})
	if werr != nil {
		return nil, werr
	}
	return map[string]any{"removed": path}, nil
}

func (r *Registry) duplicateNode(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	address := stringParam(params, "node_path")
	source, path, found := r.resolveNode(tree, address)
	if !found {
		return nil, notFound("node", address)
	}
	if source == tree.Root() {
		return nil, wire.NewError(wire.CodeConflict,
			"the root node cannot be duplicated", nil)
	}

	parentPath := parentPathOf(path)
	parent, _, found := r.resolveNode(tree, parentPath)
	if !found {
		return nil, notFound("node", parentPath)
	}

	want := stringParam(params, "new_name")
	if want == "" {
		want = source.Name()
	}
	name := r.freeChildName(parent, parentPath, want)
	copied := source.Duplicate()
	if err := copied.Rename(name); err != nil {
		return nil, wire.NewError(wire.CodeInvalidParam, err.Error(), nil)
	}

	newPath := parentPath + "/" + name
	_, werr = r.inAction(wire.OpDuplicateNode, "Duplicate "+source.Name(), func() *wire.Error {
		r.pending.nodes[newPath] = copied
		r.editor.History.AddDo(func() { tree.AddChild(parent, copied, -1) })
		r.editor.History.AddUndo(func() { tree.Remove(copied) })
		return nil
	})
	if werr != nil {
		return nil, werr
	}
	return map[string]any{"path": newPath, "name": name, "class": copied.ClassName()}, nil
}

func (r *Registry) reparentNode(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	address := stringParam(params, "node_path")
	newParentAddress := stringParam(params, "new_parent")

	node, path, found := r.resolveNode(tree, address)
	if !found {
		return nil, notFound("node", address)
	}
	newParent, newParentPath, found := r.resolveNode(tree, newParentAddress)
	if !found {
		return nil, notFound("node", newParentAddress)
	}
	if node == tree.Root() {
		return nil, wire.NewError(wire.CodeConflict,
			"the root node cannot be reparented", nil)
	}
	for current := newParent; current != nil; current = current.Parent() {
		if current == node {
			return nil, wire.NewError(wire.CodeConflict,
				"cannot reparent a node under its own descendant",
				map[string]any{"node": path, "new_parent": newParentPath})
		}
	}

	oldName := node.Name()
	executed, werr := r.inAction(wire.OpReparentNode, "Reparent "+oldName, func() *wire.Error {
		if _, queued := r.pending.nodes[path]; queued {
			delete(r.pending.nodes, path)
			r.pending.nodes[newParentPath+"/"+oldName] = node
		}
		var oldParent *scene.Node
		var oldIndex int
		r.editor.History.AddDo(func() {
			oldParent = node.Parent()
			oldIndex = childIndex(oldParent, node)
			tree.Reparent(node, newParent)
		})
		r.editor.History.AddUndo(func() {
			tree.Remove(node)
			node.Rename(oldName)
			tree.AddChild(oldParent, node, oldIndex)
		})
		return nil
	})
	if werr != nil {
		return nil, werr
	}
	if executed {
		// Reparent may have renamed on a sibling collision.
		return map[string]any{"path": node.Path(), "name": node.Name()}, nil
	}
	return map[string]any{"path": newParentPath + "/" + oldName, "name": oldName}, nil
}

func (r *Registry) instanceScene(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	scenePath := stringParam(params, "scene_path")
	parentAddress := stringParam(params, "parent")

	parent, parentPath, found := r.resolveNode(tree, parentAddress)
	if !found {
		return nil, notFound("node", parentAddress)
	}
	instanced, err := r.editor.LoadSceneSubtree(scenePath)
	if err != nil {
		return nil, wire.NewError(wire.CodeNotFound, err.Error(),
			map[string]any{"scene_path": scenePath})
	}

	want := stringParam(params, "name")
	if want == "" {
		want = instanced.Name()
	}
	name := r.freeChildName(parent, parentPath, want)
	if err := instanced.Rename(name); err != nil {
		return nil, wire.NewError(wire.CodeInvalidParam, err.Error(), nil)
	}

	path := parentPath + "/" + name
	_, werr = r.inAction(wire.OpInstanceScene, "Instance "+scenePath, func() *wire.Error {
		r.pending.nodes[path] = instanced
		r.editor.History.AddDo(func() { tree.AddChild(parent, instanced, -1) })
		r.editor.History.AddUndo(func() { tree.Remove(instanced) })
		return nil
	})
	if werr != nil {
		return nil, werr
	}
	return map[string]any{"path": path, "name": name, "class": instanced.ClassName()}, nil
}

// siblingTaken reports whether a child name is taken under parent,
// counting both attached children and pending additions.
func (r *Registry) siblingTaken(parent *scene.Node, parentPath, name string) bool {
	for _, child := range parent.Children() {
		if child.Name() == name {
			return true
		}
	}
	if r.pending != nil {
		if _, queued := r.pending.nodes[parentPath+"/"+name]; queued {
			return true
		}
	}
	return false
}

// freeChildName returns want, or the first free "want_2", "want_3", …
// variant, considering attached and pending siblings alike.
func (r *Registry) freeChildName(parent *scene.Node, parentPath, want string) string {
	taken := make(map[string]bool)
	for _, child := range parent.Children() {
		taken[child.Name()] = true
	}
	if r.pending != nil {
		prefix := parentPath + "/"
		for path := range r.pending.nodes {
			if rest, ok := strings.CutPrefix(path, prefix); ok && !strings.Contains(rest, "/") {
				taken[rest] = true
			}
		}
	}
	if !taken[want] {
		return want
	}
	for suffix := 2; ; suffix++ {
		candidate := fmt.Sprintf("%s_%d", want, suffix)
		if !taken[candidate] {
			return candidate
		}
	}
}

// childIndex returns node's position among parent's children, or -1.
func childIndex(parent, node *scene.Node) int {
	if parent == nil {
		return -1
	}
	for i, child := range parent.Children() {
		if child == node {
			return i
		}
	}
	return -1
}
