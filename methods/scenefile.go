// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"errors"
	"strings"

	"github.com/stagehand-foundation/stagehand/lib/editor"
	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/wire"
)

func (r *Registry) registerSceneFile() {
	r.register(wire.OpOpenScene, `{
		"type": "object",
		"required": ["path"],
		"properties": {"path": {"type": "string", "minLength": 1}}
	}`, r.openScene)

	r.register(wire.OpSaveScene, `{
		"type": "object",
		"properties": {"path": {"type": "string"}}
	}`, r.saveScene)

	r.register(wire.OpGetCurrentScene, `{"type": "object"}`, r.getCurrentScene)
	r.register(wire.OpListOpenScenes, `{"type": "object"}`, r.listOpenScenes)
}

func (r *Registry) openScene(params map[string]any) (any, *wire.Error) {
	path := stringParam(params, "path")
	tree, err := r.editor.OpenScene(path)
	if err != nil {
		return nil, wire.NewError(wire.CodeNotFound, err.Error(),
			map[string]any{"path": path})
	}
	return map[string]any{
		"path":       strings.TrimPrefix(path, "res://"),
		"root_class": tree.Root().ClassName(),
		"node_count": countNodes(tree.Root()),
	}, nil
}

func (r *Registry) saveScene(params map[string]any) (any, *wire.Error) {
	path := stringParam(params, "path")
	saved, err := r.editor.SaveScene(path)
	if err != nil {
		switch {
		case errors.Is(err, editor.ErrNoCurrentScene):
			return nil, wire.NewError(wire.CodeConflict, "no scene is open", nil)
		case errors.Is(err, editor.ErrSceneNotOpen):
			return nil, wire.NewError(wire.CodeNotFound, err.Error(),
				map[string]any{"path": path})
		default:
			return nil, wire.NewError(wire.CodeInternal, err.Error(), nil)
		}
	}
	return map[string]any{"path": saved}, nil
}

func (r *Registry) getCurrentScene(_ map[string]any) (any, *wire.Error) {
	tree, path, err := r.editor.CurrentScene()
	if err != nil {
		return nil, wire.NewError(wire.CodeConflict, "no scene is open", nil)
	}
	return map[string]any{
		"path":       path,
		"root_class": tree.Root().ClassName(),
		"node_count": countNodes(tree.Root()),
	}, nil
}

func (r *Registry) listOpenScenes(_ map[string]any) (any, *wire.Error) {
	result := map[string]any{"scenes": r.editor.OpenScenes()}
	if _, path, err := r.editor.CurrentScene(); err == nil {
		result["current"] = path
	}
	return result, nil
}

func countNodes(node *scene.Node) int {
	total := 1
	for _, child := range node.Children() {
		total += countNodes(child)
	}
	return total
}
