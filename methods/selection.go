// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/wire"
)

func (r *Registry) registerSelection() {
	r.register(wire.OpSelectNode, `{
		"type": "object",
		"required": ["node_path"],
		"properties": {
			"node_path": {"type": "string", "minLength": 1},
			"additive":  {"type": "boolean"}
		}
	}`, r.selectNode)

	r.register(wire.OpSelectionClear, `{"type": "object"}`, r.selectionClear)

	r.register(wire.OpSceneTreeQuery, `{
		"type": "object",
		"properties": {
			"root":   {"type": "string"},
			"filter": {"type": "string"},
			"limit":  {"type": "integer", "minimum": 0}
		}
	}`, r.sceneTreeQuery)
}

func (r *Registry) selectNode(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	address := stringParam(params, "node_path")
	node, _, found := r.resolveNode(tree, address)
	if !found {
		return nil, notFound("node", address)
	}
	r.editor.Select(node, boolParam(params, "additive", false))
	return map[string]any{"selected": r.editor.SelectionPaths()}, nil
}

func (r *Registry) selectionClear(_ map[string]any) (any, *wire.Error) {
	r.editor.ClearSelection()
	return map[string]any{"selected": []string{}}, nil
}

func (r *Registry) sceneTreeQuery(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	options := scene.QueryOptions{
		Filter: stringParam(params, "filter"),
		Limit:  intParam(params, "limit", 0),
	}
	if rootAddress := stringParam(params, "root"); rootAddress != "" {
		root := tree.Resolve(rootAddress)
		if root == nil {
			return nil, notFound("node", rootAddress)
		}
		options.Root = root
	}
	results, err := tree.Query(options)
	if err != nil {
		return nil, wire.NewError(wire.CodeInvalidParam, err.Error(),
			map[string]any{"filter": options.Filter})
	}
	return map[string]any{"nodes": results, "count": len(results)}, nil
}
