// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"errors"

	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/lib/variant"
	"github.com/stagehand-foundation/stagehand/wire"
)

func (r *Registry) registerProperty() {
	r.register(wire.OpSetProperty, `{
		"type": "object",
		"required": ["node_path", "property", "value"],
		"properties": {
			"node_path": {"type": "string", "minLength": 1},
			"property":  {"type": "string", "minLength": 1}
		}
	}`, r.setProperty)

	r.register(wire.OpGetProperty, `{
		"type": "object",
		"required": ["node_path", "property"],
		"properties": {
			"node_path": {"type": "string", "minLength": 1},
			"property":  {"type": "string", "minLength": 1}
		}
	}`, r.getProperty)

	signalSchema := `{
		"type": "object",
		"required": ["node_path", "signal", "target_path", "method"],
		"properties": {
			"node_path":   {"type": "string", "minLength": 1},
			"signal":      {"type": "string", "minLength": 1},
			"target_path": {"type": "string", "minLength": 1},
			"method":      {"type": "string", "minLength": 1}
		}
	}`
	r.register(wire.OpConnectSignal, signalSchema, r.connectSignal)
	r.register(wire.OpDisconnectSignal, signalSchema, r.disconnectSignal)
}

func (r *Registry) setProperty(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	address := stringParam(params, "node_path")
	property := stringParam(params, "property")

	node, path, found := r.resolveNode(tree, address)
	if !found {
		return nil, notFound("node", address)
	}
	value := variant.Decode(params["value"])
	if werr := r.queueSet(node, path, property, value, wire.OpSetProperty); werr != nil {
		return nil, werr
	}
	return map[string]any{"path": path, "property": property}, nil
}

// queueSet validates and transactionally applies one property write.
// Shared by set_property and the reflective set on node targets.
func (r *Registry) queueSet(node *scene.Node, path, property string, value any, method string) *wire.Error {
	if err := node.CheckSet(property, value); err != nil {
		code := wire.CodeInvalidParam
		if errors.Is(err, scene.ErrNoProperty) {
			code = wire.CodeNotFound
		}
		return wire.NewError(code, err.Error(),
			map[string]any{"node": path, "property": property})
	}
	// The prior value is captured before anything runs, so the undo
	// pair restores the pre-action state even inside a batch.
	prior, _ := node.Get(property)
	_, werr := r.inAction(method, "Set "+property, func() *wire.Error {
		r.editor.History.AddDo(func() { node.Set(property, value) })
		r.editor.History.AddUndo(func() { node.Set(property, prior) })
		return nil
	})
	return werr
}

func (r *Registry) getProperty(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	address := stringParam(params, "node_path")
	property := stringParam(params, "property")

	node, path, found := r.resolveNode(tree, address)
	if !found {
		return nil, notFound("node", address)
	}
	value, err := node.Get(property)
	if err != nil {
		return nil, wire.NewError(wire.CodeNotFound, err.Error(),
			map[string]any{"node": path, "property": property})
	}
	return map[string]any{"value": variant.Encode(value)}, nil
}

func (r *Registry) connectSignal(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	address := stringParam(params, "node_path")
	signal := stringParam(params, "signal")
	targetAddress := stringParam(params, "target_path")
	method := stringParam(params, "method")

	node, path, found := r.resolveNode(tree, address)
	if !found {
		return nil, notFound("node", address)
	}
	_, targetPath, found := r.resolveNode(tree, targetAddress)
	if !found {
		return nil, notFound("node", targetAddress)
	}
	if !node.HasSignal(signal) {
		return nil, wire.NewError(wire.CodeNotFound,
			node.ClassName()+" has no signal "+signal,
			map[string]any{"node": path, "signal": signal})
	}

	key := connectionKey{path: path, signal: signal, target: targetPath, method: method}
	already := node.ConnectionIndex(signal, targetPath, method) >= 0
	if !already && r.pending != nil {
		already = r.pending.connections[key]
	}
	if already {
		return map[string]any{"connected": false, "already_connected": true}, nil
	}

	_, werr = r.inAction(wire.OpConnectSignal, "Connect "+signal, func() *wire.Error {
		r.pending.connections[key] = true
		r.editor.History.AddDo(func() { node.Connect(signal, targetPath, method) })
		r.editor.History.AddUndo(func() { node.Disconnect(signal, targetPath, method) })
		return nil
	})
	if werr != nil {
		return nil, werr
	}
	return map[string]any{"connected": true, "already_connected": false}, nil
}

func (r *Registry) disconnectSignal(params map[string]any) (any, *wire.Error) {
	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	address := stringParam(params, "node_path")
	signal := stringParam(params, "signal")
	targetAddress := stringParam(params, "target_path")
	method := stringParam(params, "method")

	node, path, found := r.resolveNode(tree, address)
	if !found {
		return nil, notFound("node", address)
	}
	_, targetPath, found := r.resolveNode(tree, targetAddress)
	if !found {
		return nil, notFound("node", targetAddress)
	}
	if !node.HasSignal(signal) {
		return nil, wire.NewError(wire.CodeNotFound,
			node.ClassName()+" has no signal "+signal,
			map[string]any{"node": path, "signal": signal})
	}

	key := connectionKey{path: path, signal: signal, target: targetPath, method: method}
	connected := node.ConnectionIndex(signal, targetPath, method) >= 0
	if !connected && r.pending != nil {
		connected = r.pending.connections[key]
	}
	if !connected {
		return map[string]any{"disconnected": false, "already_disconnected": true}, nil
	}

	_, werr = r.inAction(wire.OpDisconnectSignal, "Disconnect "+signal, func() *wire.Error {
		delete(r.pending.connections, key)
		restored := scene.Connection{Signal: signal, TargetPath: targetPath, Method: method}
		// Index captured at execution time: queued connects earlier in
		// the action have run by then.
		var index int
		r.editor.History.AddDo(func() {
			index = node.ConnectionIndex(signal, targetPath, method)
			node.Disconnect(signal, targetPath, method)
		})
		r.editor.History.AddUndo(func() { node.RestoreConnection(index, restored) })
		return nil
	})
	if werr != nil {
		return nil, werr
	}
	return map[string]any{"disconnected": true, "already_disconnected": false}, nil
}
