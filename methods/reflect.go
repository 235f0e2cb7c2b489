// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stagehand-foundation/stagehand/lib/editor"
	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/lib/variant"
	"github.com/stagehand-foundation/stagehand/wire"
)

func (r *Registry) registerReflect() {
	r.register(wire.OpCall, `{
		"type": "object",
		"required": ["target", "method"],
		"properties": {
			"target": {"type": "string", "minLength": 1},
			"method": {"type": "string", "minLength": 1},
			"args":   {"type": "array"}
		}
	}`, r.reflectCall)

	r.register(wire.OpSet, `{
		"type": "object",
		"required": ["target", "property", "value"],
		"properties": {
			"target":   {"type": "string", "minLength": 1},
			"property": {"type": "string", "minLength": 1}
		}
	}`, r.reflectSet)

	r.register(wire.OpGet, `{
		"type": "object",
		"required": ["target", "property"],
		"properties": {
			"target":   {"type": "string", "minLength": 1},
			"property": {"type": "string", "minLength": 1}
		}
	}`, r.reflectGet)
}

// reflectTarget is a resolved call/set/get destination: exactly one of
// node, resource, or singleton is set.
type reflectTarget struct {
	node      *scene.Node
	path      string
	resource  *editor.Resource
	singleton *editor.Singleton
}

// resolveTarget maps a target name to a node (by address), a resource
// (by res:// path), or a singleton (by name). The dangerous-singleton
// gate lives here, in one place, rather than in individual members.
func (r *Registry) resolveTarget(name string) (*reflectTarget, *wire.Error) {
	if strings.HasPrefix(name, "res://") {
		resource, err := r.editor.LoadResource(name)
		if err != nil {
			return nil, wire.NewError(wire.CodeNotFound, err.Error(),
				map[string]any{"target": name})
		}
		return &reflectTarget{resource: resource}, nil
	}

	if singleton := r.editor.Singleton(name); singleton != nil {
		if singleton.Dangerous && !r.allowDangerous {
			return nil, wire.NewError(wire.CodeDenied,
				fmt.Sprintf("singleton %q requires the dangerous-operations flag", name),
				map[string]any{"singleton": name})
		}
		return &reflectTarget{singleton: singleton}, nil
	}

	tree, werr := r.currentTree()
	if werr != nil {
		return nil, werr
	}
	node, path, found := r.resolveNode(tree, name)
	if !found {
		return nil, notFound("target", name)
	}
	return &reflectTarget{node: node, path: path}, nil
}

func (r *Registry) reflectCall(params map[string]any) (any, *wire.Error) {
	target, werr := r.resolveTarget(stringParam(params, "target"))
	if werr != nil {
		return nil, werr
	}
	method := stringParam(params, "method")
	rawArgs, _ := params["args"].([]any)
	args, _ := variant.Decode(rawArgs).([]any)
	if args == nil {
		args = []any{}
	}

	switch {
	case target.node != nil:
		result, err := target.node.CallMethod(method, args)
		if err != nil {
			code := wire.CodeInvalidParam
			if errors.Is(err, scene.ErrNoMethod) {
				code = wire.CodeNotFound
			}
			return nil, wire.NewError(code, err.Error(),
				map[string]any{"target": target.path, "method": method})
		}
		return map[string]any{"result": variant.Encode(result)}, nil

	case target.singleton != nil:
		fn, exists := target.singleton.Methods[method]
		if !exists {
			return nil, wire.NewError(wire.CodeNotFound,
				fmt.Sprintf("%s has no method %s", target.singleton.Name, method),
				map[string]any{"target": target.singleton.Name, "method": method})
		}
		result, err := fn(args)
		if err != nil {
			return nil, wire.NewError(wire.CodeInvalidParam, err.Error(),
				map[string]any{"target": target.singleton.Name, "method": method})
		}
		return map[string]any{"result": variant.Encode(result)}, nil

	default:
		return nil, wire.NewError(wire.CodeNotFound,
			"resources expose no callable methods",
			map[string]any{"target": target.resource.Path, "method": method})
	}
}

func (r *Registry) reflectSet(params map[string]any) (any, *wire.Error) {
	target, werr := r.resolveTarget(stringParam(params, "target"))
	if werr != nil {
		return nil, werr
	}
	property := stringParam(params, "property")
	value := variant.Decode(params["value"])

	switch {
	case target.node != nil:
		// Node writes share the transactional path with set_property.
		if werr := r.queueSet(target.node, target.path, property, value, wire.OpSet); werr != nil {
			return nil, werr
		}

	case target.singleton != nil:
		setter, exists := target.singleton.Setters[property]
		if !exists {
			return nil, wire.NewError(wire.CodeNotFound,
				fmt.Sprintf("%s has no writable property %s", target.singleton.Name, property),
				map[string]any{"target": target.singleton.Name, "property": property})
		}
		if err := setter(value); err != nil {
			return nil, wire.NewError(wire.CodeInvalidParam, err.Error(),
				map[string]any{"target": target.singleton.Name, "property": property})
		}

	default:
		if err := target.resource.Set(property, value); err != nil {
			return nil, wire.NewError(wire.CodeConflict, err.Error(),
				map[string]any{"target": target.resource.Path, "property": property})
		}
	}
	return map[string]any{"set": true, "property": property}, nil
}

func (r *Registry) reflectGet(params map[string]any) (any, *wire.Error) {
	target, werr := r.resolveTarget(stringParam(params, "target"))
	if werr != nil {
		return nil, werr
	}
	property := stringParam(params, "property")

	switch {
	case target.node != nil:
		value, err := target.node.Get(property)
		if err != nil {
			return nil, wire.NewError(wire.CodeNotFound, err.Error(),
				map[string]any{"target": target.path, "property": property})
		}
		return map[string]any{"value": variant.Encode(value)}, nil

	case target.singleton != nil:
		getter, exists := target.singleton.Getters[property]
		if !exists {
			return nil, wire.NewError(wire.CodeNotFound,
				fmt.Sprintf("%s has no readable property %s", target.singleton.Name, property),
				map[string]any{"target": target.singleton.Name, "property": property})
		}
		value, err := getter()
		if err != nil {
			return nil, wire.NewError(wire.CodeInvalidParam, err.Error(),
				map[string]any{"target": target.singleton.Name, "property": property})
		}
		return map[string]any{"value": variant.Encode(value)}, nil

	default:
		value, exists := target.resource.Get(property)
		if !exists {
			return nil, wire.NewError(wire.CodeNotFound,
				fmt.Sprintf("resource has no property %s", property),
				map[string]any{"target": target.resource.Path, "property": property})
		}
		return map[string]any{"value": variant.Encode(value)}, nil
	}
}
