// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/lib/variant"
	"github.com/stagehand-foundation/stagehand/wire"
)

func (r *Registry) registerInspect() {
	r.register(wire.OpInspectClass, `{
		"type": "object",
		"required": ["class"],
		"properties": {"class": {"type": "string", "minLength": 1}}
	}`, r.inspectClass)

	r.register(wire.OpInspectObject, `{
		"type": "object",
		"required": ["target"],
		"properties": {"target": {"type": "string", "minLength": 1}}
	}`, r.inspectObject)
}

func (r *Registry) inspectClass(params map[string]any) (any, *wire.Error) {
	name := stringParam(params, "class")
	class := scene.LookupClass(name)
	if class == nil {
		return nil, wire.NewError(wire.CodeNotFound,
			"unknown class "+name,
			map[string]any{"class": name, "known": scene.ClassNames()})
	}

	specs := class.AllProperties()
	properties := make([]map[string]any, 0, len(specs))
	for _, spec := range specs {
		properties = append(properties, map[string]any{
			"name":    spec.Name,
			"kind":    spec.Kind,
			"default": variant.Encode(spec.Default),
		})
	}
	return map[string]any{
		"class":      class.Name,
		"base":       class.Base,
		"properties": properties,
		"signals":    class.AllSignals(),
		"methods":    class.AllMethods(),
	}, nil
}

func (r *Registry) inspectObject(params map[string]any) (any, *wire.Error) {
	target, werr := r.resolveTarget(stringParam(params, "target"))
	if werr != nil {
		return nil, werr
	}

	switch {
	case target.node != nil:
		node := target.node
		class := node.Class()
		properties := make(map[string]any)
		for _, spec := range class.AllProperties() {
			value, err := node.Get(spec.Name)
			if err != nil {
				continue
			}
			properties[spec.Name] = variant.Encode(value)
		}
		children := make([]string, 0, len(node.Children()))
		for _, child := range node.Children() {
			children = append(children, child.Name())
		}
		return map[string]any{
			"kind":        "node",
			"path":        target.path,
			"class":       class.Name,
			"unique":      node.UniqueInOwner(),
			"properties":  properties,
			"signals":     class.AllSignals(),
			"methods":     class.AllMethods(),
			"connections": node.Connections(),
			"children":    children,
		}, nil

	case target.singleton != nil:
		methods, properties := target.singleton.MemberNames()
		return map[string]any{
			"kind":       "singleton",
			"name":       target.singleton.Name,
			"dangerous":  target.singleton.Dangerous,
			"methods":    methods,
			"properties": properties,
		}, nil

	default:
		resource := target.resource
		properties := make(map[string]any)
		for _, name := range resource.PropertyNames() {
			if value, exists := resource.Get(name); exists {
				properties[name] = variant.Encode(value)
			}
		}
		return map[string]any{
			"kind":       "resource",
			"path":       resource.Path,
			"type":       resource.Type,
			"properties": properties,
		}, nil
	}
}
