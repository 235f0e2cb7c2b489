// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"fmt"
	"sort"

	"github.com/stagehand-foundation/stagehand/lib/variant"
)

// PropertySpec declares one property on a class: its name, its value
// kind, and the default a fresh node reports before any write.
type PropertySpec struct {
	Name    string
	Kind    string
	Default any
}

// MethodSpec declares one callable method on a class. Fn receives the
// node and decoded arguments; it is invoked by the bridge's reflective
// "call" operation.
type MethodSpec struct {
	Name string
	Args []string
	Fn   func(node *Node, args []any) (any, error)
}

// Class describes a node class: inheritance, declared properties,
// signals, and callable methods. The class catalog is fixed at
// startup — there is no runtime class registration, which keeps the
// reflective surface auditable.
type Class struct {
	Name       string
	Base       string
	Properties []PropertySpec
	Signals    []string
	Methods    []MethodSpec
}

// Property kinds. "float" accepts any JSON number; "any" disables
// kind checking for the property.
const (
	KindBool        = "bool"
	KindInt         = "int"
	KindFloat       = "float"
	KindString      = "string"
	KindVector2     = "Vector2"
	KindVector3     = "Vector3"
	KindColor       = "Color"
	KindRect2       = "Rect2"
	KindTransform2D = "Transform2D"
	KindTransform3D = "Transform3D"
	KindAny         = "any"
)

var classes = map[string]*Class{}

func registerClass(class *Class) {
	if _, exists := classes[class.Name]; exists {
		panic("scene: duplicate class " + class.Name)
	}
	classes[class.Name] = class
}

// LookupClass returns the class descriptor for name, or nil if the
// class is not in the catalog.
func LookupClass(name string) *Class {
	return classes[name]
}

// ClassNames returns the sorted names of every registered class.
func ClassNames() []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// property walks the inheritance chain looking for a property spec.
func (c *Class) property(name string) *PropertySpec {
	for class := c; class != nil; class = classes[class.Base] {
		for i := range class.Properties {
			if class.Properties[i].Name == name {
				return &class.Properties[i]
			}
		}
		if class.Base == "" {
			break
		}
	}
	return nil
}

// method walks the inheritance chain looking for a method spec.
func (c *Class) method(name string) *MethodSpec {
	for class := c; class != nil; class = classes[class.Base] {
		for i := range class.Methods {
			if class.Methods[i].Name == name {
				return &class.Methods[i]
			}
		}
		if class.Base == "" {
			break
		}
	}
	return nil
}

// hasSignal reports whether the class (or an ancestor) declares the
// signal.
func (c *Class) hasSignal(name string) bool {
	for class := c; class != nil; class = classes[class.Base] {
		for _, signal := range class.Signals {
			if signal == name {
				return true
			}
		}
		if class.Base == "" {
			break
		}
	}
	return false
}

// AllProperties returns the class's full property list including
// inherited specs, base-most first.
func (c *Class) AllProperties() []PropertySpec {
	var chain []*Class
	for class := c; class != nil; class = classes[class.Base] {
		chain = append(chain, class)
		if class.Base == "" {
			break
		}
	}
	var specs []PropertySpec
	for i := len(chain) - 1; i >= 0; i-- {
		specs = append(specs, chain[i].Properties...)
	}
	return specs
}

// AllSignals returns the class's signals including inherited ones.
func (c *Class) AllSignals() []string {
	var signals []string
	for class := c; class != nil; class = classes[class.Base] {
		signals = append(signals, class.Signals...)
		if class.Base == "" {
			break
		}
	}
	sort.Strings(signals)
	return signals
}

// AllMethods returns the names of the class's callable methods
// including inherited ones.
func (c *Class) AllMethods() []string {
	var names []string
	for class := c; class != nil; class = classes[class.Base] {
		for _, method := range class.Methods {
			names = append(names, method.Name)
		}
		if class.Base == "" {
			break
		}
	}
	sort.Strings(names)
	return names
}

// KindOf classifies a native value for property kind checking.
func KindOf(value any) string {
	switch value.(type) {
	case bool:
		return KindBool
	case int, int64:
		return KindInt
	case float64, float32:
		return KindFloat
	case string:
		return KindString
	case variant.Vector2:
		return KindVector2
	case variant.Vector3:
		return KindVector3
	case variant.Color:
		return KindColor
	case variant.Rect2:
		return KindRect2
	case variant.Transform2D:
		return KindTransform2D
	case variant.Transform3D:
		return KindTransform3D
	default:
		return KindAny
	}
}

// kindAccepts reports whether a property of the declared kind accepts
// a value of the given kind. Numeric kinds interconvert; "any" accepts
// everything.
func kindAccepts(declared, actual string) bool {
	if declared == KindAny {
		return true
	}
	if declared == KindFloat && actual == KindInt {
		return true
	}
	if declared == KindInt && actual == KindFloat {
		return true
	}
	return declared == actual
}

func init() {
	registerClass(&Class{
		Name: "Node",
		Properties: []PropertySpec{
			{Name: "process_mode", Kind: KindInt, Default: 0},
			{Name: "editor_description", Kind: KindString, Default: ""},
		},
		Signals: []string{"ready", "renamed", "tree_entered", "tree_exiting"},
		Methods: []MethodSpec{
			{Name: "get_class", Fn: func(node *Node, _ []any) (any, error) {
				return node.ClassName(), nil
			}},
			{Name: "get_child_count", Fn: func(node *Node, _ []any) (any, error) {
				return len(node.Children()), nil
			}},
			{Name: "get_path", Fn: func(node *Node, _ []any) (any, error) {
				return node.Path(), nil
			}},
			{Name: "has_node", Args: []string{"path"}, Fn: func(node *Node, args []any) (any, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("has_node expects 1 argument, got %d", len(args))
				}
				path, ok := args[0].(string)
				if !ok {
					return nil, fmt.Errorf("has_node expects a string path")
				}
				return node.Child(path) != nil, nil
			}},
		},
	})

	registerClass(&Class{
		Name: "Node2D",
		Base: "Node",
		Properties: []PropertySpec{
			{Name: "position", Kind: KindVector2, Default: variant.Vector2{}},
			{Name: "rotation", Kind: KindFloat, Default: 0.0},
			{Name: "scale", Kind: KindVector2, Default: variant.Vector2{X: 1, Y: 1}},
			{Name: "z_index", Kind: KindInt, Default: 0},
			{Name: "visible", Kind: KindBool, Default: true},
			{Name: "modulate", Kind: KindColor, Default: variant.Color{R: 1, G: 1, B: 1, A: 1}},
		},
		Signals: []string{"visibility_changed"},
	})

	registerClass(&Class{
		Name: "Sprite2D",
		Base: "Node2D",
		Properties: []PropertySpec{
			{Name: "texture", Kind: KindString, Default: ""},
			{Name: "centered", Kind: KindBool, Default: true},
			{Name: "offset", Kind: KindVector2, Default: variant.Vector2{}},
			{Name: "flip_h", Kind: KindBool, Default: false},
			{Name: "flip_v", Kind: KindBool, Default: false},
			{Name: "region_rect", Kind: KindRect2, Default: variant.Rect2{}},
		},
	})

	registerClass(&Class{
		Name: "Camera2D",
		Base: "Node2D",
		Properties: []PropertySpec{
			{Name: "zoom", Kind: KindVector2, Default: variant.Vector2{X: 1, Y: 1}},
			{Name: "offset", Kind: KindVector2, Default: variant.Vector2{}},
			{Name: "enabled", Kind: KindBool, Default: true},
		},
	})

	registerClass(&Class{
		Name: "Timer",
		Base: "Node",
		Properties: []PropertySpec{
			{Name: "wait_time", Kind: KindFloat, Default: 1.0},
			{Name: "one_shot", Kind: KindBool, Default: false},
			{Name: "autostart", Kind: KindBool, Default: false},
			{Name: "paused", Kind: KindBool, Default: false},
		},
		Signals: []string{"timeout"},
		Methods: []MethodSpec{
			{Name: "start", Args: []string{"time_sec"}, Fn: func(node *Node, args []any) (any, error) {
				if len(args) == 1 {
					if seconds, ok := args[0].(float64); ok {
						if err := node.Set("wait_time", seconds); err != nil {
							return nil, err
						}
					}
				}
				node.SetInternal("stopped", false)
				return nil, nil
			}},
			{Name: "stop", Fn: func(node *Node, _ []any) (any, error) {
				node.SetInternal("stopped", true)
				return nil, nil
			}},
			{Name: "is_stopped", Fn: func(node *Node, _ []any) (any, error) {
				stopped, ok := node.Internal("stopped").(bool)
				return !ok || stopped, nil
			}},
		},
	})

	registerClass(&Class{
		Name: "Control",
		Base: "Node",
		Properties: []PropertySpec{
			{Name: "position", Kind: KindVector2, Default: variant.Vector2{}},
			{Name: "size", Kind: KindVector2, Default: variant.Vector2{}},
			{Name: "visible", Kind: KindBool, Default: true},
			{Name: "tooltip_text", Kind: KindString, Default: ""},
		},
		Signals: []string{"resized", "gui_input", "visibility_changed"},
	})

	registerClass(&Class{Name: "Container", Base: "Control"})
	registerClass(&Class{Name: "Panel", Base: "Control"})

	registerClass(&Class{
		Name: "Label",
		Base: "Control",
		Properties: []PropertySpec{
			{Name: "text", Kind: KindString, Default: ""},
			{Name: "horizontal_alignment", Kind: KindInt, Default: 0},
		},
	})

	registerClass(&Class{
		Name: "Node3D",
		Base: "Node",
		Properties: []PropertySpec{
			{Name: "position", Kind: KindVector3, Default: variant.Vector3{}},
			{Name: "rotation", Kind: KindVector3, Default: variant.Vector3{}},
			{Name: "scale", Kind: KindVector3, Default: variant.Vector3{X: 1, Y: 1, Z: 1}},
			{Name: "transform", Kind: KindTransform3D, Default: variant.Transform3D{
				X: variant.Vector3{X: 1}, Y: variant.Vector3{Y: 1}, Z: variant.Vector3{Z: 1},
			}},
			{Name: "visible", Kind: KindBool, Default: true},
		},
		Signals: []string{"visibility_changed"},
	})
}
