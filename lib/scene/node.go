// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"errors"
	"fmt"
	"strings"
)

// Property access errors. Wrapped with node context by the callers.
var (
	ErrNoProperty   = errors.New("scene: no such property")
	ErrTypeMismatch = errors.New("scene: property type mismatch")
	ErrNoSignal     = errors.New("scene: no such signal")
	ErrNoMethod     = errors.New("scene: no such method")
)

// Connection records one signal wiring: when the node emits Signal,
// Method is invoked on the node at TargetPath. Paths are stored in
// root-relative form and re-resolved at emission time.
type Connection struct {
	Signal     string `yaml:"signal" json:"signal"`
	TargetPath string `yaml:"target" json:"target"`
	Method     string `yaml:"method" json:"method"`
}

// Node is one object in the scene graph. Zero value is not usable;
// construct with [NewNode].
type Node struct {
	name          string
	class         *Class
	parent        *Node
	children      []*Node
	properties    map[string]any
	internal      map[string]any
	connections   []Connection
	uniqueInOwner bool
}

// NewNode creates a detached node of the given class. Returns an error
// for an unknown class name.
func NewNode(className, name string) (*Node, error) {
	class := LookupClass(className)
	if class == nil {
		return nil, fmt.Errorf("scene: unknown class %q", className)
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Node{
		name:       name,
		class:      class,
		properties: make(map[string]any),
		internal:   make(map[string]any),
	}, nil
}

// validateName rejects names that would corrupt path addressing.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("scene: node name must not be empty")
	}
	if strings.ContainsAny(name, "/%") {
		return fmt.Errorf("scene: node name %q contains reserved characters", name)
	}
	return nil
}

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// ClassName returns the node's class name.
func (n *Node) ClassName() string { return n.class.Name }

// Class returns the node's class descriptor.
func (n *Node) Class() *Class { return n.class }

// Parent returns the node's parent, or nil for a root or detached
// node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in order. The returned slice
// is the node's own backing slice; callers must not mutate it.
func (n *Node) Children() []*Node { return n.children }

// UniqueInOwner reports whether the node is flagged for %Name lookup.
func (n *Node) UniqueInOwner() bool { return n.uniqueInOwner }

// SetUniqueInOwner sets the %Name lookup flag. Index maintenance is
// the owning tree's concern; detached nodes carry the flag into the
// tree on attach.
func (n *Node) SetUniqueInOwner(unique bool) { n.uniqueInOwner = unique }

// Rename changes the node's name. The caller is responsible for
// sibling-collision checks (the tree's attach path enforces them).
func (n *Node) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	n.name = name
	return nil
}

// Path returns the node's root-relative address: "root" for the tree
// root, "root/A/B" below it. A detached node reports the path it will
// have once attached under its recorded ancestors.
func (n *Node) Path() string {
	if n.parent == nil {
		return "root"
	}
	var segments []string
	for node := n; node.parent != nil; node = node.parent {
		segments = append(segments, node.name)
	}
	var builder strings.Builder
	builder.WriteString("root")
	for i := len(segments) - 1; i >= 0; i-- {
		builder.WriteByte('/')
		builder.WriteString(segments[i])
	}
	return builder.String()
}

// Child resolves a slash-separated relative path from this node.
// Returns nil if any segment is missing.
func (n *Node) Child(relative string) *Node {
	node := n
	for _, segment := range strings.Split(relative, "/") {
		if segment == "" {
			continue
		}
		var next *Node
		for _, child := range node.children {
			if child.name == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// Get returns the node's value for the property: the written override
// if any, else the class default. Returns ErrNoProperty for a name
// the class does not declare.
func (n *Node) Get(property string) (any, error) {
	spec := n.class.property(property)
	if spec == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoProperty, n.class.Name, property)
	}
	if value, written := n.properties[property]; written {
		return value, nil
	}
	return spec.Default, nil
}

// CheckSet validates a property write without performing it. Used by
// callers that queue the write for later execution.
func (n *Node) CheckSet(property string, value any) error {
	spec := n.class.property(property)
	if spec == nil {
		return fmt.Errorf("%w: %s.%s", ErrNoProperty, n.class.Name, property)
	}
	if !kindAccepts(spec.Kind, KindOf(value)) {
		return fmt.Errorf("%w: %s.%s wants %s, got %s",
			ErrTypeMismatch, n.class.Name, property, spec.Kind, KindOf(value))
	}
	return nil
}

// Set writes a property value after kind checking it against the
// class declaration. Integer values are accepted for float properties
// and vice versa.
func (n *Node) Set(property string, value any) error {
	if err := n.CheckSet(property, value); err != nil {
		return err
	}
	n.properties[property] = value
	return nil
}

// Properties returns the node's written overrides (not defaults).
func (n *Node) Properties() map[string]any {
	copied := make(map[string]any, len(n.properties))
	for key, value := range n.properties {
		copied[key] = value
	}
	return copied
}

// Internal returns a runtime-only value (not persisted, not exposed
// as a property). Used by class methods for transient state such as a
// timer's stopped flag.
func (n *Node) Internal(key string) any { return n.internal[key] }

// SetInternal writes a runtime-only value.
func (n *Node) SetInternal(key string, value any) { n.internal[key] = value }

// CallMethod invokes a class-declared method on the node.
func (n *Node) CallMethod(method string, args []any) (any, error) {
	spec := n.class.method(method)
	if spec == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoMethod, n.class.Name, method)
	}
	return spec.Fn(n, args)
}

// Connections returns the node's signal connections in registration
// order.
func (n *Node) Connections() []Connection {
	copied := make([]Connection, len(n.connections))
	copy(copied, n.connections)
	return copied
}

// Connect wires a signal to a target method. Idempotent: wiring an
// identical (signal, target, method) triple again reports
// alreadyConnected=true and records nothing.
func (n *Node) Connect(signal, targetPath, method string) (alreadyConnected bool, err error) {
	if !n.class.hasSignal(signal) {
		return false, fmt.Errorf("%w: %s.%s", ErrNoSignal, n.class.Name, signal)
	}
	for _, connection := range n.connections {
		if connection.Signal == signal && connection.TargetPath == targetPath && connection.Method == method {
			return true, nil
		}
	}
	n.connections = append(n.connections, Connection{
		Signal:     signal,
		TargetPath: targetPath,
		Method:     method,
	})
	return false, nil
}

// Disconnect removes a signal wiring. Idempotent: removing an absent
// triple reports alreadyDisconnected=true.
func (n *Node) Disconnect(signal, targetPath, method string) (alreadyDisconnected bool, err error) {
	if !n.class.hasSignal(signal) {
		return false, fmt.Errorf("%w: %s.%s", ErrNoSignal, n.class.Name, signal)
	}
	for i, connection := range n.connections {
		if connection.Signal == signal && connection.TargetPath == targetPath && connection.Method == method {
			n.connections = append(n.connections[:i], n.connections[i+1:]...)
			return false, nil
		}
	}
	return true, nil
}

// HasSignal reports whether the node's class (or an ancestor class)
// declares the signal.
func (n *Node) HasSignal(signal string) bool {
	return n.class.hasSignal(signal)
}

// RestoreConnection reinserts a connection at its original index.
// Used by the undo path so a disconnect's inverse restores ordering.
func (n *Node) RestoreConnection(index int, connection Connection) {
	if index < 0 || index > len(n.connections) {
		index = len(n.connections)
	}
	n.connections = append(n.connections, Connection{})
	copy(n.connections[index+1:], n.connections[index:])
	n.connections[index] = connection
}

// ConnectionIndex returns the position of a connection triple, or -1.
func (n *Node) ConnectionIndex(signal, targetPath, method string) int {
	for i, connection := range n.connections {
		if connection.Signal == signal && connection.TargetPath == targetPath && connection.Method == method {
			return i
		}
	}
	return -1
}

// Duplicate deep-copies the node and its subtree: names, property
// overrides, unique flags, and signal connections. The copy is
// detached; runtime-internal state is not copied.
func (n *Node) Duplicate() *Node {
	copied := &Node{
		name:          n.name,
		class:         n.class,
		properties:    make(map[string]any, len(n.properties)),
		internal:      make(map[string]any),
		uniqueInOwner: n.uniqueInOwner,
	}
	for key, value := range n.properties {
		copied.properties[key] = value
	}
	copied.connections = make([]Connection, len(n.connections))
	copy(copied.connections, n.connections)
	for _, child := range n.children {
		childCopy := child.Duplicate()
		childCopy.parent = copied
		copied.children = append(copied.children, childCopy)
	}
	return copied
}
