// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stagehand-foundation/stagehand/lib/variant"
)

// fileFormat is the scene file format version. Bump only on
// incompatible layout changes.
const fileFormat = 1

// sceneFile is the on-disk YAML layout of a scene.
type sceneFile struct {
	Format int      `yaml:"format"`
	Root   fileNode `yaml:"root"`
}

// fileNode is one serialized node. Properties hold wire-encoded
// variants ($type-tagged maps), which YAML represents naturally.
type fileNode struct {
	Name        string         `yaml:"name"`
	Class       string         `yaml:"class"`
	Unique      bool           `yaml:"unique,omitempty"`
	Properties  map[string]any `yaml:"properties,omitempty"`
	Connections []Connection   `yaml:"connections,omitempty"`
	Children    []fileNode     `yaml:"children,omitempty"`
}

// Marshal serializes the tree to scene file YAML.
func Marshal(tree *Tree) ([]byte, error) {
	file := sceneFile{
		Format: fileFormat,
		Root:   marshalNode(tree.root),
	}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("scene: marshaling scene: %w", err)
	}
	return data, nil
}

// SaveFile writes the tree to path as scene file YAML.
func SaveFile(tree *Tree, path string) error {
	data, err := Marshal(tree)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scene: writing %s: %w", path, err)
	}
	return nil
}

func marshalNode(node *Node) fileNode {
	file := fileNode{
		Name:   node.name,
		Class:  node.class.Name,
		Unique: node.uniqueInOwner,
	}
	if len(node.properties) > 0 {
		file.Properties = make(map[string]any, len(node.properties))
		for key, value := range node.properties {
			encoded := variant.Encode(value)
			file.Properties[key] = encoded
		}
	}
	if len(node.connections) > 0 {
		file.Connections = make([]Connection, len(node.connections))
		copy(file.Connections, node.connections)
	}
	for _, child := range node.children {
		file.Children = append(file.Children, marshalNode(child))
	}
	return file
}

// Unmarshal parses scene file YAML into a tree.
func Unmarshal(data []byte) (*Tree, error) {
	var file sceneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("scene: parsing scene: %w", err)
	}
	if file.Format != fileFormat {
		return nil, fmt.Errorf("scene: unsupported scene format %d (want %d)", file.Format, fileFormat)
	}
	root, err := unmarshalNode(file.Root)
	if err != nil {
		return nil, err
	}
	return NewTreeWithRoot(root), nil
}

// LoadFile reads and parses a scene file.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: reading %s: %w", path, err)
	}
	tree, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

func unmarshalNode(file fileNode) (*Node, error) {
	node, err := NewNode(file.Class, file.Name)
	if err != nil {
		return nil, err
	}
	node.uniqueInOwner = file.Unique
	for key, raw := range file.Properties {
		value := variant.Decode(normalizeYAML(raw))
		if err := node.Set(key, value); err != nil {
			return nil, fmt.Errorf("scene: node %q: %w", file.Name, err)
		}
	}
	node.connections = make([]Connection, len(file.Connections))
	copy(node.connections, file.Connections)
	for _, childFile := range file.Children {
		child, err := unmarshalNode(childFile)
		if err != nil {
			return nil, err
		}
		for _, sibling := range node.children {
			if sibling.name == child.name {
				return nil, fmt.Errorf("%w: %q under %q", ErrNameTaken, child.name, file.Name)
			}
		}
		child.parent = node
		node.children = append(node.children, child)
	}
	return node, nil
}

// normalizeYAML converts yaml.v3's map[string]any / []any trees into
// the same shapes encoding/json produces, so variant.Decode sees
// float64 numbers regardless of source.
func normalizeYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		normalized := make(map[string]any, len(v))
		for key, element := range v {
			normalized[key] = normalizeYAML(element)
		}
		return normalized
	case []any:
		normalized := make([]any, len(v))
		for i, element := range v {
			normalized[i] = normalizeYAML(element)
		}
		return normalized
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}
