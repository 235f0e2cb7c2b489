// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Resource is a loaded project asset reachable through the reflective
// operations by its res:// path. Resources hold an untyped property
// bag; the interesting state (the file) lives on disk.
type Resource struct {
	Path       string
	Type       string
	properties map[string]any
}

// resourceType classifies a project file by extension.
func resourceType(path string) string {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return "PackedScene"
	case ".png", ".jpg", ".jpeg", ".webp", ".svg":
		return "Texture2D"
	case ".wav", ".ogg", ".mp3":
		return "AudioStream"
	case ".ttf", ".otf":
		return "FontFile"
	default:
		return "Resource"
	}
}

// LoadResource returns the resource for a res:// path, loading and
// caching it on first access. The file must exist under the project
// directory.
func (e *Editor) LoadResource(path string) (*Resource, error) {
	if resource, cached := e.resources[path]; cached {
		return resource, nil
	}
	absolute, err := e.resolveProjectPath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absolute)
	if err != nil {
		return nil, fmt.Errorf("editor: resource %q: %w", path, err)
	}
	resource := &Resource{
		Path: path,
		Type: resourceType(path),
		properties: map[string]any{
			"resource_path": path,
			"size_bytes":    info.Size(),
		},
	}
	e.resources[path] = resource
	return resource, nil
}

// Get reads a resource property. Unknown names return (nil, false).
func (r *Resource) Get(property string) (any, bool) {
	value, exists := r.properties[property]
	return value, exists
}

// Set writes a resource property. resource_path is immutable — it is
// the resource's identity in the cache.
func (r *Resource) Set(property string, value any) error {
	if property == "resource_path" {
		return fmt.Errorf("editor: resource_path is immutable")
	}
	r.properties[property] = value
	return nil
}

// PropertyNames returns the resource's property names, sorted.
func (r *Resource) PropertyNames() []string {
	names := make([]string, 0, len(r.properties))
	for name := range r.properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
