// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/stagehand-foundation/stagehand/lib/assets"
	"github.com/stagehand-foundation/stagehand/lib/history"
	"github.com/stagehand-foundation/stagehand/lib/scene"
)

// Editor errors.
var (
	ErrNoCurrentScene = errors.New("editor: no scene is open")
	ErrSceneNotOpen   = errors.New("editor: scene is not open")
)

// Editor is the host application's editing state.
type Editor struct {
	// ProjectDir is the project root all res:// paths resolve under.
	ProjectDir string

	// History is the undo/redo facility every mutation routes through.
	History *history.Manager

	// Assets is the project's asset scanner. Nil in tests that do not
	// exercise the filesystem methods.
	Assets *assets.Scanner

	logger     *slog.Logger
	scenes     map[string]*scene.Tree
	openOrder  []string
	current    string
	selection  []*scene.Node
	resources  map[string]*Resource
	singletons map[string]*Singleton
	settings   map[string]any
	started    time.Time
}

// New creates an editor rooted at projectDir with an empty scene set.
func New(projectDir string, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Editor{
		ProjectDir: projectDir,
		History:    history.NewManager(),
		logger:     logger,
		scenes:     make(map[string]*scene.Tree),
		resources:  make(map[string]*Resource),
		settings:   make(map[string]any),
		started:    time.Now(),
	}
	e.singletons = builtinSingletons(e)
	return e
}

// Uptime returns how long the editor has been running.
func (e *Editor) Uptime() time.Duration { return time.Since(e.started) }

// resolveProjectPath maps a res:// or project-relative path to an
// absolute filesystem path, rejecting escapes above the project root.
func (e *Editor) resolveProjectPath(path string) (string, error) {
	trimmed := strings.TrimPrefix(path, "res://")
	cleaned := filepath.Clean(trimmed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("editor: path %q escapes the project directory", path)
	}
	return filepath.Join(e.ProjectDir, cleaned), nil
}

// normalizeScenePath canonicalizes the key scenes are tracked under.
func normalizeScenePath(path string) string {
	return strings.TrimPrefix(path, "res://")
}

// OpenScene loads a scene file from the project directory and makes
// it the current scene. Re-opening an already-open scene switches to
// the in-memory tree without reloading (unsaved edits survive).
func (e *Editor) OpenScene(path string) (*scene.Tree, error) {
	key := normalizeScenePath(path)
	if tree, open := e.scenes[key]; open {
		e.current = key
		return tree, nil
	}
	absolute, err := e.resolveProjectPath(path)
	if err != nil {
		return nil, err
	}
	tree, err := scene.LoadFile(absolute)
	if err != nil {
		return nil, err
	}
	e.addScene(key, tree)
	e.logger.Info("scene opened", "path", key)
	return tree, nil
}

// NewScene creates a fresh in-memory scene and makes it current. The
// scene exists on disk only after save_scene.
func (e *Editor) NewScene(path, rootClass, rootName string) (*scene.Tree, error) {
	key := normalizeScenePath(path)
	if _, open := e.scenes[key]; open {
		return nil, fmt.Errorf("editor: scene %q is already open", key)
	}
	tree, err := scene.NewTree(rootClass, rootName)
	if err != nil {
		return nil, err
	}
	e.addScene(key, tree)
	return tree, nil
}

func (e *Editor) addScene(key string, tree *scene.Tree) {
	e.scenes[key] = tree
	e.openOrder = append(e.openOrder, key)
	e.current = key
}

// LoadSceneSubtree loads a scene file and returns its root as a
// detached node, ready to be instanced under another scene's tree.
func (e *Editor) LoadSceneSubtree(path string) (*scene.Node, error) {
	absolute, err := e.resolveProjectPath(path)
	if err != nil {
		return nil, err
	}
	tree, err := scene.LoadFile(absolute)
	if err != nil {
		return nil, err
	}
	return tree.Root(), nil
}

// SaveScene writes an open scene back to its project path. An empty
// path saves the current scene.
func (e *Editor) SaveScene(path string) (string, error) {
	key := path
	if key == "" {
		key = e.current
	}
	key = normalizeScenePath(key)
	if key == "" {
		return "", ErrNoCurrentScene
	}
	tree, open := e.scenes[key]
	if !open {
		return "", fmt.Errorf("%w: %q", ErrSceneNotOpen, key)
	}
	absolute, err := e.resolveProjectPath(key)
	if err != nil {
		return "", err
	}
	if err := scene.SaveFile(tree, absolute); err != nil {
		return "", err
	}
	e.logger.Info("scene saved", "path", key)
	return key, nil
}

// CurrentScene returns the current scene and its project path.
func (e *Editor) CurrentScene() (*scene.Tree, string, error) {
	if e.current == "" {
		return nil, "", ErrNoCurrentScene
	}
	return e.scenes[e.current], e.current, nil
}

// OpenScenes returns the open scene paths in open order.
func (e *Editor) OpenScenes() []string {
	paths := make([]string, len(e.openOrder))
	copy(paths, e.openOrder)
	return paths
}

// SceneCount returns how many scenes are open.
func (e *Editor) SceneCount() int { return len(e.scenes) }

// Select adds a node to the selection, or replaces the selection when
// additive is false.
func (e *Editor) Select(node *scene.Node, additive bool) {
	if !additive {
		e.selection = e.selection[:0]
	}
	for _, selected := range e.selection {
		if selected == node {
			return
		}
	}
	e.selection = append(e.selection, node)
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() {
	e.selection = nil
}

// SelectionPaths returns the addresses of currently selected nodes.
// Nodes detached since selection are silently dropped.
func (e *Editor) SelectionPaths() []string {
	tree, _, err := e.CurrentScene()
	paths := make([]string, 0, len(e.selection))
	for _, node := range e.selection {
		if err == nil && !tree.Contains(node) {
			continue
		}
		paths = append(paths, node.Path())
	}
	return paths
}

// Setting reads a project setting.
func (e *Editor) Setting(name string) (any, bool) {
	value, exists := e.settings[name]
	return value, exists
}

// SetSetting writes a project setting.
func (e *Editor) SetSetting(name string, value any) {
	e.settings[name] = value
}
