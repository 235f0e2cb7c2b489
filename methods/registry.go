// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/stagehand-foundation/stagehand/lib/editor"
	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/wire"
)

// CommitFunc observes every closed transaction: explicit commits,
// aborts, and implicit single-call commits alike.
type CommitFunc func(label string, methods []string, executed bool)

// Options configure a Registry.
type Options struct {
	// AllowDangerous unlocks the deny-listed singletons for the
	// reflective call/set/get operations.
	AllowDangerous bool

	// OnCommit, when set, is invoked after every transaction closes.
	// The bridge uses it to feed the audit log.
	OnCommit CommitFunc

	Logger *slog.Logger
}

// Registry is the engine's method table. It is confined to the
// bridge's control goroutine; nothing here locks.
type Registry struct {
	editor         *editor.Editor
	logger         *slog.Logger
	allowDangerous bool
	onCommit       CommitFunc

	// pending tracks the open action's queued state: future node
	// paths, queued signal connections, contributing method names.
	// Nil whenever no action is open.
	pending *pendingAction

	handlers map[string]*handler
}

type handlerFunc func(params map[string]any) (any, *wire.Error)

type handler struct {
	schema *gojsonschema.Schema
	fn     handlerFunc
}

// New builds the full method table over the given editor.
func New(ed *editor.Editor, options Options) *Registry {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		editor:         ed,
		logger:         logger,
		allowDangerous: options.AllowDangerous,
		onCommit:       options.OnCommit,
		handlers:       make(map[string]*handler),
	}
	r.registerMeta()
	r.registerSceneFile()
	r.registerTransaction()
	r.registerGraph()
	r.registerProperty()
	r.registerSelection()
	r.registerFilesystem()
	r.registerReflect()
	r.registerInspect()
	return r
}

// register compiles the parameter schema and installs the handler.
// Schema and name errors are programming mistakes, caught at startup.
func (r *Registry) register(name, schema string, fn handlerFunc) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic("methods: invalid schema for " + name + ": " + err.Error())
	}
	if _, exists := r.handlers[name]; exists {
		panic("methods: duplicate method " + name)
	}
	r.handlers[name] = &handler{schema: compiled, fn: fn}
}

// Names returns the supported method names, sorted, for the
// capability announcement.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch validates parameters and runs one method call. Every
// failure comes back as a structured wire error; Dispatch itself
// never touches editor state on a validation failure.
func (r *Registry) Dispatch(method string, params json.RawMessage) (any, *wire.Error) {
	h, supported := r.handlers[method]
	if !supported {
		return nil, wire.NewError(wire.CodeUnsupported,
			fmt.Sprintf("method %q is not supported", method),
			map[string]any{"method": method})
	}

	raw := params
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, wire.NewError(wire.CodeInvalidParam,
			"params must be a JSON object", nil)
	}

	validation, err := h.schema.Validate(gojsonschema.NewGoLoader(decoded))
	if err != nil {
		return nil, wire.NewError(wire.CodeInvalidParam, err.Error(), nil)
	}
	if !validation.Valid() {
		issues := make([]string, 0, len(validation.Errors()))
		for _, issue := range validation.Errors() {
			issues = append(issues, issue.String())
		}
		return nil, wire.NewError(wire.CodeInvalidParam,
			fmt.Sprintf("invalid parameters for %s", method),
			map[string]any{"errors": issues})
	}

	return h.fn(decoded)
}

// AbortOpen discards any open transaction. The bridge calls this when
// the session closes or is superseded, so the next session starts with
// no action open.
func (r *Registry) AbortOpen() bool {
	if !r.editor.History.Open() {
		return false
	}
	action, _ := r.editor.History.Abort()
	methods := r.drainPending()
	r.closeAction(action.Label, methods, false)
	return true
}

// currentTree returns the current scene's tree, or the conflict error
// every scene-bound method reports when no scene is open.
func (r *Registry) currentTree() (*scene.Tree, *wire.Error) {
	tree, _, err := r.editor.CurrentScene()
	if err != nil {
		return nil, wire.NewError(wire.CodeConflict, "no scene is open", nil)
	}
	return tree, nil
}

// resolveNode maps an address to a live node, consulting the open
// action's pending overlay after the tree itself. Returns the node and
// its effective root-relative path.
func (r *Registry) resolveNode(tree *scene.Tree, address string) (*scene.Node, string, bool) {
	if node := tree.Resolve(address); node != nil {
		return node, node.Path(), true
	}
	if r.pending != nil && !strings.HasPrefix(strings.TrimPrefix(address, "/"), "%") {
		key := normalizePath(address)
		if node, queued := r.pending.nodes[key]; queued {
			return node, key, true
		}
	}
	return nil, "", false
}

// normalizePath canonicalizes an address into the "root/…" form node
// paths use, for pending-overlay keys.
func normalizePath(address string) string {
	address = strings.TrimPrefix(address, "/")
	if address == "" || address == "root" {
		return "root"
	}
	if !strings.HasPrefix(address, "root/") {
		return "root/" + address
	}
	return address
}

// parentPathOf returns the path one level above a "root/…" path.
func parentPathOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return "root"
}

func notFound(kind, address string) *wire.Error {
	return wire.NewError(wire.CodeNotFound,
		fmt.Sprintf("%s %q not found", kind, address),
		map[string]any{kind: address})
}
