// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"github.com/stagehand-foundation/stagehand/lib/scene"
	"github.com/stagehand-foundation/stagehand/wire"
)

type connectionKey struct {
	path   string
	signal string
	target string
	method string
}

// pendingAction holds the per-action state that exists only while an
// action is open: detached nodes addressable under their future paths,
// signal connections queued but not yet wired, and the method names
// that contributed operations (for the audit record).
type pendingAction struct {
	nodes       map[string]*scene.Node
	connections map[connectionKey]bool
	methods     []string
}

func newPendingAction() *pendingAction {
	return &pendingAction{
		nodes:       make(map[string]*scene.Node),
		connections: make(map[connectionKey]bool),
	}
}

// drainPending clears the pending state and returns its method list.
func (r *Registry) drainPending() []string {
	if r.pending == nil {
		return nil
	}
	methods := r.pending.methods
	r.pending = nil
	return methods
}

// closeAction notifies the commit observer, if any.
func (r *Registry) closeAction(label string, methods []string, executed bool) {
	if r.onCommit != nil {
		r.onCommit(label, methods, executed)
	}
	r.logger.Debug("action closed", "label", label, "methods", len(methods), "executed", executed)
}

// inAction runs queue inside the open action, or inside an implicit
// single-call action that is committed and executed on the spot. This
// is the single transactional code path every mutating handler routes
// through, so explicit batches and lone calls share identical undo
// granularity semantics.
//
// queue must fully validate before registering any operation: on a
// non-nil error nothing may have been queued. Returns whether the
// implicit commit ran (false while an explicit action stays open).
func (r *Registry) inAction(method, label string, queue func() *wire.Error) (executed bool, werr *wire.Error) {
	manager := r.editor.History
	implicit := !manager.Open()
	if implicit {
		if err := manager.Begin(label); err != nil {
			return false, wire.NewError(wire.CodeInternal, err.Error(), nil)
		}
		r.pending = newPendingAction()
	}

	if err := queue(); err != nil {
		if implicit {
			manager.Abort()
			r.pending = nil
		}
		return false, err
	}
	r.pending.methods = append(r.pending.methods, method)

	if !implicit {
		return false, nil
	}
	action, err := manager.Commit(true)
	methods := r.drainPending()
	if err != nil {
		return false, wire.NewError(wire.CodeInternal, err.Error(), nil)
	}
	r.closeAction(action.Label, methods, true)
	return true, nil
}

func (r *Registry) registerTransaction() {
	r.register(wire.OpBeginAction, `{
		"type": "object",
		"required": ["label"],
		"properties": {"label": {"type": "string", "minLength": 1}}
	}`, r.beginAction)

	r.register(wire.OpCommitAction, `{
		"type": "object",
		"properties": {"execute": {"type": "boolean"}}
	}`, r.commitAction)

	r.register(wire.OpAbortAction, `{"type": "object"}`, r.abortAction)
}

func (r *Registry) beginAction(params map[string]any) (any, *wire.Error) {
	label := stringParam(params, "label")
	if err := r.editor.History.Begin(label); err != nil {
		return nil, wire.NewError(wire.CodeConflict, "an action is already open",
			map[string]any{"open_label": r.editor.History.OpenLabel()})
	}
	r.pending = newPendingAction()
	return map[string]any{"label": label}, nil
}

func (r *Registry) commitAction(params map[string]any) (any, *wire.Error) {
	execute := boolParam(params, "execute", true)
	action, err := r.editor.History.Commit(execute)
	if err != nil {
		return nil, wire.NewError(wire.CodeConflict, "no action is open", nil)
	}
	methods := r.drainPending()
	r.closeAction(action.Label, methods, execute)
	return map[string]any{
		"label":      action.Label,
		"executed":   execute,
		"operations": action.OperationCount(),
	}, nil
}

func (r *Registry) abortAction(_ map[string]any) (any, *wire.Error) {
	action, err := r.editor.History.Abort()
	if err != nil {
		return nil, wire.NewError(wire.CodeConflict, "no action is open", nil)
	}
	methods := r.drainPending()
	r.closeAction(action.Label, methods, false)
	return map[string]any{
		"aborted":    true,
		"label":      action.Label,
		"operations": action.OperationCount(),
	}, nil
}
