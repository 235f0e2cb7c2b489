// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package history implements the host's undo/redo facility and the
// transaction manager the bridge builds on: named actions holding
// ordered (do, undo) operation pairs, committed or discarded
// atomically.
//
// Operations are queued, not executed, while an action is open.
// Commit with execute=true runs the do list in registration order and
// pushes the action onto the undo stack; commit with execute=false
// (abort) discards the action without running anything. Undo runs the
// undo list in reverse registration order, which exactly reverses the
// do list — enforced by construction: every caller that records a do
// operation records its semantic inverse in the same call.
//
// Like the rest of the engine state, a Manager is confined to the
// bridge's control goroutine and needs no locking.
package history

import "errors"

// Manager state errors.
var (
	ErrActionOpen = errors.New("history: an action is already open")
	ErrNoAction   = errors.New("history: no action is open")
	ErrNothingTo  = errors.New("history: nothing to undo or redo")
)

// Operation is one side of a do/undo pair. Operations queued before
// commit must be free of side effects until invoked.
type Operation func()

// Action is a named group of do/undo pairs.
type Action struct {
	Label    string
	do       []Operation
	undo     []Operation
	executed bool
}

// Manager owns the undo/redo stacks and the at-most-one open action.
type Manager struct {
	open      *Action
	undoStack []*Action
	redoStack []*Action

	// Limit caps the undo stack depth; oldest actions fall off. Zero
	// means unlimited.
	Limit int
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Begin opens a new action. Fails if one is already open, leaving the
// open action's queued operations untouched.
func (m *Manager) Begin(label string) error {
	if m.open != nil {
		return ErrActionOpen
	}
	m.open = &Action{Label: label}
	return nil
}

// Open reports whether an action is currently open.
func (m *Manager) Open() bool { return m.open != nil }

// OpenLabel returns the open action's label, or "".
func (m *Manager) OpenLabel() string {
	if m.open == nil {
		return ""
	}
	return m.open.Label
}

// AddDo queues a do operation on the open action.
func (m *Manager) AddDo(op Operation) error {
	if m.open == nil {
		return ErrNoAction
	}
	m.open.do = append(m.open.do, op)
	return nil
}

// AddUndo queues an undo operation on the open action.
func (m *Manager) AddUndo(op Operation) error {
	if m.open == nil {
		return ErrNoAction
	}
	m.open.undo = append(m.open.undo, op)
	return nil
}

// Commit closes the open action. With execute=true the do operations
// run in registration order and the action joins the undo stack
// (clearing the redo stack). With execute=false the action is
// discarded: nothing ran, so there is nothing to undo, and pushing an
// unexecuted action would corrupt the stack.
func (m *Manager) Commit(execute bool) (*Action, error) {
	if m.open == nil {
		return nil, ErrNoAction
	}
	action := m.open
	m.open = nil

	if !execute {
		return action, nil
	}

	for _, op := range action.do {
		op()
	}
	action.executed = true

	m.undoStack = append(m.undoStack, action)
	m.redoStack = nil
	if m.Limit > 0 && len(m.undoStack) > m.Limit {
		m.undoStack = m.undoStack[len(m.undoStack)-m.Limit:]
	}
	return action, nil
}

// Abort discards the open action without executing. Equivalent to
// Commit(false).
func (m *Manager) Abort() (*Action, error) {
	return m.Commit(false)
}

// Undo reverses the most recent committed action: its undo operations
// run in reverse registration order.
func (m *Manager) Undo() (*Action, error) {
	if len(m.undoStack) == 0 {
		return nil, ErrNothingTo
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]

	for i := len(action.undo) - 1; i >= 0; i-- {
		action.undo[i]()
	}
	m.redoStack = append(m.redoStack, action)
	return action, nil
}

// Redo re-applies the most recently undone action: its do operations
// run in registration order.
func (m *Manager) Redo() (*Action, error) {
	if len(m.redoStack) == 0 {
		return nil, ErrNothingTo
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]

	for _, op := range action.do {
		op()
	}
	m.undoStack = append(m.undoStack, action)
	return action, nil
}

// UndoDepth returns the number of committed actions available to undo.
func (m *Manager) UndoDepth() int { return len(m.undoStack) }

// RedoDepth returns the number of undone actions available to redo.
func (m *Manager) RedoDepth() int { return len(m.redoStack) }

// OperationCount returns how many do operations the action queued.
func (a *Action) OperationCount() int { return len(a.do) }

// Executed reports whether the action's do operations have run.
func (a *Action) Executed() bool { return a.executed }
