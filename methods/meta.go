// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"github.com/stagehand-foundation/stagehand/lib/version"
	"github.com/stagehand-foundation/stagehand/wire"
)

func (r *Registry) registerMeta() {
	r.register(wire.OpPing, `{"type": "object"}`, r.ping)
	r.register(wire.OpHealth, `{"type": "object"}`, r.health)
}

func (r *Registry) ping(_ map[string]any) (any, *wire.Error) {
	return map[string]any{"pong": true}, nil
}

func (r *Registry) health(_ map[string]any) (any, *wire.Error) {
	result := map[string]any{
		"protocol":    wire.Protocol,
		"version":     version.Info(),
		"uptime_ms":   r.editor.Uptime().Milliseconds(),
		"scenes_open": r.editor.SceneCount(),
		"undo_depth":  r.editor.History.UndoDepth(),
		"redo_depth":  r.editor.History.RedoDepth(),
		"action_open": r.editor.History.Open(),
	}
	if _, path, err := r.editor.CurrentScene(); err == nil {
		result["current_scene"] = path
	}
	return result, nil
}
