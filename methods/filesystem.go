// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

import (
	"github.com/stagehand-foundation/stagehand/wire"
)

func (r *Registry) registerFilesystem() {
	r.register(wire.OpFilesystemScan, `{"type": "object"}`, r.filesystemScan)

	r.register(wire.OpReimportFiles, `{
		"type": "object",
		"required": ["paths"],
		"properties": {
			"paths": {
				"type": "array",
				"items": {"type": "string", "minLength": 1}
			}
		}
	}`, r.reimportFiles)
}

func (r *Registry) filesystemScan(_ map[string]any) (any, *wire.Error) {
	if r.editor.Assets == nil {
		return nil, wire.NewError(wire.CodeInternal,
			"the asset pipeline is not running", nil)
	}
	r.editor.Assets.RequestScan()
	return map[string]any{"requested": true}, nil
}

func (r *Registry) reimportFiles(params map[string]any) (any, *wire.Error) {
	if r.editor.Assets == nil {
		return nil, wire.NewError(wire.CodeInternal,
			"the asset pipeline is not running", nil)
	}
	paths := stringSliceParam(params, "paths")
	r.editor.Assets.Reimport(paths)
	return map[string]any{"requested": len(paths)}, nil
}
