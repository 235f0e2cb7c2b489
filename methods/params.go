// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package methods

// Typed parameter accessors. The JSON Schema attached to each method
// has already enforced presence and type, so these only narrow the
// decoded any values.

func stringParam(params map[string]any, name string) string {
	value, _ := params[name].(string)
	return value
}

func boolParam(params map[string]any, name string, fallback bool) bool {
	if value, ok := params[name].(bool); ok {
		return value
	}
	return fallback
}

func intParam(params map[string]any, name string, fallback int) int {
	if value, ok := params[name].(float64); ok {
		return int(value)
	}
	return fallback
}

func stringSliceParam(params map[string]any, name string) []string {
	raw, _ := params[name].([]any)
	values := make([]string, 0, len(raw))
	for _, element := range raw {
		if s, ok := element.(string); ok {
			values = append(values, s)
		}
	}
	return values
}
