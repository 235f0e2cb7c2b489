// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package variant maps the engine's typed value model to and from wire
// JSON. Plain JSON primitives, arrays, and objects pass through
// unchanged; composite engine types (vectors, colors, rectangles,
// transforms) are represented as JSON objects carrying a "$type"
// discriminator plus named fields.
//
// Encoding is total: every value the engine can expose has a JSON
// representation. Decoding degrades gracefully: an object whose $type
// is unknown, or whose fields are incomplete, decodes as a plain
// map[string]any rather than failing. The asymmetry is deliberate — a
// caller sending a partially-malformed typed payload gets a type
// mismatch from the eventual property assignment, not a dead request.
package variant
