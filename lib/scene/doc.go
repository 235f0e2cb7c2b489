// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package scene implements the host application's scene graph: a tree
// of typed nodes with class-declared properties, signal connections,
// unique-name lookup, string-address resolution, and YAML persistence.
//
// The graph is not safe for concurrent use. The bridge serializes all
// access on a single control goroutine, which is the same discipline
// the host editor imposes on its own main thread.
package scene
