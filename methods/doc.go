// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package methods implements the engine's closed method table: every
// operation the bridge exposes, with JSON Schema parameter validation
// up front, address resolution at call time, and do/undo emission into
// the history manager.
//
// The table is fixed at construction. The capability announcement
// lists exactly the registered names; anything else is rejected as
// unsupported before any state is touched.
//
// Mutating handlers share one transactional code path: if no action is
// open they open, queue, execute, and commit a single-operation action
// in place; if an action is open they queue their do/undo pair and
// return without executing. Nodes created by queued operations are
// registered in a per-action path overlay so later queued calls can
// address them before anything has run.
package methods
