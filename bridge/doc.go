// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge serves the engine's newline-delimited JSON protocol
// over TCP. Exactly one session is active at a time: accepting a new
// connection supersedes and closes the previous one, which keeps the
// scene graph single-writer by construction.
//
// All editor state is owned by one control goroutine. Reader
// goroutines only frame lines and forward them; the control loop
// authenticates, dispatches into the method registry, and writes the
// response before reading the next line, so execution order is exactly
// line arrival order.
package bridge
