// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the JSON message types for the newline-delimited
// bridge protocol. Both the engine-side transport (bridge) and the
// caller-side client import this package so the wire types are defined
// once rather than mirrored.
//
// Every message is a single JSON value terminated by a newline. Before
// authentication only hello messages are accepted; afterwards every
// line is a [Request] and produces exactly one [Response].
package wire
