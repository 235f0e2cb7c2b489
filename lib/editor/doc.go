// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package editor models the host application's mutable editing state:
// the set of open scenes, the current scene, the selection, loaded
// resources, and the named singletons reachable through the bridge's
// reflective operations.
//
// Reflection over singletons is an explicit dispatch table keyed by
// (singleton, member) rather than unrestricted runtime reflection, so
// the dangerous-singleton deny-list stays auditable: a singleton is
// either on the safe list or it is gated, and there is no third path
// to host capability.
//
// All editor state is confined to the bridge's control goroutine.
package editor
