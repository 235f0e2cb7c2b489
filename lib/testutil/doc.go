// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides small helpers shared by package tests:
// timeout-guarded channel operations so a hung component fails the
// test instead of the whole run.
package testutil
