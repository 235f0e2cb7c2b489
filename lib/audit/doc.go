// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

// Package audit records every committed bridge transaction in an
// append-only, hash-chained log. Each entry is a CBOR value whose
// keyed BLAKE3 hash covers the previous entry's hash, so truncation
// or in-place edits are detectable by replaying the chain. Rotation
// compresses closed segments with zstd; the chain continues across
// segments.
package audit
