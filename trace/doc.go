// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package trace records the raw frame stream of an editor session for
// later inspection and replay.
//
// A trace file is a CBOR stream: one header document followed by one
// entry per inbound frame. Each entry carries the frame's arrival
// offset from session start, its uncompressed size, a compression
// tag, and the (possibly compressed) payload. Frames compress
// per-entry so a truncated file still yields every complete entry
// before the cut.
//
// Closing a [Writer] emits a YAML summary sidecar (see [SummaryPath])
// with the trace id, frame and byte counts, and a keyed BLAKE3 digest
// over the uncompressed stream. [Verify] recomputes the digest to
// prove a trace has not been damaged or edited.
//
// [Reader.Pace] replays a trace at its recorded cadence, which turns
// a captured session into a deterministic load source for decoder and
// screen testing.
package trace
