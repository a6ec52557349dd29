// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package redraw decodes the editor's untyped redraw payloads into a
// closed set of typed UI events.
//
// A redraw notification's params is a sequence of tuples, each
// [event_name, args...] where every args element is one invocation of
// that event. [DecodeBatch] walks the sequence and yields one [Event]
// per invocation, preserving order — ordering is load-bearing:
// highlight carry-over and flush semantics only make sense applied in
// arrival order.
//
// Decoding is strict about shape: each event name has a fixed arity
// and per-argument types, and a mismatch yields a [MismatchError]
// rather than a guess. Mismatches are not fatal — DecodeBatch logs
// them and substitutes [Unknown] so one malformed event never takes
// down the stream. Names outside the supported set (including the
// legacy non-linegrid events option_set, highlight_set, update_fg and
// friends, and the ext_* extension widgets) decode to Unknown
// deliberately: editview implements the line-grid model only.
//
// Events own their decoded buffers outright; nothing aliases the wire
// value after Decode returns.
package redraw
