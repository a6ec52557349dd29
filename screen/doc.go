// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package screen reconstructs the editor's terminal display from a
// stream of redraw events.
//
// A [Screen] owns one cell buffer per grid id, the highlight attribute
// table, the default colors, and the mode table. [Screen.Apply] mutates
// that state one event at a time, in arrival order; ordering is
// load-bearing because later events assume the state left by earlier
// ones (a grid_line targets the dimensions set by the last
// grid_resize, a flush presents everything since the previous flush).
//
// The screen is not safe for concurrent use. The intended owner is the
// consumer side of a session's notification queue, which applies each
// redraw batch and then reads [Screen.Surface] to render. A [Surface]
// is an isolated snapshot taken at flush time; mutating the screen
// afterwards never changes a surface already handed out.
//
// Per-event failures degrade rather than abort: an event naming a grid
// that does not exist is logged and dropped, and a cell whose
// highlight id was never defined renders with default styling. The
// exception is a write that lands outside a grid's current bounds.
// That means this side and the peer disagree about the grid's
// dimensions, every subsequent frame would be silently wrong, so
// [Screen.Apply] returns a [ViolationError] and the session should be
// torn down.
package screen
