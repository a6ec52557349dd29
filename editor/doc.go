// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package editor manages one embedded editor session: the subprocess,
// the RPC transport over its pipes, the synchronous command surface,
// and the bounded notification queue that hands asynchronous UI
// traffic to the host.
//
// [Spawn] launches the editor with its embedding flag and speaks the
// wire protocol over the child's stdin and stdout. Standard error is
// not part of the protocol and is discarded; a terminal host cannot
// share its display with the child's stderr.
//
// Commands ([Session.Attach], [Session.Input], [Session.TryResize],
// ...) are thin synchronous calls: each blocks until the editor
// responds or the caller's context ends. Asynchronous traffic arrives
// on [Session.Notifications] in emission order. A redraw batch is one
// [*Redraw] element, so a consumer always observes whole batches; the
// final element is exactly one [*Quit] carrying the subprocess's exit
// status, after which the channel closes.
//
// The queue is bounded. When the consumer falls behind, the reader
// goroutine blocks rather than dropping: redraw batches are
// incremental diffs, and dropping one would corrupt every screen
// state derived after it. A persistently stalled consumer therefore
// exerts pipe backpressure on the editor, the same pressure any
// unread pipe applies.
package editor
