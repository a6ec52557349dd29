// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import "github.com/bureau-foundation/editview/redraw"

// Notification is one element of the session's notification queue.
// The concrete types are [*Redraw], [*Generic], and [*Quit]; the set
// is closed.
type Notification interface {
	notification()
}

// Redraw carries one decoded redraw batch. The events preserve wire
// order and must be applied as a unit before the host observes the
// next batch; [screen.Screen.ApplyBatch] does exactly that.
type Redraw struct {
	Events []redraw.Event
}

// Generic is any non-redraw notification, including events the host
// subscribed to with [Session.Subscribe]. Args is the raw decoded
// params array.
type Generic struct {
	Method string
	Args   []any
}

// Quit reports the end of the session. It is delivered exactly once,
// as the final element before the channel closes. ExitCode is the
// subprocess's raw exit status (-1 when killed by signal); Err is
// non-nil when the session ended because of a transport failure
// rather than an orderly exit.
type Quit struct {
	ExitCode int
	Err      error
}

func (*Redraw) notification()  {}
func (*Generic) notification() {}
func (*Quit) notification()    {}
