// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/editview/lib/clock"
)

// TerminateGroup terminates the process group led by pid: SIGTERM
// first, then SIGKILL if the group still exists after the grace
// period. The caller must have started the process with Setpgid so
// that pid is a process group leader — signaling the negative pid
// reaches the whole group, including children the process spawned.
//
// done should be closed when the process has been reaped; TerminateGroup
// returns as soon as that happens and skips the escalation. A zero
// grace period sends SIGKILL immediately.
//
// Signal errors are ignored: ESRCH from an already-dead group is the
// expected outcome, and there is nothing useful to do with any other
// failure during teardown.
func TerminateGroup(pid int, grace time.Duration, clk clock.Clock, done <-chan struct{}) {
	group := -pid

	if grace <= 0 {
		_ = unix.Kill(group, unix.SIGKILL)
		<-done
		return
	}

	_ = unix.Kill(group, unix.SIGTERM)
	select {
	case <-done:
	case <-clk.After(grace):
		_ = unix.Kill(group, unix.SIGKILL)
		<-done
	}
}
