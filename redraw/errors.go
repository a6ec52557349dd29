// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package redraw

import (
	"errors"
	"fmt"
)

// MismatchError reports that a recognized event's arguments do not
// match the shape the protocol fixes for it: wrong arity, wrong
// element type, or a malformed nested structure. It is recoverable —
// the batch decoder logs it and carries the event as [Unknown].
type MismatchError struct {
	// Event is the wire event name.
	Event string

	// Detail describes the mismatch.
	Detail string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("redraw: %s: %s", e.Event, e.Detail)
}

// IsMismatchError reports whether err is a MismatchError.
func IsMismatchError(err error) (*MismatchError, bool) {
	var mismatchError *MismatchError
	if errors.As(err, &mismatchError) {
		return mismatchError, true
	}
	return nil, false
}
