// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package screen

import (
	"errors"
	"fmt"
)

// ViolationError reports an event that contradicts established grid
// state, such as a cell write outside the grid's current bounds. It is
// fatal to the session: the peer and this side no longer agree on the
// display dimensions, and rendering on would show wrong content with
// no error.
type ViolationError struct {
	Event  string
	Detail string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("screen: %s: %s", e.Event, e.Detail)
}

// IsViolationError reports whether err is or wraps a [ViolationError].
func IsViolationError(err error) (*ViolationError, bool) {
	var violation *ViolationError
	if errors.As(err, &violation) {
		return violation, true
	}
	return nil, false
}
