// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"errors"
	"fmt"
)

// ErrClosed is the terminal error for calls resolved by transport
// teardown rather than by a response. Errors returned from
// [Transport.Call] after the read loop has ended wrap it; match with
// errors.Is.
var ErrClosed = errors.New("rpc: transport closed")

// RemoteError is the peer's non-nil error field on a response,
// surfaced to the one caller whose request failed. It is recoverable:
// the session stays healthy and other calls are unaffected.
type RemoteError struct {
	// Code is the numeric error code when the peer sent the
	// [code, message] pair form, zero when it sent a bare string.
	Code int64

	// Message is the peer's error message.
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("rpc: remote error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("rpc: remote error: %s", e.Message)
}

// IsRemoteError reports whether err is a RemoteError, returning it
// for inspection of code and message.
func IsRemoteError(err error) (*RemoteError, bool) {
	var remoteError *RemoteError
	if errors.As(err, &remoteError) {
		return remoteError, true
	}
	return nil, false
}

// FramingError is a malformed inbound frame: not an array, an unknown
// packet kind, wrong element count, or a mistyped envelope field. It
// is fatal — the framing offers no way to find the next frame
// boundary, so the read loop terminates rather than resynchronize.
type FramingError struct {
	// Detail describes the violation.
	Detail string
}

func (e *FramingError) Error() string {
	return "rpc: malformed frame: " + e.Detail
}

// IsFramingError reports whether err is a FramingError.
func IsFramingError(err error) (*FramingError, bool) {
	var framingError *FramingError
	if errors.As(err, &framingError) {
		return framingError, true
	}
	return nil, false
}
