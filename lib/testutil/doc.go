// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for editview packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls. Tests
// that exercise the RPC read loop and the session notification queue
// coordinate goroutines through channels; these helpers keep a wedged
// goroutine from hanging the whole test run.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no editview-internal dependencies.
package testutil
