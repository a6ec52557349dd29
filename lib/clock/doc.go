// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time operations for testability.
//
// Production code injects [Real]; tests inject [Fake] with
// deterministic time control. Editview uses the abstraction in two
// places: trace replay pacing (sleeping out the recorded gaps between
// frames) and session teardown (the SIGTERM grace period before
// SIGKILL escalation). Both are untestable against the wall clock and
// trivial against a fake.
//
// Every production function that calls time.Now, time.After, or
// time.Sleep should accept a Clock parameter (or be a method on a
// struct with a Clock field) instead of calling the time package
// directly.
package clock
