// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint and subprocess lifecycle
// helpers for editview binaries.
//
// [Fatal] centralizes error reporting to stderr for main() failure
// paths where the structured logger may not be initialized yet.
//
// [TerminateGroup] implements graceful process-group termination:
// SIGTERM first, SIGKILL after a grace period. The editor session uses
// it during teardown so that the editor and anything it spawned
// (language servers, shell jobs) all go down together rather than
// surviving as orphans holding the pipes open.
package process
