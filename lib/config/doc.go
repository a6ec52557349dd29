// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for editview.
//
// Configuration is loaded from a single file specified by either the
// EDITVIEW_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). When neither names a file, the built-in
// defaults apply unchanged; there is no ~/.config discovery and no
// automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${EDITVIEW_ROOT}, and ${VAR:-default} patterns are
// expanded. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Editor, UI, Trace, Log sections
//   - [Default] -- returns a Config with built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other editview packages.
package config
