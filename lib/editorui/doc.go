// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package editorui is the terminal host for an embedded editor
// session: a bubbletea model that presents the editor's screen grid
// and forwards input back.
//
// The model consumes [editor.Session] notifications through the
// listen-command pattern, applies redraw batches to a [screen.Screen],
// and re-renders when a flush produces a new surface generation. All
// editor-bound calls (keys, mouse, resizes) flow through a single
// ordered drain command: bubbletea runs concurrent commands with no
// ordering promise, and input arriving out of order would be worse
// than input arriving late.
//
// Keyboard handling is deliberately thin. The editor owns the
// keybinding engine; [KeyMap] reserves only enough for the host to
// stay reachable (detach, force quit), and everything else goes
// through [keymap.Key] translation onto the wire.
//
// Key exports:
//
//   - [Model], [New] -- the bubbletea model
//   - [Controller] -- the session interface the model drives
//   - [KeyMap], [DefaultKeyMap], [LoadBindings] -- host bindings
//   - [Theme], [DefaultTheme] -- chrome colors
package editorui
