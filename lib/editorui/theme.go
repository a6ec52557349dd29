// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors of the host's own chrome. Only the status
// bar is host-drawn; everything above it is cell output styled by the
// editor's highlight attributes, which carry their own colors.
//
// Chrome colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Status bar base colors.
	StatusBackground lipgloss.Color
	StatusForeground lipgloss.Color

	// StatusAccent styles the mode name.
	StatusAccent lipgloss.Color

	// StatusAlert styles the recording indicator and error notices.
	StatusAlert lipgloss.Color

	// FaintText styles low-priority status content: key hints,
	// queue depth.
	FaintText lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme, matching
// the common case of a dark background under tmux.
var DefaultTheme = Theme{
	StatusBackground: lipgloss.Color("236"),
	StatusForeground: lipgloss.Color("252"),
	StatusAccent:     lipgloss.Color("114"),
	StatusAlert:      lipgloss.Color("203"),
	FaintText:        lipgloss.Color("245"),
}
