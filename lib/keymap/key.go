// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keymap translates terminal input messages into the
// editor's key notation.
//
// The host forwards nearly every keystroke to the editor, which has
// its own complete keybinding engine; only a handful of keys are
// intercepted for host chrome. [Key] turns a [tea.KeyMsg] into the
// angle-bracket notation the input method expects ("<CR>", "<C-w>",
// "<M-x>"), and [Mouse] splits a [tea.MouseMsg] into the
// button/action/modifier triplet of the input_mouse method.
//
// The package is pure translation: no state, no I/O.
package keymap

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// specialNames maps key types with a notation name. The value is the
// content between the angle brackets; modifier prefixes from the
// message (Alt) are prepended by [Key].
//
// Control characters that already have a canonical name (Tab is
// Ctrl-I, Enter is Ctrl-M, Esc is Ctrl-[, Backspace is Ctrl-?) appear
// under that name only.
var specialNames = map[tea.KeyType]string{
	tea.KeyEnter:     "CR",
	tea.KeyTab:       "Tab",
	tea.KeyShiftTab:  "S-Tab",
	tea.KeyEsc:       "Esc",
	tea.KeyBackspace: "BS",
	tea.KeySpace:     "Space",
	tea.KeyDelete:    "Del",
	tea.KeyInsert:    "Insert",

	tea.KeyUp:    "Up",
	tea.KeyDown:  "Down",
	tea.KeyLeft:  "Left",
	tea.KeyRight: "Right",
	tea.KeyHome:  "Home",
	tea.KeyEnd:   "End",

	tea.KeyPgUp:       "PageUp",
	tea.KeyPgDown:     "PageDown",
	tea.KeyCtrlPgUp:   "C-PageUp",
	tea.KeyCtrlPgDown: "C-PageDown",

	tea.KeyCtrlUp:    "C-Up",
	tea.KeyCtrlDown:  "C-Down",
	tea.KeyCtrlLeft:  "C-Left",
	tea.KeyCtrlRight: "C-Right",
	tea.KeyCtrlHome:  "C-Home",
	tea.KeyCtrlEnd:   "C-End",

	tea.KeyShiftUp:    "S-Up",
	tea.KeyShiftDown:  "S-Down",
	tea.KeyShiftLeft:  "S-Left",
	tea.KeyShiftRight: "S-Right",
	tea.KeyShiftHome:  "S-Home",
	tea.KeyShiftEnd:   "S-End",

	tea.KeyCtrlShiftUp:    "C-S-Up",
	tea.KeyCtrlShiftDown:  "C-S-Down",
	tea.KeyCtrlShiftLeft:  "C-S-Left",
	tea.KeyCtrlShiftRight: "C-S-Right",
	tea.KeyCtrlShiftHome:  "C-S-Home",
	tea.KeyCtrlShiftEnd:   "C-S-End",

	tea.KeyF1:  "F1",
	tea.KeyF2:  "F2",
	tea.KeyF3:  "F3",
	tea.KeyF4:  "F4",
	tea.KeyF5:  "F5",
	tea.KeyF6:  "F6",
	tea.KeyF7:  "F7",
	tea.KeyF8:  "F8",
	tea.KeyF9:  "F9",
	tea.KeyF10: "F10",
	tea.KeyF11: "F11",
	tea.KeyF12: "F12",
	tea.KeyF13: "F13",
	tea.KeyF14: "F14",
	tea.KeyF15: "F15",
	tea.KeyF16: "F16",
	tea.KeyF17: "F17",
	tea.KeyF18: "F18",
	tea.KeyF19: "F19",
	tea.KeyF20: "F20",

	tea.KeyCtrlA: "C-a",
	tea.KeyCtrlB: "C-b",
	tea.KeyCtrlC: "C-c",
	tea.KeyCtrlD: "C-d",
	tea.KeyCtrlE: "C-e",
	tea.KeyCtrlF: "C-f",
	tea.KeyCtrlG: "C-g",
	tea.KeyCtrlH: "C-h",
	tea.KeyCtrlJ: "C-j",
	tea.KeyCtrlK: "C-k",
	tea.KeyCtrlL: "C-l",
	tea.KeyCtrlN: "C-n",
	tea.KeyCtrlO: "C-o",
	tea.KeyCtrlP: "C-p",
	tea.KeyCtrlQ: "C-q",
	tea.KeyCtrlR: "C-r",
	tea.KeyCtrlS: "C-s",
	tea.KeyCtrlT: "C-t",
	tea.KeyCtrlU: "C-u",
	tea.KeyCtrlV: "C-v",
	tea.KeyCtrlW: "C-w",
	tea.KeyCtrlX: "C-x",
	tea.KeyCtrlY: "C-y",
	tea.KeyCtrlZ: "C-z",

	// Ctrl-Space arrives as the NUL control code.
	tea.KeyCtrlAt:           "C-Space",
	tea.KeyCtrlBackslash:    `C-\`,
	tea.KeyCtrlCloseBracket: "C-]",
	tea.KeyCtrlCaret:        "C-^",
	tea.KeyCtrlUnderscore:   "C-_",
}

// Key returns the editor notation for one key message, or "" for a
// key with no wire representation.
//
// Plain runes pass through literally with "<" escaped to "<lt>",
// since the input method always interprets angle-bracket notation.
// Pasted text is never given modifier wrapping, whatever the
// terminal claims about the Alt state.
func Key(msg tea.KeyMsg) string {
	if msg.Type == tea.KeyRunes {
		if msg.Paste || !msg.Alt {
			return escapeRunes(msg.Runes)
		}
		var b strings.Builder
		for _, r := range msg.Runes {
			b.WriteString("<M-")
			b.WriteString(escapeRunes([]rune{r}))
			b.WriteString(">")
		}
		return b.String()
	}

	name, ok := specialNames[msg.Type]
	if !ok {
		return ""
	}
	if msg.Alt {
		return "<M-" + name + ">"
	}
	return "<" + name + ">"
}

func escapeRunes(runes []rune) string {
	var b strings.Builder
	for _, r := range runes {
		if r == '<' {
			b.WriteString("<lt>")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
