// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymap

import tea "github.com/charmbracelet/bubbletea"

// Mouse translates one mouse message into the input_mouse triplet.
// ok is false for events the editor cannot receive: extra buttons
// (back/forward) and button releases the terminal reported without
// identifying the button.
//
// Wheel events always come back as button "wheel" with the scroll
// direction as the action. Motion with a button held is a "drag",
// motion without one is a "move" (the editor uses those for
// 'mousemoveevent' consumers and ignores them otherwise).
func Mouse(msg tea.MouseMsg) (button, action, modifier string, ok bool) {
	modifier = mouseModifier(msg)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return "wheel", "up", modifier, true
	case tea.MouseButtonWheelDown:
		return "wheel", "down", modifier, true
	case tea.MouseButtonWheelLeft:
		return "wheel", "left", modifier, true
	case tea.MouseButtonWheelRight:
		return "wheel", "right", modifier, true
	case tea.MouseButtonLeft:
		button = "left"
	case tea.MouseButtonMiddle:
		button = "middle"
	case tea.MouseButtonRight:
		button = "right"
	case tea.MouseButtonNone:
		if msg.Action == tea.MouseActionMotion {
			return "move", "", modifier, true
		}
		return "", "", "", false
	default:
		return "", "", "", false
	}

	switch msg.Action {
	case tea.MouseActionPress:
		action = "press"
	case tea.MouseActionMotion:
		action = "drag"
	case tea.MouseActionRelease:
		action = "release"
	default:
		return "", "", "", false
	}
	return button, action, modifier, true
}

func mouseModifier(msg tea.MouseMsg) string {
	var mods string
	if msg.Ctrl {
		mods += "C-"
	}
	if msg.Shift {
		mods += "S-"
	}
	if msg.Alt {
		mods += "A-"
	}
	return mods
}
