// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/tidwall/jsonc"
)

// KeyMap defines the host-reserved key bindings. Every key not
// matched here is translated to wire notation and forwarded to the
// editor, which has its own complete mapping engine; the host
// reserves only what it needs to stay reachable when the editor is
// stuck.
type KeyMap struct {
	// Detach ends the session in an orderly way: the editor is
	// asked to quit and gets a grace period before being signalled.
	Detach key.Binding

	// ForceQuit tears the session down immediately, for an editor
	// that no longer responds to input.
	ForceQuit key.Binding
}

// DefaultKeyMap is the built-in binding set. Ctrl-Q is free in
// default editor mappings (and raw terminal mode keeps it away from
// XON/XOFF flow control).
var DefaultKeyMap = KeyMap{
	Detach: key.NewBinding(
		key.WithKeys("ctrl+q"),
		key.WithHelp("C-q", "detach"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("alt+ctrl+q"),
		key.WithHelp("M-C-q", "force quit"),
	),
}

// LoadBindings returns DefaultKeyMap with overrides from a JSONC file
// applied. The file maps binding names to key lists in bubbletea
// notation:
//
//	{
//	  // take over the tmux prefix instead
//	  "detach": ["ctrl+b"],
//	  "force_quit": ["alt+ctrl+b"]
//	}
//
// Unknown binding names are an error rather than being ignored, so a
// typo cannot silently leave a default in place.
func LoadBindings(path string) (KeyMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KeyMap{}, fmt.Errorf("editorui: %w", err)
	}

	var overrides map[string][]string
	if err := json.Unmarshal(jsonc.ToJSON(data), &overrides); err != nil {
		return KeyMap{}, fmt.Errorf("editorui: parsing %s: %w", path, err)
	}

	keys := DefaultKeyMap
	for name, sequence := range overrides {
		if len(sequence) == 0 {
			return KeyMap{}, fmt.Errorf("editorui: binding %q has no keys", name)
		}
		binding := key.NewBinding(
			key.WithKeys(sequence...),
			key.WithHelp(sequence[0], name),
		)
		switch name {
		case "detach":
			keys.Detach = binding
		case "force_quit":
			keys.ForceQuit = binding
		default:
			return KeyMap{}, fmt.Errorf("editorui: unknown binding %q (valid: detach, force_quit)", name)
		}
	}
	return keys, nil
}
