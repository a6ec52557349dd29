// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBindings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindings.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBindingsOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeBindings(t, `{
		// leave ctrl+q for the editor, use the tmux prefix instead
		"detach": ["ctrl+b"],
	}`)

	keys, err := LoadBindings(path)
	if err != nil {
		t.Fatalf("LoadBindings: %v", err)
	}
	if got := keys.Detach.Keys(); len(got) != 1 || got[0] != "ctrl+b" {
		t.Errorf("detach keys = %v, want [ctrl+b]", got)
	}
	// Unmentioned bindings keep their defaults.
	if got := keys.ForceQuit.Keys(); len(got) != 1 || got[0] != "alt+ctrl+q" {
		t.Errorf("force_quit keys = %v, want [alt+ctrl+q]", got)
	}
}

func TestLoadBindingsRejectsUnknownName(t *testing.T) {
	t.Parallel()

	path := writeBindings(t, `{"detatch": ["ctrl+b"]}`)

	_, err := LoadBindings(path)
	if err == nil {
		t.Fatal("typo in binding name was accepted")
	}
	if !strings.Contains(err.Error(), "detatch") || !strings.Contains(err.Error(), "valid:") {
		t.Errorf("error %q does not name the bad binding and the valid set", err)
	}
}

func TestLoadBindingsRejectsEmptyKeyList(t *testing.T) {
	t.Parallel()

	path := writeBindings(t, `{"detach": []}`)

	if _, err := LoadBindings(path); err == nil {
		t.Fatal("empty key list was accepted")
	}
}

func TestLoadBindingsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadBindings(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Fatal("missing file did not error")
	}
}
