// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import "errors"

// AttachOptions selects the protocol extensions negotiated by
// [Session.Attach]. Each field maps to one boolean option in the
// ui_attach request.
//
// ExtLinegrid must be true: this client implements only the line-grid
// screen model, and attaching without it would produce the legacy
// cell-based event set that [redraw] deliberately does not decode.
type AttachOptions struct {
	// RGB requests 24-bit color values in highlight attributes.
	RGB bool

	ExtCmdline   bool
	ExtPopupMenu bool
	ExtTabline   bool
	ExtWildmenu  bool
	ExtMessages  bool

	// ExtLinegrid selects the line-grid screen model. Required.
	ExtLinegrid bool

	ExtMultigrid  bool
	ExtHlState    bool
	ExtTermColors bool
}

// DefaultAttachOptions returns the options a plain terminal host
// wants: true color and the line-grid model, everything else drawn by
// the editor itself.
func DefaultAttachOptions() AttachOptions {
	return AttachOptions{RGB: true, ExtLinegrid: true}
}

func (o AttachOptions) validate() error {
	if !o.ExtLinegrid {
		return errors.New("editor: attach requires the line-grid model (AttachOptions.ExtLinegrid)")
	}
	return nil
}

func (o AttachOptions) wire() map[string]any {
	return map[string]any{
		"rgb":            o.RGB,
		"ext_cmdline":    o.ExtCmdline,
		"ext_popupmenu":  o.ExtPopupMenu,
		"ext_tabline":    o.ExtTabline,
		"ext_wildmenu":   o.ExtWildmenu,
		"ext_messages":   o.ExtMessages,
		"ext_linegrid":   o.ExtLinegrid,
		"ext_multigrid":  o.ExtMultigrid,
		"ext_hlstate":    o.ExtHlState,
		"ext_termcolors": o.ExtTermColors,
	}
}
