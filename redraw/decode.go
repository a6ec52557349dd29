// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package redraw

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/editview/lib/codec"
)

// DecodeBatch decodes one redraw notification's params into events,
// preserving order. Each params element is an [event_name, args...]
// tuple, and each args element after the name is a separate
// invocation — one tuple routinely carries many grid_line invocations.
// Shape mismatches are logged on logger and carried as [Unknown]; the
// batch never fails as a whole.
func DecodeBatch(params []any, logger *slog.Logger) []Event {
	if logger == nil {
		logger = slog.Default()
	}

	events := make([]Event, 0, len(params))
	for _, element := range params {
		tuple, ok := element.([]any)
		if !ok {
			logger.Warn("redraw entry is not a tuple", "type", fmt.Sprintf("%T", element))
			continue
		}
		if len(tuple) == 0 {
			continue
		}
		name, ok := tuple[0].(string)
		if !ok {
			logger.Warn("redraw entry name is not a string", "type", fmt.Sprintf("%T", tuple[0]))
			continue
		}
		for _, invocation := range tuple[1:] {
			args, ok := invocation.([]any)
			if !ok {
				logger.Warn("event decode mismatch", "event", name,
					"error", &MismatchError{Event: name, Detail: fmt.Sprintf("invocation is %T, want array", invocation)})
				events = append(events, &Unknown{Name: name, Args: []any{invocation}})
				continue
			}
			event, err := Decode(name, args)
			if err != nil {
				logger.Warn("event decode mismatch", "event", name, "error", err)
				event = &Unknown{Name: name, Args: args}
			}
			events = append(events, event)
		}
	}
	return events
}

// Decode decodes a single event invocation. Unrecognized names return
// [Unknown] with a nil error — that path is deliberate, not a
// failure. A recognized name with arguments that violate its shape
// returns a [MismatchError].
func Decode(name string, args []any) (Event, error) {
	reader := &argReader{event: name, args: args}

	var event Event
	switch name {
	case "grid_resize":
		reader.arity(3)
		event = &GridResize{Grid: reader.int(0), Width: reader.int(1), Height: reader.int(2)}

	case "grid_clear":
		reader.arity(1)
		event = &GridClear{Grid: reader.int(0)}

	case "grid_destroy":
		reader.arity(1)
		event = &GridDestroy{Grid: reader.int(0)}

	case "grid_line":
		if len(args) != 4 && len(args) != 5 {
			reader.fail("have %d arguments, want 4 or 5", len(args))
		}
		line := &GridLine{
			Grid:     reader.int(0),
			Row:      reader.int(1),
			ColStart: reader.int(2),
			Cells:    decodeCells(reader, reader.array(3)),
		}
		if len(args) == 5 {
			line.Wrap = reader.bool(4)
		}
		event = line

	case "grid_scroll":
		reader.arity(7)
		event = &GridScroll{
			Grid:  reader.int(0),
			Top:   reader.int(1),
			Bot:   reader.int(2),
			Left:  reader.int(3),
			Right: reader.int(4),
			Rows:  reader.int64(5),
			Cols:  reader.int64(6),
		}

	case "grid_cursor_goto":
		reader.arity(3)
		event = &GridCursorGoto{Grid: reader.int(0), Row: reader.int(1), Col: reader.int(2)}

	case "hl_attr_define":
		// [id, rgb_attrs, cterm_attrs, info]. Only the rgb variant
		// is kept; cterm styling and the ext_hlstate info array are
		// accepted and dropped.
		reader.arity(4)
		event = &HlAttrDefine{ID: reader.int(0), Attr: decodeAttribute(reader, reader.object(1))}

	case "hl_group_set":
		reader.arity(2)
		event = &HlGroupSet{Name: reader.string(0), ID: reader.int(1)}

	case "default_colors_set":
		// [rgb_fg, rgb_bg, rgb_sp, cterm_fg, cterm_bg]; the cterm
		// tail is not part of the rgb model.
		reader.arityAtLeast(3)
		event = &DefaultColorsSet{
			Foreground: colorValue(reader.int64(0)),
			Background: colorValue(reader.int64(1)),
			Special:    colorValue(reader.int64(2)),
		}

	case "mode_info_set":
		reader.arity(2)
		event = &ModeInfoSet{
			CursorStyleEnabled: reader.bool(0),
			Modes:              decodeModes(reader, reader.array(1)),
		}

	case "mode_change":
		reader.arity(2)
		event = &ModeChange{Name: reader.string(0), Index: reader.int(1)}

	case "flush":
		reader.arity(0)
		event = &Flush{}

	case "busy_start":
		reader.arity(0)
		event = &BusyStart{}

	case "busy_stop":
		reader.arity(0)
		event = &BusyStop{}

	case "bell":
		reader.arity(0)
		event = &Bell{}

	case "visual_bell":
		reader.arity(0)
		event = &VisualBell{}

	case "set_title":
		reader.arity(1)
		event = &SetTitle{Title: reader.string(0)}

	case "set_icon":
		reader.arity(1)
		event = &SetIcon{Icon: reader.string(0)}

	case "chdir":
		reader.arity(1)
		event = &Chdir{Path: reader.string(0)}

	case "mouse_on":
		reader.arity(0)
		event = &MouseOn{}

	case "mouse_off":
		reader.arity(0)
		event = &MouseOff{}

	case "suspend":
		reader.arity(0)
		event = &Suspend{}

	case "update_menu":
		reader.arity(0)
		event = &UpdateMenu{}

	default:
		// Everything else — the legacy cell-based events (put,
		// cursor_goto, set_scroll_region, update_fg, highlight_set,
		// ...), option_set, and the ext_* widget events — is outside
		// the line-grid model and passes through untyped.
		return &Unknown{Name: name, Args: args}, nil
	}

	if reader.err != nil {
		return nil, reader.err
	}
	return event, nil
}

// decodeCells decodes a grid_line cell array. A cell is [text],
// [text, hl_id], or [text, hl_id, repeat]. A cell without an explicit
// hl_id inherits the most recent id seen in this call — the wire
// omits repeated ids to save bytes, and the carry state never crosses
// decode calls.
func decodeCells(reader *argReader, raw []any) []Cell {
	if reader.err != nil {
		return nil
	}

	carry := 0
	cells := make([]Cell, 0, len(raw))
	for i, cellAny := range raw {
		tuple, ok := cellAny.([]any)
		if !ok {
			reader.fail("cell %d is %T, want array", i, cellAny)
			return nil
		}
		if len(tuple) < 1 || len(tuple) > 3 {
			reader.fail("cell %d has %d elements, want 1 to 3", i, len(tuple))
			return nil
		}
		text, ok := tuple[0].(string)
		if !ok {
			reader.fail("cell %d text is %T, want string", i, tuple[0])
			return nil
		}

		cell := Cell{Text: text, HighlightID: carry, Repeat: 1}
		if len(tuple) >= 2 {
			id, ok := codec.AsInt64(tuple[1])
			if !ok {
				reader.fail("cell %d highlight id is %T, want integer", i, tuple[1])
				return nil
			}
			cell.HighlightID = int(id)
			carry = int(id)
		}
		if len(tuple) == 3 {
			repeat, ok := codec.AsInt64(tuple[2])
			if !ok {
				reader.fail("cell %d repeat is %T, want integer", i, tuple[2])
				return nil
			}
			cell.Repeat = int(repeat)
		}
		cells = append(cells, cell)
	}
	return cells
}

// decodeAttribute decodes an rgb_attrs map. Unknown keys are ignored
// for forward compatibility. The underline family is a set of
// exclusive booleans on the wire; when the peer sets several, the
// fancier style wins so the resolution does not depend on map order.
func decodeAttribute(reader *argReader, fields map[string]any) Attribute {
	var attr Attribute
	if reader.err != nil {
		return attr
	}

	var single, double, curly, dotted, dashed bool
	for key, value := range fields {
		switch key {
		case "foreground":
			attr.Foreground = attributeColor(reader, key, value)
		case "background":
			attr.Background = attributeColor(reader, key, value)
		case "special":
			attr.Special = attributeColor(reader, key, value)
		case "bold":
			attr.Bold = attributeBool(reader, key, value)
		case "italic":
			attr.Italic = attributeBool(reader, key, value)
		case "reverse":
			attr.Reverse = attributeBool(reader, key, value)
		case "strikethrough":
			attr.Strikethrough = attributeBool(reader, key, value)
		case "underline":
			single = attributeBool(reader, key, value)
		case "underdouble":
			double = attributeBool(reader, key, value)
		case "undercurl":
			curly = attributeBool(reader, key, value)
		case "underdotted":
			dotted = attributeBool(reader, key, value)
		case "underdashed":
			dashed = attributeBool(reader, key, value)
		case "url":
			s, ok := value.(string)
			if !ok {
				reader.fail("attribute %q is %T, want string", key, value)
				return attr
			}
			attr.URL = s
		}
		if reader.err != nil {
			return attr
		}
	}

	switch {
	case curly:
		attr.Underline = UnderlineCurly
	case double:
		attr.Underline = UnderlineDouble
	case dotted:
		attr.Underline = UnderlineDotted
	case dashed:
		attr.Underline = UnderlineDashed
	case single:
		attr.Underline = UnderlineSingle
	}
	return attr
}

func attributeColor(reader *argReader, key string, value any) *Color {
	n, ok := codec.AsInt64(value)
	if !ok {
		reader.fail("attribute %q is %T, want integer", key, value)
		return nil
	}
	color := colorValue(n)
	return &color
}

func attributeBool(reader *argReader, key string, value any) bool {
	b, ok := value.(bool)
	if !ok {
		reader.fail("attribute %q is %T, want bool", key, value)
		return false
	}
	return b
}

// colorValue masks a wire integer to 24 bits. Out-of-range values
// (some peers send -1 for "unset") collapse deterministically instead
// of smearing sign bits into the channels.
func colorValue(n int64) Color {
	return Color(uint64(n) & 0xFFFFFF)
}

// decodeModes decodes the mode_info_set table. Fields a mode omits
// default to zero values; the protocol only guarantees cursor_shape
// and attr_id when cursor_style_enabled is true.
func decodeModes(reader *argReader, raw []any) []ModeInfo {
	if reader.err != nil {
		return nil
	}

	modes := make([]ModeInfo, 0, len(raw))
	for i, modeAny := range raw {
		fields, ok := modeAny.(map[string]any)
		if !ok {
			reader.fail("mode %d is %T, want map", i, modeAny)
			return nil
		}

		var mode ModeInfo
		if value, present := fields["name"]; present {
			s, ok := value.(string)
			if !ok {
				reader.fail("mode %d name is %T, want string", i, value)
				return nil
			}
			mode.Name = s
		}
		if value, present := fields["short_name"]; present {
			s, ok := value.(string)
			if !ok {
				reader.fail("mode %d short_name is %T, want string", i, value)
				return nil
			}
			mode.ShortName = s
		}
		if value, present := fields["cursor_shape"]; present {
			s, ok := value.(string)
			if !ok {
				reader.fail("mode %d cursor_shape is %T, want string", i, value)
				return nil
			}
			mode.CursorShape = parseCursorShape(s)
		}
		if value, present := fields["attr_id"]; present {
			n, ok := codec.AsInt64(value)
			if !ok {
				reader.fail("mode %d attr_id is %T, want integer", i, value)
				return nil
			}
			mode.AttributeID = int(n)
		}
		modes = append(modes, mode)
	}
	return modes
}

// parseCursorShape maps the wire's shape strings. Anything
// unrecognized renders as a block.
func parseCursorShape(s string) CursorShape {
	switch s {
	case "horizontal":
		return CursorUnderline
	case "vertical":
		return CursorBeam
	default:
		return CursorBlock
	}
}

// argReader validates one event's argument array, remembering the
// first violation so decode code can read fields without per-access
// error plumbing.
type argReader struct {
	event string
	args  []any
	err   error
}

func (r *argReader) fail(format string, a ...any) {
	if r.err == nil {
		r.err = &MismatchError{Event: r.event, Detail: fmt.Sprintf(format, a...)}
	}
}

func (r *argReader) arity(want int) {
	if len(r.args) != want {
		r.fail("have %d arguments, want %d", len(r.args), want)
	}
}

func (r *argReader) arityAtLeast(min int) {
	if len(r.args) < min {
		r.fail("have %d arguments, want at least %d", len(r.args), min)
	}
}

func (r *argReader) int(index int) int {
	return int(r.int64(index))
}

func (r *argReader) int64(index int) int64 {
	if r.err != nil || index >= len(r.args) {
		return 0
	}
	n, ok := codec.AsInt64(r.args[index])
	if !ok {
		r.fail("argument %d is %T, want integer", index, r.args[index])
		return 0
	}
	return n
}

func (r *argReader) string(index int) string {
	if r.err != nil || index >= len(r.args) {
		return ""
	}
	s, ok := r.args[index].(string)
	if !ok {
		r.fail("argument %d is %T, want string", index, r.args[index])
		return ""
	}
	return s
}

func (r *argReader) bool(index int) bool {
	if r.err != nil || index >= len(r.args) {
		return false
	}
	b, ok := r.args[index].(bool)
	if !ok {
		r.fail("argument %d is %T, want bool", index, r.args[index])
		return false
	}
	return b
}

func (r *argReader) array(index int) []any {
	if r.err != nil || index >= len(r.args) {
		return nil
	}
	a, ok := r.args[index].([]any)
	if !ok {
		r.fail("argument %d is %T, want array", index, r.args[index])
		return nil
	}
	return a
}

func (r *argReader) object(index int) map[string]any {
	if r.err != nil || index >= len(r.args) {
		return nil
	}
	m, ok := r.args[index].(map[string]any)
	if !ok {
		r.fail("argument %d is %T, want map", index, r.args[index])
		return nil
	}
	return m
}
