// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package redraw

// Event is one decoded UI event. The set of implementations is closed;
// consumers dispatch with a type switch and treat [Unknown] as the
// catch-all.
type Event interface {
	// event restricts implementations to this package.
	event()
}

// Color is a 24-bit RGB color as the wire carries it: 0xRRGGBB.
type Color uint32

// RGB splits the color into its components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// UnderlineStyle selects the underline decoration of an attribute.
type UnderlineStyle int

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

// CursorShape is the cursor rendering for an editing mode.
type CursorShape int

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBeam
)

// Attribute is one entry of the highlight table: the styling applied
// to cells carrying its id. Nil color pointers mean "inherit the
// default color"; id 0 is by protocol the all-defaults attribute.
type Attribute struct {
	Foreground    *Color
	Background    *Color
	Special       *Color
	Bold          bool
	Italic        bool
	Reverse       bool
	Strikethrough bool
	Underline     UnderlineStyle

	// URL is the hyperlink target attached to the text, empty when
	// none.
	URL string
}

// Cell is one run of a grid_line event: a glyph, its highlight id,
// and how many times it repeats. Empty Text means a blank cell.
type Cell struct {
	Text        string
	HighlightID int
	Repeat      int
}

// ModeInfo describes one editing mode's cursor presentation.
type ModeInfo struct {
	Name        string
	ShortName   string
	CursorShape CursorShape
	AttributeID int
}

// GridResize declares or resizes a grid. The first resize for an id
// creates the grid; any resize discards prior contents.
type GridResize struct {
	Grid   int
	Width  int
	Height int
}

// GridClear blanks every cell of a grid to highlight 0.
type GridClear struct {
	Grid int
}

// GridDestroy removes a grid entirely.
type GridDestroy struct {
	Grid int
}

// GridLine writes a run of cells into one row, starting at ColStart.
// Wrap indicates the row continues onto the next (informational).
type GridLine struct {
	Grid     int
	Row      int
	ColStart int
	Cells    []Cell
	Wrap     bool
}

// GridScroll shifts the region [Top,Bot)×[Left,Right) vertically by
// Rows (positive moves content up) and horizontally by Cols. Deltas
// are signed regardless of how the wire encoded them.
type GridScroll struct {
	Grid  int
	Top   int
	Bot   int
	Left  int
	Right int
	Rows  int64
	Cols  int64
}

// GridCursorGoto records the pending cursor position on a grid; it
// becomes visible at the next flush.
type GridCursorGoto struct {
	Grid int
	Row  int
	Col  int
}

// HlAttrDefine upserts one highlight-table entry. Only the rgb
// attribute variant is carried; cterm attributes are accepted on the
// wire and dropped.
type HlAttrDefine struct {
	ID   int
	Attr Attribute
}

// HlGroupSet binds a semantic highlight group name to a table id.
type HlGroupSet struct {
	Name string
	ID   int
}

// DefaultColorsSet sets the colors cells fall back to when their
// attribute leaves one unset.
type DefaultColorsSet struct {
	Foreground Color
	Background Color
	Special    Color
}

// ModeInfoSet replaces the mode table wholesale.
type ModeInfoSet struct {
	CursorStyleEnabled bool
	Modes              []ModeInfo
}

// ModeChange selects the active mode by index into the mode table.
type ModeChange struct {
	Name  string
	Index int
}

// Flush marks a repaint cycle complete: buffered grid state should be
// presented.
type Flush struct{}

// BusyStart and BusyStop bracket periods when the peer wants the
// cursor hidden.
type BusyStart struct{}
type BusyStop struct{}

// Bell and VisualBell forward the terminal bells.
type Bell struct{}
type VisualBell struct{}

// SetTitle carries the peer's window title.
type SetTitle struct {
	Title string
}

// SetIcon carries the peer's icon title.
type SetIcon struct {
	Icon string
}

// Chdir reports the peer's working-directory change.
type Chdir struct {
	Path string
}

// MouseOn and MouseOff toggle whether the peer wants mouse events.
type MouseOn struct{}
type MouseOff struct{}

// Suspend is the peer's request to suspend the UI (ctrl-z semantics).
type Suspend struct{}

// UpdateMenu signals a menu redefinition; carried for completeness,
// no state attached.
type UpdateMenu struct{}

// Unknown is the catch-all for unrecognized event names and for
// recognized events whose arguments failed shape validation. Args is
// the raw wire value.
type Unknown struct {
	Name string
	Args []any
}

func (*GridResize) event()       {}
func (*GridClear) event()        {}
func (*GridDestroy) event()      {}
func (*GridLine) event()         {}
func (*GridScroll) event()       {}
func (*GridCursorGoto) event()   {}
func (*HlAttrDefine) event()     {}
func (*HlGroupSet) event()       {}
func (*DefaultColorsSet) event() {}
func (*ModeInfoSet) event()      {}
func (*ModeChange) event()       {}
func (*Flush) event()            {}
func (*BusyStart) event()        {}
func (*BusyStop) event()         {}
func (*Bell) event()             {}
func (*VisualBell) event()       {}
func (*SetTitle) event()         {}
func (*SetIcon) event()          {}
func (*Chdir) event()            {}
func (*MouseOn) event()          {}
func (*MouseOff) event()         {}
func (*Suspend) event()          {}
func (*UpdateMenu) event()       {}
func (*Unknown) event()          {}
