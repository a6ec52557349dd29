// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package screen

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/editview/redraw"
)

// PrimaryGrid is the grid id of the main editor area. It exists for
// the lifetime of the UI session; other ids come and go with floating
// windows and extension surfaces.
const PrimaryGrid = 1

// pendingCursor is a cursor position announced by grid_cursor_goto
// but not yet presented. It becomes visible at the next flush and is
// consumed by it; a repaint cycle that never positions the cursor
// presents it hidden.
type pendingCursor struct {
	grid int
	row  int
	col  int
}

// Screen applies redraw events to grid, highlight, and mode state.
// Not safe for concurrent use; one goroutine applies events and reads
// surfaces.
type Screen struct {
	logger *slog.Logger

	grids      map[int]*Grid
	attributes map[int]redraw.Attribute
	groups     map[string]int

	foreground redraw.Color
	background redraw.Color
	special    redraw.Color

	modes              []redraw.ModeInfo
	modeIndex          int
	modeName           string
	cursorStyleEnabled bool

	title      string
	icon       string
	busy       bool
	workingDir string

	bells       uint64
	visualBells uint64

	cursor  *pendingCursor
	surface *Surface
}

// New returns an empty screen. A nil logger falls back to
// [slog.Default].
func New(logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.Default()
	}
	return &Screen{
		logger:     logger,
		grids:      make(map[int]*Grid),
		attributes: make(map[int]redraw.Attribute),
		groups:     make(map[string]int),
	}
}

// Apply mutates screen state with one event. Events referencing grids
// the peer has not declared are logged and dropped. A non-nil error
// is always a [ViolationError] and means the screen can no longer be
// trusted to match the peer.
func (s *Screen) Apply(event redraw.Event) error {
	switch e := event.(type) {
	case *redraw.GridResize:
		if e.Width <= 0 || e.Height <= 0 {
			return &ViolationError{Event: "grid_resize", Detail: fmt.Sprintf("grid %d resized to %dx%d", e.Grid, e.Width, e.Height)}
		}
		// Resizing discards content; the peer repaints the whole
		// grid after every resize.
		s.grids[e.Grid] = newGrid(e.Grid, e.Width, e.Height)
		if s.cursor != nil && s.cursor.grid == e.Grid {
			s.cursor = nil
		}

	case *redraw.GridClear:
		grid, ok := s.lookup(e.Grid, "grid_clear")
		if !ok {
			return nil
		}
		grid.clear()

	case *redraw.GridDestroy:
		if _, ok := s.grids[e.Grid]; !ok {
			s.logger.Warn("destroy of unknown grid", "grid", e.Grid)
			return nil
		}
		delete(s.grids, e.Grid)
		if s.cursor != nil && s.cursor.grid == e.Grid {
			s.cursor = nil
		}

	case *redraw.GridLine:
		grid, ok := s.lookup(e.Grid, "grid_line")
		if !ok {
			return nil
		}
		return grid.writeLine(e)

	case *redraw.GridScroll:
		grid, ok := s.lookup(e.Grid, "grid_scroll")
		if !ok {
			return nil
		}
		return grid.scroll(e)

	case *redraw.GridCursorGoto:
		grid, ok := s.lookup(e.Grid, "grid_cursor_goto")
		if !ok {
			return nil
		}
		if e.Row < 0 || e.Row >= grid.Height || e.Col < 0 || e.Col >= grid.Width {
			return &ViolationError{Event: "grid_cursor_goto", Detail: "cursor outside grid bounds"}
		}
		s.cursor = &pendingCursor{grid: e.Grid, row: e.Row, col: e.Col}

	case *redraw.HlAttrDefine:
		s.attributes[e.ID] = e.Attr

	case *redraw.HlGroupSet:
		s.groups[e.Name] = e.ID

	case *redraw.DefaultColorsSet:
		s.foreground = e.Foreground
		s.background = e.Background
		s.special = e.Special

	case *redraw.ModeInfoSet:
		s.modes = append([]redraw.ModeInfo(nil), e.Modes...)
		s.cursorStyleEnabled = e.CursorStyleEnabled
		if s.modeIndex >= len(s.modes) {
			s.modeIndex = 0
		}

	case *redraw.ModeChange:
		if e.Index < 0 || e.Index >= len(s.modes) {
			s.logger.Warn("mode change outside mode table", "mode", e.Name, "index", e.Index, "modes", len(s.modes))
			s.modeName = e.Name
			return nil
		}
		s.modeName = e.Name
		s.modeIndex = e.Index

	case *redraw.Flush:
		s.flush()

	case *redraw.BusyStart:
		s.busy = true

	case *redraw.BusyStop:
		s.busy = false

	case *redraw.SetTitle:
		s.title = e.Title

	case *redraw.SetIcon:
		s.icon = e.Icon

	case *redraw.Chdir:
		s.workingDir = e.Path

	case *redraw.Bell:
		s.bells++

	case *redraw.VisualBell:
		s.visualBells++

	case *redraw.Unknown:
		s.logger.Debug("ignoring unsupported event", "event", e.Name)
	}
	return nil
}

// ApplyBatch applies a decoded redraw batch in order, stopping at the
// first violation.
func (s *Screen) ApplyBatch(events []redraw.Event) error {
	for _, event := range events {
		if err := s.Apply(event); err != nil {
			return err
		}
	}
	return nil
}

func (s *Screen) lookup(id int, event string) (*Grid, bool) {
	grid, ok := s.grids[id]
	if !ok {
		s.logger.Warn("event for unknown grid", "event", event, "grid", id)
	}
	return grid, ok
}

// flush snapshots the primary grid into a fresh surface and consumes
// the pending cursor.
func (s *Screen) flush() {
	defer func() { s.cursor = nil }()

	grid, ok := s.grids[PrimaryGrid]
	if !ok {
		// A flush can precede the first grid_resize during attach;
		// there is nothing to present yet.
		s.logger.Debug("flush before primary grid exists")
		return
	}

	var generation uint64 = 1
	if s.surface != nil {
		generation = s.surface.Generation + 1
	}

	surface := &Surface{
		Generation:       generation,
		Width:            grid.Width,
		Height:           grid.Height,
		Rows:             make([][]Cell, grid.Height),
		Foreground:       s.foreground,
		Background:       s.background,
		Special:          s.special,
		ModeName:         s.modeName,
		Title:            s.title,
		Icon:             s.icon,
		Busy:             s.busy,
		WorkingDirectory: s.workingDir,
		Attributes:       make(map[int]redraw.Attribute, len(s.attributes)),
	}
	for row := 0; row < grid.Height; row++ {
		surface.Rows[row] = append([]Cell(nil), grid.row(row)...)
	}
	for id, attr := range s.attributes {
		surface.Attributes[id] = attr
	}

	// The cursor is presented only when this cycle positioned it and
	// the peer is not busy; busy periods hide it the way a terminal
	// hides the cursor during long operations.
	if s.cursor != nil && !s.busy {
		surface.Cursor = Cursor{
			Visible: true,
			Grid:    s.cursor.grid,
			Row:     s.cursor.row,
			Col:     s.cursor.col,
			Shape:   redraw.CursorBlock,
		}
		if s.cursorStyleEnabled && s.modeIndex < len(s.modes) {
			mode := s.modes[s.modeIndex]
			surface.Cursor.Shape = mode.CursorShape
			surface.Cursor.AttributeID = mode.AttributeID
		}
	}

	s.surface = surface
}

// Surface returns the snapshot produced by the most recent flush, or
// nil before the first one. The snapshot is immutable; later events
// never alter it.
func (s *Screen) Surface() *Surface {
	return s.surface
}

// Grid returns the live buffer for a grid id. The returned grid is
// owned by the screen and valid until the next resize or destroy of
// that id.
func (s *Screen) Grid(id int) (*Grid, bool) {
	grid, ok := s.grids[id]
	return grid, ok
}

// Attribute resolves a highlight id. Unknown ids resolve to the zero
// attribute, which renders as default styling.
func (s *Screen) Attribute(id int) redraw.Attribute {
	return s.attributes[id]
}

// GroupID resolves a highlight group name ("Normal", "Visual") to its
// attribute id, if the peer has announced it.
func (s *Screen) GroupID(name string) (int, bool) {
	id, ok := s.groups[name]
	return id, ok
}

// Mode returns the active mode's metadata. ok is false before the
// first mode_info_set arrives or when the active index is stale.
func (s *Screen) Mode() (redraw.ModeInfo, bool) {
	if s.modeIndex < 0 || s.modeIndex >= len(s.modes) {
		return redraw.ModeInfo{}, false
	}
	return s.modes[s.modeIndex], true
}

// Bells returns how many audible and visual bells the peer has rung
// since the screen was created.
func (s *Screen) Bells() (audible, visual uint64) {
	return s.bells, s.visualBells
}
