// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package screen

import (
	"strings"

	"github.com/bureau-foundation/editview/redraw"
)

// Cursor describes where and how to draw the cursor on a presented
// surface. Visible is false when the repaint cycle that produced the
// surface never positioned it.
type Cursor struct {
	Visible     bool
	Grid        int
	Row         int
	Col         int
	Shape       redraw.CursorShape
	AttributeID int
}

// Surface is an immutable snapshot of the primary grid taken at flush
// time, together with everything a renderer needs to style it. Rows
// and Attributes are deep copies; applying further events to the
// screen never mutates a surface already handed out.
//
// Generation increases by one per flush, so a renderer can skip
// repainting when it already drew the current surface.
type Surface struct {
	Generation uint64

	Width  int
	Height int
	Rows   [][]Cell

	Cursor Cursor

	Foreground redraw.Color
	Background redraw.Color
	Special    redraw.Color

	ModeName         string
	Title            string
	Icon             string
	Busy             bool
	WorkingDirectory string

	Attributes map[int]redraw.Attribute
}

// AttributeFor resolves a cell's highlight id against the snapshot's
// table. Unknown ids resolve to the zero attribute (default styling).
func (s *Surface) AttributeFor(id int) redraw.Attribute {
	return s.Attributes[id]
}

// Line returns one row's text with styling stripped. Useful for
// status lines, tests, and trace tooling.
func (s *Surface) Line(row int) string {
	var b strings.Builder
	for _, cell := range s.Rows[row] {
		b.WriteString(cell.Text)
	}
	return b.String()
}
