// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package screen

import (
	"fmt"

	"github.com/bureau-foundation/editview/redraw"
)

// Cell is one character cell of a grid: a glyph (possibly multi-byte,
// possibly wider than one column) and the highlight id styling it.
// Id 0 means default styling.
type Cell struct {
	Text        string
	HighlightID int
}

// blank is the content of every cell the peer has not painted.
var blank = Cell{Text: " "}

// Grid is one independently addressable cell buffer. The peer declares
// grids by id; id 1 is the primary editor area, extensions add more
// (floating windows, the message area). Cells are stored row-major and
// always match the dimensions of the last resize.
type Grid struct {
	ID     int
	Width  int
	Height int

	cells []Cell
}

func newGrid(id, width, height int) *Grid {
	grid := &Grid{ID: id, Width: width, Height: height}
	grid.cells = make([]Cell, width*height)
	for i := range grid.cells {
		grid.cells[i] = blank
	}
	return grid
}

// Cell returns the cell at (row, col). Out-of-range coordinates are a
// caller bug, not peer input, and panic.
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= g.Height || col < 0 || col >= g.Width {
		panic(fmt.Sprintf("screen: cell (%d,%d) outside %dx%d grid %d", row, col, g.Width, g.Height, g.ID))
	}
	return g.cells[row*g.Width+col]
}

func (g *Grid) row(row int) []Cell {
	start := row * g.Width
	return g.cells[start : start+g.Width]
}

func (g *Grid) clear() {
	for i := range g.cells {
		g.cells[i] = blank
	}
}

// writeLine paints a grid_line event: cells left to right from
// ColStart, expanding repeat counts. The peer sends empty text for
// cells it wants blanked, which render as a single space.
func (g *Grid) writeLine(event *redraw.GridLine) error {
	if event.Row < 0 || event.Row >= g.Height {
		return &ViolationError{Event: "grid_line", Detail: fmt.Sprintf("row %d outside %dx%d grid %d", event.Row, g.Width, g.Height, g.ID)}
	}
	if event.ColStart < 0 {
		return &ViolationError{Event: "grid_line", Detail: fmt.Sprintf("negative start column %d", event.ColStart)}
	}

	row := g.row(event.Row)
	col := event.ColStart
	for _, cell := range event.Cells {
		text := cell.Text
		if text == "" {
			text = " "
		}
		for repeat := cell.Repeat; repeat > 0; repeat-- {
			if col >= g.Width {
				return &ViolationError{Event: "grid_line", Detail: fmt.Sprintf("write past column %d of grid %d", g.Width, g.ID)}
			}
			row[col] = Cell{Text: text, HighlightID: cell.HighlightID}
			col++
		}
	}
	return nil
}

// scroll shifts the region [Top,Bot)x[Left,Right). Rows > 0 moves
// content up (the row at Top+Rows ends up at Top), Rows < 0 moves it
// down. Vacated rows keep their old content; the peer repaints them
// with grid_line immediately after.
//
// Source and destination overlap, so traversal order matters: when
// content moves up the copy walks top to bottom (each source row is
// still unread when it is consumed), and when content moves down it
// walks bottom to top. Within a row the built-in copy already has
// move semantics, which covers the horizontal case.
func (g *Grid) scroll(event *redraw.GridScroll) error {
	top, bot := event.Top, event.Bot
	left, right := event.Left, event.Right
	if top < 0 || bot > g.Height || top > bot || left < 0 || right > g.Width || left > right {
		return &ViolationError{
			Event:  "grid_scroll",
			Detail: fmt.Sprintf("region rows [%d,%d) cols [%d,%d) outside %dx%d grid %d", top, bot, left, right, g.Width, g.Height, g.ID),
		}
	}

	rows := int(event.Rows)
	switch {
	case rows > 0:
		for dst := top; dst < bot-rows; dst++ {
			copy(g.row(dst)[left:right], g.row(dst+rows)[left:right])
		}
	case rows < 0:
		for dst := bot - 1; dst >= top-rows; dst-- {
			copy(g.row(dst)[left:right], g.row(dst+rows)[left:right])
		}
	}

	cols := int(event.Cols)
	if cols == 0 {
		return nil
	}
	for r := top; r < bot; r++ {
		row := g.row(r)
		if cols > 0 && cols < right-left {
			copy(row[left:right-cols], row[left+cols:right])
		} else if cols < 0 && -cols < right-left {
			copy(row[left-cols:right], row[left:right+cols])
		}
	}
	return nil
}
