// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/editview/redraw"
	"github.com/bureau-foundation/editview/screen"
)

// renderSurface turns one presented surface into styled terminal
// lines, one per grid row. Styles are built per highlight id, cached
// for the duration of the pass, and applied to runs of cells sharing
// an id rather than cell by cell.
func renderSurface(surface *screen.Surface, theme Theme) []string {
	styles := make(map[int]lipgloss.Style, len(surface.Attributes)+1)
	styleFor := func(id int) lipgloss.Style {
		if style, ok := styles[id]; ok {
			return style
		}
		style := cellStyle(surface, surface.AttributeFor(id))
		styles[id] = style
		return style
	}

	lines := make([]string, surface.Height)
	for row := range lines {
		lines[row] = renderRow(surface, row, styleFor)
	}
	return lines
}

func renderRow(surface *screen.Surface, row int, styleFor func(int) lipgloss.Style) string {
	cells := surface.Rows[row]

	cursorCol := -1
	if cursor := surface.Cursor; cursor.Visible && cursor.Row == row {
		cursorCol = cursor.Col
	}

	var b strings.Builder
	for start := 0; start < len(cells); {
		if start == cursorCol {
			style := cursorStyle(styleFor(cells[start].HighlightID), surface.Cursor.Shape)
			b.WriteString(style.Render(cells[start].Text))
			start++
			continue
		}

		end := start + 1
		for end < len(cells) && end != cursorCol && cells[end].HighlightID == cells[start].HighlightID {
			end++
		}
		var text strings.Builder
		for _, cell := range cells[start:end] {
			text.WriteString(cell.Text)
		}
		b.WriteString(styleFor(cells[start].HighlightID).Render(text.String()))
		start = end
	}
	return b.String()
}

// cellStyle builds the terminal style for one highlight attribute,
// falling back to the surface's default colors for anything the
// attribute leaves unset. The special (underline) color has no
// terminal-style equivalent here and is not rendered.
func cellStyle(surface *screen.Surface, attr redraw.Attribute) lipgloss.Style {
	foreground := surface.Foreground
	if attr.Foreground != nil {
		foreground = *attr.Foreground
	}
	background := surface.Background
	if attr.Background != nil {
		background = *attr.Background
	}
	if attr.Reverse {
		foreground, background = background, foreground
	}

	style := lipgloss.NewStyle().
		Foreground(hexColor(foreground)).
		Background(hexColor(background))
	if attr.Bold {
		style = style.Bold(true)
	}
	if attr.Italic {
		style = style.Italic(true)
	}
	if attr.Strikethrough {
		style = style.Strikethrough(true)
	}
	if attr.Underline != redraw.UnderlineNone {
		style = style.Underline(true)
	}
	return style
}

// cursorStyle overlays the cursor on a cell's base style. A cell grid
// cannot draw a real beam, so beam and block both render as reverse
// video; underline cursors underline the cell.
func cursorStyle(base lipgloss.Style, shape redraw.CursorShape) lipgloss.Style {
	if shape == redraw.CursorUnderline {
		return base.Underline(true)
	}
	return base.Reverse(true)
}

func hexColor(c redraw.Color) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06x", uint32(c)))
}

// statusBar renders the host's one line of chrome: session identity
// on the left, editor state and host indicators on the right.
func (m Model) statusBar() string {
	surface := m.screen.Surface()

	title := surface.Title
	if title == "" {
		title = surface.WorkingDirectory
	}
	if title == "" {
		title = "editview"
	}
	left := " " + title

	accent := lipgloss.NewStyle().Foreground(m.theme.StatusAccent)
	alert := lipgloss.NewStyle().Foreground(m.theme.StatusAlert)
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	var segments []string
	if surface.ModeName != "" {
		segments = append(segments, accent.Render(surface.ModeName))
	}
	if surface.Busy {
		segments = append(segments, alert.Render("busy"))
	}
	if m.recording {
		segments = append(segments, alert.Render("rec"))
	}
	if depth := len(m.controller.Notifications()); depth > 0 {
		segments = append(segments, faint.Render(fmt.Sprintf("queue %d", depth)))
	}
	segments = append(segments, faint.Render(m.keys.Detach.Help().Key+" detach"))
	right := strings.Join(segments, "  ") + " "

	// The title yields when the bar is too narrow; the indicators
	// never truncate.
	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		available := m.width - ansi.StringWidth(right) - 1
		if available < 0 {
			available = 0
		}
		left = ansi.Truncate(left, available, "…")
		gap = 1
	}

	bar := left + strings.Repeat(" ", gap) + right
	barStyle := lipgloss.NewStyle().
		Background(m.theme.StatusBackground).
		Foreground(m.theme.StatusForeground).
		Width(m.width)
	return barStyle.Render(ansi.Truncate(bar, m.width, ""))
}
