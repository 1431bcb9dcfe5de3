package dash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cell is one renderable character on the canvas
type cell struct {
	ch    rune
	style lipgloss.Style
}

// Canvas is a fixed-size character grid the swarm view draws into.
// Every draw method is a no-op on a nil canvas or one without area, so
// callers can render unconditionally before the terminal size is known.
type Canvas struct {
	width  int
	height int
	cells  []cell
}

// NewCanvas allocates a cleared canvas. Width or height of zero or less
// yields a canvas that ignores all drawing.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{width: width, height: height}
	if width > 0 && height > 0 {
		c.cells = make([]cell, width*height)
	}
	c.Clear()
	return c
}

func (c *Canvas) usable() bool {
	return c != nil && c.width > 0 && c.height > 0
}

// Clear resets every cell to a blank
func (c *Canvas) Clear() {
	if !c.usable() {
		return
	}
	for i := range c.cells {
		c.cells[i] = cell{ch: ' '}
	}
}

// Set places a single character. Out-of-bounds coordinates are dropped.
func (c *Canvas) Set(x, y int, ch rune, style lipgloss.Style) {
	if !c.usable() || x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.cells[y*c.width+x] = cell{ch: ch, style: style}
}

// SetIfEmpty places a character only when the cell is still blank, so
// decorations never overwrite markers already drawn
func (c *Canvas) SetIfEmpty(x, y int, ch rune, style lipgloss.Style) {
	if !c.usable() || x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	if c.cells[y*c.width+x].ch == ' ' {
		c.cells[y*c.width+x] = cell{ch: ch, style: style}
	}
}

// DrawGrid lays down faint reference lines every step cells
func (c *Canvas) DrawGrid(step int, style lipgloss.Style) {
	if !c.usable() || step <= 0 {
		return
	}
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			switch {
			case x%step == 0 && y%step == 0:
				c.SetIfEmpty(x, y, '+', style)
			case y%step == 0:
				c.SetIfEmpty(x, y, '-', style)
			case x%step == 0:
				c.SetIfEmpty(x, y, '|', style)
			}
		}
	}
}

// DrawText writes a string starting at (x, y), clipping at the right edge
func (c *Canvas) DrawText(x, y int, text string, style lipgloss.Style) {
	if !c.usable() {
		return
	}
	for i, ch := range text {
		c.Set(x+i, y, ch, style)
	}
}

// ringOffsets walks the eight neighbours clockwise starting at twelve
// o'clock, the order the energy ring fills in
var ringOffsets = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// DrawRing draws an arc around (x, y) whose length is proportional to
// fraction in [0,1]. A full fraction closes the ring.
func (c *Canvas) DrawRing(x, y int, fraction float64, style lipgloss.Style) {
	if !c.usable() {
		return
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	segments := int(fraction*float64(len(ringOffsets)) + 0.5)
	for i := 0; i < segments; i++ {
		off := ringOffsets[i]
		c.SetIfEmpty(x+off[0], y+off[1], '·', style)
	}
}

// Render flattens the canvas into styled terminal lines. A canvas without
// area renders to the empty string.
func (c *Canvas) Render() string {
	if !c.usable() {
		return ""
	}
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.width; x++ {
			cl := c.cells[y*c.width+x]
			if cl.ch == ' ' {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(cl.style.Render(string(cl.ch)))
		}
	}
	return b.String()
}

// Width returns the canvas width in cells
func (c *Canvas) Width() int {
	if c == nil {
		return 0
	}
	return c.width
}

// Height returns the canvas height in cells
func (c *Canvas) Height() int {
	if c == nil {
		return 0
	}
	return c.height
}
