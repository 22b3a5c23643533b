package core

import "github.com/rivo/uniseg"

// Cell is one screen column.
// Text holds a single grapheme cluster. A wide cluster occupies its own cell
// plus a continuation cell with Width 0 to its right.
type Cell struct {
	Text  string
	Width int
	Style Style
}

// EmptyCell is a blank cell in the default style.
func EmptyCell() Cell {
	return Cell{Text: " ", Width: 1, Style: DefaultStyle()}
}

// NewCell creates a cell for a grapheme cluster.
func NewCell(cluster string, style Style) Cell {
	return Cell{Text: cluster, Width: uniseg.StringWidth(cluster), Style: style}
}

// IsContinuation returns true for the right half of a wide cluster.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Text == ""
}

// Rect is a screen rectangle. X and Y are inclusive, W and H are sizes.
type Rect struct {
	X, Y, W, H int
}

// Empty returns true if r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains returns true if (x, y) is inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Intersect returns the overlap of r and o.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
