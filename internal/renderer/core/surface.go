package core

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Surface is anything modes can draw on.
type Surface interface {
	Size() (width, height int)
	SetCell(x, y int, c Cell)
}

// TextWidth returns the number of columns s occupies.
func TextWidth(s string) int {
	return uniseg.StringWidth(s)
}

// DrawText draws text at (x, y) one grapheme cluster at a time and returns
// the number of columns it advanced. Clusters that would cross the right
// edge are dropped.
func DrawText(s Surface, x, y int, text string, style Style) int {
	width, height := s.Size()
	if y < 0 || y >= height {
		return 0
	}

	col := x
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w == 0 {
			continue
		}
		if col+w > width {
			break
		}
		if col >= 0 {
			s.SetCell(col, y, Cell{Text: g.Str(), Width: w, Style: style})
			for i := 1; i < w; i++ {
				s.SetCell(col+i, y, Cell{Style: style})
			}
		}
		col += w
	}
	return max(col-x, 0)
}

// DrawCentered draws text horizontally centered on row y.
func DrawCentered(s Surface, y int, text string, style Style) int {
	width, _ := s.Size()
	x := (width - TextWidth(text)) / 2
	return DrawText(s, max(x, 0), y, text, style)
}

// Fill sets every cell of r to c, clipped to the surface.
func Fill(s Surface, r Rect, c Cell) {
	width, height := s.Size()
	r = r.Intersect(Rect{W: width, H: height})
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			s.SetCell(x, y, c)
		}
	}
}

// Truncate shortens text to at most cols columns, ending it with an
// ellipsis when something was cut.
func Truncate(text string, cols int) string {
	if cols <= 0 {
		return ""
	}
	if TextWidth(text) <= cols {
		return text
	}

	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if used+w > cols-1 {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	b.WriteString("…")
	return b.String()
}
