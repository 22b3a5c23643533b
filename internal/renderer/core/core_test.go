package core

import (
	"strings"
	"testing"
)

type grid struct {
	w, h  int
	cells map[[2]int]Cell
}

func newGrid(w, h int) *grid {
	return &grid{w: w, h: h, cells: make(map[[2]int]Cell)}
}

func (g *grid) Size() (int, int) { return g.w, g.h }

func (g *grid) SetCell(x, y int, c Cell) { g.cells[[2]int{x, y}] = c }

func (g *grid) row(y int) string {
	var b strings.Builder
	for x := 0; x < g.w; x++ {
		c, ok := g.cells[[2]int{x, y}]
		switch {
		case !ok:
			b.WriteByte('.')
		case c.IsContinuation():
		default:
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#ff0000", RGB(255, 0, 0), false},
		{"00ff00", RGB(0, 255, 0), false},
		{"#fff", RGB(255, 255, 255), false},
		{"default", ColorDefault, false},
		{"", ColorDefault, false},
		{"#12345", Color{}, true},
		{"#gggggg", Color{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, expected %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorBlend(t *testing.T) {
	a, b := RGB(10, 20, 30), RGB(200, 100, 50)

	if got := a.Blend(b, 0); got != a {
		t.Errorf("Blend(0) = %v, expected %v", got, a)
	}
	if got := a.Blend(b, 1); got != b {
		t.Errorf("Blend(1) = %v, expected %v", got, b)
	}
	if got := a.Blend(b, 5); got != b {
		t.Errorf("Blend clamps t: got %v", got)
	}
	if got := ColorDefault.Blend(b, 0.2); got != ColorDefault {
		t.Errorf("default blend near start = %v", got)
	}
	if got := ColorDefault.Blend(b, 0.8); got != b {
		t.Errorf("default blend near end = %v", got)
	}

	mid := ColorBlack.Lighten(0.5)
	if mid.R == 0 || mid.R == 255 {
		t.Errorf("Lighten(0.5) of black = %v", mid)
	}
	if ColorWhite.Darken(1) != ColorBlack {
		t.Errorf("Darken(1) of white = %v", ColorWhite.Darken(1))
	}
}

func TestColorHex(t *testing.T) {
	if got := RGB(1, 171, 255).Hex(); got != "#01abff" {
		t.Errorf("Hex() = %q", got)
	}
	if got := ColorDefault.String(); got != "default" {
		t.Errorf("String() = %q", got)
	}
}

func TestStyle(t *testing.T) {
	s := DefaultStyle().Fg(ColorRed).Bold().Reverse()
	if s.Foreground != ColorRed || s.Background != ColorDefault {
		t.Errorf("colors = %v/%v", s.Foreground, s.Background)
	}
	if !s.Attributes.Has(AttrBold) || !s.Attributes.Has(AttrReverse) || s.Attributes.Has(AttrDim) {
		t.Errorf("Attributes = %b", s.Attributes)
	}
}

func TestDrawText(t *testing.T) {
	tests := []struct {
		name string
		x    int
		text string
		want string
		cols int
	}{
		{"ascii", 1, "abc", ".abc....", 3},
		{"clipped", 6, "abcd", "......ab", 2},
		{"combining", 0, "éx", "éx......", 2},
		{"wide", 0, "日本", "日本....", 4},
		{"wide at edge", 5, "日本", ".....日.", 2},
		{"negative x", -1, "abc", "bc......", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(8, 1)
			n := DrawText(g, tt.x, 0, tt.text, DefaultStyle())
			if n != tt.cols {
				t.Errorf("DrawText() = %d, expected %d", n, tt.cols)
			}
			if got := g.row(0); got != tt.want {
				t.Errorf("row = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestDrawTextOffscreenRow(t *testing.T) {
	g := newGrid(4, 2)
	if n := DrawText(g, 0, 5, "hi", DefaultStyle()); n != 0 {
		t.Errorf("DrawText() offscreen = %d", n)
	}
	if len(g.cells) != 0 {
		t.Error("offscreen draw touched cells")
	}
}

func TestDrawCentered(t *testing.T) {
	g := newGrid(9, 1)
	DrawCentered(g, 0, "abc", DefaultStyle())
	if got := g.row(0); got != "...abc..." {
		t.Errorf("row = %q", got)
	}
}

func TestFill(t *testing.T) {
	g := newGrid(3, 2)
	Fill(g, Rect{X: 1, Y: 0, W: 10, H: 10}, NewCell("#", DefaultStyle()))
	if g.row(0) != ".##" || g.row(1) != ".##" {
		t.Errorf("rows = %q %q", g.row(0), g.row(1))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		text string
		cols int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"日本語", 4, "日…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.text, tt.cols); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, expected %q", tt.text, tt.cols, got, tt.want)
		}
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 1, Y: 1, W: 3, H: 2}
	if !r.Contains(1, 1) || !r.Contains(3, 2) || r.Contains(4, 1) || r.Contains(1, 3) {
		t.Error("Contains mismatch")
	}
	if got := r.Intersect(Rect{X: 2, Y: 0, W: 5, H: 2}); got != (Rect{X: 2, Y: 1, W: 2, H: 1}) {
		t.Errorf("Intersect() = %+v", got)
	}
	if !r.Intersect(Rect{X: 10, Y: 10, W: 1, H: 1}).Empty() {
		t.Error("disjoint intersect should be empty")
	}
}
