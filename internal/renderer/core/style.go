package core

// Attribute is a set of text attributes.
type Attribute uint8

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << (iota - 1)
	AttrDim
	AttrUnderline
	AttrReverse
	AttrBlink
)

// Has returns true if a contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Style is the visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle uses the terminal's default colors.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// Fg returns s with the given foreground.
func (s Style) Fg(c Color) Style {
	s.Foreground = c
	return s
}

// Bg returns s with the given background.
func (s Style) Bg(c Color) Style {
	s.Background = c
	return s
}

// With returns s with attr added.
func (s Style) With(attr Attribute) Style {
	s.Attributes |= attr
	return s
}

// Bold returns s in bold.
func (s Style) Bold() Style {
	return s.With(AttrBold)
}

// Reverse returns s with foreground and background swapped on output.
func (s Style) Reverse() Style {
	return s.With(AttrReverse)
}
