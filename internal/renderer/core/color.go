// Package core provides the drawing types shared by modes and backends.
package core

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a true color or the terminal's default color.
type Color struct {
	R, G, B uint8
	// Default selects the terminal's own color; R, G and B are ignored.
	Default bool
}

// ColorDefault is the terminal's default color.
var ColorDefault = Color{Default: true}

// Named colors used by the builtin themes.
var (
	ColorBlack  = RGB(0, 0, 0)
	ColorWhite  = RGB(255, 255, 255)
	ColorRed    = RGB(220, 50, 47)
	ColorGreen  = RGB(133, 153, 0)
	ColorYellow = RGB(181, 137, 0)
	ColorCyan   = RGB(42, 161, 152)
	ColorGray   = RGB(128, 128, 128)
)

// RGB creates a true color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ParseColor parses "#rgb", "#rrggbb" or "default".
func ParseColor(s string) (Color, error) {
	if s == "" || s == "default" {
		return ColorDefault, nil
	}
	if s[0] != '#' {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Blend mixes c toward other by t in [0, 1], interpolating in Lab space.
// If either color is the default color, the nearer endpoint wins.
func (c Color) Blend(other Color, t float64) Color {
	if c.Default || other.Default {
		if t < 0.5 {
			return c
		}
		return other
	}
	t = clamp01(t)
	return fromColorful(c.colorful().BlendLab(other.colorful(), t).Clamped())
}

// Lighten moves the color toward white.
func (c Color) Lighten(amount float64) Color {
	if c.Default {
		return c
	}
	return c.Blend(ColorWhite, amount)
}

// Darken moves the color toward black.
func (c Color) Darken(amount float64) Color {
	if c.Default {
		return c
	}
	return c.Blend(ColorBlack, amount)
}

// Hex returns "#rrggbb", or "default".
func (c Color) Hex() string {
	if c.Default {
		return "default"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.RGB255()
	return RGB(r, g, b)
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
