package config

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a "#rrggbb" (or "#rgb") string into an opaque colour.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q: %v", ErrInvalidValue, hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// ColorOr parses hex and returns fallback when it is malformed.
func ColorOr(hex string, fallback color.RGBA) color.RGBA {
	c, err := ParseColor(hex)
	if err != nil {
		return fallback
	}
	return c
}

// RotateHue returns hex shifted around the colour wheel by degrees, keeping
// saturation and value. Malformed input is treated as pure red.
func RotateHue(hex string, degrees float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{R: 1}
	}
	h, s, v := c.Hsv()
	if s == 0 {
		s = 1
	}
	h += degrees
	for h >= 360 {
		h -= 360
	}
	for h < 0 {
		h += 360
	}
	return colorful.Hsv(h, s, v).Clamped().Hex()
}
