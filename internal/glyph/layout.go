// Package glyph lays text out on the surface and samples the rasterized glyph
// mask into the target points the swarm is steered toward.
package glyph

import (
	"math"
	"strings"
)

// Layout constants
const (
	// WrapRatio is the share of the surface width a line may occupy
	WrapRatio = 0.9
	// FitRatio is the share of the surface height the text block may occupy
	FitRatio = 0.8
	// ShrinkRatio is applied to the font size on every shrink-to-fit iteration
	ShrinkRatio = 0.9
	// MinFontSize is the shrink-to-fit floor in pixels
	MinFontSize = 10.0
	// LineSpacing is the line height as a multiple of the font size
	LineSpacing = 1.2
	// SizeDivisor derives the start size from the smaller surface side when no base size is set
	SizeDivisor = 10.0
)

// Point is a target coordinate in surface pixels.
type Point struct {
	X, Y float64
}

// Measurer reports the rendered width of a string at a font size in pixels.
type Measurer interface {
	Advance(s string, size float64) float64
}

// Layout is the wrapped, size-fitted text block. The block is centred on the anchor.
type Layout struct {
	Lines     []string
	FontSize  float64
	BoxWidth  float64
	BoxHeight float64
	AnchorX   float64
	AnchorY   float64
}

// Empty reports whether there is nothing to draw.
func (l Layout) Empty() bool {
	return len(l.Lines) == 0 || l.FontSize <= 0
}

// LineHeight returns the vertical distance between line centres.
func (l Layout) LineHeight() float64 {
	return l.FontSize * LineSpacing
}

// LineY returns the surface y coordinate of the middle of line i.
func (l Layout) LineY(i int) float64 {
	return l.AnchorY + (float64(i)-float64(len(l.Lines)-1)/2)*l.LineHeight()
}

// ComputeLayout wraps text greedily at 90% of the width and shrinks the font
// until the block fits in 90% of the width and 80% of the height, or the size
// reaches MinFontSize. A word wider than the line is kept whole on its own line.
func ComputeLayout(m Measurer, text string, width, height, baseFontSize float64) Layout {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return Layout{}
	}
	paragraphs := splitWords(text)
	if len(paragraphs) == 0 {
		return Layout{}
	}

	maxW := width * WrapRatio
	maxH := height * FitRatio

	size := baseFontSize
	if !(size > 0) || math.IsInf(size, 0) {
		size = min(width, height) / SizeDivisor
	}

	lines, boxW := wrap(m, paragraphs, size, maxW)
	boxH := float64(len(lines)) * size * LineSpacing
	for (boxW > maxW || boxH > maxH) && size > MinFontSize {
		size = max(size*ShrinkRatio, MinFontSize)
		lines, boxW = wrap(m, paragraphs, size, maxW)
		boxH = float64(len(lines)) * size * LineSpacing
	}

	return Layout{
		Lines:     lines,
		FontSize:  size,
		BoxWidth:  boxW,
		BoxHeight: boxH,
		AnchorX:   width / 2,
		AnchorY:   height / 2,
	}
}

// splitWords breaks text into paragraphs on newlines and each paragraph into words.
// Blank paragraphs are dropped.
func splitWords(text string) [][]string {
	var out [][]string
	for _, para := range strings.Split(text, "\n") {
		if words := strings.Fields(para); len(words) > 0 {
			out = append(out, words)
		}
	}
	return out
}

// wrap lays every paragraph out greedily and returns the lines and the widest one
func wrap(m Measurer, paragraphs [][]string, size, maxWidth float64) ([]string, float64) {
	var lines []string
	widest := 0.0
	emit := func(line string) {
		lines = append(lines, line)
		widest = max(widest, m.Advance(line, size))
	}

	for _, words := range paragraphs {
		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if m.Advance(candidate, size) > maxWidth {
				emit(current)
				current = w
			} else {
				current = candidate
			}
		}
		emit(current)
	}
	return lines, widest
}
