package glyph

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// AlphaThreshold is the coverage a mask pixel needs to become a target point
	AlphaThreshold = 128
	// referenceSize is the face size widths are measured at before scaling
	referenceSize = 100.0
)

// FaceMeasurer measures strings with an unhinted face at a reference size and
// scales the result linearly to the requested size.
type FaceMeasurer struct {
	face font.Face
}

// NewFaceMeasurer creates a measurer for the parsed font f.
func NewFaceMeasurer(f *opentype.Font) (*FaceMeasurer, error) {
	face, err := newFace(f, referenceSize)
	if err != nil {
		return nil, err
	}
	return &FaceMeasurer{face: face}, nil
}

// Advance implements Measurer.
func (m *FaceMeasurer) Advance(s string, size float64) float64 {
	return fromFixed(font.MeasureString(m.face, s)) * size / referenceSize
}

// Rasterizer owns the text being spelled, caches its layout and samples the
// glyph mask. It is not safe for concurrent use.
type Rasterizer struct {
	font    *opentype.Font
	measure *FaceMeasurer

	text     string
	fontSize float64

	cached       Layout
	lastW, lastH float64
	valid        bool
	computed     int

	face     font.Face
	faceSize float64
}

// NewRasterizer parses the bundled bold font. fontSize is the starting size for
// shrink-to-fit; zero derives it from the surface.
func NewRasterizer(text string, fontSize float64) (*Rasterizer, error) {
	f, err := ParseFont(gobold.TTF)
	if err != nil {
		return nil, err
	}
	m, err := NewFaceMeasurer(f)
	if err != nil {
		return nil, err
	}
	return &Rasterizer{font: f, measure: m, text: text, fontSize: fontSize}, nil
}

// ParseFont parses a TrueType or OpenType font.
func ParseFont(data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

// Measurer returns the measurer used for wrapping.
func (r *Rasterizer) Measurer() Measurer { return r.measure }

// Text returns the current text.
func (r *Rasterizer) Text() string { return r.text }

// FontSize returns the requested base font size.
func (r *Rasterizer) FontSize() float64 { return r.fontSize }

// SetText replaces the text and invalidates the cached layout.
func (r *Rasterizer) SetText(text string) {
	r.text = text
	r.valid = false
}

// SetFontSize replaces the base font size and invalidates the cached layout.
func (r *Rasterizer) SetFontSize(size float64) {
	r.fontSize = size
	r.valid = false
}

// Invalidate forces the next Layout call to recompute.
func (r *Rasterizer) Invalidate() {
	r.valid = false
}

// Layout returns the layout for a surface of width x height, reusing the cached
// one while the dimensions are unchanged.
func (r *Rasterizer) Layout(width, height float64) Layout {
	if r.valid && width == r.lastW && height == r.lastH {
		return r.cached
	}
	r.cached = ComputeLayout(r.measure, r.text, width, height, r.fontSize)
	r.lastW, r.lastH = width, height
	r.valid = true
	r.computed++
	return r.cached
}

// Mask renders the layout's lines, white on transparent, onto an alpha mask
// sized to the text box. Each line is centred horizontally with its middle at
// (i+0.5) line heights from the top. It returns nil for an empty layout.
func (r *Rasterizer) Mask(l Layout) (*image.Alpha, error) {
	if l.Empty() {
		return nil, nil
	}
	face, err := r.faceAt(l.FontSize)
	if err != nil {
		return nil, err
	}

	w := max(1, int(math.Ceil(l.BoxWidth)))
	h := max(1, int(math.Ceil(l.BoxHeight)))
	mask := image.NewAlpha(image.Rect(0, 0, w, h))

	metrics := face.Metrics()
	// Shift from the middle of the em box to the baseline
	middleToBaseline := (fromFixed(metrics.Ascent) - fromFixed(metrics.Descent)) / 2

	d := font.Drawer{Dst: mask, Src: image.Opaque, Face: face}
	lh := l.LineHeight()
	for i, line := range l.Lines {
		lw := fromFixed(font.MeasureString(face, line))
		x := (float64(w) - lw) / 2
		y := (float64(i)+0.5)*lh + middleToBaseline
		d.Dot = fixed.Point26_6{X: toFixed(x), Y: toFixed(y)}
		d.DrawString(line)
	}
	return mask, nil
}

// SamplePoints walks the mask with a stride of ceil(pixels/targetCount) and
// emits a point for every sampled pixel above AlphaThreshold, in surface
// coordinates. The count only approximates targetCount. Points that fall off a
// surface of the layout's size are dropped.
func (r *Rasterizer) SamplePoints(l Layout, targetCount int) ([]Point, error) {
	if targetCount <= 0 || l.Empty() {
		return nil, nil
	}
	mask, err := r.Mask(l)
	if err != nil || mask == nil {
		return nil, err
	}

	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	total := w * h
	stride := max(1, int(math.Ceil(float64(total)/float64(targetCount))))

	surfaceW, surfaceH := l.AnchorX*2, l.AnchorY*2
	originX := l.AnchorX - float64(w)/2
	originY := l.AnchorY - float64(h)/2

	points := make([]Point, 0, min(targetCount, total/stride+1))
	for i := 0; i < total; i += stride {
		px, py := i%w, i/w
		if mask.Pix[py*mask.Stride+px] <= AlphaThreshold {
			continue
		}
		p := Point{X: originX + float64(px), Y: originY + float64(py)}
		if p.X < 0 || p.Y < 0 || p.X > surfaceW || p.Y > surfaceH {
			continue
		}
		points = append(points, p)
	}
	return points, nil
}

// faceAt returns a face at size, reusing the last one when the size repeats
func (r *Rasterizer) faceAt(size float64) (font.Face, error) {
	if r.face != nil && r.faceSize == size {
		return r.face, nil
	}
	face, err := newFace(r.font, size)
	if err != nil {
		return nil, err
	}
	if r.face != nil {
		_ = r.face.Close()
	}
	r.face, r.faceSize = face, size
	return face, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face at %gpx: %w", size, err)
	}
	return face, nil
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }
