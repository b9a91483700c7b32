package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/olivierh59500/textswarm/internal/config"
	"github.com/olivierh59500/textswarm/internal/glyph"
	"github.com/olivierh59500/textswarm/internal/swarm"
)

// Glow halo drawn behind particles
const (
	GlowSpread = 2.5
	GlowAlpha  = 0.35
)

// TrailAlpha scales the colour of trail segments
const TrailAlpha = 0.5

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// EbitenCanvas draws onto an ebiten screen. Everything but the background goes
// to an off-screen layer that Present composites with the current transform.
type EbitenCanvas struct {
	screen    *ebiten.Image
	layer     *ebiten.Image
	transform ebiten.GeoM
	source    *text.GoTextFaceSource

	vertices []ebiten.Vertex
	indices  []uint16
}

// NewEbitenCanvas loads the guide text font.
func NewEbitenCanvas() (*EbitenCanvas, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, fmt.Errorf("load guide font: %w", err)
	}
	return &EbitenCanvas{source: src}, nil
}

// Target points the canvas at the screen of the current frame.
func (c *EbitenCanvas) Target(screen *ebiten.Image) {
	c.screen = screen
	b := screen.Bounds()
	if c.layer == nil || c.layer.Bounds().Dx() != b.Dx() || c.layer.Bounds().Dy() != b.Dy() {
		if c.layer != nil {
			c.layer.Deallocate()
		}
		c.layer = ebiten.NewImage(b.Dx(), b.Dy())
	}
}

// Clear fills the screen with bg and empties the layer.
func (c *EbitenCanvas) Clear(bg color.RGBA) {
	c.screen.Fill(bg)
	c.layer.Clear()
}

// SetTransform sets the transform Present composites the layer with.
func (c *EbitenCanvas) SetTransform(m ebiten.GeoM) {
	c.transform = m
}

// DrawText draws each line centred on its anchor in the guide font.
func (c *EbitenCanvas) DrawText(l glyph.Layout, col color.RGBA) {
	if l.Empty() {
		return
	}
	face := &text.GoTextFace{Source: c.source, Size: l.FontSize}
	for i, line := range l.Lines {
		op := &text.DrawOptions{}
		op.PrimaryAlign = text.AlignCenter
		op.SecondaryAlign = text.AlignCenter
		op.GeoM.Translate(l.AnchorX, l.LineY(i))
		op.ColorScale.ScaleWithColor(col)
		text.Draw(c.layer, line, face, op)
	}
}

// DrawParticle draws the trail, the optional glow halo and then the shape.
func (c *EbitenCanvas) DrawParticle(p swarm.Particle, glow bool) {
	if len(p.Trail) > 1 {
		tc := scaleAlpha(p.Color, TrailAlpha)
		for i := 1; i < len(p.Trail); i++ {
			a, b := p.Trail[i-1], p.Trail[i]
			vector.StrokeLine(c.layer, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, tc, true)
		}
	}

	if glow {
		vector.DrawFilledCircle(c.layer, float32(p.X), float32(p.Y), float32(p.Radius+GlowSpread), scaleAlpha(p.Color, GlowAlpha), true)
	}

	x, y, r := float32(p.X), float32(p.Y), float32(p.Radius)
	switch p.Shape {
	case config.ShapeSquare:
		vector.DrawFilledRect(c.layer, x-r, y-r, 2*r, 2*r, p.Color, true)
	case config.ShapeTriangle:
		c.fillTriangle(x, y, r, p.Color)
	default:
		vector.DrawFilledCircle(c.layer, x, y, r, p.Color, true)
	}
}

// fillTriangle draws an upward triangle inscribed in the particle's bounding square
func (c *EbitenCanvas) fillTriangle(x, y, r float32, col color.RGBA) {
	var path vector.Path
	path.MoveTo(x, y-r)
	path.LineTo(x-r, y+r)
	path.LineTo(x+r, y+r)
	path.Close()

	c.vertices, c.indices = path.AppendVerticesAndIndicesForFilling(c.vertices[:0], c.indices[:0])
	cr, cg, cb, ca := float32(col.R)/0xff, float32(col.G)/0xff, float32(col.B)/0xff, float32(col.A)/0xff
	for i := range c.vertices {
		c.vertices[i].SrcX = 1
		c.vertices[i].SrcY = 1
		c.vertices[i].ColorR = cr
		c.vertices[i].ColorG = cg
		c.vertices[i].ColorB = cb
		c.vertices[i].ColorA = ca
	}
	c.layer.DrawTriangles(c.vertices, c.indices, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// Present composites the layer onto the screen with the current transform.
func (c *EbitenCanvas) Present() {
	op := &ebiten.DrawImageOptions{}
	op.GeoM = c.transform
	op.Filter = ebiten.FilterLinear
	c.screen.DrawImage(c.layer, op)
}

// scaleAlpha returns col with its alpha multiplied by f, premultiplied
func scaleAlpha(col color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(col.R) * f),
		G: uint8(float64(col.G) * f),
		B: uint8(float64(col.B) * f),
		A: uint8(float64(col.A) * f),
	}
}
