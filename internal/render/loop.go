// Package render drives the per-frame tick and draws the swarm.
package render

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/olivierh59500/textswarm/internal/config"
	"github.com/olivierh59500/textswarm/internal/glyph"
	"github.com/olivierh59500/textswarm/internal/surface"
	"github.com/olivierh59500/textswarm/internal/swarm"
)

// Animation periods, in milliseconds
const (
	PulsePeriod     = 500.0
	PulseAmplitude  = 0.05
	RotatePeriod    = 1000.0
	RotateAmplitude = math.Pi / 32
)

// Fallback colours for unparsable configuration values
var (
	DefaultBackground = color.RGBA{A: 0xff}
	DefaultTextColor  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Canvas is what a frame is drawn on.
type Canvas interface {
	// Clear fills the whole surface, ignoring the transform
	Clear(bg color.RGBA)
	// SetTransform sets the transform applied to everything drawn after it
	SetTransform(m ebiten.GeoM)
	DrawText(l glyph.Layout, c color.RGBA)
	DrawParticle(p swarm.Particle, glow bool)
	// Present finishes the frame
	Present()
}

// Loop ties the swarm, the text layout and the surface together, one tick at a time.
type Loop struct {
	swarm      *swarm.Swarm
	rasterizer *glyph.Rasterizer
	surface    *surface.Surface
	store      *config.Store

	pointer swarm.Pointer
	paused  bool
	ticks   int64

	start    time.Time
	pausedAt time.Time
	now      func() time.Time
}

// NewLoop creates a running loop.
func NewLoop(sw *swarm.Swarm, r *glyph.Rasterizer, surf *surface.Surface, store *config.Store) *Loop {
	return &Loop{
		swarm:      sw,
		rasterizer: r,
		surface:    surf,
		store:      store,
		start:      time.Now(),
		now:        time.Now,
	}
}

// Update advances the swarm by one tick unless the loop is paused.
func (l *Loop) Update() {
	if l.paused {
		return
	}
	l.swarm.Step(l.surface.Width(), l.surface.Height(), l.pointer)
	l.ticks++
}

// Draw renders the current state onto c.
func (l *Loop) Draw(c Canvas) {
	cfg := l.store.Snapshot()
	w, h := l.surface.Width(), l.surface.Height()

	c.SetTransform(ebiten.GeoM{})
	c.Clear(config.ColorOr(cfg.BackgroundColor, DefaultBackground))
	c.SetTransform(AnimationTransform(cfg.Text.Animation, l.Elapsed(), w/2, h/2))

	c.DrawText(l.rasterizer.Layout(w, h), config.ColorOr(cfg.Text.Color, DefaultTextColor))
	for _, p := range l.swarm.Particles() {
		c.DrawParticle(p, cfg.Particle.Glow)
	}

	c.Present()
}

// Pause freezes the swarm and the animation clock. Pausing twice is a no-op.
func (l *Loop) Pause() {
	if l.paused {
		return
	}
	l.paused = true
	l.pausedAt = l.now()
}

// Resume restarts a paused loop. The animation picks up where it stopped.
func (l *Loop) Resume() {
	if !l.paused {
		return
	}
	l.paused = false
	l.start = l.start.Add(l.now().Sub(l.pausedAt))
}

// Paused reports whether the loop is paused.
func (l *Loop) Paused() bool { return l.paused }

// Particles returns the number of live particles.
func (l *Loop) Particles() int { return l.swarm.Len() }

// Ticks returns the number of ticks the swarm has advanced.
func (l *Loop) Ticks() int64 { return l.ticks }

// SetPointer sets the pointer used by the following ticks.
func (l *Loop) SetPointer(p swarm.Pointer) { l.pointer = p }

// Pointer returns the current pointer.
func (l *Loop) Pointer() swarm.Pointer { return l.pointer }

// Elapsed returns the unpaused milliseconds since the loop was created.
func (l *Loop) Elapsed() float64 {
	now := l.now()
	if l.paused {
		now = l.pausedAt
	}
	return float64(now.Sub(l.start)) / float64(time.Millisecond)
}

// AnimationTransform returns the global transform for mode at t milliseconds,
// centred on (cx, cy).
func AnimationTransform(mode config.Animation, t, cx, cy float64) ebiten.GeoM {
	var m ebiten.GeoM
	switch mode {
	case config.AnimationPulse:
		s := 1 + PulseAmplitude*math.Sin(t/PulsePeriod)
		m.Translate(-cx, -cy)
		m.Scale(s, s)
		m.Translate(cx, cy)
	case config.AnimationRotate:
		m.Translate(-cx, -cy)
		m.Rotate(math.Sin(t/RotatePeriod) * RotateAmplitude)
		m.Translate(cx, cy)
	}
	return m
}
