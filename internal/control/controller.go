// Package control binds configuration changes, pointer input and surface
// resizes to the text layout and the swarm.
package control

import (
	"log"
	"time"

	"github.com/olivierh59500/textswarm/internal/config"
	"github.com/olivierh59500/textswarm/internal/glyph"
	"github.com/olivierh59500/textswarm/internal/render"
	"github.com/olivierh59500/textswarm/internal/surface"
	"github.com/olivierh59500/textswarm/internal/swarm"
)

// Controller keeps the swarm and the rasterizer in step with the store and
// the surface. Like everything else it runs on the game goroutine.
type Controller struct {
	store      *config.Store
	surface    *surface.Surface
	rasterizer *glyph.Rasterizer
	swarm      *swarm.Swarm
	loop       *render.Loop

	pointer *Throttle
	resize  *Debounce
	// Latest move the throttle held back, applied by Poll
	held    swarm.Pointer
	hasHeld bool
	cancels []func()
	now     func() time.Time
}

// New wires a controller and subscribes it to the store and the surface.
func New(store *config.Store, surf *surface.Surface, r *glyph.Rasterizer, sw *swarm.Swarm, loop *render.Loop) *Controller {
	c := &Controller{
		store:      store,
		surface:    surf,
		rasterizer: r,
		swarm:      sw,
		loop:       loop,
		pointer:    NewThrottle(PointerInterval),
		resize:     NewDebounce(ResizeDelay),
		now:        time.Now,
	}
	c.cancels = append(c.cancels,
		store.Subscribe(c.onChange),
		surf.OnResize(c.onResize),
	)
	return c
}

// Start fills the surface with particles and gives them their first targets.
func (c *Controller) Start() {
	cfg := c.store.Snapshot()
	c.swarm.SetTargetCount(cfg.MaxParticles)
	c.swarm.Initialize(cfg.MaxParticles, c.surface.Width(), c.surface.Height())
	c.Retarget()
	c.loop.Resume()
}

// Pause stops the loop.
func (c *Controller) Pause() { c.loop.Pause() }

// Resume restarts the loop.
func (c *Controller) Resume() { c.loop.Resume() }

// TogglePause flips the pause state and reports whether the loop is now paused.
func (c *Controller) TogglePause() bool {
	if c.loop.Paused() {
		c.loop.Resume()
	} else {
		c.loop.Pause()
	}
	return c.loop.Paused()
}

// Close removes every subscription. The controller must not be used afterwards.
func (c *Controller) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	c.resize.Cancel()
}

// Retarget samples the current text layout and reassigns the swarm to it.
func (c *Controller) Retarget() {
	w, h := c.surface.Width(), c.surface.Height()
	l := c.rasterizer.Layout(w, h)
	points, err := c.rasterizer.SamplePoints(l, c.swarm.TargetCount())
	if err != nil {
		log.Printf("sample %q: %v", c.rasterizer.Text(), err)
		return
	}
	c.swarm.Retarget(points)
	log.Printf("retarget: %d points at %.0fx%.0f, font %.1f, %d lines", len(points), w, h, l.FontSize, len(l.Lines))
}

// UpdateSizes applies the configured radius range to every particle.
func (c *Controller) UpdateSizes() {
	r := c.store.Snapshot().Particle.BaseRadius
	c.swarm.SetRadiusRange(r.Min, r.Max)
}

// UpdateColors applies the configured colour to every particle.
func (c *Controller) UpdateColors() {
	c.swarm.SetColor(config.ColorOr(c.store.Snapshot().Particle.Color, swarm.FallbackColor))
}

// UpdateShapes applies the configured shape to every particle.
func (c *Controller) UpdateShapes() {
	c.swarm.SetShape(c.store.Snapshot().Particle.Shape)
}

// PointerMove reports a pointer position in device pixels. Moves inside the
// surface are throttled; a held-back move is applied by a later Poll. Leaving
// the surface takes effect at once.
func (c *Controller) PointerMove(x, y float64) {
	w, h := c.surface.Width(), c.surface.Height()
	if x < 0 || y < 0 || x >= w || y >= h {
		c.PointerLeave()
		return
	}
	p := swarm.Pointer{X: x, Y: y, Active: true}
	if !c.pointer.Allow(c.now()) {
		c.held, c.hasHeld = p, true
		return
	}
	c.hasHeld = false
	c.loop.SetPointer(p)
}

// PointerLeave deactivates the pointer.
func (c *Controller) PointerLeave() {
	c.hasHeld = false
	p := c.loop.Pointer()
	if !p.Active {
		return
	}
	p.Active = false
	c.loop.SetPointer(p)
}

// Poll runs deferred work. It is called once per tick before the loop updates.
func (c *Controller) Poll() {
	if c.hasHeld && c.pointer.Allow(c.now()) {
		c.hasHeld = false
		c.loop.SetPointer(c.held)
	}
	if c.resize.Fire(c.now()) {
		c.rasterizer.Invalidate()
		c.Retarget()
	}
}

func (c *Controller) onResize(e surface.ResizeEvent) {
	log.Printf("resize: %.0fx%.0f -> %.0fx%.0f", e.OldWidth, e.OldHeight, e.NewWidth, e.NewHeight)
	c.swarm.Resize(e.OldWidth, e.OldHeight, e.NewWidth, e.NewHeight)
	c.rasterizer.Invalidate()
	c.resize.Trigger(c.now())
}

func (c *Controller) onChange(ch config.Change) {
	cfg := c.store.Snapshot()
	switch ch.Path {
	case config.PathAll:
		c.resetAll(cfg)
	case config.PathTextContent:
		c.rasterizer.SetText(cfg.Text.Content)
		c.Retarget()
	case config.PathTextFontSize:
		c.rasterizer.SetFontSize(cfg.Text.FontSize)
		c.Retarget()
	case config.PathMaxParticles:
		c.swarm.SetTargetCount(cfg.MaxParticles)
		c.Retarget()
	case config.PathParticleDensity:
		c.Retarget()
	case config.PathIsMobile:
		// The mobile profile may have clamped the count and the radius range
		c.swarm.SetTargetCount(cfg.MaxParticles)
		c.UpdateSizes()
		c.Retarget()
	case config.PathRadiusMin, config.PathRadiusMax:
		c.UpdateSizes()
	case config.PathParticleColor:
		c.UpdateColors()
	case config.PathParticleShape:
		c.UpdateShapes()
	case config.PathParticleTrail:
		c.swarm.SetTrail(cfg.Particle.Trail)
	case config.PathInitialVelocity:
		c.swarm.SetInitialVelocity(cfg.Particle.InitialVelocity)
	case config.PathAttractionForce, config.PathRepulsionForce, config.PathFriction,
		config.PathDrift, config.PathMouseRadius:
		c.swarm.SetPhysics(swarm.PhysicsFrom(cfg))
	}
}

// resetAll rebuilds the swarm and the layout from a fresh configuration
func (c *Controller) resetAll(cfg config.Config) {
	log.Printf("reset: %d particles, text %q", cfg.MaxParticles, cfg.Text.Content)

	p := swarm.ParamsFrom(cfg)
	c.swarm.SetRadiusRange(p.MinRadius, p.MaxRadius)
	c.swarm.SetColor(p.Color)
	c.swarm.SetShape(p.Shape)
	c.swarm.SetTrail(p.Trail)
	c.swarm.SetInitialVelocity(p.InitialVelocity)
	c.swarm.SetPhysics(p.Physics)
	c.swarm.SetTargetCount(cfg.MaxParticles)

	c.rasterizer.SetText(cfg.Text.Content)
	c.rasterizer.SetFontSize(cfg.Text.FontSize)

	c.swarm.Initialize(cfg.MaxParticles, c.surface.Width(), c.surface.Height())
	c.Retarget()
}
