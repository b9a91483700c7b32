package main

import (
	"fmt"
	"log"
	"math"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/olivierh59500/textswarm/internal/config"
	"github.com/olivierh59500/textswarm/internal/control"
	"github.com/olivierh59500/textswarm/internal/render"
	"github.com/olivierh59500/textswarm/internal/surface"
)

// Keyboard panel steps
const (
	HueStep          = 30.0
	ParticleStep     = 500
	MinParticleCount = 500
	FrictionStep     = 0.01
	FontSizeStep     = 5.0
)

// Game is the ebiten host: it turns input into configuration changes and
// hands the frame to the render loop.
type Game struct {
	store   *config.Store
	surface *surface.Surface
	loop    *render.Loop
	ctl     *control.Controller
	canvas  *render.EbitenCanvas

	ShowOverlay    bool
	quit           bool
	PrevMX, PrevMY int
}

// NewGame creates the host for an already started controller.
func NewGame(store *config.Store, surf *surface.Surface, loop *render.Loop, ctl *control.Controller, canvas *render.EbitenCanvas) *Game {
	return &Game{
		store:   store,
		surface: surf,
		loop:    loop,
		ctl:     ctl,
		canvas:  canvas,
		PrevMX:  -1,
		PrevMY:  -1,
	}
}

// Update is called each tick by Ebitengine
func (g *Game) Update() error {
	g.handleInput()
	if g.quit {
		return ebiten.Termination
	}

	g.ctl.Poll()
	g.loop.Update()
	return nil
}

// Draw is called each frame by Ebitengine
func (g *Game) Draw(screen *ebiten.Image) {
	g.canvas.Target(screen)
	g.loop.Draw(g.canvas)

	if g.ShowOverlay {
		ebitenutil.DebugPrintAt(screen, g.overlayText(), 8, 8)
	}
}

// Layout sizes the screen in device pixels so particles stay crisp on high-DPI displays
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.surface.Resize(outsideWidth, outsideHeight, ebiten.Monitor().DeviceScaleFactor())
	return g.surface.DeviceSize()
}

// handleInput processes keyboard, mouse and touch input
func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.quit = true
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		paused := g.ctl.TogglePause()
		log.Printf("paused: %v", paused)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.store.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.ShowOverlay = !g.ShowOverlay
	}

	cfg := g.store.Snapshot()
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.set(config.PathParticleShape, string(cycle(config.Shapes, cfg.Particle.Shape)))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.set(config.PathTextAnimation, string(cycle(config.Animations, cfg.Text.Animation)))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.set(config.PathParticleColor, config.RotateHue(cfg.Particle.Color, HueStep))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.set(config.PathParticleTrail, !cfg.Particle.Trail)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.set(config.PathParticleGlow, !cfg.Particle.Glow)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.set(config.PathMaxParticles, cfg.MaxParticles+ParticleStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.set(config.PathMaxParticles, max(cfg.MaxParticles-ParticleStep, MinParticleCount))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		g.set(config.PathFriction, stepFriction(cfg.Animation.Friction, FrictionStep))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		g.set(config.PathFriction, stepFriction(cfg.Animation.Friction, -FrictionStep))
	}

	// Font size follows the wheel
	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		size := math.Max(cfg.Text.FontSize+math.Copysign(FontSizeStep, wheelY), 0)
		g.set(config.PathTextFontSize, size)
	}

	g.handlePointer()
}

// handlePointer forwards cursor and touch positions to the controller
func (g *Game) handlePointer() {
	if !ebiten.IsFocused() {
		g.ctl.PointerLeave()
		return
	}

	touches := ebiten.AppendTouchIDs(nil)
	if len(touches) > 0 {
		x, y := ebiten.TouchPosition(touches[0])
		g.ctl.PointerMove(float64(x), float64(y))
		return
	}
	if len(inpututil.AppendJustReleasedTouchIDs(nil)) > 0 {
		g.ctl.PointerLeave()
		return
	}

	mx, my := ebiten.CursorPosition()
	if mx != g.PrevMX || my != g.PrevMY {
		g.ctl.PointerMove(float64(mx), float64(my))
	}
	g.PrevMX, g.PrevMY = mx, my
}

func (g *Game) set(path string, v any) {
	if err := g.store.Set(path, v); err != nil {
		log.Printf("set %s: %v", path, err)
	}
}

func (g *Game) overlayText() string {
	cfg := g.store.Snapshot()
	w, h := g.surface.DeviceSize()

	var b strings.Builder
	fmt.Fprintf(&b, "TPS %.0f  FPS %.0f  %dx%d @%.2g\n", ebiten.ActualTPS(), ebiten.ActualFPS(), w, h, g.surface.Scale())
	fmt.Fprintf(&b, "particles %d (max %d)  paused %v\n", g.loop.Particles(), cfg.MaxParticles, g.loop.Paused())
	fmt.Fprintf(&b, "shape %s  color %s  animation %s\n", cfg.Particle.Shape, cfg.Particle.Color, cfg.Text.Animation)
	fmt.Fprintf(&b, "friction %.2f  trail %v  glow %v\n", cfg.Animation.Friction, cfg.Particle.Trail, cfg.Particle.Glow)
	b.WriteString("\nSPACE pause  R reset  S shape  A animation  C hue\n")
	b.WriteString("T trail  G glow  UP/DOWN particles  LEFT/RIGHT friction\n")
	b.WriteString("WHEEL font size  H overlay  ESC/Q quit")
	return b.String()
}

// cycle returns the element after cur in list, wrapping around
func cycle[T comparable](list []T, cur T) T {
	i := slices.Index(list, cur)
	return list[(i+1)%len(list)]
}

// stepFriction moves f by d, kept in [0, 1] and rounded to the step
func stepFriction(f, d float64) float64 {
	f = math.Round((f+d)*100) / 100
	return math.Min(math.Max(f, 0), 1)
}
