// Command textswarm spells a line of text with a swarm of particles that
// scatter around the pointer and settle back into the glyphs.
package main

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"

	"github.com/olivierh59500/textswarm/internal/config"
	"github.com/olivierh59500/textswarm/internal/control"
	"github.com/olivierh59500/textswarm/internal/glyph"
	"github.com/olivierh59500/textswarm/internal/render"
	"github.com/olivierh59500/textswarm/internal/surface"
	"github.com/olivierh59500/textswarm/internal/swarm"
)

var version = "dev"

// options holds the parsed command line
type options struct {
	text      string
	particles int
	width     int
	height    int
	preset    string
	shape     string
	color     string
	animation string
	mobile    bool
	debug     bool
	version   bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("textswarm", pflag.ContinueOnError)
	opts, err := parseFlags(fs, args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if opts.version {
		fmt.Printf("textswarm version %s\n", version)
		return 0
	}

	if f := setupLogging(opts.debug); f != nil {
		defer f.Close()
	}

	store, err := buildStore(fs, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg := store.Snapshot()

	r, err := glyph.NewRasterizer(cfg.Text.Content, cfg.Text.FontSize)
	if err != nil {
		log.Printf("rasterizer: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	canvas, err := render.NewEbitenCanvas()
	if err != nil {
		log.Printf("canvas: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Layout supplies the real device scale on the first frame
	surf := surface.New(opts.width, opts.height, 1)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sw := swarm.New(swarm.ParamsFrom(cfg), cfg.MaxParticles, rng)
	loop := render.NewLoop(sw, r, surf, store)
	ctl := control.New(store, surf, r, sw, loop)
	defer ctl.Close()
	ctl.Start()

	ebiten.SetWindowSize(opts.width, opts.height)
	ebiten.SetWindowTitle("textswarm")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	log.Printf("starting: %dx%d, %d particles, text %q", opts.width, opts.height, cfg.MaxParticles, cfg.Text.Content)
	if err := ebiten.RunGame(NewGame(store, surf, loop, ctl, canvas)); err != nil {
		log.Printf("run: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(fs *pflag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVarP(&o.text, "text", "t", "", "Text to spell")
	fs.IntVarP(&o.particles, "particles", "n", 0, "Maximum number of particles")
	fs.IntVar(&o.width, "width", 800, "Window width in logical pixels")
	fs.IntVar(&o.height, "height", 600, "Window height in logical pixels")
	fs.StringVarP(&o.preset, "config", "c", "", "YAML preset to load over the defaults")
	fs.StringVar(&o.shape, "shape", "", "Particle shape: circle, square, triangle")
	fs.StringVar(&o.color, "color", "", "Particle colour as #rrggbb")
	fs.StringVar(&o.animation, "animation", "", "Text animation: none, pulse, rotate")
	fs.BoolVar(&o.mobile, "mobile", false, "Use the mobile profile")
	fs.BoolVar(&o.debug, "debug", false, "Write logs to logs/textswarm.log")
	fs.BoolVarP(&o.version, "version", "v", false, "Show version information")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.width <= 0 || o.height <= 0 {
		return o, fmt.Errorf("window size %dx%d must be positive", o.width, o.height)
	}
	if fs.NArg() > 0 && o.text == "" {
		o.text = fs.Arg(0)
	}
	return o, nil
}

// buildStore layers defaults, the preset file and explicit flags, in that order
func buildStore(fs *pflag.FlagSet, o options) (*config.Store, error) {
	store := config.NewStore(o.mobile || config.DetectMobile())
	if o.preset != "" {
		if err := store.LoadFile(o.preset); err != nil {
			return nil, err
		}
	}

	overrides := []struct {
		flag  string
		path  string
		value any
	}{
		{"particles", config.PathMaxParticles, o.particles},
		{"shape", config.PathParticleShape, o.shape},
		{"color", config.PathParticleColor, o.color},
		{"animation", config.PathTextAnimation, o.animation},
		{"mobile", config.PathIsMobile, o.mobile},
	}
	for _, ov := range overrides {
		if !fs.Changed(ov.flag) {
			continue
		}
		if err := store.Set(ov.path, ov.value); err != nil {
			return nil, fmt.Errorf("--%s: %w", ov.flag, err)
		}
	}
	if o.text != "" {
		if err := store.Set(config.PathTextContent, o.text); err != nil {
			return nil, fmt.Errorf("--text: %w", err)
		}
	}
	return store, nil
}
