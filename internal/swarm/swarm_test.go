package swarm

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/olivierh59500/textswarm/internal/config"
	"github.com/olivierh59500/textswarm/internal/glyph"
)

func testParams() Params {
	return ParamsFrom(config.Defaults(false))
}

func newTestSwarm(t *testing.T, p Params, count int, w, h float64) *Swarm {
	t.Helper()
	s := New(p, count, rand.New(rand.NewSource(1)))
	s.Initialize(count, w, h)
	return s
}

// gridPoints returns n distinct points laid out on a grid inside w x h
func gridPoints(n int, w, h float64) []glyph.Point {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	pts := make([]glyph.Point, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, glyph.Point{
			X: w * (float64(i%cols) + 0.5) / float64(cols),
			Y: h * (float64(i/cols) + 0.5) / float64(cols),
		})
	}
	return pts
}

func inBounds(p Particle, w, h float64) bool {
	const tol = 1e-9
	return p.X >= p.Radius-tol && p.X <= w-p.Radius+tol &&
		p.Y >= p.Radius-tol && p.Y <= h-p.Radius+tol
}

func TestInitialize(t *testing.T) {
	p := testParams()
	s := newTestSwarm(t, p, 300, 800, 600)

	if s.Len() != 300 {
		t.Fatalf("Len = %d, want 300", s.Len())
	}
	if w, h := s.Bounds(); w != 800 || h != 600 {
		t.Errorf("Bounds = %gx%g, want 800x600", w, h)
	}
	for i, pt := range s.Particles() {
		if !inBounds(pt, 800, 600) {
			t.Errorf("particle %d at (%g, %g) out of bounds", i, pt.X, pt.Y)
		}
		if math.Abs(pt.VX) > p.InitialVelocity || math.Abs(pt.VY) > p.InitialVelocity {
			t.Errorf("particle %d velocity (%g, %g) exceeds %g", i, pt.VX, pt.VY, p.InitialVelocity)
		}
		if pt.Radius < p.MinRadius || pt.Radius > p.MaxRadius {
			t.Errorf("particle %d radius %g outside [%g, %g]", i, pt.Radius, p.MinRadius, p.MaxRadius)
		}
		if pt.Color != p.Color || pt.Shape != p.Shape {
			t.Errorf("particle %d look = %v/%s", i, pt.Color, pt.Shape)
		}
	}
}

func TestRetargetCountAndUniqueness(t *testing.T) {
	for _, particles := range []int{0, 1, 7, 50, 200} {
		for _, targets := range []int{1, 7, 50, 120} {
			t.Run(fmt.Sprintf("P%d_T%d", particles, targets), func(t *testing.T) {
				s := newTestSwarm(t, testParams(), particles, 800, 600)
				points := gridPoints(targets, 800, 600)
				s.Retarget(points)

				if s.Len() != targets {
					t.Fatalf("Len = %d, want %d", s.Len(), targets)
				}
				valid := make(map[glyph.Point]bool, len(points))
				for _, pt := range points {
					valid[pt] = true
				}
				seen := make(map[glyph.Point]bool, targets)
				for i, p := range s.Particles() {
					key := glyph.Point{X: p.TargetX, Y: p.TargetY}
					if !valid[key] {
						t.Fatalf("particle %d target %+v is not a sampled point", i, key)
					}
					if seen[key] {
						t.Fatalf("target %+v assigned twice", key)
					}
					seen[key] = true
				}
			})
		}
	}
}

func TestRetargetGreedyOrder(t *testing.T) {
	s := newTestSwarm(t, testParams(), 0, 100, 100)
	s.particles = []Particle{
		{X: 10, Y: 10, Radius: 1},
		{X: 12, Y: 10, Radius: 1},
	}
	points := []glyph.Point{{X: 50, Y: 50}, {X: 11, Y: 10}, {X: 20, Y: 10}}
	s.Retarget(points)

	got := s.Particles()
	// First particle takes the nearest point; the second gets what is left
	if got[0].TargetX != 11 || got[1].TargetX != 20 {
		t.Errorf("targets = (%g, %g), want (11, 20)", got[0].TargetX, got[1].TargetX)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	if got[2].TargetX != 50 || got[2].TargetY != 50 {
		t.Errorf("spawned particle target = (%g, %g), want (50, 50)", got[2].TargetX, got[2].TargetY)
	}
	// Surviving particles keep their position
	if got[0].X != 10 || got[1].X != 12 {
		t.Errorf("matched particles moved: %g, %g", got[0].X, got[1].X)
	}
}

func TestRetargetTieGoesToFirstPoint(t *testing.T) {
	s := newTestSwarm(t, testParams(), 0, 100, 100)
	s.particles = []Particle{{X: 50, Y: 50, Radius: 1}}
	s.Retarget([]glyph.Point{{X: 60, Y: 50}, {X: 50, Y: 60}, {X: 40, Y: 50}})

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	p := s.Particles()[0]
	if p.TargetX != 60 || p.TargetY != 50 {
		t.Errorf("tie resolved to (%g, %g), want first point (60, 50)", p.TargetX, p.TargetY)
	}
}

func TestRetargetTruncatesTail(t *testing.T) {
	s := newTestSwarm(t, testParams(), 10, 400, 400)
	head := s.Particles()[0]
	s.Retarget(gridPoints(3, 400, 400))

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	if s.Particles()[0].X != head.X || s.Particles()[0].Y != head.Y {
		t.Error("head particle not preserved")
	}
}

func TestRetargetEmptyIsNoop(t *testing.T) {
	s := newTestSwarm(t, testParams(), 20, 400, 400)
	before := append([]Particle(nil), s.Particles()...)

	s.Retarget(nil)
	s.Retarget([]glyph.Point{})

	if s.Len() != len(before) {
		t.Fatalf("Len = %d, want %d", s.Len(), len(before))
	}
	for i, p := range s.Particles() {
		if p.X != before[i].X || p.TargetX != before[i].TargetX {
			t.Fatalf("particle %d changed", i)
		}
	}
}

func TestStepKeepsParticlesInBounds(t *testing.T) {
	const w, h = 320.0, 240.0
	p := testParams()
	p.Physics.Attraction = 0.5
	p.Physics.Repulsion = 5
	p.Physics.Drift = 0.3
	s := newTestSwarm(t, p, 150, w, h)

	// Targets outside the surface pull particles against every wall
	points := make([]glyph.Point, 150)
	rng := rand.New(rand.NewSource(7))
	for i := range points {
		points[i] = glyph.Point{X: rng.Float64()*3*w - w, Y: rng.Float64()*3*h - h}
	}
	s.Retarget(points)

	for tick := 0; tick < 500; tick++ {
		ptr := Pointer{X: float64(tick % int(w)), Y: h / 2, Active: tick%3 != 0}
		s.Step(w, h, ptr)
		for i, pt := range s.Particles() {
			if !inBounds(pt, w, h) {
				t.Fatalf("tick %d: particle %d at (%g, %g) r=%g out of bounds", tick, i, pt.X, pt.Y, pt.Radius)
			}
			if math.IsNaN(pt.X) || math.IsNaN(pt.VX) {
				t.Fatalf("tick %d: particle %d is NaN", tick, i)
			}
		}
	}
}

func TestFrictionDecay(t *testing.T) {
	p := testParams()
	p.Physics.Attraction = 0
	p.Physics.Friction = 0.9
	s := newTestSwarm(t, p, 0, 400, 400)
	s.particles = []Particle{{X: 200, Y: 200, TargetX: 10, TargetY: 10, VX: 6, VY: -4, Radius: 2}}

	speed := func() float64 {
		q := s.Particles()[0]
		return math.Hypot(q.VX, q.VY)
	}
	prev := speed()
	for tick := 0; tick < 300; tick++ {
		s.Step(400, 400, Pointer{})
		cur := speed()
		if cur > prev+1e-12 {
			t.Fatalf("tick %d: speed rose from %g to %g", tick, prev, cur)
		}
		prev = cur
	}
	if prev > 1e-9 {
		t.Errorf("speed after 300 ticks = %g, want ~0", prev)
	}
}

func TestAttractionMovesTowardTarget(t *testing.T) {
	s := newTestSwarm(t, testParams(), 0, 800, 600)
	s.particles = []Particle{{X: 100, Y: 300, TargetX: 500, TargetY: 300, Radius: 1}}

	s.Step(800, 600, Pointer{})
	p := s.Particles()[0]
	if p.X <= 100 {
		t.Errorf("X = %g, want > 100", p.X)
	}
	// 0.05 * 400/100 = 0.2 px/tick before friction
	if want := 0.2 * 0.97; math.Abs(p.VX-want) > 1e-9 {
		t.Errorf("VX = %g, want %g", p.VX, want)
	}
}

func TestPointerRepulsion(t *testing.T) {
	p := testParams()
	p.Physics.Attraction = 0
	s := newTestSwarm(t, p, 0, 800, 600)

	s.particles = []Particle{{X: 400, Y: 300, TargetX: 400, TargetY: 300, Radius: 2}}
	ptr := Pointer{X: 390, Y: 296, Active: true}
	before := math.Hypot(400-ptr.X, 300-ptr.Y)

	s.Step(800, 600, ptr)
	q := s.Particles()[0]
	after := math.Hypot(q.X-ptr.X, q.Y-ptr.Y)
	if after <= before {
		t.Errorf("distance to pointer %g -> %g, want increase", before, after)
	}

	// An inactive pointer exerts nothing
	s.particles = []Particle{{X: 400, Y: 300, TargetX: 400, TargetY: 300, Radius: 2}}
	ptr.Active = false
	s.Step(800, 600, ptr)
	if q := s.Particles()[0]; q.X != 400 || q.Y != 300 {
		t.Errorf("inactive pointer moved particle to (%g, %g)", q.X, q.Y)
	}

	// Outside the radius nothing happens either
	s.particles = []Particle{{X: 400, Y: 300, TargetX: 400, TargetY: 300, Radius: 2}}
	s.Step(800, 600, Pointer{X: 400, Y: 300 + p.Physics.PointerRadius + 1, Active: true})
	if q := s.Particles()[0]; q.X != 400 || q.Y != 300 {
		t.Errorf("distant pointer moved particle to (%g, %g)", q.X, q.Y)
	}
}

func TestZeroDistanceIsNoForce(t *testing.T) {
	s := newTestSwarm(t, testParams(), 0, 800, 600)
	s.particles = []Particle{{X: 400, Y: 300, TargetX: 400, TargetY: 300, Radius: 2}}

	s.Step(800, 600, Pointer{X: 400, Y: 300, Active: true})
	q := s.Particles()[0]
	for _, v := range []float64{q.X, q.Y, q.VX, q.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite state %+v", q)
		}
	}
	if q.X != 400 || q.Y != 300 || q.VX != 0 || q.VY != 0 {
		t.Errorf("particle moved without a defined force: %+v", q)
	}
}

func TestBounceFlipsVelocity(t *testing.T) {
	p := testParams()
	p.Physics.Attraction = 0
	p.Physics.Friction = 1
	s := newTestSwarm(t, p, 0, 100, 100)
	s.particles = []Particle{{X: 97, Y: 50, VX: 5, Radius: 2, TargetX: 97, TargetY: 50}}

	s.Step(100, 100, Pointer{})
	q := s.Particles()[0]
	if q.X != 98 {
		t.Errorf("X = %g, want clamped to 98", q.X)
	}
	if q.VX != -5 {
		t.Errorf("VX = %g, want -5", q.VX)
	}
}

func TestNarrowSurfaceCentres(t *testing.T) {
	s := newTestSwarm(t, testParams(), 0, 3, 3)
	s.particles = []Particle{{X: 0, Y: 3, Radius: 2}}
	s.Step(3, 3, Pointer{})
	q := s.Particles()[0]
	if q.X != 1.5 || q.Y != 1.5 {
		t.Errorf("position = (%g, %g), want centre (1.5, 1.5)", q.X, q.Y)
	}
}

func TestResizeRoundTrip(t *testing.T) {
	s := newTestSwarm(t, testParams(), 200, 800, 600)
	s.Retarget(gridPoints(200, 800, 600))
	before := append([]Particle(nil), s.Particles()...)

	s.Resize(800, 600, 1600, 1200)
	s.Resize(1600, 1200, 800, 600)

	for i, p := range s.Particles() {
		if math.Abs(p.X-before[i].X) > 1e-9 || math.Abs(p.Y-before[i].Y) > 1e-9 {
			t.Fatalf("particle %d moved from (%g, %g) to (%g, %g)", i, before[i].X, before[i].Y, p.X, p.Y)
		}
		if math.Abs(p.TargetX-before[i].TargetX) > 1e-9 || math.Abs(p.TargetY-before[i].TargetY) > 1e-9 {
			t.Fatalf("particle %d target drifted", i)
		}
	}
}

func TestResizeScalesAndClamps(t *testing.T) {
	s := newTestSwarm(t, testParams(), 0, 800, 600)
	s.particles = []Particle{{X: 400, Y: 300, TargetX: 200, TargetY: 100, Radius: 2, Trail: []glyph.Point{{X: 400, Y: 300}}}}

	s.Resize(800, 600, 400, 300)
	p := s.Particles()[0]
	if p.X != 200 || p.Y != 150 || p.TargetX != 100 || p.TargetY != 50 {
		t.Errorf("after halving: %+v", p)
	}
	if p.Trail[0] != (glyph.Point{X: 200, Y: 150}) {
		t.Errorf("trail = %+v", p.Trail)
	}

	// Unknown old size only clamps
	s.particles = []Particle{{X: 700, Y: 500, Radius: 2}}
	s.Resize(0, 0, 100, 100)
	p = s.Particles()[0]
	if p.X != 98 || p.Y != 98 {
		t.Errorf("clamp-only resize: (%g, %g), want (98, 98)", p.X, p.Y)
	}
}

func TestMutatorsAreRetroactive(t *testing.T) {
	s := newTestSwarm(t, testParams(), 50, 400, 400)

	s.SetRadiusRange(3, 5)
	s.SetColor(color.RGBA{G: 0xff, A: 0xff})
	s.SetShape(config.ShapeTriangle)
	for i, p := range s.Particles() {
		if p.Radius < 3 || p.Radius > 5 {
			t.Errorf("particle %d radius %g outside [3, 5]", i, p.Radius)
		}
		if p.Color != (color.RGBA{G: 0xff, A: 0xff}) {
			t.Errorf("particle %d color %v", i, p.Color)
		}
		if p.Shape != config.ShapeTriangle {
			t.Errorf("particle %d shape %s", i, p.Shape)
		}
	}

	// New particles follow the new look too
	s.Retarget(gridPoints(80, 400, 400))
	last := s.Particles()[79]
	if last.Shape != config.ShapeTriangle || last.Radius < 3 || last.Radius > 5 {
		t.Errorf("spawned particle = %+v", last)
	}

	s.SetShape("hexagon")
	if s.Params().Shape != config.ShapeCircle {
		t.Errorf("invalid shape kept as %s", s.Params().Shape)
	}
}

func TestTrail(t *testing.T) {
	p := testParams()
	p.Trail = true
	s := newTestSwarm(t, p, 5, 400, 400)

	for i := 0; i < TrailLength+5; i++ {
		s.Step(400, 400, Pointer{})
	}
	for i, q := range s.Particles() {
		if len(q.Trail) != TrailLength {
			t.Errorf("particle %d trail length %d, want %d", i, len(q.Trail), TrailLength)
		}
		last := q.Trail[len(q.Trail)-1]
		if last.X != q.X || last.Y != q.Y {
			t.Errorf("particle %d newest trail point %+v != position", i, last)
		}
	}

	s.SetTrail(false)
	s.Step(400, 400, Pointer{})
	for i, q := range s.Particles() {
		if len(q.Trail) != 0 {
			t.Errorf("particle %d kept trail after disabling", i)
		}
	}
}

func TestDriftMovesRestingParticle(t *testing.T) {
	p := testParams()
	p.Physics.Drift = 0.5
	s := newTestSwarm(t, p, 0, 400, 400)
	s.particles = []Particle{{X: 200, Y: 200, TargetX: 200, TargetY: 200, Radius: 1}}

	s.Step(400, 400, Pointer{})
	q := s.Particles()[0]
	if got := math.Hypot(q.VX, q.VY); math.Abs(got-0.5*0.97) > 1e-9 {
		t.Errorf("speed = %g, want drift %g after friction", got, 0.5*0.97)
	}
}

func TestParamsSanitize(t *testing.T) {
	p := Params{
		MinRadius:       math.NaN(),
		MaxRadius:       -1,
		InitialVelocity: math.Inf(1),
		Shape:           "blob",
		Physics: Physics{
			Attraction:    math.NaN(),
			Repulsion:     -3,
			Friction:      1.7,
			PointerRadius: math.Inf(-1),
		},
	}.sanitize()

	want := Params{
		MinRadius:       FallbackMinRadius,
		MaxRadius:       FallbackMaxRadius,
		InitialVelocity: FallbackInitialVelocity,
		Color:           FallbackColor,
		Shape:           config.ShapeCircle,
		Physics: Physics{
			Attraction:    FallbackAttraction,
			Repulsion:     FallbackRepulsion,
			Friction:      FallbackFriction,
			PointerRadius: FallbackPointerRadius,
		},
	}
	if p != want {
		t.Errorf("sanitize = %+v, want %+v", p, want)
	}
}

func TestScenarioSampleAndRetarget(t *testing.T) {
	r, err := glyph.NewRasterizer("AB", 100)
	if err != nil {
		t.Fatal(err)
	}
	points, err := r.SamplePoints(r.Layout(800, 600), 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) == 0 {
		t.Fatal("no points sampled")
	}

	s := newTestSwarm(t, testParams(), 50, 800, 600)
	s.Retarget(points)

	if s.Len() != len(points) {
		t.Fatalf("Len = %d, want %d", s.Len(), len(points))
	}
	seen := map[glyph.Point]bool{}
	for _, p := range s.Particles() {
		key := glyph.Point{X: p.TargetX, Y: p.TargetY}
		if seen[key] {
			t.Fatalf("duplicate target %+v", key)
		}
		seen[key] = true
	}
}
