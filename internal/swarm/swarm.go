// Package swarm simulates the particles that spell the text: target
// assignment, per-tick forces and boundary containment.
package swarm

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/olivierh59500/textswarm/internal/config"
	"github.com/olivierh59500/textswarm/internal/glyph"
)

// Simulation constants
const (
	// DistanceScale makes attraction grow by one coefficient per 100px of distance
	DistanceScale = 100.0
	// Epsilon is the shortest vector that still has a direction
	Epsilon = 1e-6
	// TrailLength is the number of past positions kept per particle
	TrailLength = 10
	// NoiseScale converts pixels to noise-field coordinates
	NoiseScale = 0.01
	// NoiseSpeed advances the noise field per tick
	NoiseSpeed = 0.01
)

// Pointer is the pointer state for one tick. Active means it is inside the surface.
type Pointer struct {
	X, Y   float64
	Active bool
}

// Particle is a single swarm member.
type Particle struct {
	X, Y             float64 // Position
	TargetX, TargetY float64 // Assigned target point
	VX, VY           float64 // Velocity
	Radius           float64
	Color            color.RGBA
	Shape            config.Shape
	Trail            []glyph.Point // Last positions, oldest first, when trails are on
}

// Swarm owns the particles. It is not safe for concurrent use.
type Swarm struct {
	particles     []Particle
	targetCount   int
	params        Params
	width, height float64
	tick          int64
	rng           *rand.Rand
	noise         *perlin.Perlin
}

// New creates an empty swarm. targetCount is the particle budget handed to the
// sampler on every retarget.
func New(params Params, targetCount int, rng *rand.Rand) *Swarm {
	return &Swarm{
		params:      params.sanitize(),
		targetCount: max(targetCount, 0),
		rng:         rng,
		noise:       perlin.NewPerlin(2, 2, 3, rng.Int63()),
	}
}

// Initialize replaces the population with count particles at random positions
// inside a width x height surface.
func (s *Swarm) Initialize(count int, width, height float64) {
	s.width, s.height = width, height
	s.particles = make([]Particle, 0, max(count, 0))
	for i := 0; i < count; i++ {
		s.particles = append(s.particles, s.spawn())
	}
}

// Particles returns the live particles. The slice is replaced by Retarget and
// Initialize, so callers must not keep it across those calls.
func (s *Swarm) Particles() []Particle { return s.particles }

// Len returns the number of particles.
func (s *Swarm) Len() int { return len(s.particles) }

// TargetCount returns the particle budget used when sampling target points.
func (s *Swarm) TargetCount() int { return s.targetCount }

// SetTargetCount changes the particle budget. It takes effect on the next retarget.
func (s *Swarm) SetTargetCount(n int) { s.targetCount = max(n, 0) }

// Params returns the parameters currently in use.
func (s *Swarm) Params() Params { return s.params }

// Bounds returns the surface size the swarm last worked with.
func (s *Swarm) Bounds() (float64, float64) { return s.width, s.height }

// Retarget assigns every particle a distinct target point.
//
// Particles are visited in order; each takes the nearest point no earlier
// particle took, ties going to the first point found. This is a greedy
// O(P·T) approximation, not a minimum-cost matching. Surplus particles are
// dropped from the tail and missing ones are spawned at random positions on
// the unmatched points, so afterwards Len() == len(points).
//
// An empty point set leaves the swarm untouched.
func (s *Swarm) Retarget(points []glyph.Point) {
	if len(points) == 0 {
		return
	}

	used := make([]bool, len(points))
	next := make([]Particle, 0, len(points))

	matched := min(len(s.particles), len(points))
	for _, p := range s.particles[:matched] {
		j := nearest(p.X, p.Y, points, used)
		used[j] = true
		p.TargetX, p.TargetY = points[j].X, points[j].Y
		next = append(next, p)
	}

	for j, pt := range points {
		if len(next) == len(points) {
			break
		}
		if used[j] {
			continue
		}
		used[j] = true
		p := s.spawn()
		p.TargetX, p.TargetY = pt.X, pt.Y
		next = append(next, p)
	}

	s.particles = next
}

// nearest returns the index of the unused point closest to (x, y)
func nearest(x, y float64, points []glyph.Point, used []bool) int {
	best := -1
	bestDist := math.Inf(1)
	for j, pt := range points {
		if used[j] {
			continue
		}
		dx, dy := x-pt.X, y-pt.Y
		if d := dx*dx + dy*dy; d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}

// Step advances every particle by one tick on a width x height surface.
func (s *Swarm) Step(width, height float64, ptr Pointer) {
	s.width, s.height = width, height
	for i := range s.particles {
		s.stepParticle(&s.particles[i], ptr)
	}
	s.tick++
}

func (s *Swarm) stepParticle(p *Particle, ptr Pointer) {
	ph := s.params.Physics

	// Attraction grows with distance to the target
	dx, dy := p.TargetX-p.X, p.TargetY-p.Y
	if d := math.Hypot(dx, dy); d > Epsilon {
		f := ph.Attraction * (d / DistanceScale)
		p.VX += dx / d * f
		p.VY += dy / d * f
	}

	// Linear falloff repulsion inside the pointer radius
	if ptr.Active {
		dx, dy := ptr.X-p.X, ptr.Y-p.Y
		if d := math.Hypot(dx, dy); d > Epsilon && d < ph.PointerRadius {
			f := ph.Repulsion * (1 - d/ph.PointerRadius)
			p.VX -= dx / d * f
			p.VY -= dy / d * f
		}
	}

	if ph.Drift > 0 {
		n := s.noise.Noise3D(p.X*NoiseScale, p.Y*NoiseScale, float64(s.tick)*NoiseSpeed)
		angle := (n + 1) * math.Pi
		p.VX += math.Cos(angle) * ph.Drift
		p.VY += math.Sin(angle) * ph.Drift
	}

	p.X += p.VX
	p.Y += p.VY

	p.X, p.VX = bounce(p.X, p.VX, p.Radius, s.width)
	p.Y, p.VY = bounce(p.Y, p.VY, p.Radius, s.height)

	p.VX *= ph.Friction
	p.VY *= ph.Friction

	if s.params.Trail {
		p.Trail = append(p.Trail, glyph.Point{X: p.X, Y: p.Y})
		if len(p.Trail) > TrailLength {
			p.Trail = p.Trail[1:]
		}
	}
}

// bounce clamps pos into [r, limit-r] and turns the velocity inward when the
// clamp moved it. A surface narrower than 2r centres the particle.
func bounce(pos, vel, r, limit float64) (float64, float64) {
	lo, hi := r, limit-r
	switch {
	case hi < lo:
		return limit / 2, vel
	case pos < lo:
		return lo, math.Abs(vel)
	case pos > hi:
		return hi, -math.Abs(vel)
	}
	return pos, vel
}

// clampAxis clamps pos into [r, limit-r], centring when the range is empty
func clampAxis(pos, r, limit float64) float64 {
	p, _ := bounce(pos, 0, r, limit)
	return p
}

// Resize rescales positions, targets and trails from the old surface to the
// new one and clamps positions into the new bounds. A non-positive old
// dimension leaves that axis unscaled.
func (s *Swarm) Resize(oldW, oldH, newW, newH float64) {
	sx, sy := 1.0, 1.0
	if oldW > 0 {
		sx = newW / oldW
	}
	if oldH > 0 {
		sy = newH / oldH
	}
	s.width, s.height = newW, newH

	for i := range s.particles {
		p := &s.particles[i]
		p.X *= sx
		p.Y *= sy
		p.TargetX *= sx
		p.TargetY *= sy
		for k := range p.Trail {
			p.Trail[k].X *= sx
			p.Trail[k].Y *= sy
		}
		p.X = clampAxis(p.X, p.Radius, newW)
		p.Y = clampAxis(p.Y, p.Radius, newH)
	}
}

// SetRadiusRange redraws every particle's radius from [minR, maxR].
func (s *Swarm) SetRadiusRange(minR, maxR float64) {
	s.params.MinRadius, s.params.MaxRadius = minR, maxR
	s.params = s.params.sanitize()
	for i := range s.particles {
		s.particles[i].Radius = s.randomRadius()
	}
}

// SetColor recolours every particle.
func (s *Swarm) SetColor(c color.RGBA) {
	s.params.Color = c
	s.params = s.params.sanitize()
	for i := range s.particles {
		s.particles[i].Color = s.params.Color
	}
}

// SetShape reshapes every particle.
func (s *Swarm) SetShape(shape config.Shape) {
	s.params.Shape = shape
	s.params = s.params.sanitize()
	for i := range s.particles {
		s.particles[i].Shape = s.params.Shape
	}
}

// SetTrail turns position trails on or off. Turning them off drops recorded trails.
func (s *Swarm) SetTrail(on bool) {
	s.params.Trail = on
	if on {
		return
	}
	for i := range s.particles {
		s.particles[i].Trail = nil
	}
}

// SetPhysics replaces the force coefficients.
func (s *Swarm) SetPhysics(ph Physics) {
	s.params.Physics = ph.sanitize()
}

// SetInitialVelocity changes the speed range of particles spawned from now on.
func (s *Swarm) SetInitialVelocity(v float64) {
	s.params.InitialVelocity = v
	s.params = s.params.sanitize()
}

// spawn creates a particle at a random position inside the current bounds
func (s *Swarm) spawn() Particle {
	r := s.randomRadius()
	x := clampAxis(s.rng.Float64()*s.width, r, s.width)
	y := clampAxis(s.rng.Float64()*s.height, r, s.height)
	v0 := s.params.InitialVelocity
	return Particle{
		X:       x,
		Y:       y,
		TargetX: x,
		TargetY: y,
		VX:      s.rng.Float64()*2*v0 - v0,
		VY:      s.rng.Float64()*2*v0 - v0,
		Radius:  r,
		Color:   s.params.Color,
		Shape:   s.params.Shape,
	}
}

func (s *Swarm) randomRadius() float64 {
	return s.params.MinRadius + s.rng.Float64()*(s.params.MaxRadius-s.params.MinRadius)
}
