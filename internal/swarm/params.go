package swarm

import (
	"image/color"
	"math"

	"github.com/olivierh59500/textswarm/internal/config"
)

// Fallbacks applied when a coefficient is missing, NaN or out of range
const (
	FallbackAttraction      = 0.05
	FallbackRepulsion       = 0.2
	FallbackFriction        = 0.97
	FallbackPointerRadius   = 30.0
	FallbackMinRadius       = 1.0
	FallbackMaxRadius       = 2.5
	FallbackInitialVelocity = 0.5
)

// FallbackColor is used when the configured colour does not parse
var FallbackColor = color.RGBA{R: 0xff, A: 0xff}

// Physics holds the per-tick force coefficients.
type Physics struct {
	Attraction    float64
	Repulsion     float64
	Friction      float64
	PointerRadius float64
	Drift         float64
}

// Params is the snapshot of configuration the swarm runs on.
type Params struct {
	MinRadius       float64
	MaxRadius       float64
	InitialVelocity float64
	Color           color.RGBA
	Shape           config.Shape
	Trail           bool
	Physics         Physics
}

// ParamsFrom extracts swarm parameters from a configuration snapshot.
func ParamsFrom(c config.Config) Params {
	return Params{
		MinRadius:       c.Particle.BaseRadius.Min,
		MaxRadius:       c.Particle.BaseRadius.Max,
		InitialVelocity: c.Particle.InitialVelocity,
		Color:           config.ColorOr(c.Particle.Color, FallbackColor),
		Shape:           c.Particle.Shape,
		Trail:           c.Particle.Trail,
		Physics:         PhysicsFrom(c),
	}
}

// PhysicsFrom extracts the force coefficients from a configuration snapshot.
func PhysicsFrom(c config.Config) Physics {
	return Physics{
		Attraction:    c.Animation.AttractionForce,
		Repulsion:     c.Animation.RepulsionForce,
		Friction:      c.Animation.Friction,
		PointerRadius: c.MouseEffect.Radius,
		Drift:         c.Animation.Drift,
	}
}

func (p Params) sanitize() Params {
	p.MinRadius = finiteOr(p.MinRadius, FallbackMinRadius, 0)
	p.MaxRadius = finiteOr(p.MaxRadius, FallbackMaxRadius, 0)
	if p.MinRadius > p.MaxRadius {
		p.MinRadius, p.MaxRadius = p.MaxRadius, p.MinRadius
	}
	p.InitialVelocity = finiteOr(p.InitialVelocity, FallbackInitialVelocity, 0)
	if p.Color.A == 0 {
		p.Color = FallbackColor
	}
	switch p.Shape {
	case config.ShapeCircle, config.ShapeSquare, config.ShapeTriangle:
	default:
		p.Shape = config.ShapeCircle
	}
	p.Physics = p.Physics.sanitize()
	return p
}

func (ph Physics) sanitize() Physics {
	ph.Attraction = finiteOr(ph.Attraction, FallbackAttraction, 0)
	ph.Repulsion = finiteOr(ph.Repulsion, FallbackRepulsion, 0)
	ph.PointerRadius = finiteOr(ph.PointerRadius, FallbackPointerRadius, 0)
	ph.Drift = finiteOr(ph.Drift, 0, 0)
	if math.IsNaN(ph.Friction) || ph.Friction < 0 || ph.Friction > 1 {
		ph.Friction = FallbackFriction
	}
	return ph
}

// finiteOr returns v when it is finite and >= lo, fallback otherwise
func finiteOr(v, fallback, lo float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo {
		return fallback
	}
	return v
}
