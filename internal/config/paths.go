package config

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Dotted paths of every addressable parameter
const (
	PathMaxParticles       = "max_particles"
	PathParticleDensity    = "particle_density"
	PathTransitionDuration = "transition_duration"
	PathMouseRadius        = "mouse_effect.radius"
	PathAttractionForce    = "animation.attraction_force"
	PathRepulsionForce     = "animation.repulsion_force"
	PathFriction           = "animation.friction"
	PathDrift              = "animation.drift"
	PathRadiusMin          = "particle.base_radius.min"
	PathRadiusMax          = "particle.base_radius.max"
	PathInitialVelocity    = "particle.initial_velocity"
	PathParticleColor      = "particle.color"
	PathParticleShape      = "particle.shape"
	PathParticleTrail      = "particle.trail"
	PathParticleGlow       = "particle.glow"
	PathTextContent        = "text.content"
	PathTextFontSize       = "text.font_size"
	PathTextColor          = "text.color"
	PathTextAnimation      = "text.animation"
	PathBackgroundColor    = "background_color"
	PathIsMobile           = "is_mobile"

	// PathAll is reported to listeners when the whole configuration was replaced.
	PathAll = "*"
)

type field struct {
	get func(c *Config) any
	set func(c *Config, v any) error
}

var fields = map[string]field{
	PathMaxParticles: intField(func(c *Config) *int { return &c.MaxParticles }, 0),
	PathParticleDensity: floatField(func(c *Config) *float64 { return &c.ParticleDensity },
		0, math.Inf(1)),
	PathTransitionDuration: intField(func(c *Config) *int { return &c.TransitionDuration }, 0),
	PathMouseRadius: floatField(func(c *Config) *float64 { return &c.MouseEffect.Radius },
		0, math.Inf(1)),
	PathAttractionForce: floatField(func(c *Config) *float64 { return &c.Animation.AttractionForce },
		0, math.Inf(1)),
	PathRepulsionForce: floatField(func(c *Config) *float64 { return &c.Animation.RepulsionForce },
		0, math.Inf(1)),
	PathFriction: floatField(func(c *Config) *float64 { return &c.Animation.Friction }, 0, 1),
	PathDrift: floatField(func(c *Config) *float64 { return &c.Animation.Drift },
		0, math.Inf(1)),
	PathRadiusMin: floatField(func(c *Config) *float64 { return &c.Particle.BaseRadius.Min },
		0, math.Inf(1)),
	PathRadiusMax: floatField(func(c *Config) *float64 { return &c.Particle.BaseRadius.Max },
		0, math.Inf(1)),
	PathInitialVelocity: floatField(func(c *Config) *float64 { return &c.Particle.InitialVelocity },
		0, math.Inf(1)),
	PathParticleColor: colorField(func(c *Config) *string { return &c.Particle.Color }),
	PathParticleShape: {
		get: func(c *Config) any { return c.Particle.Shape },
		set: func(c *Config, v any) error {
			s, ok := toString(v)
			if !ok || !validShape(Shape(s)) {
				return fmt.Errorf("%w: shape %v", ErrInvalidValue, v)
			}
			c.Particle.Shape = Shape(s)
			return nil
		},
	},
	PathParticleTrail: boolField(func(c *Config) *bool { return &c.Particle.Trail }),
	PathParticleGlow:  boolField(func(c *Config) *bool { return &c.Particle.Glow }),
	PathTextContent: {
		get: func(c *Config) any { return c.Text.Content },
		set: func(c *Config, v any) error {
			s, ok := toString(v)
			if !ok {
				return fmt.Errorf("%w: text %v", ErrInvalidValue, v)
			}
			c.Text.Content = s
			return nil
		},
	},
	PathTextFontSize: floatField(func(c *Config) *float64 { return &c.Text.FontSize },
		0, math.Inf(1)),
	PathTextColor: colorField(func(c *Config) *string { return &c.Text.Color }),
	PathTextAnimation: {
		get: func(c *Config) any { return c.Text.Animation },
		set: func(c *Config, v any) error {
			s, ok := toString(v)
			if !ok || !validAnimation(Animation(s)) {
				return fmt.Errorf("%w: animation %v", ErrInvalidValue, v)
			}
			c.Text.Animation = Animation(s)
			return nil
		},
	},
	PathBackgroundColor: colorField(func(c *Config) *string { return &c.BackgroundColor }),
	PathIsMobile:        boolField(func(c *Config) *bool { return &c.IsMobile }),
}

func floatField(ptr func(c *Config) *float64, lo, hi float64) field {
	return field{
		get: func(c *Config) any { return *ptr(c) },
		set: func(c *Config, v any) error {
			f, ok := toFloat(v)
			if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < lo || f > hi {
				return fmt.Errorf("%w: %v not a number in [%g, %g]", ErrInvalidValue, v, lo, hi)
			}
			*ptr(c) = f
			return nil
		},
	}
}

func intField(ptr func(c *Config) *int, lo int) field {
	return field{
		get: func(c *Config) any { return *ptr(c) },
		set: func(c *Config, v any) error {
			f, ok := toFloat(v)
			if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < float64(lo) || f > math.MaxInt32 {
				return fmt.Errorf("%w: %v not an integer >= %d", ErrInvalidValue, v, lo)
			}
			*ptr(c) = int(math.Round(f))
			return nil
		},
	}
}

func boolField(ptr func(c *Config) *bool) field {
	return field{
		get: func(c *Config) any { return *ptr(c) },
		set: func(c *Config, v any) error {
			switch b := v.(type) {
			case bool:
				*ptr(c) = b
			case string:
				parsed, err := strconv.ParseBool(b)
				if err != nil {
					return fmt.Errorf("%w: %q not a boolean", ErrInvalidValue, b)
				}
				*ptr(c) = parsed
			default:
				return fmt.Errorf("%w: %v not a boolean", ErrInvalidValue, v)
			}
			return nil
		},
	}
}

func colorField(ptr func(c *Config) *string) field {
	return field{
		get: func(c *Config) any { return *ptr(c) },
		set: func(c *Config, v any) error {
			s, ok := toString(v)
			if !ok {
				return fmt.Errorf("%w: color %v", ErrInvalidValue, v)
			}
			if _, err := ParseColor(s); err != nil {
				return err
			}
			*ptr(c) = s
			return nil
		},
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	case Shape:
		return string(s), true
	case Animation:
		return string(s), true
	}
	return "", false
}

func validShape(s Shape) bool { return slices.Contains(Shapes, s) }

func validAnimation(a Animation) bool { return slices.Contains(Animations, a) }
