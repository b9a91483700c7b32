// Package config holds the tunable parameters of the swarm, the text and the
// renderer, together with the store the control layer mutates at runtime.
package config

import (
	"runtime"
)

// Shape is the outline a particle is drawn with.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
)

// Shapes lists the valid shapes in panel cycling order.
var Shapes = []Shape{ShapeCircle, ShapeSquare, ShapeTriangle}

// Animation is the global transform applied to the whole frame.
type Animation string

const (
	AnimationNone   Animation = "none"
	AnimationPulse  Animation = "pulse"
	AnimationRotate Animation = "rotate"
)

// Animations lists the valid animation modes in panel cycling order.
var Animations = []Animation{AnimationNone, AnimationPulse, AnimationRotate}

// Mobile profile limits
const (
	MobileMaxParticles = 2000
	MobileMinRadius    = 2.0
	MobileMaxRadius    = 4.0
)

// RadiusRange bounds the randomly drawn particle radius.
type RadiusRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// PointerConfig controls the pointer repulsion area.
type PointerConfig struct {
	Radius float64 `yaml:"radius"`
}

// AnimationConfig holds the physics coefficients.
type AnimationConfig struct {
	AttractionForce float64 `yaml:"attraction_force"`
	RepulsionForce  float64 `yaml:"repulsion_force"`
	Friction        float64 `yaml:"friction"`
	// Drift is the magnitude of the noise-field velocity increment per tick. Zero disables it.
	Drift float64 `yaml:"drift"`
}

// ParticleConfig describes how new and existing particles look.
type ParticleConfig struct {
	BaseRadius      RadiusRange `yaml:"base_radius"`
	InitialVelocity float64     `yaml:"initial_velocity"`
	Color           string      `yaml:"color"`
	Shape           Shape       `yaml:"shape"`
	Trail           bool        `yaml:"trail"`
	Glow            bool        `yaml:"glow"`
}

// TextConfig describes the guide text the swarm spells.
type TextConfig struct {
	Content   string    `yaml:"content"`
	FontSize  float64   `yaml:"font_size"`
	Color     string    `yaml:"color"`
	Animation Animation `yaml:"animation"`
}

// Config is the full parameter set. It is a plain value: copies are snapshots.
type Config struct {
	MaxParticles       int             `yaml:"max_particles"`
	ParticleDensity    float64         `yaml:"particle_density"`
	TransitionDuration int             `yaml:"transition_duration"`
	MouseEffect        PointerConfig   `yaml:"mouse_effect"`
	Animation          AnimationConfig `yaml:"animation"`
	Particle           ParticleConfig  `yaml:"particle"`
	Text               TextConfig      `yaml:"text"`
	BackgroundColor    string          `yaml:"background_color"`
	IsMobile           bool            `yaml:"is_mobile"`
}

// Defaults returns the desktop defaults, adjusted for the mobile profile when mobile is set.
func Defaults(mobile bool) Config {
	c := Config{
		MaxParticles:       5000,
		ParticleDensity:    1.0 / 7,
		TransitionDuration: 3000,
		MouseEffect:        PointerConfig{Radius: 30},
		Animation: AnimationConfig{
			AttractionForce: 0.05,
			RepulsionForce:  0.2,
			Friction:        0.97,
		},
		Particle: ParticleConfig{
			BaseRadius:      RadiusRange{Min: 1, Max: 2.5},
			InitialVelocity: 0.5,
			Color:           "#ff0000",
			Shape:           ShapeCircle,
		},
		Text: TextConfig{
			Content:   "CENSORSHIP IS NOT FREEDOM",
			FontSize:  100,
			Color:     "#ffffff",
			Animation: AnimationNone,
		},
		BackgroundColor: "#000000",
		IsMobile:        mobile,
	}
	c.adjustForMobile()
	return c
}

// DetectMobile reports whether the binary runs on a mobile platform.
func DetectMobile() bool {
	return runtime.GOOS == "android" || runtime.GOOS == "ios"
}

// adjustForMobile clamps count down and radius up on small touch devices
func (c *Config) adjustForMobile() {
	if !c.IsMobile {
		return
	}
	c.MaxParticles = min(c.MaxParticles, MobileMaxParticles)
	c.Particle.BaseRadius.Min = max(c.Particle.BaseRadius.Min, MobileMinRadius)
	c.Particle.BaseRadius.Max = max(c.Particle.BaseRadius.Max, MobileMaxRadius)
}
