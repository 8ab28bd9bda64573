package field

import (
	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const (
	DefaultGravity = 1.0
	DefaultWind    = 0.25
)

// Gravity pulls along +Y (screen down) in proportion to mass.
type Gravity struct {
	G float64
}

func NewGravity(g float64) Gravity { return Gravity{G: g} }

func (g Gravity) Name() string { return "gravity" }

func (g Gravity) Params() map[string]float64 {
	return map[string]float64{"g": g.G}
}

func (g Gravity) Apply(p particle.Particle) particle.Particle {
	p.ApplyForce(vecmath.Vec3{Y: g.G}.Scale(p.Mass()))
	return p
}

// Wind pushes along -X with the same strength for every particle. Unlike
// Gravity it is not scaled by mass, so light and heavy particles drift alike.
type Wind struct {
	Strength float64
}

func NewWind(strength float64) Wind { return Wind{Strength: strength} }

func (w Wind) Name() string { return "wind" }

func (w Wind) Params() map[string]float64 {
	return map[string]float64{"strength": w.Strength}
}

func (w Wind) Apply(p particle.Particle) particle.Particle {
	p.ApplyForce(vecmath.Vec3{X: -w.Strength})
	return p
}
