package field

import (
	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

type Field interface {
	Name() string
	Apply(p particle.Particle) particle.Particle
}

// Drawable is implemented by fields that have a visual footprint.
type Drawable interface {
	Overlay() Overlay
}

// Overlay describes concentric rings around a field's center.
type Overlay struct {
	Name   string
	Center vecmath.Point3
	Radii  []float64
}

// OverlayOf reports the overlay of f, if f has one.
func OverlayOf(f Field) (Overlay, bool) {
	if d, ok := f.(Drawable); ok {
		return d.Overlay(), true
	}
	return Overlay{}, false
}

// Parameterized fields expose their tunables for display and run metadata.
type Parameterized interface {
	Params() map[string]float64
}

// ParamsOf returns f's parameters, or nil when it has none.
func ParamsOf(f Field) map[string]float64 {
	if pf, ok := f.(Parameterized); ok {
		return pf.Params()
	}
	return nil
}

// Chain applies its fields in order.
type Chain []Field

func (c Chain) Name() string { return "chain" }

func (c Chain) Apply(p particle.Particle) particle.Particle {
	for _, f := range c {
		p = f.Apply(p)
	}
	return p
}
