package field

import (
	"math"

	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const (
	DefaultFluidDensity    = 1.0
	DefaultDragCoefficient = 0.2
)

// AirResistance slows particles along their direction of travel.
//
// The drag magnitude is ½·ρ·Cd·A·v with cross section A = π·radius. That is
// linear in both radius and speed, a deliberate simplification of the
// quadratic drag law.
type AirResistance struct {
	FluidDensity    float64
	DragCoefficient float64
}

func NewAirResistance() AirResistance {
	return AirResistance{
		FluidDensity:    DefaultFluidDensity,
		DragCoefficient: DefaultDragCoefficient,
	}
}

func (a AirResistance) Name() string { return "air_resistance" }

func (a AirResistance) Params() map[string]float64 {
	return map[string]float64{
		"density": a.FluidDensity,
		"drag":    a.DragCoefficient,
	}
}

// Magnitude returns the drag that p would feel this tick.
func (a AirResistance) Magnitude(p particle.Particle) float64 {
	probe := p
	probe.Integrate()
	speed := probe.Position.Sub(p.Position).Length()
	area := math.Pi * float64(p.Radius())
	return 0.5 * a.FluidDensity * a.DragCoefficient * area * speed
}

func (a AirResistance) Apply(p particle.Particle) particle.Particle {
	dir, err := vecmath.Unit(p.Velocity)
	if err != nil {
		// at rest: nothing to oppose
		return p
	}
	p.ApplyForce(dir.Scale(-a.Magnitude(p)))
	return p
}
