// Package particle defines the simulated point particle and its builder.
package particle

import (
	"image/color"

	"github.com/san-kum/fieldsim/internal/vecmath"
)

const (
	DefaultRadius   = 5
	DefaultLifetime = 250

	// DefaultDensity makes a default-radius particle weigh exactly 1.
	DefaultDensity = 0.2

	// substeps divides velocity into the displacement applied per tick.
	substeps = 10.0
)

// Particle is copied by value; force fields return modified copies.
// Mass always equals radius * density; use SetRadius to change either.
type Particle struct {
	Position    vecmath.Point3
	Velocity    vecmath.Vec3
	Lifetime    uint64
	MaxLifetime uint64
	alive       bool

	radius  int
	mass    float64
	density float64
}

func (p Particle) Radius() int      { return p.radius }
func (p Particle) Mass() float64    { return p.mass }
func (p Particle) Density() float64 { return p.density }
func (p Particle) IsAlive() bool    { return p.alive }
func (p Particle) IsDead() bool     { return !p.alive }
func (p Particle) Speed() float64   { return p.Velocity.Length() }

func (p Particle) KineticEnergy() float64 {
	return 0.5 * p.mass * p.Velocity.SquaredLength()
}

// SetRadius changes the radius and recomputes mass from the particle's density.
func (p *Particle) SetRadius(r int) {
	p.radius = r
	p.mass = float64(r) * p.density
}

// ApplyForce accumulates an impulse into velocity. Mass is accounted for by
// the field generating f, not here.
func (p *Particle) ApplyForce(f vecmath.Vec3) {
	p.Velocity = p.Velocity.Add(f)
}

// Integrate advances the particle by one tick. Dead particles do not move
// and do not age.
func (p *Particle) Integrate() {
	if !p.alive {
		return
	}
	p.Position = p.Position.Add(p.Velocity.DivScalar(substeps))
	if p.Lifetime > 0 {
		p.Lifetime--
	}
	if p.Lifetime == 0 {
		p.alive = false
	}
}

// Kill marks the particle dead. A dead particle never comes back.
func (p *Particle) Kill() {
	p.alive = false
}

// LifetimeRatio is the remaining fraction of the particle's life in [0, 1].
func (p Particle) LifetimeRatio() float64 {
	if p.MaxLifetime == 0 {
		return 0
	}
	return float64(p.Lifetime) / float64(p.MaxLifetime)
}

// Color fades from yellow through red to transparent as the particle ages.
func (p Particle) Color() color.RGBA {
	fade := p.LifetimeRatio()
	fade *= fade
	return color.RGBA{
		R: 255,
		G: uint8(255 * fade),
		B: 0,
		A: uint8(255 * fade),
	}
}
