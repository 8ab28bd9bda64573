package particle

import "github.com/san-kum/fieldsim/internal/vecmath"

// Builder configures a particle template. Build returns an independent copy,
// so one builder can stamp out many particles.
type Builder struct {
	position vecmath.Point3
	velocity vecmath.Vec3
	radius   int
	lifetime uint64
	density  float64
}

func NewBuilder(density float64) *Builder {
	return &Builder{
		radius:   DefaultRadius,
		lifetime: DefaultLifetime,
		density:  density,
	}
}

func (b *Builder) At(p vecmath.Point3) *Builder {
	b.position = p
	return b
}

func (b *Builder) WithVelocity(v vecmath.Vec3) *Builder {
	b.velocity = v
	return b
}

func (b *Builder) WithRadius(r int) *Builder {
	b.radius = r
	return b
}

// WithLifetime sets both the starting and the maximum lifetime in ticks.
func (b *Builder) WithLifetime(ticks uint64) *Builder {
	b.lifetime = ticks
	return b
}

func (b *Builder) Build() Particle {
	p := Particle{
		Position:    b.position,
		Velocity:    b.velocity,
		Lifetime:    b.lifetime,
		MaxLifetime: b.lifetime,
		alive:       true,
		density:     b.density,
	}
	p.SetRadius(b.radius)
	return p
}
