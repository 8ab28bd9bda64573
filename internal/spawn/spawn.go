// Package spawn provides the randomized particle factory used by a world.
package spawn

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

var ErrInvalidOptions = errors.New("spawn: invalid options")

// Range is a half-open float interval [Min, Max).
type Range struct {
	Min, Max float64
}

func (r Range) sample(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// IntRange is a closed integer interval [Min, Max].
type IntRange struct {
	Min, Max int
}

func (r IntRange) sample(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.IntN(r.Max-r.Min+1)
}

type Options struct {
	Density  float64
	VelX     Range
	VelY     Range
	VelZ     Range
	Radius   IntRange
	Lifetime IntRange
}

// DefaultOptions launch particles upward in a fan, for a box whose Y axis
// points down.
func DefaultOptions() Options {
	return Options{
		Density:  particle.DefaultDensity,
		VelX:     Range{Min: -10, Max: 10},
		VelY:     Range{Min: -15, Max: -5},
		Radius:   IntRange{Min: 3, Max: 7},
		Lifetime: IntRange{Min: 150, Max: particle.DefaultLifetime},
	}
}

func (o Options) Validate() error {
	switch {
	case o.Density <= 0:
		return fmt.Errorf("%w: density must be positive, got %g", ErrInvalidOptions, o.Density)
	case o.Radius.Min < 0:
		return fmt.Errorf("%w: radius must not be negative, got %d", ErrInvalidOptions, o.Radius.Min)
	case o.Lifetime.Min <= 0:
		return fmt.Errorf("%w: lifetime must be positive, got %d", ErrInvalidOptions, o.Lifetime.Min)
	case o.Radius.Max < o.Radius.Min || o.Lifetime.Max < o.Lifetime.Min:
		return fmt.Errorf("%w: range max below min", ErrInvalidOptions)
	case o.VelX.Max < o.VelX.Min || o.VelY.Max < o.VelY.Min || o.VelZ.Max < o.VelZ.Min:
		return fmt.Errorf("%w: velocity range max below min", ErrInvalidOptions)
	}
	return nil
}

// Random spawns particles with velocity, radius and lifetime drawn from
// Options. It is deterministic for a given seed and not safe for
// concurrent use.
type Random struct {
	rng  *rand.Rand
	opts Options
}

func NewRandom(seed int64, opts Options) (*Random, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Random{
		rng:  rand.New(rand.NewPCG(uint64(seed), 0)),
		opts: opts,
	}, nil
}

func (r *Random) Spawn(at vecmath.Point3) particle.Particle {
	v := vecmath.Vec3{
		X: r.opts.VelX.sample(r.rng),
		Y: r.opts.VelY.sample(r.rng),
		Z: r.opts.VelZ.sample(r.rng),
	}
	return particle.NewBuilder(r.opts.Density).
		At(at).
		WithVelocity(v).
		WithRadius(r.opts.Radius.sample(r.rng)).
		WithLifetime(uint64(r.opts.Lifetime.sample(r.rng))).
		Build()
}

func (r *Random) Options() Options { return r.opts }
