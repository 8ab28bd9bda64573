// Package boundary defines the axis-aligned region particles live in and
// what happens when they reach its walls.
package boundary

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

var (
	ErrInvalidBox    = errors.New("boundary: box dimensions must be non-negative")
	ErrUnknownPolicy = errors.New("boundary: unknown collision policy")
)

// Box spans [Origin, Origin + (Width, Height, Depth)] inclusive on every face.
// A zero Depth gives a flat 2D region.
type Box struct {
	Origin vecmath.Point3
	Width  float64
	Height float64
	Depth  float64
}

func NewBox(origin vecmath.Point3, width, height, depth float64) Box {
	return Box{Origin: origin, Width: width, Height: height, Depth: depth}
}

func (b Box) Validate() error {
	if b.Width < 0 || b.Height < 0 || b.Depth < 0 {
		return fmt.Errorf("%w: %gx%gx%g", ErrInvalidBox, b.Width, b.Height, b.Depth)
	}
	return nil
}

func (b Box) Min() vecmath.Point3 { return b.Origin }

func (b Box) Max() vecmath.Point3 {
	return b.Origin.Add(vecmath.Vec3{X: b.Width, Y: b.Height, Z: b.Depth})
}

func (b Box) Contains(p vecmath.Point3) bool {
	lo, hi := b.Min(), b.Max()
	return p.X >= lo.X && p.Y >= lo.Y && p.Z >= lo.Z &&
		p.X <= hi.X && p.Y <= hi.Y && p.Z <= hi.Z
}

func (b Box) Center() vecmath.Point3 {
	return b.Origin.Add(vecmath.Vec3{X: b.Width / 2, Y: b.Height / 2, Z: b.Depth / 2})
}

// Policy decides what a wall does to a particle. Policies are exclusive:
// a world uses exactly one.
type Policy int

const (
	// KillOnExit marks a particle dead once its center leaves the box.
	KillOnExit Policy = iota
	// Bounce reflects a particle whose edge crosses a wall while moving
	// into it, and clamps it back inside by its radius.
	Bounce
)

func (p Policy) String() string {
	switch p {
	case KillOnExit:
		return "kill"
	case Bounce:
		return "bounce"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

func (p Policy) Validate() error {
	if p != KillOnExit && p != Bounce {
		return fmt.Errorf("%w: %d", ErrUnknownPolicy, int(p))
	}
	return nil
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "kill", "kill_on_exit":
		return KillOnExit, nil
	case "bounce", "elastic":
		return Bounce, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Enforce applies the policy to p after it has been integrated.
func (p Policy) Enforce(b Box, pt *particle.Particle) {
	switch p {
	case KillOnExit:
		if !b.Contains(pt.Position) {
			pt.Kill()
		}
	case Bounce:
		bounce(b, pt)
	}
}

func bounce(b Box, pt *particle.Particle) {
	lo, hi := b.Min(), b.Max()
	r := float64(pt.Radius())
	for axis := 0; axis < 3; axis++ {
		// indices are constant 0..2, errors cannot occur
		pos, _ := pt.Position.At(axis)
		vel, _ := pt.Velocity.At(axis)
		lower, _ := lo.At(axis)
		upper, _ := hi.At(axis)

		switch {
		case pos-r < lower && vel < 0:
			vel -= 2 * vel
			pos = lower + r
		case pos+r > upper && vel > 0:
			vel -= 2 * vel
			pos = upper - r
		default:
			continue
		}
		_ = pt.Position.Set(axis, pos)
		_ = pt.Velocity.Set(axis, vel)
	}
}
