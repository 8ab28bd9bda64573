package field

import (
	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const (
	wellShells = 3

	// bigWellGrowth scales each BigGravityWell shell relative to the previous one.
	bigWellGrowth = 1.5
)

// GravityWell attracts particles within three shells around Center. The
// shells end at Radius, 2·Radius and 3·Radius and pull with Strength,
// Strength/2 and Strength/3. A particle exactly on a shell edge belongs to
// the next shell out.
type GravityWell struct {
	Center   vecmath.Point3
	Strength float64
	Radius   float64
}

func NewGravityWell(center vecmath.Point3, strength, radius float64) GravityWell {
	return GravityWell{Center: center, Strength: strength, Radius: radius}
}

func (w GravityWell) Name() string { return "gravity_well" }

func (w GravityWell) Params() map[string]float64 {
	return map[string]float64{
		"strength": w.Strength,
		"radius":   w.Radius,
	}
}

// Shell returns the 1-based shell index containing pos, or 0 outside the well.
func (w GravityWell) Shell(pos vecmath.Point3) int {
	d2 := vecmath.Distance2(pos, w.Center)
	for i := 1; i <= wellShells; i++ {
		r := w.Radius * float64(i)
		if d2 < r*r {
			return i
		}
	}
	return 0
}

func (w GravityWell) Apply(p particle.Particle) particle.Particle {
	shell := w.Shell(p.Position)
	if shell == 0 {
		return p
	}
	pull := w.Strength / float64(shell) * p.Mass()
	p.ApplyForce(w.Center.Sub(p.Position).Scale(pull))
	return p
}

func (w GravityWell) Overlay() Overlay {
	radii := make([]float64, wellShells)
	for i := range radii {
		radii[i] = w.Radius * float64(i+1)
	}
	return Overlay{Name: w.Name(), Center: w.Center, Radii: radii}
}

// BigGravityWell generalizes GravityWell to Layers shells. Shell i ends at
// r_i = r_{i-1}·1.5 + Radius (r_1 = Radius) and pulls with Strength/i. Only
// the innermost shell containing the particle applies.
type BigGravityWell struct {
	Center   vecmath.Point3
	Strength float64
	Radius   float64
	Layers   int
}

func NewBigGravityWell(center vecmath.Point3, strength, radius float64, layers int) BigGravityWell {
	return BigGravityWell{Center: center, Strength: strength, Radius: radius, Layers: layers}
}

func (w BigGravityWell) Name() string { return "big_gravity_well" }

func (w BigGravityWell) Params() map[string]float64 {
	return map[string]float64{
		"strength": w.Strength,
		"radius":   w.Radius,
		"layers":   float64(w.Layers),
	}
}

// ShellRadii returns the outer radius of each shell, innermost first.
func (w BigGravityWell) ShellRadii() []float64 {
	if w.Layers <= 0 {
		return nil
	}
	radii := make([]float64, w.Layers)
	r := 0.0
	for i := range radii {
		r = r*bigWellGrowth + w.Radius
		radii[i] = r
	}
	return radii
}

// Shell returns the 1-based index of the innermost shell containing pos,
// or 0 outside every shell.
func (w BigGravityWell) Shell(pos vecmath.Point3) int {
	d2 := vecmath.Distance2(pos, w.Center)
	r := 0.0
	for i := 1; i <= w.Layers; i++ {
		r = r*bigWellGrowth + w.Radius
		if d2 < r*r {
			return i
		}
	}
	return 0
}

func (w BigGravityWell) Apply(p particle.Particle) particle.Particle {
	shell := w.Shell(p.Position)
	if shell == 0 {
		return p
	}
	pull := w.Strength / float64(shell) * p.Mass()
	p.ApplyForce(w.Center.Sub(p.Position).Scale(pull))
	return p
}

func (w BigGravityWell) Overlay() Overlay {
	return Overlay{Name: w.Name(), Center: w.Center, Radii: w.ShellRadii()}
}
