package field_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const tolerance = 1e-9

func at(x, y, z float64) particle.Particle {
	return particle.NewBuilder(1.0).
		WithRadius(1).
		At(vecmath.Point3{X: x, Y: y, Z: z}).
		Build()
}

func moving(v vecmath.Vec3, radius int) particle.Particle {
	return particle.NewBuilder(1.0).WithRadius(radius).WithVelocity(v).Build()
}

func expectVec(got, want vecmath.Vec3) {
	ExpectWithOffset(1, got.X).To(BeNumerically("~", want.X, tolerance))
	ExpectWithOffset(1, got.Y).To(BeNumerically("~", want.Y, tolerance))
	ExpectWithOffset(1, got.Z).To(BeNumerically("~", want.Z, tolerance))
}

var _ = Describe("Gravity", func() {
	It("accelerates along +Y in proportion to mass", func() {
		heavy := particle.NewBuilder(1.0).WithRadius(3).Build()
		out := field.NewGravity(2).Apply(heavy)
		expectVec(out.Velocity, vecmath.Vec3{Y: 6})
	})

	It("does not touch its input", func() {
		p := at(1, 2, 3)
		_ = field.NewGravity(1).Apply(p)
		Expect(p.Velocity.IsZero()).To(BeTrue())
	})
})

var _ = Describe("Wind", func() {
	It("pushes along -X regardless of mass", func() {
		light := particle.NewBuilder(1.0).WithRadius(1).Build()
		heavy := particle.NewBuilder(1.0).WithRadius(50).Build()
		w := field.NewWind(0.25)

		expectVec(w.Apply(light).Velocity, vecmath.Vec3{X: -0.25})
		expectVec(w.Apply(heavy).Velocity, vecmath.Vec3{X: -0.25})
	})
})

var _ = Describe("AirResistance", func() {
	drag := field.NewAirResistance()

	It("opposes the direction of travel", func() {
		p := moving(vecmath.Vec3{X: 10}, 5)
		out := drag.Apply(p)

		// probe step moves 1 unit; ½·1·0.2·(π·5)·1
		want := 10 - math.Pi/2
		expectVec(out.Velocity, vecmath.Vec3{X: want})
	})

	It("scales drag with speed", func() {
		slow := drag.Magnitude(moving(vecmath.Vec3{Y: 5}, 2))
		fast := drag.Magnitude(moving(vecmath.Vec3{Y: 10}, 2))
		Expect(fast).To(BeNumerically("~", 2*slow, tolerance))
	})

	It("leaves a particle at rest unchanged", func() {
		p := moving(vecmath.Vec3{}, 5)
		out := drag.Apply(p)
		Expect(out.Velocity.IsZero()).To(BeTrue())
		Expect(math.IsNaN(out.Velocity.X)).To(BeFalse())
	})

	It("applies no drag to a dead particle", func() {
		p := moving(vecmath.Vec3{X: 3, Y: 4}, 5)
		p.Kill()
		out := drag.Apply(p)
		expectVec(out.Velocity, vecmath.Vec3{X: 3, Y: 4})
	})
})

var _ = Describe("GravityWell", func() {
	const (
		radius   = 10.0
		strength = 0.5
		eps      = 1e-6
	)
	well := field.NewGravityWell(vecmath.Point3{}, strength, radius)

	DescribeTable("shell boundaries are strict",
		func(distance float64, shell int) {
			p := at(distance, 0, 0)
			Expect(well.Shell(p.Position)).To(Equal(shell))

			out := well.Apply(p)
			if shell == 0 {
				Expect(out.Velocity.IsZero()).To(BeTrue())
				return
			}
			pull := strength / float64(shell) * p.Mass()
			expectVec(out.Velocity, vecmath.Vec3{X: -distance * pull})
		},
		Entry("inside first shell", radius-eps, 1),
		Entry("on first edge", radius, 2),
		Entry("just outside first shell", radius+eps, 2),
		Entry("inside third shell", 2*radius+eps, 3),
		Entry("on outer edge", 3*radius, 0),
		Entry("far away", 100.0, 0),
	)

	It("pulls toward the center from any direction", func() {
		p := at(0, -5, 0)
		out := well.Apply(p)
		Expect(out.Velocity.Y).To(BeNumerically(">", 0))
		Expect(out.Velocity.X).To(BeZero())
	})

	It("scales the pull by mass", func() {
		light := particle.NewBuilder(1.0).WithRadius(1).At(vecmath.Point3{X: 5}).Build()
		heavy := particle.NewBuilder(1.0).WithRadius(4).At(vecmath.Point3{X: 5}).Build()
		Expect(well.Apply(heavy).Velocity.X).To(BeNumerically("~", 4*well.Apply(light).Velocity.X, tolerance))
	})

	It("exposes three overlay rings", func() {
		o, ok := field.OverlayOf(well)
		Expect(ok).To(BeTrue())
		Expect(o.Radii).To(Equal([]float64{10, 20, 30}))
		Expect(o.Center).To(Equal(vecmath.Point3{}))
	})
})

var _ = Describe("BigGravityWell", func() {
	const (
		radius   = 10.0
		strength = 0.3
	)
	well := field.NewBigGravityWell(vecmath.Point3{X: 100, Y: 100}, strength, radius, 4)

	It("grows shells geometrically", func() {
		Expect(well.ShellRadii()).To(Equal([]float64{10, 25, 47.5, 81.25}))
	})

	It("applies only the innermost matching shell", func() {
		p := at(120, 100, 0) // distance 20: outside shell 1, inside shell 2
		Expect(well.Shell(p.Position)).To(Equal(2))

		out := well.Apply(p)
		expectVec(out.Velocity, vecmath.Vec3{X: -20 * strength / 2 * p.Mass()})
	})

	It("applies nothing outside every shell", func() {
		p := at(100, 190, 0)
		Expect(well.Shell(p.Position)).To(Equal(0))
		Expect(well.Apply(p).Velocity.IsZero()).To(BeTrue())
	})

	It("has no shells without layers", func() {
		empty := field.NewBigGravityWell(vecmath.Point3{}, 1, 10, 0)
		Expect(empty.ShellRadii()).To(BeEmpty())
		Expect(empty.Apply(at(1, 0, 0)).Velocity.IsZero()).To(BeTrue())
	})
})

var _ = Describe("Chain", func() {
	It("applies fields in registration order", func() {
		p := moving(vecmath.Vec3{X: 10}, 5)
		g := field.NewGravity(1)
		w := field.NewWind(0.25)

		out := field.Chain{g, w}.Apply(p)
		expectVec(out.Velocity, vecmath.Vec3{X: 9.75, Y: p.Mass()})
	})

	It("is order dependent when a field reads velocity", func() {
		p := moving(vecmath.Vec3{X: 10}, 5)
		drag := field.NewAirResistance()
		g := field.NewGravity(5)

		a := field.Chain{g, drag}.Apply(p)
		b := field.Chain{drag, g}.Apply(p)
		Expect(a.Velocity).NotTo(Equal(b.Velocity))
	})

	It("is the identity when empty", func() {
		p := moving(vecmath.Vec3{X: 1, Y: 2}, 3)
		Expect(field.Chain{}.Apply(p)).To(Equal(p))
	})
})

var _ = Describe("capabilities", func() {
	It("reports overlays only for wells", func() {
		fields := []field.Field{
			field.NewGravity(1),
			field.NewWind(1),
			field.NewAirResistance(),
			field.NewGravityWell(vecmath.Point3{}, 1, 1),
			field.NewBigGravityWell(vecmath.Point3{}, 1, 1, 2),
		}
		var drawable []string
		for _, f := range fields {
			if _, ok := field.OverlayOf(f); ok {
				drawable = append(drawable, f.Name())
			}
		}
		Expect(drawable).To(Equal([]string{"gravity_well", "big_gravity_well"}))
	})

	It("reports parameters", func() {
		Expect(field.ParamsOf(field.NewGravity(9.8))).To(HaveKeyWithValue("g", 9.8))
		Expect(field.ParamsOf(field.Chain{})).To(BeNil())
	})
})
