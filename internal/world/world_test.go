package world_test

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
	"github.com/san-kum/fieldsim/internal/world"
)

var box = boundary.NewBox(vecmath.Point3{}, 1000, 1000, 0)

// restingSpawner builds unit-mass particles at rest.
func restingSpawner(lifetime uint64) world.SpawnerFunc {
	return func(at vecmath.Point3) particle.Particle {
		return particle.NewBuilder(1.0).
			At(at).
			WithRadius(1).
			WithLifetime(lifetime).
			Build()
	}
}

func movingSpawner(v vecmath.Vec3) world.SpawnerFunc {
	return func(at vecmath.Point3) particle.Particle {
		return particle.NewBuilder(particle.DefaultDensity).At(at).WithVelocity(v).Build()
	}
}

func mustWorld(fields []field.Field, spawner world.Spawner, cfg world.Config) *world.World {
	w, err := world.New(fields, box, box.Center(), spawner, cfg)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return w
}

var _ = Describe("New", func() {
	It("rejects a missing spawner", func() {
		_, err := world.New(nil, box, box.Center(), nil, world.DefaultConfig())
		Expect(err).To(MatchError(world.ErrNilSpawner))
	})

	It("rejects round-robin without fields", func() {
		cfg := world.DefaultConfig()
		cfg.Schedule = world.RoundRobin
		_, err := world.New(nil, box, box.Center(), restingSpawner(10), cfg)
		Expect(err).To(MatchError(world.ErrNoFields))
	})

	It("rejects nil fields", func() {
		fields := []field.Field{field.NewGravity(1), nil}
		_, err := world.New(fields, box, box.Center(), restingSpawner(10), world.DefaultConfig())
		Expect(err).To(MatchError(world.ErrNilField))
	})

	It("rejects an invalid box", func() {
		bad := boundary.NewBox(vecmath.Point3{}, -1, 10, 0)
		_, err := world.New(nil, bad, vecmath.Point3{}, restingSpawner(10), world.DefaultConfig())
		Expect(err).To(MatchError(boundary.ErrInvalidBox))
	})

	DescribeTable("rejects bad scheduler settings",
		func(mutate func(*world.Config), want error) {
			cfg := world.DefaultConfig()
			mutate(&cfg)
			_, err := world.New(nil, box, box.Center(), restingSpawner(10), cfg)
			Expect(err).To(MatchError(want))
		},
		Entry("zero compaction", func(c *world.Config) { c.CompactEvery = 0 }, world.ErrInvalidCompaction),
		Entry("negative threshold", func(c *world.Config) { c.ParallelThreshold = -1 }, world.ErrInvalidThreshold),
		Entry("unknown schedule", func(c *world.Config) { c.Schedule = world.Schedule(9) }, world.ErrUnknownSchedule),
		Entry("unknown policy", func(c *world.Config) { c.Policy = boundary.Policy(7) }, boundary.ErrUnknownPolicy),
	)

	It("accepts an empty field list under the default schedule", func() {
		w := mustWorld(nil, restingSpawner(10), world.DefaultConfig())
		Expect(w.Len()).To(BeZero())
		Expect(w.Fields()).To(BeEmpty())
	})

	It("copies the field list", func() {
		fields := []field.Field{field.NewGravity(1)}
		w := mustWorld(fields, restingSpawner(10), world.DefaultConfig())
		fields[0] = field.NewWind(1)
		Expect(w.Fields()[0].Name()).To(Equal("gravity"))
	})
})

var _ = Describe("Update", func() {
	It("only integrates when there are no fields", func() {
		v := vecmath.Vec3{X: 3, Y: -2}
		w := mustWorld(nil, movingSpawner(v), world.DefaultConfig())
		w.CreateParticle()

		w.Update()

		ps := w.Particles()
		Expect(ps).To(HaveLen(1))
		Expect(ps[0].Velocity).To(Equal(v))
		Expect(ps[0].Position.X).To(BeNumerically("~", box.Center().X+0.3, 1e-9))
		Expect(ps[0].Position.Y).To(BeNumerically("~", box.Center().Y-0.2, 1e-9))
		Expect(ps[0].Lifetime).To(Equal(uint64(particle.DefaultLifetime - 1)))
	})

	It("matches the closed form under constant gravity", func() {
		tall := boundary.NewBox(vecmath.Point3{}, 100, 100000, 0)
		w, err := world.New([]field.Field{field.NewGravity(1)}, tall, tall.Center(), restingSpawner(1000), world.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		w.CreateParticle()

		for i := 0; i < 10; i++ {
			w.Update()
		}

		wantY := tall.Center().Y
		for i := 1; i <= 10; i++ {
			wantY += float64(i) / 10
		}

		p := w.Particles()[0]
		Expect(p.IsAlive()).To(BeTrue())
		Expect(p.Velocity.Y).To(BeNumerically("~", 10, 1e-9))
		Expect(p.Position.Y).To(BeNumerically("~", wantY, 1e-9))
		Expect(p.Position.X).To(Equal(tall.Center().X))
	})

	It("kills particles that leave the box and keeps them dead", func() {
		w := mustWorld(nil, movingSpawner(vecmath.Vec3{X: 10000}), world.DefaultConfig())
		w.CreateParticle()

		w.Update()
		Expect(w.Alive()).To(BeZero())
		Expect(w.Len()).To(Equal(1))

		dead := w.Particles()[0]
		w.Update()
		Expect(w.Particles()[0]).To(Equal(dead))
	})

	It("keeps particles inside under the bounce policy", func() {
		cfg := world.DefaultConfig()
		cfg.Policy = boundary.Bounce
		w := mustWorld(nil, movingSpawner(vecmath.Vec3{X: 10000}), cfg)
		w.CreateParticle()

		w.Update()
		p := w.Particles()[0]
		Expect(p.IsAlive()).To(BeTrue())
		Expect(p.Velocity.X).To(BeNumerically("<", 0))
		Expect(box.Contains(p.Position)).To(BeTrue())
	})

	It("cycles one field per tick under round-robin", func() {
		cfg := world.DefaultConfig()
		cfg.Schedule = world.RoundRobin
		fields := []field.Field{field.NewGravity(1), field.NewWind(2)}
		w := mustWorld(fields, restingSpawner(1000), cfg)
		w.CreateParticle()

		Expect(w.ActiveField().Name()).To(Equal("gravity"))
		w.Update()
		Expect(w.Particles()[0].Velocity).To(Equal(vecmath.Vec3{Y: 1}))

		Expect(w.ActiveField().Name()).To(Equal("wind"))
		w.Update()
		Expect(w.Particles()[0].Velocity).To(Equal(vecmath.Vec3{X: -2, Y: 1}))

		Expect(w.ActiveField().Name()).To(Equal("gravity"))
	})

	It("applies the whole chain under the default schedule", func() {
		fields := []field.Field{field.NewGravity(1), field.NewWind(2)}
		w := mustWorld(fields, restingSpawner(1000), world.DefaultConfig())
		w.CreateParticle()

		w.Update()
		Expect(w.Particles()[0].Velocity).To(Equal(vecmath.Vec3{X: -2, Y: 1}))
		Expect(w.ActiveField().Name()).To(Equal("chain"))
	})

	It("gives the same result in parallel and serially", func() {
		fields := []field.Field{
			field.NewGravity(0.5),
			field.NewWind(0.25),
			field.NewAirResistance(),
			field.NewGravityWell(box.Center(), 0.01, 50),
		}
		i := 0
		spawner := world.SpawnerFunc(func(at vecmath.Point3) particle.Particle {
			i++
			v := vecmath.Vec3{X: float64(i%21 - 10), Y: float64(i%11 - 15)}
			return particle.NewBuilder(particle.DefaultDensity).At(at).WithVelocity(v).WithRadius(1 + i%7).Build()
		})

		serialCfg := world.DefaultConfig()
		serialCfg.ParallelThreshold = 1 << 30
		parallelCfg := world.DefaultConfig()
		parallelCfg.ParallelThreshold = 16
		parallelCfg.Workers = 8

		serial := mustWorld(fields, spawner, serialCfg)
		serial.Spawn(4000)
		i = 0
		parallel := mustWorld(fields, spawner, parallelCfg)
		parallel.Spawn(4000)

		for t := 0; t < 30; t++ {
			serial.Update()
			parallel.Update()
		}
		Expect(parallel.Particles()).To(Equal(serial.Particles()))
	})
})

var _ = Describe("compaction", func() {
	It("defers removal of dead particles past the compaction window", func() {
		lifetime := uint64(1)
		spawner := world.SpawnerFunc(func(at vecmath.Point3) particle.Particle {
			return restingSpawner(lifetime)(at)
		})
		w := mustWorld(nil, spawner, world.DefaultConfig())

		w.Spawn(150)
		w.Update()
		Expect(w.Alive()).To(BeZero())
		Expect(w.Len()).To(Equal(150))

		lifetime = 1000
		for k := 1; k <= world.DefaultCompactEvery; k++ {
			w.CreateParticle()
			w.Update()
			if k < world.DefaultCompactEvery {
				Expect(w.Len()).To(Equal(150+k), "after %d updates", k)
			}
		}

		Expect(w.Len()).To(Equal(world.DefaultCompactEvery))
		Expect(w.Alive()).To(Equal(world.DefaultCompactEvery))
		Expect(w.Stats().Compactions).To(Equal(1))
	})

	It("logs each sweep", func() {
		var buf bytes.Buffer
		cfg := world.DefaultConfig()
		cfg.CompactEvery = 2
		cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		w := mustWorld(nil, restingSpawner(1), cfg)
		w.Spawn(5)

		for i := 0; i < 3; i++ {
			w.Update()
		}
		Expect(w.Len()).To(BeZero())
		Expect(buf.String()).To(ContainSubstring("compacted particle store"))
		Expect(buf.String()).To(ContainSubstring("removed=5"))
	})
})

var _ = Describe("accessors", func() {
	It("yields only live particles", func() {
		w := mustWorld(nil, restingSpawner(1), world.DefaultConfig())
		w.Spawn(3)
		w.Update()
		w.Spawn(2)

		n := 0
		for p := range w.Live() {
			Expect(p.IsAlive()).To(BeTrue())
			n++
		}
		Expect(n).To(Equal(2))
		Expect(w.Stats()).To(Equal(world.Stats{Tick: 1, Total: 5, Alive: 2}))
	})

	It("stops iterating when asked", func() {
		w := mustWorld(nil, restingSpawner(100), world.DefaultConfig())
		w.Spawn(10)
		n := 0
		for range w.Live() {
			n++
			if n == 3 {
				break
			}
		}
		Expect(n).To(Equal(3))
	})

	It("collects overlays from drawable fields only", func() {
		fields := []field.Field{
			field.NewGravity(1),
			field.NewGravityWell(vecmath.Point3{X: 10}, 1, 5),
			field.NewBigGravityWell(vecmath.Point3{X: 20}, 1, 5, 3),
		}
		w := mustWorld(fields, restingSpawner(10), world.DefaultConfig())
		overlays := w.Overlays()
		Expect(overlays).To(HaveLen(2))
		Expect(overlays[0].Radii).To(HaveLen(3))
		Expect(overlays[1].Center).To(Equal(vecmath.Point3{X: 20}))
	})

	It("clears the store", func() {
		w := mustWorld(nil, restingSpawner(10), world.DefaultConfig())
		w.Spawn(4)
		w.Clear()
		Expect(w.Len()).To(BeZero())
		Expect(w.SpawnPoint()).To(Equal(box.Center()))
	})
})

var _ = Describe("ParseSchedule", func() {
	DescribeTable("parses names",
		func(in string, want world.Schedule) {
			got, err := world.ParseSchedule(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
			Expect(world.ParseSchedule(got.String())).To(Equal(want))
		},
		Entry("empty", "", world.AllFields),
		Entry("all", "all", world.AllFields),
		Entry("round robin", "round_robin", world.RoundRobin),
		Entry("short", "RR", world.RoundRobin),
	)

	It("rejects unknown names", func() {
		_, err := world.ParseSchedule("random")
		Expect(err).To(MatchError(world.ErrUnknownSchedule))
	})
})
