package world

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

// Spawner creates a new particle at the given point.
type Spawner interface {
	Spawn(at vecmath.Point3) particle.Particle
}

// SpawnerFunc adapts a plain function to Spawner.
type SpawnerFunc func(at vecmath.Point3) particle.Particle

func (f SpawnerFunc) Spawn(at vecmath.Point3) particle.Particle { return f(at) }

type World struct {
	particles  []particle.Particle
	fields     field.Chain
	bounds     boundary.Box
	spawnPoint vecmath.Point3
	spawner    Spawner
	cfg        Config
	workers    int
	log        *slog.Logger

	sinceCompact int
	fieldIndex   int
	ticks        uint64
	compactions  int
}

// New validates its inputs and returns an empty world. The field list is
// copied; later changes to the caller's slice have no effect.
func New(fields []field.Field, bounds boundary.Box, spawnPoint vecmath.Point3, spawner Spawner, cfg Config) (*World, error) {
	if spawner == nil {
		return nil, ErrNilSpawner
	}
	for i, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilField, i)
		}
	}
	if cfg.Schedule == RoundRobin && len(fields) == 0 {
		return nil, ErrNoFields
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &World{
		particles:  make([]particle.Particle, 0, 256),
		fields:     append(field.Chain(nil), fields...),
		bounds:     bounds,
		spawnPoint: spawnPoint,
		spawner:    spawner,
		cfg:        cfg,
		workers:    cfg.workers(),
		log:        cfg.logger(),
	}, nil
}

// Update advances the simulation by one tick.
func (w *World) Update() {
	active := w.ActiveField()

	ParallelFor(len(w.particles), w.cfg.ParallelThreshold, w.workers, func(start, end int) {
		for i := start; i < end; i++ {
			if !w.particles[i].IsAlive() {
				continue
			}
			w.particles[i] = w.step(w.particles[i], active)
		}
	})

	w.ticks++
	w.sinceCompact++
	if w.sinceCompact > w.cfg.CompactEvery {
		w.compact()
		w.sinceCompact = 0
	}

	if w.cfg.Schedule == RoundRobin {
		w.fieldIndex = (w.fieldIndex + 1) % len(w.fields)
	}
}

func (w *World) step(p particle.Particle, f field.Field) particle.Particle {
	p = f.Apply(p)
	p.Integrate()
	w.cfg.Policy.Enforce(w.bounds, &p)
	return p
}

func (w *World) compact() {
	before := len(w.particles)
	kept := w.particles[:0]
	for _, p := range w.particles {
		if p.IsAlive() {
			kept = append(kept, p)
		}
	}
	clear(w.particles[len(kept):])
	w.particles = kept
	w.compactions++

	w.log.Debug("compacted particle store",
		"tick", w.ticks,
		"removed", before-len(kept),
		"remaining", len(kept),
	)
}

// ActiveField returns what Update will apply next: the whole chain under
// AllFields, or the current field under RoundRobin.
func (w *World) ActiveField() field.Field {
	if w.cfg.Schedule == RoundRobin {
		return w.fields[w.fieldIndex]
	}
	return w.fields
}

// CreateParticle spawns one particle at the spawn point.
func (w *World) CreateParticle() {
	w.particles = append(w.particles, w.spawner.Spawn(w.spawnPoint))
}

func (w *World) Spawn(n int) {
	for i := 0; i < n; i++ {
		w.CreateParticle()
	}
}

// Clear drops every particle and restarts the schedule.
func (w *World) Clear() {
	clear(w.particles)
	w.particles = w.particles[:0]
	w.sinceCompact = 0
	w.fieldIndex = 0
}

// Live yields each particle that is still alive.
func (w *World) Live() iter.Seq[particle.Particle] {
	return func(yield func(particle.Particle) bool) {
		for _, p := range w.particles {
			if !p.IsAlive() {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Particles returns a copy of the store, dead entries included.
func (w *World) Particles() []particle.Particle {
	out := make([]particle.Particle, len(w.particles))
	copy(out, w.particles)
	return out
}

// Len is the store size, counting dead particles not yet compacted.
func (w *World) Len() int { return len(w.particles) }

func (w *World) Alive() int {
	n := 0
	for i := range w.particles {
		if w.particles[i].IsAlive() {
			n++
		}
	}
	return n
}

func (w *World) Ticks() uint64              { return w.ticks }
func (w *World) Bounds() boundary.Box       { return w.bounds }
func (w *World) SpawnPoint() vecmath.Point3 { return w.spawnPoint }
func (w *World) Config() Config             { return w.cfg }

func (w *World) Fields() []field.Field {
	return append([]field.Field(nil), w.fields...)
}

// Overlays collects the overlays of every drawable field.
func (w *World) Overlays() []field.Overlay {
	var out []field.Overlay
	for _, f := range w.fields {
		if o, ok := field.OverlayOf(f); ok {
			out = append(out, o)
		}
	}
	return out
}

// Stats is a diagnostic snapshot of the store.
type Stats struct {
	Tick        uint64
	Total       int
	Alive       int
	Compactions int
}

func (w *World) Stats() Stats {
	return Stats{
		Tick:        w.ticks,
		Total:       len(w.particles),
		Alive:       w.Alive(),
		Compactions: w.compactions,
	}
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", s.Tick),
		slog.Int("total", s.Total),
		slog.Int("alive", s.Alive),
		slog.Int("compactions", s.Compactions),
	)
}
