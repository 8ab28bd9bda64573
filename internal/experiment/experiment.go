// Package experiment turns a config into a running world and drives it for a
// fixed number of ticks.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/metrics"
	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/spawn"
	"github.com/san-kum/fieldsim/internal/world"
)

// Observer is notified after every tick.
type Observer interface {
	OnTick(w *world.World, s metrics.Sample)
}

type ObserverFunc func(w *world.World, s metrics.Sample)

func (f ObserverFunc) OnTick(w *world.World, s metrics.Sample) { f(w, s) }

type Result struct {
	Samples []metrics.Sample
	Metrics map[string]float64
	Ticks   int
	Elapsed time.Duration
}

// Final returns the last sample, or a zero Sample when nothing ran.
func (r *Result) Final() metrics.Sample {
	if len(r.Samples) == 0 {
		return metrics.Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}

type Experiment struct {
	cfg       *config.Config
	world     *world.World
	metrics   []metrics.Metric
	observers []Observer
	log       *slog.Logger

	live []particle.Particle
}

// Build constructs the world described by cfg. A nil registry uses
// NewRegistry; a nil logger discards.
func Build(cfg *config.Config, reg *Registry, logger *slog.Logger) (*world.World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	bounds, _ := cfg.Bounds()
	fields, err := reg.BuildFields(cfg.Fields, bounds.Center())
	if err != nil {
		return nil, err
	}
	spawner, err := spawn.NewRandom(cfg.Spawn.Seed, cfg.SpawnOptions())
	if err != nil {
		return nil, err
	}
	wc, _ := cfg.WorldConfig()
	wc.Logger = logger.With("component", "world")

	return world.New(fields, bounds, cfg.SpawnPoint(), spawner, wc)
}

func New(cfg *config.Config, reg *Registry, logger *slog.Logger) (*Experiment, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w, err := Build(cfg, reg, logger)
	if err != nil {
		return nil, err
	}
	return &Experiment{
		cfg:     cfg,
		world:   w,
		metrics: metrics.Defaults(),
		log:     logger,
	}, nil
}

func (e *Experiment) AddMetric(m metrics.Metric) { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o Observer)     { e.observers = append(e.observers, o) }
func (e *Experiment) World() *world.World        { return e.world }
func (e *Experiment) Config() *config.Config     { return e.cfg }

// Step spawns the configured per-tick count, advances the world once and
// returns the resulting sample.
func (e *Experiment) Step() metrics.Sample {
	e.world.Spawn(e.cfg.Run.SpawnPerTick)
	e.world.Update()

	e.live = slices.AppendSeq(e.live[:0], e.world.Live())
	s := metrics.Measure(e.world.Ticks(), e.world.Len(), e.live)

	for _, m := range e.metrics {
		m.Observe(s)
	}
	for _, o := range e.observers {
		o.OnTick(e.world, s)
	}
	return s
}

// Run spawns the initial burst and steps Run.Ticks times. On cancellation
// it returns the partial result along with the context error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	ticks := e.cfg.Run.Ticks
	result := &Result{Samples: make([]metrics.Sample, 0, ticks)}

	for _, m := range e.metrics {
		m.Reset()
	}
	e.world.Spawn(e.cfg.Run.InitialBurst)

	e.log.Info("run started", "name", e.cfg.Name, "ticks", ticks, "fields", len(e.cfg.Fields))
	start := time.Now()

	finish := func() {
		result.Elapsed = time.Since(start)
		result.Metrics = metrics.Collect(e.metrics)
		e.log.Info("run finished", "ticks", result.Ticks, "elapsed", result.Elapsed, "stats", e.world.Stats())
	}

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			finish()
			return result, fmt.Errorf("run interrupted at tick %d: %w", i, ctx.Err())
		default:
		}
		result.Samples = append(result.Samples, e.Step())
		result.Ticks++
	}

	finish()
	return result, nil
}
