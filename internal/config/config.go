package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/spawn"
	"github.com/san-kum/fieldsim/internal/vecmath"
	"github.com/san-kum/fieldsim/internal/world"
)

const (
	DefaultWidth        = 1900.0
	DefaultHeight       = 1060.0
	DefaultTicks        = 1000
	DefaultSpawnPerTick = 5
	DefaultSeed         = 1
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Name     string         `yaml:"name,omitempty"`
	World    WorldConfig    `yaml:"world"`
	Particle ParticleConfig `yaml:"particle"`
	Spawn    SpawnConfig    `yaml:"spawn"`
	Fields   []FieldConfig  `yaml:"fields"`
	Run      RunConfig      `yaml:"run"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (p Point) Vec() vecmath.Point3 { return vecmath.Point3{X: p.X, Y: p.Y, Z: p.Z} }

type WorldConfig struct {
	Origin       Point   `yaml:"origin"`
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Depth        float64 `yaml:"depth"`
	SpawnAt      *Point  `yaml:"spawn_at,omitempty"`
	Schedule     string  `yaml:"schedule"`
	Policy       string  `yaml:"policy"`
	CompactEvery int     `yaml:"compact_every"`
	Workers      int     `yaml:"workers,omitempty"`
}

type ParticleConfig struct {
	Density float64 `yaml:"density"`
}

type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type SpawnConfig struct {
	Seed     int64    `yaml:"seed"`
	VelX     Range    `yaml:"vel_x"`
	VelY     Range    `yaml:"vel_y"`
	VelZ     Range    `yaml:"vel_z"`
	Radius   IntRange `yaml:"radius"`
	Lifetime IntRange `yaml:"lifetime"`
}

// FieldConfig describes one force field. Which parameters apply depends on
// Type; nil parameters fall back to the field's defaults, so an explicit 0
// is kept.
type FieldConfig struct {
	Type     string   `yaml:"type"`
	G        *float64 `yaml:"g,omitempty"`
	Strength *float64 `yaml:"strength,omitempty"`
	Radius   *float64 `yaml:"radius,omitempty"`
	Layers   *int     `yaml:"layers,omitempty"`
	Center   *Point   `yaml:"center,omitempty"`
	Density  *float64 `yaml:"density,omitempty"`
	Drag     *float64 `yaml:"drag,omitempty"`
}

func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }

// Set assigns a numeric parameter by its yaml name.
func (f *FieldConfig) Set(name string, v float64) error {
	switch name {
	case "g":
		f.G = Float(v)
	case "strength":
		f.Strength = Float(v)
	case "radius":
		f.Radius = Float(v)
	case "layers":
		f.Layers = Int(int(v))
	case "density":
		f.Density = Float(v)
	case "drag":
		f.Drag = Float(v)
	default:
		return fmt.Errorf("unknown field parameter %q", name)
	}
	return nil
}

func (f FieldConfig) clone() FieldConfig {
	f.G = clonePtr(f.G)
	f.Strength = clonePtr(f.Strength)
	f.Radius = clonePtr(f.Radius)
	f.Layers = clonePtr(f.Layers)
	f.Center = clonePtr(f.Center)
	f.Density = clonePtr(f.Density)
	f.Drag = clonePtr(f.Drag)
	return f
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type RunConfig struct {
	Ticks        int `yaml:"ticks"`
	SpawnPerTick int `yaml:"spawn_per_tick"`
	InitialBurst int `yaml:"initial_burst,omitempty"`
}

func DefaultConfig() *Config {
	so := spawn.DefaultOptions()
	return &Config{
		Name: "default",
		World: WorldConfig{
			Width:        DefaultWidth,
			Height:       DefaultHeight,
			Schedule:     world.AllFields.String(),
			Policy:       boundary.KillOnExit.String(),
			CompactEvery: world.DefaultCompactEvery,
		},
		Particle: ParticleConfig{Density: particle.DefaultDensity},
		Spawn: SpawnConfig{
			Seed:     DefaultSeed,
			VelX:     Range{Min: so.VelX.Min, Max: so.VelX.Max},
			VelY:     Range{Min: so.VelY.Min, Max: so.VelY.Max},
			Radius:   IntRange{Min: so.Radius.Min, Max: so.Radius.Max},
			Lifetime: IntRange{Min: so.Lifetime.Min, Max: so.Lifetime.Max},
		},
		Fields: []FieldConfig{{Type: "gravity"}},
		Run: RunConfig{
			Ticks:        DefaultTicks,
			SpawnPerTick: DefaultSpawnPerTick,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over DefaultConfig, so omitted sections keep defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.World.SpawnAt = clonePtr(c.World.SpawnAt)
	out.Fields = make([]FieldConfig, len(c.Fields))
	for i, f := range c.Fields {
		out.Fields[i] = f.clone()
	}
	return &out
}

func (c *Config) Validate() error {
	if _, err := c.Bounds(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.WorldConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.SpawnOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Run.Ticks < 0 || c.Run.SpawnPerTick < 0 || c.Run.InitialBurst < 0 {
		return fmt.Errorf("%w: run counts must not be negative", ErrInvalidConfig)
	}
	for i, f := range c.Fields {
		if f.Type == "" {
			return fmt.Errorf("%w: field %d has no type", ErrInvalidConfig, i)
		}
	}
	return nil
}

func (c *Config) Bounds() (boundary.Box, error) {
	b := boundary.NewBox(c.World.Origin.Vec(), c.World.Width, c.World.Height, c.World.Depth)
	return b, b.Validate()
}

// SpawnPoint is World.SpawnAt when set, otherwise the box center.
func (c *Config) SpawnPoint() vecmath.Point3 {
	if c.World.SpawnAt != nil {
		return c.World.SpawnAt.Vec()
	}
	b, _ := c.Bounds()
	return b.Center()
}

// WorldConfig converts the world section into scheduler settings. The
// logger is left for the caller to set.
func (c *Config) WorldConfig() (world.Config, error) {
	wc := world.DefaultConfig()
	sched, err := world.ParseSchedule(c.World.Schedule)
	if err != nil {
		return wc, err
	}
	policy, err := boundary.ParsePolicy(c.World.Policy)
	if err != nil {
		return wc, err
	}
	wc.Schedule = sched
	wc.Policy = policy
	if c.World.CompactEvery != 0 {
		wc.CompactEvery = c.World.CompactEvery
	}
	wc.Workers = c.World.Workers
	return wc, wc.Validate()
}

func (c *Config) SpawnOptions() spawn.Options {
	s := c.Spawn
	return spawn.Options{
		Density:  c.Particle.Density,
		VelX:     spawn.Range{Min: s.VelX.Min, Max: s.VelX.Max},
		VelY:     spawn.Range{Min: s.VelY.Min, Max: s.VelY.Max},
		VelZ:     spawn.Range{Min: s.VelZ.Min, Max: s.VelZ.Max},
		Radius:   spawn.IntRange{Min: s.Radius.Min, Max: s.Radius.Max},
		Lifetime: spawn.IntRange{Min: s.Lifetime.Min, Max: s.Lifetime.Max},
	}
}
