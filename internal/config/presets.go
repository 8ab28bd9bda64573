package config

import (
	"maps"
	"slices"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/world"
)

// Presets build a fresh Config on every call so callers may mutate the result.
var Presets = map[string]func() *Config{
	"fountain": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "fountain"
		cfg.World.SpawnAt = &Point{X: DefaultWidth / 2, Y: DefaultHeight - 60}
		cfg.Fields = []FieldConfig{
			{Type: "gravity", G: Float(0.5)},
			{Type: "air_resistance"},
		}
		return cfg
	},
	"windy": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "windy"
		cfg.Fields = []FieldConfig{
			{Type: "gravity"},
			{Type: "wind", Strength: Float(0.4)},
			{Type: "air_resistance", Drag: Float(0.3)},
		}
		return cfg
	},
	"wells": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "wells"
		cfg.Fields = []FieldConfig{
			{Type: "gravity_well", Strength: Float(0.3), Radius: Float(120), Center: &Point{X: 600, Y: 530}},
			{Type: "big_gravity_well", Strength: Float(0.2), Radius: Float(80), Layers: Int(4), Center: &Point{X: 1300, Y: 530}},
		}
		cfg.Run.SpawnPerTick = 3
		return cfg
	},
	"orbit": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "orbit"
		cfg.World.Schedule = world.RoundRobin.String()
		cfg.Fields = []FieldConfig{
			{Type: "gravity_well", Strength: Float(0.5), Radius: Float(150)},
			{Type: "wind", Strength: Float(0.1)},
		}
		return cfg
	},
	"bounce": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "bounce"
		cfg.World.Policy = boundary.Bounce.String()
		cfg.Spawn.Lifetime = IntRange{Min: 400, Max: 600}
		cfg.Run.SpawnPerTick = 2
		return cfg
	},
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
