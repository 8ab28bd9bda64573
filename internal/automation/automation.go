// Package automation runs scripted sequences of simulations from YAML.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/metrics"
	"github.com/san-kum/fieldsim/internal/storage"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step starts from a preset (or the default config) and overrides what is
// set. Fields replaces the preset's field list entirely.
type Step struct {
	Preset       string               `yaml:"preset"`
	Ticks        int                  `yaml:"ticks"`
	SpawnPerTick int                  `yaml:"spawn_per_tick"`
	Seed         int64                `yaml:"seed"`
	Policy       string               `yaml:"policy"`
	Schedule     string               `yaml:"schedule"`
	Fields       []config.FieldConfig `yaml:"fields"`
	SaveAs       string               `yaml:"save_as"`
}

type StepResult struct {
	Name    string
	RunID   string
	Final   metrics.Sample
	Metrics map[string]float64
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("automation: parse: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &sc, nil
}

// Config resolves the step into a validated run config.
func (s Step) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
	}
	if s.Ticks > 0 {
		cfg.Run.Ticks = s.Ticks
	}
	if s.SpawnPerTick > 0 {
		cfg.Run.SpawnPerTick = s.SpawnPerTick
	}
	if s.Seed != 0 {
		cfg.Spawn.Seed = s.Seed
	}
	if s.Policy != "" {
		cfg.World.Policy = s.Policy
	}
	if s.Schedule != "" {
		cfg.World.Schedule = s.Schedule
	}
	if len(s.Fields) > 0 {
		cfg.Fields = s.Fields
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, cfg.Validate()
}

// RunScenario executes the steps in order. A nil store skips saving. The
// results of completed steps are returned alongside any error.
func RunScenario(ctx context.Context, sc *Scenario, st *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("scenario step", "scenario", sc.Name, "step", i+1, "of", len(sc.Steps), "name", cfg.Name)

		exp, err := experiment.New(cfg, nil, logger)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: cfg.Name, Final: res.Final(), Metrics: res.Metrics}
		if st != nil {
			meta := storage.NewMetadata(cfg)
			meta.Elapsed = res.Elapsed
			meta.Metrics = res.Metrics
			if sr.RunID, err = st.Save(meta, cfg, res.Samples); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}
	return results, nil
}
