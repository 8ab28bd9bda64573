package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/storage"
)

const scenarioYAML = `
name: compare
description: gravity against wind
steps:
  - preset: fountain
    ticks: 10
    spawn_per_tick: 2
    save_as: fountain-short
  - ticks: 5
    policy: bounce
    fields:
      - type: wind
        strength: 0.2
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("ParseScenario failed: %v", err)
	}
	if sc.Name != "compare" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	cfg, err := sc.Steps[1].Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.World.Policy != "bounce" || len(cfg.Fields) != 1 || cfg.Fields[0].Type != "wind" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Run.SpawnPerTick != config.DefaultSpawnPerTick {
		t.Errorf("spawn_per_tick = %d, want default", cfg.Run.SpawnPerTick)
	}

	if _, err := ParseScenario([]byte("name: empty")); !errors.Is(err, ErrEmptyScenario) {
		t.Errorf("expected ErrEmptyScenario, got %v", err)
	}
	if _, err := (Step{Preset: "nope"}).Config(); err == nil {
		t.Error("expected unknown preset error")
	}
	if _, err := (Step{Policy: "teleport"}).Config(); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, st, nil)
	if err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Name != "fountain-short" || results[0].Final.Tick != 10 {
		t.Errorf("unexpected first step %+v", results[0])
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 saved runs, got %d", len(runs))
	}
	samples, err := st.LoadTicks(results[0].RunID)
	if err != nil || len(samples) != 10 {
		t.Errorf("expected 10 saved ticks, got %d (%v)", len(samples), err)
	}
}

func TestRunScenario_StopsOnError(t *testing.T) {
	sc := &Scenario{Steps: []Step{{Ticks: 3}, {Preset: "missing"}}}
	results, err := RunScenario(context.Background(), sc, nil, nil)
	if err == nil {
		t.Fatal("expected an error from the second step")
	}
	if len(results) != 1 || results[0].RunID != "" {
		t.Errorf("expected one unsaved result, got %+v", results)
	}
}

func TestRunScenario_RejectsEscapingSaveAs(t *testing.T) {
	sc := &Scenario{Steps: []Step{{Ticks: 2, SaveAs: "../outside"}}}
	_, err := RunScenario(context.Background(), sc, storage.New(t.TempDir()), nil)
	if !errors.Is(err, storage.ErrInvalidName) {
		t.Errorf("expected storage.ErrInvalidName, got %v", err)
	}
}
