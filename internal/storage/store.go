package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	ticksFile    = "ticks.csv"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrInvalidName = errors.New("storage: invalid run name")
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// checkName rejects names that would resolve outside the base directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Ticks        int                `json:"ticks"`
	SpawnPerTick int                `json:"spawn_per_tick"`
	Schedule     string             `json:"schedule"`
	Policy       string             `json:"policy"`
	Fields       []string           `json:"fields"`
	Elapsed      time.Duration      `json:"elapsed_ns"`
	Metrics      map[string]float64 `json:"metrics"`
}

// NewMetadata fills the descriptive part of a run record from its config.
func NewMetadata(cfg *config.Config) RunMetadata {
	fields := make([]string, len(cfg.Fields))
	for i, f := range cfg.Fields {
		fields[i] = f.Type
	}
	name := cfg.Name
	if name == "" {
		name = "run"
	}
	return RunMetadata{
		Name:         name,
		Timestamp:    time.Now(),
		Seed:         cfg.Spawn.Seed,
		Ticks:        cfg.Run.Ticks,
		SpawnPerTick: cfg.Run.SpawnPerTick,
		Schedule:     cfg.World.Schedule,
		Policy:       cfg.World.Policy,
		Fields:       fields,
	}
}

// Save writes a run directory holding metadata.json, config.yaml and
// ticks.csv, and returns its ID.
func (s *Store) Save(meta RunMetadata, cfg *config.Config, samples []metrics.Sample) (string, error) {
	if err := checkName(meta.Name); err != nil {
		return "", err
	}
	if err := s.Init(); err != nil {
		return "", err
	}
	runID, runDir, err := s.createRunDir(meta.Name, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = runID

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("writing metadata: %w", err)
	}

	if cfg != nil {
		if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
			return "", fmt.Errorf("writing config: %w", err)
		}
	}

	csvFile, err := os.Create(filepath.Join(runDir, ticksFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if len(samples) == 0 {
		return runID, nil
	}
	if err := gocsv.MarshalFile(&samples, csvFile); err != nil {
		return "", fmt.Errorf("writing ticks: %w", err)
	}
	return runID, nil
}

// createRunDir makes a fresh directory, suffixing the ID if one from the
// same second already exists.
func (s *Store) createRunDir(name string, ts time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%d", name, ts.Unix())
	runID := base
	for i := 1; ; i++ {
		dir := s.Dir(runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if err := checkName(runID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	if err := checkName(runID); err != nil {
		return nil, err
	}
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}

func (s *Store) LoadTicks(runID string) ([]metrics.Sample, error) {
	if err := checkName(runID); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Dir(runID), ticksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return []metrics.Sample{}, nil
	}

	var samples []metrics.Sample
	if err := gocsv.UnmarshalFile(f, &samples); err != nil {
		return nil, fmt.Errorf("reading ticks: %w", err)
	}
	return samples, nil
}
