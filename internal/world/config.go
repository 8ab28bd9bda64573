package world

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/san-kum/fieldsim/internal/boundary"
)

const (
	DefaultCompactEvery      = 100
	DefaultParallelThreshold = 256
)

var (
	ErrNilSpawner        = errors.New("world: spawner is required")
	ErrNoFields          = errors.New("world: round-robin schedule needs at least one field")
	ErrNilField          = errors.New("world: nil force field")
	ErrInvalidCompaction = errors.New("world: compaction interval must be positive")
	ErrInvalidThreshold  = errors.New("world: parallel threshold must not be negative")
	ErrUnknownSchedule   = errors.New("world: unknown schedule")
)

// Schedule selects which fields act on particles each tick.
type Schedule int

const (
	// AllFields applies every field, in order, every tick.
	AllFields Schedule = iota
	// RoundRobin applies a single field per tick, cycling through the list.
	// It approximates AllFields at a fraction of the cost and is opt-in.
	RoundRobin
)

func (s Schedule) String() string {
	switch s {
	case AllFields:
		return "all"
	case RoundRobin:
		return "round_robin"
	}
	return fmt.Sprintf("schedule(%d)", int(s))
}

func ParseSchedule(s string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return AllFields, nil
	case "round_robin", "roundrobin", "rr":
		return RoundRobin, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSchedule, s)
}

type Config struct {
	Schedule Schedule
	Policy   boundary.Policy

	// CompactEvery is the number of ticks between sweeps of dead particles.
	CompactEvery int

	// Workers bounds the goroutines used per tick; 0 means GOMAXPROCS.
	Workers int

	// ParallelThreshold is the store size at or below which a tick runs serially.
	ParallelThreshold int

	Logger *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Schedule:          AllFields,
		Policy:            boundary.KillOnExit,
		CompactEvery:      DefaultCompactEvery,
		ParallelThreshold: DefaultParallelThreshold,
	}
}

func (c Config) Validate() error {
	if c.CompactEvery <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidCompaction, c.CompactEvery)
	}
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidThreshold, c.ParallelThreshold)
	}
	if c.Schedule != AllFields && c.Schedule != RoundRobin {
		return fmt.Errorf("%w: %d", ErrUnknownSchedule, int(c.Schedule))
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}
