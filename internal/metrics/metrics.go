// Package metrics summarizes particle populations tick by tick.
package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/fieldsim/internal/particle"
)

// Metric accumulates an aggregate over the ticks of a run.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Sample is the per-tick record written to ticks.csv.
type Sample struct {
	Tick          uint64  `csv:"tick" json:"tick"`
	Total         int     `csv:"total" json:"total"`
	Alive         int     `csv:"alive" json:"alive"`
	MeanSpeed     float64 `csv:"mean_speed" json:"mean_speed"`
	SpeedStdDev   float64 `csv:"speed_stddev" json:"speed_stddev"`
	KineticEnergy float64 `csv:"kinetic_energy" json:"kinetic_energy"`
}

// Measure builds a Sample from the live particles of a tick. total is the
// store size including particles awaiting compaction.
func Measure(tick uint64, total int, live []particle.Particle) Sample {
	s := Sample{Tick: tick, Total: total, Alive: len(live)}
	if len(live) == 0 {
		return s
	}

	speeds := make([]float64, len(live))
	for i, p := range live {
		speeds[i] = p.Speed()
		s.KineticEnergy += p.KineticEnergy()
	}
	if len(speeds) == 1 {
		s.MeanSpeed = speeds[0]
		return s
	}
	s.MeanSpeed, s.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	return s
}

func Defaults() []Metric {
	return []Metric{
		NewPopulation(),
		NewPeakPopulation(),
		NewMeanSpeed(),
		NewSpeedSpread(),
		NewKineticEnergy(),
	}
}

// Collect reads every metric into a map keyed by name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
