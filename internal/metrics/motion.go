package metrics

import "gonum.org/v1/gonum/stat"

// mean averages one Sample column over the ticks that had live particles.
type mean struct {
	name   string
	pick   func(Sample) float64
	values []float64
}

func (m *mean) Name() string { return m.name }

func (m *mean) Observe(s Sample) {
	if s.Alive == 0 {
		return
	}
	m.values = append(m.values, m.pick(s))
}

func (m *mean) Value() float64 {
	if len(m.values) == 0 {
		return 0
	}
	return stat.Mean(m.values, nil)
}

func (m *mean) Reset() { m.values = m.values[:0] }

func NewMeanSpeed() Metric {
	return &mean{name: "mean_speed", pick: func(s Sample) float64 { return s.MeanSpeed }}
}

func NewSpeedSpread() Metric {
	return &mean{name: "speed_spread", pick: func(s Sample) float64 { return s.SpeedStdDev }}
}

func NewKineticEnergy() Metric {
	return &mean{name: "kinetic_energy", pick: func(s Sample) float64 { return s.KineticEnergy }}
}
