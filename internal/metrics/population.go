package metrics

type Population struct {
	name    string
	samples int
	total   float64
}

func NewPopulation() *Population {
	return &Population{name: "population"}
}

func (p *Population) Name() string { return p.name }

func (p *Population) Observe(s Sample) {
	p.total += float64(s.Alive)
	p.samples++
}

// Value is the mean number of live particles per tick.
func (p *Population) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.total / float64(p.samples)
}

func (p *Population) Reset() {
	p.total = 0
	p.samples = 0
}

type PeakPopulation struct {
	name string
	peak int
}

func NewPeakPopulation() *PeakPopulation {
	return &PeakPopulation{name: "peak_population"}
}

func (p *PeakPopulation) Name() string     { return p.name }
func (p *PeakPopulation) Observe(s Sample) { p.peak = max(p.peak, s.Alive) }
func (p *PeakPopulation) Value() float64   { return float64(p.peak) }
func (p *PeakPopulation) Reset()           { p.peak = 0 }
