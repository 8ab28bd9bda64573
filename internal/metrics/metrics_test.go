package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/fieldsim/internal/particle"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

func moving(v vecmath.Vec3) particle.Particle {
	return particle.NewBuilder(particle.DefaultDensity).WithVelocity(v).Build()
}

func TestMeasure(t *testing.T) {
	live := []particle.Particle{
		moving(vecmath.Vec3{X: 3}),
		moving(vecmath.Vec3{Y: 4}),
	}
	s := Measure(7, 5, live)

	if s.Tick != 7 || s.Total != 5 || s.Alive != 2 {
		t.Errorf("counts = %+v", s)
	}
	if math.Abs(s.MeanSpeed-3.5) > 1e-9 {
		t.Errorf("expected mean speed 3.5, got %f", s.MeanSpeed)
	}
	if math.Abs(s.SpeedStdDev-math.Sqrt(0.5)) > 1e-9 {
		t.Errorf("expected stddev %f, got %f", math.Sqrt(0.5), s.SpeedStdDev)
	}
	if math.Abs(s.KineticEnergy-12.5) > 1e-9 {
		t.Errorf("expected kinetic energy 12.5, got %f", s.KineticEnergy)
	}
}

func TestMeasure_SmallPopulations(t *testing.T) {
	empty := Measure(1, 3, nil)
	if empty.Alive != 0 || empty.MeanSpeed != 0 || empty.SpeedStdDev != 0 {
		t.Errorf("empty sample = %+v", empty)
	}

	single := Measure(1, 1, []particle.Particle{moving(vecmath.Vec3{X: 2})})
	if single.MeanSpeed != 2 || single.SpeedStdDev != 0 {
		t.Errorf("single sample = %+v", single)
	}
}

func TestMetrics(t *testing.T) {
	samples := []Sample{
		{Alive: 10, MeanSpeed: 2, SpeedStdDev: 1, KineticEnergy: 4},
		{Alive: 0},
		{Alive: 20, MeanSpeed: 4, SpeedStdDev: 3, KineticEnergy: 8},
	}

	tests := []struct {
		metric Metric
		want   float64
	}{
		{NewPopulation(), 10},
		{NewPeakPopulation(), 20},
		{NewMeanSpeed(), 3},
		{NewSpeedSpread(), 2},
		{NewKineticEnergy(), 6},
	}

	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			for _, s := range samples {
				tt.metric.Observe(s)
			}
			if got := tt.metric.Value(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}

			tt.metric.Reset()
			if tt.metric.Value() != 0 {
				t.Error("expected zero after reset")
			}
		})
	}
}

func TestCollect(t *testing.T) {
	ms := Defaults()
	for _, m := range ms {
		m.Observe(Sample{Alive: 4, MeanSpeed: 1})
	}
	got := Collect(ms)
	if len(got) != len(ms) {
		t.Fatalf("expected %d entries, got %d", len(ms), len(got))
	}
	if got["population"] != 4 || got["peak_population"] != 4 || got["mean_speed"] != 1 {
		t.Errorf("unexpected values: %v", got)
	}
}
