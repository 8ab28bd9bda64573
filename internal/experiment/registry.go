package experiment

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/field"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const (
	DefaultWellStrength = 0.3
	DefaultWellRadius   = 100.0
	DefaultWellLayers   = 3
)

var (
	ErrUnknownField = errors.New("experiment: unknown field type")
	ErrInvalidField = errors.New("experiment: invalid field parameters")
)

// FieldFactory builds a field from its config entry. center is where wells
// without an explicit center are placed.
type FieldFactory func(fc config.FieldConfig, center vecmath.Point3) (field.Field, error)

type Registry struct {
	fields map[string]FieldFactory
}

func NewRegistry() *Registry {
	r := &Registry{fields: make(map[string]FieldFactory)}

	r.fields["gravity"] = func(fc config.FieldConfig, _ vecmath.Point3) (field.Field, error) {
		return field.NewGravity(orDefault(fc.G, field.DefaultGravity)), nil
	}
	r.fields["wind"] = func(fc config.FieldConfig, _ vecmath.Point3) (field.Field, error) {
		return field.NewWind(orDefault(fc.Strength, field.DefaultWind)), nil
	}
	r.fields["air_resistance"] = func(fc config.FieldConfig, _ vecmath.Point3) (field.Field, error) {
		a := field.NewAirResistance()
		a.FluidDensity = orDefault(fc.Density, a.FluidDensity)
		a.DragCoefficient = orDefault(fc.Drag, a.DragCoefficient)
		if a.FluidDensity < 0 || a.DragCoefficient < 0 {
			return nil, fmt.Errorf("%w: air_resistance density and drag must not be negative", ErrInvalidField)
		}
		return a, nil
	}
	r.fields["gravity_well"] = func(fc config.FieldConfig, center vecmath.Point3) (field.Field, error) {
		radius := orDefault(fc.Radius, DefaultWellRadius)
		if radius < 0 {
			return nil, fmt.Errorf("%w: gravity_well radius %g", ErrInvalidField, radius)
		}
		return field.NewGravityWell(centerOf(fc, center), orDefault(fc.Strength, DefaultWellStrength), radius), nil
	}
	r.fields["big_gravity_well"] = func(fc config.FieldConfig, center vecmath.Point3) (field.Field, error) {
		radius := orDefault(fc.Radius, DefaultWellRadius)
		layers := DefaultWellLayers
		if fc.Layers != nil {
			layers = *fc.Layers
		}
		if radius < 0 || layers < 0 {
			return nil, fmt.Errorf("%w: big_gravity_well radius %g, layers %d", ErrInvalidField, radius, layers)
		}
		return field.NewBigGravityWell(centerOf(fc, center), orDefault(fc.Strength, DefaultWellStrength), radius, layers), nil
	}

	return r
}

func (r *Registry) Register(name string, fn FieldFactory) {
	r.fields[name] = fn
}

func (r *Registry) GetField(fc config.FieldConfig, center vecmath.Point3) (field.Field, error) {
	fn, ok := r.fields[fc.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, fc.Type)
	}
	return fn(fc, center)
}

// BuildFields constructs every configured field in order.
func (r *Registry) BuildFields(fcs []config.FieldConfig, center vecmath.Point3) ([]field.Field, error) {
	out := make([]field.Field, 0, len(fcs))
	for i, fc := range fcs {
		f, err := r.GetField(fc, center)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *Registry) ListFields() []string {
	return slices.Sorted(maps.Keys(r.fields))
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func centerOf(fc config.FieldConfig, fallback vecmath.Point3) vecmath.Point3 {
	if fc.Center != nil {
		return fc.Center.Vec()
	}
	return fallback
}
