// Package optim sweeps field parameters over a grid and ranks the runs by a
// metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
)

var (
	ErrBadParam      = errors.New("optim: malformed parameter")
	ErrUnknownMetric = errors.New("optim: unknown metric")
)

// Param varies one numeric parameter of Fields[Field].
type Param struct {
	Field  int
	Name   string
	Values []float64
}

// Key is the "<field>.<name>" form used in Trial.Params.
func (p Param) Key() string { return fmt.Sprintf("%d.%s", p.Field, p.Name) }

// ParseParam reads "1.strength=0.1,0.2,0.4".
func ParseParam(s string) (Param, error) {
	key, list, ok := strings.Cut(s, "=")
	if !ok {
		return Param{}, fmt.Errorf("%w: %q has no '='", ErrBadParam, s)
	}
	idx, name, ok := strings.Cut(key, ".")
	if !ok {
		return Param{}, fmt.Errorf("%w: %q should be <field>.<name>", ErrBadParam, key)
	}
	field, err := strconv.Atoi(idx)
	if err != nil || field < 0 {
		return Param{}, fmt.Errorf("%w: bad field index %q", ErrBadParam, idx)
	}
	p := Param{Field: field, Name: name}
	for _, v := range strings.Split(list, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Param{}, fmt.Errorf("%w: %q: %w", ErrBadParam, v, err)
		}
		p.Values = append(p.Values, f)
	}
	return p, nil
}

// Apply sets the parameter on cfg in place.
func (p Param) Apply(cfg *config.Config, v float64) error {
	if p.Field >= len(cfg.Fields) {
		return fmt.Errorf("%w: field %d out of range (have %d)", ErrBadParam, p.Field, len(cfg.Fields))
	}
	if err := cfg.Fields[p.Field].Set(p.Name, v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadParam, err)
	}
	return nil
}

type Trial struct {
	Params  map[string]float64
	Metrics map[string]float64
}

// Score reads metric from the trial.
func (t Trial) Score(metric string) float64 { return t.Metrics[metric] }

type GridSearch struct {
	params   []Param
	Workers  int
	Registry *experiment.Registry
}

func NewGridSearch(params []Param) *GridSearch {
	return &GridSearch{params: params}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, p := range g.params {
		n *= len(p.Values)
	}
	return n
}

// Search runs base once per grid point and returns every trial sorted best
// first. maximize flips the ordering.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string, maximize bool) ([]Trial, error) {
	var points []map[string]float64
	g.enumerate(0, map[string]float64{}, &points)

	trials := make([]Trial, len(points))
	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var once sync.Once
	var missing error

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, point := range points {
		eg.Go(func() error {
			cfg := base.Clone()
			for _, p := range g.params {
				if err := p.Apply(cfg, point[p.Key()]); err != nil {
					return err
				}
			}
			exp, err := experiment.New(cfg, g.Registry, nil)
			if err != nil {
				return fmt.Errorf("trial %v: %w", point, err)
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("trial %v: %w", point, err)
			}
			if _, ok := res.Metrics[metric]; !ok {
				once.Do(func() { missing = fmt.Errorf("%w: %q", ErrUnknownMetric, metric) })
			}
			trials[i] = Trial{Params: point, Metrics: res.Metrics}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if missing != nil {
		return nil, missing
	}

	slices.SortStableFunc(trials, func(a, b Trial) int {
		if maximize {
			a, b = b, a
		}
		switch sa, sb := a.Score(metric), b.Score(metric); {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	})
	return trials, nil
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.params) {
		*out = append(*out, current)
		return
	}
	p := g.params[depth]
	for _, v := range p.Values {
		next := make(map[string]float64, len(current)+1)
		for k, cv := range current {
			next[k] = cv
		}
		next[p.Key()] = v
		g.enumerate(depth+1, next, out)
	}
}
