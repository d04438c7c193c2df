package experiment

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/soapsort/internal/metrics"
	"github.com/san-kum/soapsort/internal/soap"
)

// Generator builds an input array of (roughly) n positive values.
type Generator func(n int, rng *rand.Rand) []float64

var demoValues = []float64{4, 3, 2, 6, 5, 7, 8, 1}

type Registry struct {
	generators map[string]Generator
}

func NewRegistry() *Registry {
	r := &Registry{
		generators: make(map[string]Generator),
	}

	r.generators["demo"] = func(int, *rand.Rand) []float64 {
		return append([]float64(nil), demoValues...)
	}
	r.generators["sorted"] = func(n int, _ *rand.Rand) []float64 {
		return ascending(n)
	}
	r.generators["reversed"] = func(n int, _ *rand.Rand) []float64 {
		out := ascending(n)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out
	}
	r.generators["shuffled"] = func(n int, rng *rand.Rand) []float64 {
		out := ascending(n)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
	r.generators["random"] = func(n int, rng *rand.Rand) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Round((1+rng.Float64()*99)*100) / 100
		}
		return out
	}
	r.generators["few_unique"] = func(n int, rng *rand.Rand) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = float64(1 + rng.Intn(3))
		}
		return out
	}

	return r
}

func ascending(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func (r *Registry) Register(name string, g Generator) {
	r.generators[name] = g
}

func (r *Registry) GetGenerator(name string) (Generator, error) {
	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
	return g, nil
}

func (r *Registry) ListGenerators() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the counters attached to every run.
func (r *Registry) DefaultMetrics(cfg soap.Config, n int) []soap.Metric {
	energy := cfg.Energy
	if energy <= 0 {
		energy = float64(n)
	}
	return metrics.DefaultSet(energy)
}
