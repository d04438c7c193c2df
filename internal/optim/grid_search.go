package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/soapsort/internal/experiment"
)

// ErrNoCandidate is returned when every grid point failed to produce a result.
var ErrNoCandidate = errors.New("optim: no grid point produced a result")

// Objective scores a finished run; lower is better.
type Objective func(*experiment.Result) float64

// Interactions scores a run by the number of interactions it needed.
func Interactions(r *experiment.Result) float64 {
	return float64(r.Sort.Interactions)
}

// Metric scores a run by one of its named metrics.
func Metric(name string) Objective {
	return func(r *experiment.Result) float64 {
		v, ok := r.Sort.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	evaluated  int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Evaluated is the number of grid points that produced a score in the last
// search.
func (g *GridSearch) Evaluated() int { return g.evaluated }

// Search walks the full grid and returns the parameters with the lowest
// score. Grid points whose experiment fails to build or run are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (map[string]float64, float64, error) {

	best := math.Inf(1)
	var bestParams map[string]float64
	g.evaluated = 0

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, objective, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil
		}

		g.evaluated++
		val := objective(result)
		if val < *best || *bestParams == nil {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
