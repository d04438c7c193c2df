package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/soapsort/internal/experiment"
	"github.com/san-kum/soapsort/internal/soap"
)

// Scenario is a scripted batch of sorts read from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one sort in a scenario. Values win over the generator.
type ScenarioStep struct {
	Name            string    `yaml:"name"`
	Generator       string    `yaml:"generator"`
	Size            int       `yaml:"size"`
	Values          []float64 `yaml:"values"`
	Energy          float64   `yaml:"energy"`
	Beta            float64   `yaml:"beta"`
	Threshold       float64   `yaml:"threshold"`
	MaxInteractions int       `yaml:"max_interactions"`
	Seed            int64     `yaml:"seed"`
	HistoryStride   int       `yaml:"history_stride"`
}

// Config converts the step into an experiment configuration. Unset beta and
// threshold fall back to the sorter defaults.
func (s ScenarioStep) Config() experiment.Config {
	sortCfg := soap.DefaultConfig()
	sortCfg.Energy = s.Energy
	sortCfg.MaxInteractions = s.MaxInteractions
	if s.Beta != 0 {
		sortCfg.Beta = s.Beta
	}
	if s.Threshold != 0 {
		sortCfg.Threshold = s.Threshold
	}
	return experiment.Config{
		Generator:     s.Generator,
		Size:          s.Size,
		Values:        s.Values,
		Sort:          sortCfg,
		Seed:          s.Seed,
		HistoryStride: s.HistoryStride,
	}
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) ([]*experiment.Result, error) {
	results := make([]*experiment.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		slog.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		exp := experiment.New(step.Config())
		if err := exp.Setup(registry); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, result)
	}

	return results, nil
}

// ParameterSweep varies one sorter parameter linearly over [ParamMin, ParamMax].
type ParameterSweep struct {
	Base      experiment.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult records one sweep point. Err is set when the sort hit its
// interaction cap or failed validation.
type SweepResult struct {
	ParamValue   float64
	Interactions int
	Swaps        int
	Stalls       int
	Sorted       bool
	Err          error
}

func setParam(cfg *soap.Config, name string, v float64) error {
	switch name {
	case "energy":
		cfg.Energy = v
	case "beta":
		cfg.Beta = v
	case "threshold":
		cfg.Threshold = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return nil
}

// RunSweep executes a parameter sweep. Failed points are recorded, not
// fatal; only cancellation aborts the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if err := setParam(&soap.Config{}, sweep.ParamName, 0); err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := sweep.Base
		_ = setParam(&cfg.Sort, sweep.ParamName, paramVal)

		point := SweepResult{ParamValue: paramVal}

		exp := experiment.New(cfg)
		if err := exp.Setup(registry); err != nil {
			point.Err = fmt.Errorf("setup: %w", err)
			results = append(results, point)
			slog.Warn("sweep point setup failed", "param", sweep.ParamName, "value", paramVal, "error", err)
			continue
		}

		result, err := exp.Run(ctx)
		point.Err = err
		if result != nil {
			point.Interactions = result.Sort.Interactions
			point.Swaps = result.Sort.Swaps
			point.Stalls = result.Sort.Stalls
			point.Sorted = soap.IsSorted(result.Output)
		}
		results = append(results, point)

		slog.Debug("sweep point", "param", sweep.ParamName, "value", paramVal,
			"interactions", point.Interactions, "sorted", point.Sorted)
	}

	return results, nil
}

// SweepStats counts sorted and unsorted points.
func SweepStats(results []SweepResult) (sorted int, unsorted int) {
	for _, r := range results {
		if r.Sorted {
			sorted++
		} else {
			unsorted++
		}
	}
	return
}
