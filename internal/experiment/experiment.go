package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/soapsort/internal/metrics"
	"github.com/san-kum/soapsort/internal/soap"
)

type Config struct {
	Generator string
	Size      int
	// Values overrides the generator when non-empty.
	Values []float64
	Sort   soap.Config
	Seed   int64
	// HistoryStride samples the inversion count every n interactions.
	// Zero disables the history.
	HistoryStride int
}

type Result struct {
	Input   []float64
	Output  []float64
	Sort    *soap.Result
	History []metrics.Sample
	Elapsed time.Duration
}

type Experiment struct {
	cfg        Config
	randSource *rand.Rand
	input      []float64
	metrics    []soap.Metric
	observers  []soap.Observer
}

func New(cfg Config) *Experiment {
	return &Experiment{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Setup resolves the input array and attaches the default metrics. The
// generator draws from the experiment's random source before the sorter does.
func (e *Experiment) Setup(registry *Registry) error {
	if len(e.cfg.Values) > 0 {
		e.input = append([]float64(nil), e.cfg.Values...)
	} else {
		gen, err := registry.GetGenerator(e.cfg.Generator)
		if err != nil {
			return err
		}
		if e.cfg.Size < 0 {
			return fmt.Errorf("size must be non-negative, got %d", e.cfg.Size)
		}
		e.input = gen(e.cfg.Size, e.randSource)
	}
	e.metrics = registry.DefaultMetrics(e.cfg.Sort, len(e.input))
	return nil
}

func (e *Experiment) AddMetric(m soap.Metric)     { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o soap.Observer) { e.observers = append(e.observers, o) }

func (e *Experiment) Input() []float64 { return e.input }

// Run sorts a copy of the input. On a capped or canceled sort the partial
// result is returned along with the error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.input == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	arr := append([]float64(nil), e.input...)
	sorter := soap.New[float64](e.randSource, e.cfg.Sort)
	for _, m := range e.metrics {
		sorter.AddMetric(m)
	}
	for _, o := range e.observers {
		sorter.AddObserver(o)
	}

	var inversions *metrics.Inversions[float64]
	if e.cfg.HistoryStride > 0 {
		inversions = metrics.NewInversions(arr, e.cfg.HistoryStride)
		sorter.AddMetric(inversions)
	}

	slog.Debug("sort started", "size", len(arr), "seed", e.cfg.Seed,
		"energy", e.cfg.Sort.Energy, "beta", e.cfg.Sort.Beta, "threshold", e.cfg.Sort.Threshold)

	start := time.Now()
	sortResult, err := sorter.Sort(ctx, arr)
	elapsed := time.Since(start)
	if sortResult == nil {
		return nil, err
	}

	result := &Result{
		Input:   append([]float64(nil), e.input...),
		Output:  arr,
		Sort:    sortResult,
		Elapsed: elapsed,
	}
	if inversions != nil {
		result.History = inversions.History()
	}

	slog.Debug("sort finished", "interactions", sortResult.Interactions,
		"swaps", sortResult.Swaps, "elapsed", elapsed, "err", err)

	return result, err
}
