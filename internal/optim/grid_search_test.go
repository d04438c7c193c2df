package optim

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/soapsort/internal/experiment"
	"github.com/san-kum/soapsort/internal/soap"
)

func build(registry *experiment.Registry) func(map[string]float64) (*experiment.Experiment, error) {
	return func(p map[string]float64) (*experiment.Experiment, error) {
		exp := experiment.New(experiment.Config{
			Values: []float64{3, 1, 2},
			Seed:   1,
			Sort: soap.Config{
				Energy:          p["energy"],
				Beta:            p["beta"],
				Threshold:       p["threshold"],
				MaxInteractions: 5000,
			},
		})
		if err := exp.Setup(registry); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

func TestGridSearchVisitsEveryPoint(t *testing.T) {
	g := NewWithT(t)

	gs := NewGridSearch(
		[]string{"energy", "beta", "threshold"},
		[][]float64{{60, 100}, {1}, {1, 0.5}},
	)

	params, best, err := gs.Search(context.Background(), build(experiment.NewRegistry()), Interactions)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(gs.Evaluated()).To(Equal(4))
	g.Expect(params).To(HaveKey("energy"))
	g.Expect(params).To(HaveKey("threshold"))
	g.Expect(best).To(BeNumerically(">=", 1))
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g := NewWithT(t)

	// A threshold above every launch speed never sorts and hits the cap.
	gs := NewGridSearch([]string{"energy", "beta", "threshold"}, [][]float64{{100}, {1}, {1e9, 1}})

	params, _, err := gs.Search(context.Background(), build(experiment.NewRegistry()), Metric("swaps"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(gs.Evaluated()).To(Equal(1))
	g.Expect(params["threshold"]).To(Equal(1.0))
}

func TestGridSearchNoCandidate(t *testing.T) {
	gs := NewGridSearch([]string{"beta"}, [][]float64{{-1}})

	_, _, err := gs.Search(context.Background(), build(experiment.NewRegistry()), Interactions)
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := NewGridSearch([]string{"beta"}, [][]float64{{1}})
	_, _, err := gs.Search(ctx, build(experiment.NewRegistry()), Interactions)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
