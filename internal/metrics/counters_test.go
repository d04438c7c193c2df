package metrics

import (
	"context"
	"math/rand"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/soapsort/internal/soap"
)

func TestCounters(t *testing.T) {
	g := NewWithT(t)

	swaps := NewSwapCount()
	bounces := NewBounceCount()
	stalls := NewStallRate()
	steps := NewMeanSteps()

	for _, m := range []soap.Metric{swaps, bounces, stalls, steps} {
		m.OnInteraction(soap.Interaction{Steps: 4, Bounces: 1, Swaps: 2})
		m.OnInteraction(soap.Interaction{Steps: 2, Bounces: 2, Stalled: true})
		m.OnSwap(soap.Swap{})
		m.OnSwap(soap.Swap{})
	}

	g.Expect(swaps.Value()).To(Equal(2.0))
	g.Expect(bounces.Value()).To(Equal(3.0))
	g.Expect(stalls.Value()).To(Equal(0.5))
	g.Expect(steps.Value()).To(Equal(3.0))

	for _, m := range []soap.Metric{swaps, bounces, stalls, steps} {
		m.Reset()
		g.Expect(m.Value()).To(BeZero(), m.Name())
	}
}

func TestDefaultMetricsMatchResult(t *testing.T) {
	g := NewWithT(t)

	s := soap.New[int](rand.New(rand.NewSource(4)), soap.Config{Energy: 100, Beta: 1, Threshold: 1})
	for _, m := range DefaultSet(100) {
		s.AddMetric(m)
	}

	result, err := s.Sort(context.Background(), []int{3, 6, 1, 5, 2, 4})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(result.Metrics).To(HaveKeyWithValue("swaps", float64(result.Swaps)))
	g.Expect(result.Metrics).To(HaveKeyWithValue("bounces", float64(result.Bounces)))
	g.Expect(result.Metrics).To(HaveKey("stall_rate"))
	g.Expect(result.Metrics["mean_steps"]).To(BeNumerically("~", float64(result.Steps)/float64(result.Interactions), 1e-9))
}
