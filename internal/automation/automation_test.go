package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/soapsort/internal/experiment"
	"github.com/san-kum/soapsort/internal/soap"
)

const scenarioYAML = `
name: smoke
description: two small sorts
steps:
  - name: explicit
    values: [3, 1, 2]
    energy: 100
    beta: 1
    threshold: 1
    seed: 2
  - name: reversed
    generator: reversed
    size: 4
    energy: 100
    beta: 1
    threshold: 1
    seed: 5
    history_stride: 1
`

func TestParseScenario(t *testing.T) {
	g := NewWithT(t)

	sc, err := ParseScenario([]byte(scenarioYAML))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sc.Name).To(Equal("smoke"))
	g.Expect(sc.Steps).To(HaveLen(2))
	g.Expect(sc.Steps[0].Values).To(Equal([]float64{3, 1, 2}))
	g.Expect(sc.Steps[1].HistoryStride).To(Equal(1))
}

func TestParseScenarioEmpty(t *testing.T) {
	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestLoadScenario(t *testing.T) {
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	g.Expect(os.WriteFile(path, []byte(scenarioYAML), 0644)).To(Succeed())

	sc, err := LoadScenario(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(sc.Steps[1].Generator).To(Equal("reversed"))

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	g.Expect(err).To(HaveOccurred())
}

func TestStepConfigDefaults(t *testing.T) {
	g := NewWithT(t)

	cfg := ScenarioStep{Generator: "shuffled", Size: 5}.Config()
	g.Expect(cfg.Sort.Beta).To(Equal(soap.DefaultBeta))
	g.Expect(cfg.Sort.Threshold).To(Equal(soap.DefaultThreshold))
	g.Expect(cfg.Sort.Energy).To(BeZero())
}

func TestRunScenario(t *testing.T) {
	g := NewWithT(t)

	sc, err := ParseScenario([]byte(scenarioYAML))
	g.Expect(err).NotTo(HaveOccurred())

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(2))
	g.Expect(results[0].Output).To(Equal([]float64{1, 2, 3}))
	g.Expect(results[1].Output).To(Equal([]float64{1, 2, 3, 4}))
	g.Expect(results[1].History).NotTo(BeEmpty())
}

func TestRunScenarioStopsAtFailure(t *testing.T) {
	g := NewWithT(t)

	sc := &Scenario{Name: "broken", Steps: []ScenarioStep{
		{Values: []float64{3, 1, 2}, Energy: 100, Beta: 1, Threshold: 1, Seed: 2},
		{Values: []float64{3, 1, 2}, Beta: -1},
		{Values: []float64{3, 1, 2}, Energy: 100, Beta: 1, Threshold: 1},
	}}

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry())
	g.Expect(errors.Is(err, soap.ErrParameterBounds)).To(BeTrue())
	g.Expect(results).To(HaveLen(1))
}

func TestRunSweep(t *testing.T) {
	g := NewWithT(t)

	// From [3 1 2] an energy of 50 only ever revisits four unsorted
	// orderings, so that point runs into the cap.
	sweep := &ParameterSweep{
		Base: experiment.Config{
			Values: []float64{3, 1, 2},
			Seed:   1,
			Sort:   soap.Config{Beta: 1, Threshold: 1, MaxInteractions: 2000},
		},
		ParamName: "energy",
		ParamMin:  50,
		ParamMax:  100,
		NumSteps:  2,
	}

	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(2))

	g.Expect(results[0].ParamValue).To(Equal(50.0))
	g.Expect(results[0].Sorted).To(BeFalse())
	g.Expect(errors.Is(results[0].Err, soap.ErrInteractionLimit)).To(BeTrue())
	g.Expect(results[0].Interactions).To(Equal(2000))

	g.Expect(results[1].ParamValue).To(Equal(100.0))
	g.Expect(results[1].Sorted).To(BeTrue())
	g.Expect(results[1].Err).NotTo(HaveOccurred())

	sorted, unsorted := SweepStats(results)
	g.Expect(sorted).To(Equal(1))
	g.Expect(unsorted).To(Equal(1))
}

func TestRunSweepRejectsUnknownParam(t *testing.T) {
	sweep := &ParameterSweep{ParamName: "gravity", NumSteps: 2}
	if _, err := RunSweep(context.Background(), sweep, experiment.NewRegistry()); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestRunSweepRecordsSetupFailures(t *testing.T) {
	g := NewWithT(t)

	sweep := &ParameterSweep{
		Base:      experiment.Config{Generator: "nope", Size: 3, Sort: soap.Config{Beta: 1, Threshold: 1}},
		ParamName: "energy",
		ParamMin:  50,
		ParamMax:  100,
		NumSteps:  2,
	}

	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(results).To(HaveLen(2))
	for _, r := range results {
		g.Expect(r.Err).To(MatchError(ContainSubstring("unknown generator")))
		g.Expect(r.Sorted).To(BeFalse())
	}
	g.Expect(results[1].ParamValue).To(Equal(100.0))
}

func TestRunSweepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweep := &ParameterSweep{
		Base:      experiment.Config{Values: []float64{3, 1, 2}, Sort: soap.Config{Beta: 1, Threshold: 1}},
		ParamName: "threshold",
		ParamMin:  1,
		ParamMax:  1,
		NumSteps:  1,
	}
	_, err := RunSweep(ctx, sweep, experiment.NewRegistry())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
