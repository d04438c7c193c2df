package metrics

import "github.com/san-kum/soapsort/internal/soap"

type SwapCount struct {
	name  string
	swaps int
}

func NewSwapCount() *SwapCount {
	return &SwapCount{name: "swaps"}
}

func (c *SwapCount) Name() string                   { return c.name }
func (c *SwapCount) OnInteraction(soap.Interaction) {}
func (c *SwapCount) OnSwap(soap.Swap)               { c.swaps++ }
func (c *SwapCount) Value() float64                 { return float64(c.swaps) }
func (c *SwapCount) Reset()                         { c.swaps = 0 }

type BounceCount struct {
	name    string
	bounces int
}

func NewBounceCount() *BounceCount {
	return &BounceCount{name: "bounces"}
}

func (c *BounceCount) Name() string                      { return c.name }
func (c *BounceCount) OnInteraction(ev soap.Interaction) { c.bounces += ev.Bounces }
func (c *BounceCount) OnSwap(soap.Swap)                  {}
func (c *BounceCount) Value() float64                    { return float64(c.bounces) }
func (c *BounceCount) Reset()                            { c.bounces = 0 }

// StallRate is the fraction of interactions that ended with neither
// particle able to cover a full slot.
type StallRate struct {
	name    string
	stalls  int
	samples int
}

func NewStallRate() *StallRate {
	return &StallRate{name: "stall_rate"}
}

func (s *StallRate) Name() string { return s.name }

func (s *StallRate) OnInteraction(ev soap.Interaction) {
	s.samples++
	if ev.Stalled {
		s.stalls++
	}
}

func (s *StallRate) OnSwap(soap.Swap) {}

func (s *StallRate) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.stalls) / float64(s.samples)
}

func (s *StallRate) Reset() {
	s.stalls = 0
	s.samples = 0
}

// MeanSteps is the average number of kinematic steps per interaction.
type MeanSteps struct {
	name    string
	steps   int
	samples int
}

func NewMeanSteps() *MeanSteps {
	return &MeanSteps{name: "mean_steps"}
}

func (m *MeanSteps) Name() string { return m.name }

func (m *MeanSteps) OnInteraction(ev soap.Interaction) {
	m.steps += ev.Steps
	m.samples++
}

func (m *MeanSteps) OnSwap(soap.Swap) {}

func (m *MeanSteps) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.steps) / float64(m.samples)
}

func (m *MeanSteps) Reset() {
	m.steps = 0
	m.samples = 0
}

// DefaultSet returns the metric set attached to every experiment run.
func DefaultSet(energy float64) []soap.Metric {
	return []soap.Metric{
		NewSwapCount(),
		NewBounceCount(),
		NewStallRate(),
		NewMeanSteps(),
		NewLaunchEnergy(),
		NewEnergyDrift(energy),
	}
}
