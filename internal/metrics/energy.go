package metrics

import (
	"math"

	"github.com/san-kum/soapsort/internal/soap"
)

// LaunchEnergy is the mean kinetic energy handed to each person/soap pair.
type LaunchEnergy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewLaunchEnergy() *LaunchEnergy {
	return &LaunchEnergy{name: "launch_energy"}
}

func (e *LaunchEnergy) Name() string { return e.name }

func (e *LaunchEnergy) OnInteraction(ev soap.Interaction) {
	e.totalEnergy += kinetic(ev)
	e.samples++
}

func (e *LaunchEnergy) OnSwap(soap.Swap) {}

func (e *LaunchEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *LaunchEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the worst relative deviation of the launch energy from the
// configured budget. Momentum-conserving launches keep it at rounding level.
type EnergyDrift struct {
	name     string
	budget   float64
	maxDrift float64
}

func NewEnergyDrift(budget float64) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		budget: budget,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnInteraction(ev soap.Interaction) {
	if e.budget == 0 {
		return
	}
	drift := math.Abs(kinetic(ev)-e.budget) / math.Abs(e.budget)
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) OnSwap(soap.Swap) {}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() { e.maxDrift = 0 }

func kinetic(ev soap.Interaction) float64 {
	return 0.5*ev.PersonMass*ev.VPerson*ev.VPerson + 0.5*ev.SoapMass*ev.VSoap*ev.VSoap
}
