package soap

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

const (
	DefaultBeta      = 0.1
	DefaultThreshold = 0.01
)

// Number is any element type that can be ordered and used as a mass.
type Number interface {
	constraints.Integer | constraints.Float
}

// Rand is the random source driving slot selection. *math/rand.Rand
// satisfies it.
type Rand interface {
	Intn(n int) int
}

type Config struct {
	// Energy shared by each person/soap pair. Zero means len(arr).
	Energy float64
	// Beta is the magnitude of the constant deceleration.
	Beta float64
	// Threshold is the speed below which a particle counts as stopped.
	Threshold float64
	// MaxInteractions caps the outer loop. Zero leaves it unbounded, which
	// is the natural behavior of the algorithm.
	MaxInteractions int
}

func DefaultConfig() Config {
	return Config{
		Beta:      DefaultBeta,
		Threshold: DefaultThreshold,
	}
}

func (c Config) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s = %g", ErrParameterBounds, name, v)
		}
		return nil
	}
	if err := check("energy", c.Energy); err != nil {
		return err
	}
	if err := check("beta", c.Beta); err != nil {
		return err
	}
	if err := check("threshold", c.Threshold); err != nil {
		return err
	}
	if c.MaxInteractions < 0 {
		return fmt.Errorf("%w: max interactions = %d", ErrParameterBounds, c.MaxInteractions)
	}
	return nil
}

// energyFor resolves the zero-value default against the array length.
func (c Config) energyFor(n int) float64 {
	if c.Energy > 0 {
		return c.Energy
	}
	return float64(n)
}

type Role int

const (
	Person Role = iota
	Soap
)

func (r Role) String() string {
	switch r {
	case Person:
		return "person"
	case Soap:
		return "soap"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Swap is emitted whenever a particle moves its value into a new slot.
type Swap struct {
	Interaction int
	Role        Role
	From, To    int
}

// Interaction summarizes one person/soap simulation.
type Interaction struct {
	Number     int
	Person     int
	Soap       int
	PersonMass float64
	SoapMass   float64
	VPerson    float64
	VSoap      float64
	Steps      int
	Bounces    int
	Swaps      int
	// Stalled is set when neither particle could cover a full unit and both
	// were stopped by force.
	Stalled bool
}

type Observer interface {
	OnInteraction(ev Interaction)
	OnSwap(ev Swap)
}

type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

type Result struct {
	Interactions int
	Swaps        int
	Steps        int
	Bounces      int
	Stalls       int
	Metrics      map[string]float64
}

func (r *Result) add(ev Interaction) {
	r.Interactions++
	r.Swaps += ev.Swaps
	r.Steps += ev.Steps
	r.Bounces += ev.Bounces
	if ev.Stalled {
		r.Stalls++
	}
}
