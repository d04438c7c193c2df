package soap

import (
	"context"
	"fmt"
	"math"
)

// IsSorted reports whether arr is non-descending.
func IsSorted[T Number](arr []T) bool {
	for i := 0; i+1 < len(arr); i++ {
		if arr[i] > arr[i+1] {
			return false
		}
	}
	return true
}

// CheckMasses returns a *ValueError for the first element that is not a
// strictly positive finite number.
func CheckMasses[T Number](arr []T) error {
	for i, v := range arr {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			return &ValueError{Index: i, Value: f}
		}
	}
	return nil
}

type Sorter[T Number] struct {
	cfg       Config
	rng       Rand
	metrics   []Metric
	observers []Observer
	count     int
}

func New[T Number](rng Rand, cfg Config) *Sorter[T] {
	return &Sorter[T]{
		cfg:       cfg,
		rng:       rng,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Sorter[T]) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Sorter[T]) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Sorter[T]) Config() Config { return s.cfg }

// Sort reorders arr in place until it is non-descending. An already sorted
// slice returns at once with zero interactions. The context is consulted
// between interactions only.
func (s *Sorter[T]) Sort(ctx context.Context, arr []T) (*Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Metrics: make(map[string]float64)}
	for _, m := range s.metrics {
		m.Reset()
	}
	s.count = 0

	if !IsSorted(arr) {
		if err := CheckMasses(arr); err != nil {
			return nil, err
		}
	}

	for !IsSorted(arr) {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		default:
		}

		if s.cfg.MaxInteractions > 0 && result.Interactions >= s.cfg.MaxInteractions {
			s.collect(result)
			return result, fmt.Errorf("%w: %d interactions", ErrInteractionLimit, result.Interactions)
		}

		result.add(s.interact(arr))
	}

	s.collect(result)
	return result, nil
}

// Step runs one interaction unless arr is already sorted, in which case done
// is true and nothing changes. Once MaxInteractions interactions have run it
// returns ErrInteractionLimit instead.
func (s *Sorter[T]) Step(arr []T) (ev Interaction, done bool, err error) {
	if IsSorted(arr) {
		return Interaction{}, true, nil
	}
	if err := s.cfg.Validate(); err != nil {
		return Interaction{}, false, err
	}
	if err := CheckMasses(arr); err != nil {
		return Interaction{}, false, err
	}
	if s.cfg.MaxInteractions > 0 && s.count >= s.cfg.MaxInteractions {
		return Interaction{}, false, fmt.Errorf("%w: %d interactions", ErrInteractionLimit, s.count)
	}
	return s.interact(arr), false, nil
}

func (s *Sorter[T]) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// interact launches one person/soap pair and simulates it to rest.
func (s *Sorter[T]) interact(arr []T) Interaction {
	n := len(arr)
	s.count++

	personIdx := s.rng.Intn(n)
	var soapIdx int
	switch {
	case personIdx == 0:
		soapIdx = 1
	case personIdx == n-1:
		soapIdx = n - 2
	case s.rng.Intn(2) == 0:
		soapIdx = personIdx - 1
	default:
		soapIdx = personIdx + 1
	}

	pw := float64(arr[personIdx])
	sw := float64(arr[soapIdx])

	direction := -1.0
	if soapIdx > personIdx {
		direction = 1.0
	}

	energy := s.cfg.energyFor(n)
	vPerson := math.Sqrt(2*energy*sw/(pw*(pw+sw))) * direction
	vSoap := -math.Sqrt(2*energy*pw/(sw*(pw+sw))) * direction

	beta := s.cfg.Beta
	person := newParticle(personIdx, vPerson, -beta*direction)
	soap := newParticle(soapIdx, vSoap, beta*direction)

	ev := Interaction{
		Number:     s.count,
		Person:     personIdx,
		Soap:       soapIdx,
		PersonMass: pw,
		SoapMass:   sw,
		VPerson:    vPerson,
		VSoap:      vSoap,
	}
	s.simulate(arr, &person, &soap, &ev)

	for _, m := range s.metrics {
		m.OnInteraction(ev)
	}
	for _, o := range s.observers {
		o.OnInteraction(ev)
	}
	return ev
}

// simulate advances both particles in lockstep until they come to rest.
func (s *Sorter[T]) simulate(arr []T, person, soap *Particle, ev *Interaction) {
	n := len(arr)
	hi := float64(n - 1)
	threshold := s.cfg.Threshold

	for person.moving(threshold) || soap.moving(threshold) {
		t1 := TimeToCrossOneUnit(person.Vel, person.Acc)
		t2 := TimeToCrossOneUnit(soap.Vel, soap.Acc)

		if math.IsInf(t1, 1) && math.IsInf(t2, 1) {
			s.stall(person, soap, ev)
			return
		}

		dt := math.Min(t1, t2)
		if math.IsNaN(dt) || math.IsInf(dt, 0) {
			s.stall(person, soap, ev)
			return
		}

		person.Advance(dt)
		soap.Advance(dt)
		ev.Steps++

		if person.Reflect(hi) {
			ev.Bounces++
		}
		if soap.Reflect(hi) {
			ev.Bounces++
		}

		s.carry(arr, person, Person, ev)
		s.carry(arr, soap, Soap, ev)
	}
}

func (s *Sorter[T]) stall(person, soap *Particle, ev *Interaction) {
	person.Vel = 0
	soap.Vel = 0
	ev.Stalled = true
}

// carry swaps the particle's value into the slot it has just entered.
func (s *Sorter[T]) carry(arr []T, p *Particle, role Role, ev *Interaction) {
	slot, ok := p.Crossed(len(arr))
	if !ok {
		return
	}
	arr[p.Slot], arr[slot] = arr[slot], arr[p.Slot]

	sw := Swap{Interaction: ev.Number, Role: role, From: p.Slot, To: slot}
	p.Slot = slot
	ev.Swaps++

	for _, m := range s.metrics {
		m.OnSwap(sw)
	}
	for _, o := range s.observers {
		o.OnSwap(sw)
	}
}

// Sort is a convenience wrapper running an unobserved, uncancellable sort.
func Sort[T Number](arr []T, rng Rand, cfg Config) error {
	_, err := New[T](rng, cfg).Sort(context.Background(), arr)
	return err
}
