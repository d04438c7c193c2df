// Package soap implements soap sort, an in-place sort driven by a toy
// kinematic simulation.
//
// Each interaction picks a random "person" slot and an adjacent "soap" slot,
// treats their values as masses and launches both apart with velocities
// derived from momentum conservation:
//
//   - [Particle]: continuous position plus the discrete slot it occupies
//   - [TimeToCrossOneUnit]: step sizing for uniformly decelerated motion
//   - [Sorter]: runs interactions until [IsSorted] holds
//   - [Observer], [Metric]: hooks for swap and interaction events
//
// Whenever a particle's rounded position enters a new slot the value it
// carries is swapped into that slot. Interactions repeat until the array is
// non-descending.
//
// # Example
//
//	rng := rand.New(rand.NewSource(42))
//	s := soap.New[int](rng, soap.DefaultConfig())
//	res, err := s.Sort(ctx, values)
//
// # Thread Safety
//
// A Sorter is NOT thread-safe and the slice being sorted must not be touched
// by anyone else until Sort returns. Run independent sorts on independent
// Sorters.
package soap
