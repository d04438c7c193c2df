// Package viz animates a soap sort in the terminal.
//
// The live view is a Bubble Tea program that runs a batch of interactions on
// every tick and draws the array as horizontal bars:
//
//   - [Model]: sorter state, inversion history and key handling
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial array and seed
//	+/-   - Double/halve interactions per tick
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
