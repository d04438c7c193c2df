package soap

import (
	"errors"
	"fmt"
)

// Domain errors for sort operations.
var (
	// ErrParameterBounds indicates a configuration value is outside its valid range.
	ErrParameterBounds = errors.New("soap: parameter out of valid bounds")

	// ErrNonPositive indicates an element that cannot serve as a mass.
	ErrNonPositive = errors.New("soap: element is not a positive finite mass")

	// ErrInteractionLimit indicates the configured interaction cap was reached
	// before the array became sorted.
	ErrInteractionLimit = errors.New("soap: interaction limit reached")

	// ErrCanceled indicates the sort was interrupted by its context.
	ErrCanceled = errors.New("soap: sort canceled by context")
)

// ValueError reports the first element rejected as a mass.
type ValueError struct {
	Index int
	Value float64
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%v: arr[%d] = %g", ErrNonPositive, e.Index, e.Value)
}

func (e *ValueError) Unwrap() error {
	return ErrNonPositive
}
