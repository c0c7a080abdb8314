package newton

import (
	"errors"
	"fmt"
)

// DefaultProgressInterval is the number of Newton steps between two progress
// notifications.
const DefaultProgressInterval = 1

// ErrNegativeMaxIter is returned when a Problem carries a negative budget.
var ErrNegativeMaxIter = errors.New("maxiter must be non-negative")

// Problem is the complete input of one iteration call.
type Problem struct {
	// MaxIter bounds the number of Newton steps.
	MaxIter int64
	// Z0 is the starting point.
	Z0 complex128
	// Roots are the zeros of the numerator; repeat a value for multiplicity.
	Roots []complex128
	// Poles are the zeros of the denominator.
	Poles []complex128
}

// Validate checks that the problem can be iterated.
func (p Problem) Validate() error {
	if p.MaxIter < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeMaxIter, p.MaxIter)
	}
	return nil
}

// Options configures an engine run.
type Options struct {
	// ProgressInterval is the number of steps between progress updates.
	// If 0, DefaultProgressInterval is used.
	ProgressInterval int
	// Observers receive every progress update in addition to the progress
	// channel handed to Engine.Iterate.
	Observers []ProgressObserver
}

func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.ProgressInterval <= 0 {
		normalized.ProgressInterval = DefaultProgressInterval
	}
	return normalized
}
