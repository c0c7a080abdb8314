// Package newton implements Newton–Raphson iteration for rational complex
// functions described by an explicit list of zeros (roots) and poles.
//
// The function being iterated is
//
//	f(z) = ∏(z − roots[i]) / ∏(z − poles[j])
//
// and its derivative is obtained by peeling one factor at a time and applying
// the product and quotient rules. Evaluation never copies the input slices:
// every recursive step works on a re-sliced suffix of the caller's data.
package newton

import (
	"errors"
	"fmt"
)

// Numeric thresholds. The value threshold uses the base constant unsquared
// while the two proximity thresholds use its square; callers depend on the
// exact values.
const (
	// PoleEpsilonSqr is the squared-norm distance below which an iterate is
	// considered to sit on a pole.
	PoleEpsilonSqr = 1e-300
	// DerivativeEpsilonSqr is the squared-norm below which f'(z) is treated
	// as vanishing.
	DerivativeEpsilonSqr = 1e-300
	// ValueEpsilon is the squared-norm below which f(z) is treated as zero.
	ValueEpsilon = 1e-150
)

// ErrPoleProximity is the sentinel matched by every PoleProximityError.
var ErrPoleProximity = errors.New("too close to pole")

// PoleProximityError reports that an evaluation point fell within
// PoleEpsilonSqr of a pole.
type PoleProximityError struct {
	Z    complex128
	Pole complex128
}

func (e *PoleProximityError) Error() string {
	return fmt.Sprintf("%v: z=%v pole=%v", ErrPoleProximity, e.Z, e.Pole)
}

// Is makes errors.Is(err, ErrPoleProximity) succeed.
func (e *PoleProximityError) Is(target error) bool {
	return target == ErrPoleProximity
}

func normSqr(z complex128) float64 {
	re, im := real(z), imag(z)
	return re*re + im*im
}

// Compute evaluates f(z) for the given roots and poles.
//
// Roots are consumed first; poles are only touched once the root list is
// empty. A *PoleProximityError is returned when z is too close to a pole.
func Compute(z complex128, roots, poles []complex128) (complex128, error) {
	switch {
	case len(roots) == 0 && len(poles) == 0:
		return 1, nil
	case len(roots) == 0:
		d := z - poles[0]
		if normSqr(d) < PoleEpsilonSqr {
			return 0, &PoleProximityError{Z: z, Pole: poles[0]}
		}
		g, err := Compute(z, roots, poles[1:])
		if err != nil {
			return 0, err
		}
		return g / d, nil
	default:
		g, err := Compute(z, roots[1:], poles)
		if err != nil {
			return 0, err
		}
		return g * (z - roots[0]), nil
	}
}

// Derive evaluates f'(z) for the given roots and poles.
//
// It follows the same peeling order as Compute:
//
//	(d·g)' = g + d·g'          for a root factor d = z − r
//	(g/d)' = −g/d² + g'/d      for a pole factor d = z − p
func Derive(z complex128, roots, poles []complex128) (complex128, error) {
	switch {
	case len(roots) == 0 && len(poles) == 0:
		return 0, nil
	case len(roots) == 0:
		d := z - poles[0]
		if normSqr(d) < PoleEpsilonSqr {
			return 0, &PoleProximityError{Z: z, Pole: poles[0]}
		}
		g, err := Compute(z, roots, poles[1:])
		if err != nil {
			return 0, err
		}
		dg, err := Derive(z, roots, poles[1:])
		if err != nil {
			return 0, err
		}
		return -g/(d*d) + dg/d, nil
	default:
		g, err := Compute(z, roots[1:], poles)
		if err != nil {
			return 0, err
		}
		dg, err := Derive(z, roots[1:], poles)
		if err != nil {
			return 0, err
		}
		return g + (z-roots[0])*dg, nil
	}
}
