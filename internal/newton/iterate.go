package newton

import (
	"errors"
	"slices"
)

// Outcome classifies how an iteration ended. It is kept for diagnostics
// inside the process; the boundary record (IterEnd) only distinguishes
// converged from not converged.
type Outcome int

const (
	// OutcomeExhausted means the iteration budget ran out.
	OutcomeExhausted Outcome = iota
	// OutcomeConverged means |f(z)|² fell below ValueEpsilon.
	OutcomeConverged
	// OutcomePoleProximity means an iterate landed on a pole.
	OutcomePoleProximity
	// OutcomeDegenerateDerivative means |f'(z)|² fell below DerivativeEpsilonSqr.
	OutcomeDegenerateDerivative
	// OutcomeNoRoots means f vanished but the root list was empty.
	OutcomeNoRoots
)

var outcomeNames = [...]string{
	OutcomeExhausted:            "exhausted",
	OutcomeConverged:            "converged",
	OutcomePoleProximity:        "pole_proximity",
	OutcomeDegenerateDerivative: "degenerate_derivative",
	OutcomeNoRoots:              "no_roots",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Result is the outcome of one Newton trajectory.
type Result struct {
	// Converged reports whether a root attracted the trajectory.
	Converged bool
	// Root is the entry of the root list closest to the final iterate.
	// Only meaningful when Converged is true.
	Root complex128
	// Iterations is the number of completed Newton steps. For a trajectory
	// that did not converge it is the number of steps taken before the loop
	// stopped (maxiter when the budget ran out).
	Iterations int64
	// Outcome records why the loop stopped.
	Outcome Outcome
}

// IterEnd is the boundary shape of a Result: Z is present only on
// convergence, and Niter is maxiter whenever the trajectory did not converge,
// regardless of the reason.
type IterEnd struct {
	Z     *complex128
	Niter int64
}

// Boundary statuses. Outside the engine a trajectory either converged or it
// did not; the Outcome stays internal to logs, metrics and spans.
const (
	StatusConverged    = "converged"
	StatusNotConverged = "not_converged"
)

// Status reports StatusConverged when e carries a root.
func (e IterEnd) Status() string {
	if e.Z == nil {
		return StatusNotConverged
	}
	return StatusConverged
}

// IterEnd collapses r into the boundary shape for a call made with maxiter.
func (r Result) IterEnd(maxiter int64) IterEnd {
	if !r.Converged {
		return IterEnd{Niter: maxiter}
	}
	root := r.Root
	return IterEnd{Z: &root, Niter: r.Iterations}
}

// stepFunc returns the Newton correction to subtract from z given f(z) and
// f'(z).
type stepFunc func(z, value, derivative complex128, roots, poles []complex128) complex128

func quotientStep(_, value, derivative complex128, _, _ []complex128) complex128 {
	return value / derivative
}

// Iterate runs Newton–Raphson from z0 for at most maxiter steps and
// classifies the trajectory. It never mutates roots or poles.
func Iterate(maxiter int64, z0 complex128, roots, poles []complex128) Result {
	return run(maxiter, z0, roots, poles, quotientStep, nil)
}

// run is the iteration loop shared by every strategy. report, when non-nil,
// receives the step index after each completed Newton step.
func run(maxiter int64, z0 complex128, roots, poles []complex128, step stepFunc, report func(i int64)) Result {
	z := z0
	for i := int64(0); i < maxiter; i++ {
		derivative, err := Derive(z, roots, poles)
		if err != nil {
			return stopped(i, err)
		}
		if normSqr(derivative) <= DerivativeEpsilonSqr {
			return Result{Iterations: i, Outcome: OutcomeDegenerateDerivative}
		}

		value, err := Compute(z, roots, poles)
		if err != nil {
			return stopped(i, err)
		}

		if normSqr(value) <= ValueEpsilon {
			if len(roots) == 0 {
				return Result{Iterations: i, Outcome: OutcomeNoRoots}
			}
			return Result{
				Converged:  true,
				Root:       nearestRoot(z, roots),
				Iterations: i,
				Outcome:    OutcomeConverged,
			}
		}

		z -= step(z, value, derivative, roots, poles)
		if report != nil {
			report(i + 1)
		}
	}
	return Result{Iterations: maxiter, Outcome: OutcomeExhausted}
}

func stopped(i int64, err error) Result {
	if errors.Is(err, ErrPoleProximity) {
		return Result{Iterations: i, Outcome: OutcomePoleProximity}
	}
	return Result{Iterations: i, Outcome: OutcomeExhausted}
}

// nearestRoot sorts a private copy of roots by squared distance to z and
// returns the first entry. The sort is stable so equidistant roots resolve to
// the one listed first.
func nearestRoot(z complex128, roots []complex128) complex128 {
	sorted := slices.Clone(roots)
	slices.SortStableFunc(sorted, func(a, b complex128) int {
		da, db := normSqr(a-z), normSqr(b-z)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	})
	return sorted[0]
}
