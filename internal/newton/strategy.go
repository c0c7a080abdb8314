package newton

import (
	"context"
	"math"
	"math/cmplx"
)

// RecursiveStrategy takes the textbook Newton step z ← z − f(z)/f'(z) with
// f and f' from the mutually recursive evaluators. It is the canonical engine:
// its results are the reference every other strategy is compared against.
type RecursiveStrategy struct{}

// Name returns the display name of the strategy.
func (s *RecursiveStrategy) Name() string {
	return "Recursive Quotient"
}

// IterateCore runs the canonical iteration.
func (s *RecursiveStrategy) IterateCore(ctx context.Context, reporter ProgressReporter, p Problem, opts Options) (Result, error) {
	return run(p.MaxIter, p.Z0, p.Roots, p.Poles, quotientStep, progressHook(reporter, p.MaxIter, opts)), nil
}

// LogDerivativeStrategy shares the classification of RecursiveStrategy but
// computes the Newton correction from the logarithmic derivative
//
//	f'/f = Σ 1/(z − r) − Σ 1/(z − p)
//
// so the step is 1/(f'/f). When that sum is not finite or is zero the step
// falls back to f/f'.
type LogDerivativeStrategy struct{}

// Name returns the display name of the strategy.
func (s *LogDerivativeStrategy) Name() string {
	return "Logarithmic Derivative"
}

// IterateCore runs the iteration with the logarithmic-derivative step.
func (s *LogDerivativeStrategy) IterateCore(ctx context.Context, reporter ProgressReporter, p Problem, opts Options) (Result, error) {
	return run(p.MaxIter, p.Z0, p.Roots, p.Poles, logDerivativeStep, progressHook(reporter, p.MaxIter, opts)), nil
}

func logDerivativeStep(z, value, derivative complex128, roots, poles []complex128) complex128 {
	var sum complex128
	for _, r := range roots {
		sum += 1 / (z - r)
	}
	for _, p := range poles {
		sum -= 1 / (z - p)
	}
	if sum == 0 || cmplx.IsNaN(sum) || cmplx.IsInf(sum) {
		return value / derivative
	}
	return 1 / sum
}

// progressHook adapts a ProgressReporter into the per-step callback of run.
// Steps are reported every interval iterations; 0 selects
// DefaultProgressInterval.
func progressHook(reporter ProgressReporter, maxiter int64, opts Options) func(int64) {
	if reporter == nil || maxiter <= 0 {
		return nil
	}
	interval := int64(normalizeOptions(opts).ProgressInterval)
	total := float64(maxiter)
	return func(i int64) {
		if i%interval == 0 {
			reporter(math.Min(float64(i)/total, 1.0))
		}
	}
}
