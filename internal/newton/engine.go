package newton

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	iterationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newton_iterations_total",
			Help: "The total number of Newton iteration calls processed",
		},
		[]string{"algorithm", "outcome"},
	)
	iterationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newton_iteration_duration_seconds",
			Help:    "The duration of Newton iteration calls in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
		},
		[]string{"algorithm"},
	)
	iterationSteps = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newton_iteration_steps",
			Help:    "Number of Newton steps taken per call",
			Buckets: prometheus.LinearBuckets(0, 5, 20),
		},
		[]string{"algorithm"},
	)
)

// Engine is the interface the rest of the application uses to run a Newton
// trajectory. Implementations are safe for concurrent use: a call only reads
// the problem's slices.
type Engine interface {
	// Iterate runs the trajectory described by p. Progress updates are sent
	// to progressChan without blocking; a nil channel disables them.
	//
	// The returned error is non-nil only for an invalid problem. Pole hits,
	// vanishing derivatives and exhausted budgets are reported through the
	// Result.
	Iterate(ctx context.Context, progressChan chan<- ProgressUpdate, engineIndex int, p Problem, opts Options) (Result, error)

	// Name returns the display name of the strategy.
	Name() string
}

// coreEngine is a bare iteration strategy.
type coreEngine interface {
	IterateCore(ctx context.Context, reporter ProgressReporter, p Problem, opts Options) (Result, error)
	Name() string
}

// NewtonEngine decorates a coreEngine with validation, tracing, metrics,
// logging and progress reporting.
type NewtonEngine struct {
	core coreEngine
}

// NewEngine wraps core into an Engine. It panics if core is nil.
func NewEngine(core coreEngine) Engine {
	if core == nil {
		panic("newton: the `coreEngine` implementation cannot be nil")
	}
	return &NewtonEngine{core: core}
}

// Name delegates to the wrapped strategy.
func (e *NewtonEngine) Name() string {
	return e.core.Name()
}

// Iterate adapts progressChan into an observer, registers opts.Observers
// after it and delegates to IterateWithObservers.
func (e *NewtonEngine) Iterate(ctx context.Context, progressChan chan<- ProgressUpdate, engineIndex int, p Problem, opts Options) (Result, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	for _, o := range opts.Observers {
		subject.Register(o)
	}
	return e.IterateWithObservers(ctx, subject, engineIndex, p, opts)
}

// IterateWithObservers runs the wrapped strategy and notifies every observer
// registered on subject. A nil subject disables progress reporting.
func (e *NewtonEngine) IterateWithObservers(ctx context.Context, subject *ProgressSubject, engineIndex int, p Problem, opts Options) (result Result, err error) {
	tracer := otel.Tracer("newton")
	ctx, span := tracer.Start(ctx, "Iterate")
	defer span.End()

	if err = p.Validate(); err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		algoName := e.core.Name()
		outcome := result.Outcome.String()
		if err != nil {
			outcome = "error"
		}
		iterationsTotal.WithLabelValues(algoName, outcome).Inc()
		iterationDuration.WithLabelValues(algoName).Observe(duration)
		iterationSteps.WithLabelValues(algoName).Observe(float64(result.Iterations))

		span.SetAttributes(
			attribute.String("newton.algorithm", algoName),
			attribute.Int64("newton.maxiter", p.MaxIter),
			attribute.Int64("newton.iterations", result.Iterations),
			attribute.String("newton.outcome", outcome),
		)

		log.Debug().
			Str("algo", algoName).
			Int64("maxiter", p.MaxIter).
			Int("roots", len(p.Roots)).
			Int("poles", len(p.Poles)).
			Int64("niter", result.Iterations).
			Str("outcome", outcome).
			Float64("duration", duration).
			Msg("iteration completed")
	}()

	var reporter ProgressReporter
	if subject != nil {
		reporter = subject.AsProgressReporter(engineIndex)
	}

	result, err = e.core.IterateCore(ctx, reporter, p, opts)
	if err == nil && reporter != nil {
		reporter(1.0)
	}
	return result, err
}
