package service

//go:generate mockgen -source=iteration_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/parallel"
)

var (
	// ErrMaxIterExceeded is returned when maxiter is above the configured limit.
	ErrMaxIterExceeded = errors.New("maximum maxiter value exceeded")
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "newton_cache_lookups_total",
		Help: "Result cache lookups by outcome",
	},
	[]string{"result"},
)

// EngineResult is one engine's answer in a comparison.
type EngineResult struct {
	Algorithm string
	Result    newton.Result
	Duration  time.Duration
}

// Service runs Newton problems on behalf of the HTTP API.
type Service interface {
	// Iterate runs p with the engine registered under algo.
	Iterate(ctx context.Context, algo string, p newton.Problem) (newton.Result, error)

	// Compare runs p with every registered engine. Results are ordered by
	// algorithm name. The first engine error fails the whole call.
	Compare(ctx context.Context, p newton.Problem) ([]EngineResult, error)
}

// IterationService validates problems, resolves engines and memoizes
// results. Engines are pure, so a result depends only on the algorithm and
// the problem.
type IterationService struct {
	factory  newton.EngineFactory
	maxIter  int64
	cache    *lru.Cache[string, newton.Result]
	observer newton.ProgressObserver
}

var _ Service = (*IterationService)(nil)

// Option configures an IterationService.
type Option func(*IterationService)

// WithObserver receives the progress of every engine run. Engines are
// identified by their index in the factory's List. nil is ignored.
func WithObserver(o newton.ProgressObserver) Option {
	return func(s *IterationService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewIterationService returns a service drawing engines from factory.
// maxIter caps the accepted budget (0 for no limit) and cacheSize bounds
// the result cache (0 disables it). Progress is discarded unless
// WithObserver is given.
func NewIterationService(factory newton.EngineFactory, maxIter int64, cacheSize int, opts ...Option) *IterationService {
	s := &IterationService{factory: factory, maxIter: maxIter, observer: newton.NewNoOpObserver()}
	if cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		s.cache, _ = lru.New[string, newton.Result](cacheSize)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IterationService) validate(p newton.Problem) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if s.maxIter > 0 && p.MaxIter > s.maxIter {
		return ErrMaxIterExceeded
	}
	return nil
}

// Iterate implements Service.
func (s *IterationService) Iterate(ctx context.Context, algo string, p newton.Problem) (newton.Result, error) {
	if err := s.validate(p); err != nil {
		return newton.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return newton.Result{}, err
	}
	return s.run(ctx, algo, p)
}

func (s *IterationService) run(ctx context.Context, algo string, p newton.Problem) (newton.Result, error) {
	engine, err := s.factory.Get(algo)
	if err != nil {
		return newton.Result{}, err
	}

	var key string
	if s.cache != nil {
		key = cacheKey(algo, p)
		if res, ok := s.cache.Get(key); ok {
			cacheLookups.WithLabelValues("hit").Inc()
			return res, nil
		}
		cacheLookups.WithLabelValues("miss").Inc()
	}

	index := slices.Index(s.factory.List(), algo)
	res, err := engine.Iterate(ctx, nil, index, p, newton.Options{Observers: []newton.ProgressObserver{s.observer}})
	if err != nil {
		return newton.Result{}, err
	}
	if s.cache != nil {
		s.cache.Add(key, res)
	}
	return res, nil
}

// Compare implements Service.
func (s *IterationService) Compare(ctx context.Context, p newton.Problem) ([]EngineResult, error) {
	if err := s.validate(p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := s.factory.List()
	results := make([]EngineResult, len(names))
	var ec parallel.ErrorCollector
	var wg sync.WaitGroup
	for i, name := range names {
		ec.Go(&wg, func() error {
			start := time.Now()
			res, err := s.run(ctx, name, p)
			results[i] = EngineResult{Algorithm: name, Result: res, Duration: time.Since(start)}
			return err
		})
	}
	wg.Wait()

	if err := ec.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// CachedResults returns the number of memoized results.
func (s *IterationService) CachedResults() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

// cacheKey encodes the problem bit-exactly so that 0 and -0 or distinct NaN
// payloads never share an entry.
func cacheKey(algo string, p newton.Problem) string {
	var b strings.Builder
	b.WriteString(algo)
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(p.MaxIter, 10))
	b.WriteByte('|')
	writeComplex(&b, p.Z0)
	b.WriteByte('|')
	for _, r := range p.Roots {
		writeComplex(&b, r)
	}
	b.WriteByte('|')
	for _, q := range p.Poles {
		writeComplex(&b, q)
	}
	return b.String()
}

func writeComplex(b *strings.Builder, z complex128) {
	b.WriteString(strconv.FormatUint(math.Float64bits(real(z)), 16))
	b.WriteByte(',')
	b.WriteString(strconv.FormatUint(math.Float64bits(imag(z)), 16))
	b.WriteByte(';')
}
