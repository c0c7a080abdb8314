// Package server exposes the Newton engines over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/newtoncalc/internal/config"
	apperrors "github.com/agbru/newtoncalc/internal/errors"
	"github.com/agbru/newtoncalc/internal/logging"
	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/service"
)

// Server is the HTTP front end of the calculator. It wraps an http.Server
// and adds request validation, middleware and graceful shutdown.
type Server struct {
	factory        newton.EngineFactory
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer builds a server serving the engines of factory. cfg provides
// the port, the default problem used for omitted request fields and the
// service limits.
func NewServer(factory newton.EngineFactory, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}
	if cfg.MaxIterLimit > 0 {
		s.securityConfig.MaxIterValue = cfg.MaxIterLimit
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewIterationService(s.factory, s.securityConfig.MaxIterValue, s.cfg.CacheSize,
			service.WithObserver(newton.NewMetricsObserver()))
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	mux := http.NewServeMux()
	for _, r := range s.routes() {
		mux.HandleFunc(r.path, s.wrapWithMiddleware(r.handler))
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

// route is one endpoint. usage is what Start logs for it.
type route struct {
	path    string
	usage   string
	handler http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{"/iterate", "GET|POST /iterate?z0=&maxiter=&roots=&poles=&preset=&algo=", s.handleIterate},
		{"/compare", "GET|POST /compare?z0=&maxiter=&roots=&poles=&preset=", s.handleCompare},
		{"/health", "GET /health", s.handleHealth},
		{"/algorithms", "GET /algorithms", s.handleAlgorithms},
		{"/presets", "GET /presets", s.handlePresets},
		{"/metrics", "GET /metrics", s.handleMetrics},
	}
}

// Handler returns the fully wired request multiplexer.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// wrapWithMiddleware applies, outermost first: security, rate limit,
// request ID, logging, metrics.
func (s *Server) wrapWithMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RequestIDMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// Start listens on the configured port until SIGINT or SIGTERM, then shuts
// down gracefully within the shutdown timeout.
func (s *Server) Start() error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting server",
			logging.String("addr", s.httpServer.Addr),
			logging.Int64("maxiter", s.cfg.MaxIter),
			logging.Complex("z0", s.cfg.Z0),
			logging.Int("roots", len(s.cfg.Roots)),
			logging.Int("poles", len(s.cfg.Poles)),
			logging.Int64("max_iter_limit", s.securityConfig.MaxIterValue),
			logging.Int("cache_size", s.cfg.CacheSize),
		)
		for _, r := range s.routes() {
			s.logger.Info("endpoint", logging.String("route", r.usage))
		}

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, draining connections",
			logging.String("timeout", s.timeouts.ShutdownTimeout.String()))
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Info("server stopped")
	return nil
}
