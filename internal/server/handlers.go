package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/newtoncalc/internal/config"
	"github.com/agbru/newtoncalc/internal/newton"
	"github.com/agbru/newtoncalc/internal/preset"
	"github.com/agbru/newtoncalc/internal/service"
	"github.com/agbru/newtoncalc/pkg/models"
)

// maxRequestBody bounds POST bodies. The largest legitimate request is a
// few thousand roots.
const maxRequestBody = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}
	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleAlgorithms lists the registry keys accepted by the algo parameter.
func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"algorithms": s.factory.List(),
		"default":    s.defaultAlgo(),
	})
}

// handlePresets lists the fixed scene catalog with the size of each scene.
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	names := preset.Names()
	presets := make([]PresetInfo, 0, len(names))
	for _, name := range names {
		scene, err := preset.Lookup(name)
		if err != nil {
			continue
		}
		presets = append(presets, PresetInfo{Name: name, Roots: len(scene.Roots), Poles: len(scene.Poles)})
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{"presets": presets})
}

// handleIterate runs one trajectory. Request fields that are omitted fall
// back to the server's configured problem. Engine failures are reported in
// the body with a 200 status; malformed or out-of-limit requests and
// unknown algorithms get a 400.
func (s *Server) handleIterate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	p, algo, err := s.parseProblem(w, r)
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.service.Iterate(ctx, algo, p)
	duration := time.Since(start)

	if s.writeLimitError(w, err) {
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.FromResult(algo, result, p.MaxIter, duration, err))
}

// handleCompare runs the problem with every registered engine and reports
// whether they agree.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	p, _, err := s.parseProblem(w, r)
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	results, err := s.service.Compare(ctx, p)
	if s.writeLimitError(w, err) {
		return
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "Comparison did not finish in time")
		return
	case err != nil:
		s.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ComparisonResponse{
		Results:    make([]models.IterationResult, len(results)),
		Consistent: consistent(results),
	}
	for i, res := range results {
		resp.Results[i] = models.FromResult(res.Algorithm, res.Result, p.MaxIter, res.Duration, nil)
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// consistent reports whether all results classify the start point the same
// way: the same root, or no root at all.
func consistent(results []service.EngineResult) bool {
	for i := 1; i < len(results); i++ {
		a, b := results[0].Result, results[i].Result
		if a.Converged != b.Converged || (a.Converged && a.Root != b.Root) {
			return false
		}
	}
	return true
}

// writeLimitError answers 400 for the validation errors of the service
// layer and reports whether it did.
func (s *Server) writeLimitError(w http.ResponseWriter, err error) bool {
	var unknown *newton.UnknownEngineError
	switch {
	case errors.As(err, &unknown):
		s.writeErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid 'algo' parameter: unknown algorithm %q (see /algorithms)", unknown.Name))
		return true
	case errors.Is(err, service.ErrMaxIterExceeded):
		s.writeErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Value of 'maxiter' exceeds maximum allowed (%d). This limit prevents resource exhaustion.", s.securityConfig.MaxIterValue))
		return true
	case errors.Is(err, newton.ErrNegativeMaxIter):
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid 'maxiter' parameter: must be a non-negative integer")
		return true
	}
	return false
}

func (s *Server) writeParseError(w http.ResponseWriter, err error) {
	var parseErr RequestParseError
	if errors.As(err, &parseErr) {
		s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		return
	}
	s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
}

// defaultAlgo is the engine used when a request names none. "all" only
// makes sense on the command line.
func (s *Server) defaultAlgo() string {
	algo := strings.ToLower(s.cfg.Algo)
	if algo == "" || algo == "all" {
		return newton.DefaultAlgorithm
	}
	return algo
}

// parseProblem reads the request from the query string (GET) or the JSON
// body (POST) and resolves it against the server defaults.
func (s *Server) parseProblem(w http.ResponseWriter, r *http.Request) (newton.Problem, string, error) {
	var req models.IterateRequest
	if r.Method == http.MethodPost {
		body := http.MaxBytesReader(w, r.Body, maxRequestBody)
		decoder := json.NewDecoder(body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return newton.Problem{}, "", badRequest("Invalid JSON body: %v", err)
		}
	} else {
		var err error
		if req, err = parseIterateQuery(r.URL.Query()); err != nil {
			return newton.Problem{}, "", err
		}
	}
	return resolveRequest(req, s.cfg.ToProblem(), s.defaultAlgo())
}

// parseIterateQuery maps query parameters onto an IterateRequest. Absent
// parameters stay nil; an empty roots= or poles= is an explicit empty list.
func parseIterateQuery(q url.Values) (models.IterateRequest, error) {
	req := models.IterateRequest{
		Preset: q.Get("preset"),
		Algo:   q.Get("algo"),
	}

	if q.Has("maxiter") {
		maxiter, err := strconv.ParseInt(q.Get("maxiter"), 10, 64)
		if err != nil || maxiter < 0 {
			return req, badRequest("Invalid 'maxiter' parameter: must be a non-negative integer")
		}
		req.MaxIter = &maxiter
	}

	if q.Has("z0") {
		z0, err := config.ParseComplex(q.Get("z0"))
		if err != nil {
			return req, badRequest("Invalid 'z0' parameter: %v", err)
		}
		c := models.FromComplex(z0)
		req.Z0 = &c
	}

	for _, field := range []struct {
		name string
		dst  *[]models.Complex
	}{{"roots", &req.Roots}, {"poles", &req.Poles}} {
		if !q.Has(field.name) {
			continue
		}
		values, err := config.ParseComplexList(q.Get(field.name))
		if err != nil {
			return req, badRequest("Invalid '%s' parameter: %v", field.name, err)
		}
		*field.dst = models.FromComplexList(values)
	}

	return req, nil
}

// resolveRequest layers req over defaults: the preset replaces the default
// roots and poles, explicit lists replace the preset's.
func resolveRequest(req models.IterateRequest, defaults newton.Problem, defaultAlgo string) (newton.Problem, string, error) {
	p := defaults

	if req.Preset != "" {
		scene, err := preset.Lookup(req.Preset)
		if err != nil {
			return newton.Problem{}, "", badRequest("Invalid 'preset' parameter: %v", err)
		}
		p.Roots, p.Poles = scene.Roots, scene.Poles
	}
	if req.Roots != nil {
		p.Roots = models.ToComplexList(req.Roots)
	}
	if req.Poles != nil {
		p.Poles = models.ToComplexList(req.Poles)
	}
	if req.Z0 != nil {
		p.Z0 = req.Z0.Complex128()
	}
	if req.MaxIter != nil {
		if *req.MaxIter < 0 {
			return newton.Problem{}, "", badRequest("Invalid 'maxiter' parameter: must be a non-negative integer")
		}
		p.MaxIter = *req.MaxIter
	}

	algo := strings.ToLower(strings.TrimSpace(req.Algo))
	if algo == "" || algo == "all" {
		algo = defaultAlgo
	}
	return p, algo, nil
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
