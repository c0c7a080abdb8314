package server

import (
	"fmt"
	"net/http"

	"github.com/agbru/newtoncalc/pkg/models"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	// Error is the HTTP status text.
	Error string `json:"error"`
	// Message explains what was wrong with the request.
	Message string `json:"message,omitempty"`
}

// ComparisonResponse is the body of a successful /compare request.
type ComparisonResponse struct {
	Results []models.IterationResult `json:"results"`
	// Consistent is true when every engine reached the same root, or none.
	Consistent bool `json:"consistent"`
}

// PresetInfo describes one entry of /presets.
type PresetInfo struct {
	Name  string `json:"name"`
	Roots int    `json:"roots"`
	Poles int    `json:"poles"`
}

// RequestParseError is a request validation failure with its HTTP status.
type RequestParseError struct {
	Message    string
	StatusCode int
}

func (e RequestParseError) Error() string {
	return e.Message
}

func badRequest(format string, args ...any) RequestParseError {
	return RequestParseError{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusBadRequest}
}
