package models

import (
	"time"

	"github.com/agbru/newtoncalc/internal/newton"
)

// FromResult builds the wire record of one engine run made with maxiter.
// A non-nil err replaces the status.
func FromResult(algo string, res newton.Result, maxiter int64, duration time.Duration, err error) IterationResult {
	out := IterationResult{
		Algorithm: algo,
		Duration:  duration.String(),
	}
	if err != nil {
		out.IterEnd = IterEnd{Niter: maxiter}
		out.Error = err.Error()
		return out
	}
	end := res.IterEnd(maxiter)
	out.IterEnd = NewIterEnd(end.Z, end.Niter)
	out.Status = end.Status()
	return out
}
